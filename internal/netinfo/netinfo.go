// Package netinfo answers where this node can listen and how peers can
// reach it.
package netinfo

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const publicIPEndpoint = "http://api.ipify.org"

// ValidateBind rejects addresses the sync server could never listen on.
func ValidateBind(ip string, port int) error {
	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid IP address: %s", ip)
	}
	if port == 0 {
		return fmt.Errorf("port 0 is not allowed")
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("port out of range: %d", port)
	}
	return nil
}

// DetectPublicIP asks a public echo service for this node's outward address.
func DetectPublicIP(timeout time.Duration) (string, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(publicIPEndpoint)
	if err != nil {
		return "", fmt.Errorf("failed to contact public IP service: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("public IP service returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("failed to read public IP response: %w", err)
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid public IP: %s", ip)
	}
	return ip, nil
}
