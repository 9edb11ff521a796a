package peersync

import (
	"fmt"
	"io"
	"net"
	"time"
)

// DiscoverJoinKey asks a peer for its passkey so a bare `host` join target
// can pair without the operator typing the code. The probe is bounded by the
// timeout; any failure leaves the caller on its locally derived candidate.
func DiscoverJoinKey(peerHost string, port int, timeout time.Duration) (string, error) {
	addr, err := resolveAddr(peerHost, port)
	if err != nil {
		return "", err
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", fmt.Errorf("connect failed to %s:%d: %w", peerHost, port, err)
	}
	defer conn.Close() //nolint:errcheck
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}

	encoded, err := EncodeRequest(PullRequest{Discover: true})
	if err != nil {
		return "", err
	}
	if _, err := conn.Write(encoded); err != nil {
		return "", fmt.Errorf("write discovery probe: %w", err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.CloseWrite() //nolint:errcheck
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read discovery reply: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s:%d", ErrEmptyResponse, peerHost, port)
	}
	passkey, err := decodePasskeyReply(data)
	if err != nil {
		return "", err
	}
	if passkey == "" {
		return "", fmt.Errorf("%w: empty passkey in discovery reply", ErrMalformedFrame)
	}
	return passkey, nil
}
