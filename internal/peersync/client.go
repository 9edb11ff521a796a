package peersync

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/reycn/agent-box/internal/model"
	"github.com/reycn/agent-box/internal/security"
)

// Client pulls session snapshots from peers. It carries its own security
// layer so every outbound key is checked for self-consistency before any
// connection is opened; the remote peer still verifies independently.
type Client struct {
	security *security.Layer
}

func NewClient(sharedKey string) *Client {
	return &Client{security: security.NewLayer(sharedKey)}
}

// Handshake verifies a presented key against the client's configured digest.
func (c *Client) Handshake(providedKey string) error {
	if !c.security.VerifyKey(providedKey) {
		return ErrInvalidAuthKey
	}
	return nil
}

// PrepareEnvelope builds a redacted envelope from this node's records.
func (c *Client) PrepareEnvelope(peer string, nonce uint64, protocol TransportProtocol, records []model.SessionRecord) SyncEnvelope {
	return PrepareEnvelope(c.security, peer, nonce, protocol, records)
}

// PullOnce fetches one snapshot from a peer. The request is written and the
// write side half-closed; the response is everything read until the peer
// closes the connection. All socket operations carry the given timeout as a
// deadline so an unresponsive peer cannot stall the caller beyond it.
func (c *Client) PullOnce(peerHost string, port int, authKey string, timeout time.Duration) (SyncEnvelope, error) {
	if err := c.Handshake(authKey); err != nil {
		return SyncEnvelope{}, err
	}
	addr, err := resolveAddr(peerHost, port)
	if err != nil {
		return SyncEnvelope{}, err
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return SyncEnvelope{}, fmt.Errorf("connect failed to %s:%d: %w", peerHost, port, err)
	}
	defer conn.Close() //nolint:errcheck
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return SyncEnvelope{}, fmt.Errorf("set deadline: %w", err)
	}

	encoded, err := EncodeRequest(PullRequest{AuthKey: authKey})
	if err != nil {
		return SyncEnvelope{}, err
	}
	if _, err := conn.Write(encoded); err != nil {
		return SyncEnvelope{}, fmt.Errorf("write pull request: %w", err)
	}
	// Half-close signals end of request; there is no length prefix.
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.CloseWrite() //nolint:errcheck
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		return SyncEnvelope{}, fmt.Errorf("read sync response: %w", err)
	}
	if len(data) == 0 {
		return SyncEnvelope{}, fmt.Errorf("%w: %s:%d", ErrEmptyResponse, peerHost, port)
	}
	return DecodeEnvelope(data)
}

func resolveAddr(host string, port int) (string, error) {
	joined := net.JoinHostPort(host, strconv.Itoa(port))
	addr, err := net.ResolveTCPAddr("tcp", joined)
	if err != nil {
		return "", fmt.Errorf("resolve failed for %s: %w", joined, err)
	}
	return addr.String(), nil
}
