// Package peersync implements the envelope exchange between two dashboard
// instances: a pull-only request/response over one TCP connection, framed by
// half-close on the request side and full close on the response side.
package peersync

import (
	"errors"

	"github.com/reycn/agent-box/internal/model"
	"github.com/reycn/agent-box/internal/security"
)

// TransportProtocol tags the envelope with the transport the operator asked
// for. It is descriptive only; frames always travel over plain TCP.
type TransportProtocol string

const (
	ProtocolHTTP  TransportProtocol = "Http"
	ProtocolHTTPS TransportProtocol = "Https"
	ProtocolQUIC  TransportProtocol = "Quic"
)

// ParseProtocol maps an operator-supplied protocol name to its tag.
func ParseProtocol(name string) (TransportProtocol, bool) {
	switch name {
	case "http":
		return ProtocolHTTP, true
	case "https":
		return ProtocolHTTPS, true
	case "quic":
		return ProtocolQUIC, true
	default:
		return "", false
	}
}

// SyncEnvelope carries one peer's session snapshot.
type SyncEnvelope struct {
	Peer     string                `json:"peer"`
	Nonce    uint64                `json:"nonce"`
	Protocol TransportProtocol     `json:"protocol"`
	Payload  []model.SessionRecord `json:"payload"`
}

// PullRequest asks a peer for its current snapshot. A request with Discover
// set and no auth key asks for the peer's passkey instead of a snapshot.
type PullRequest struct {
	AuthKey  string `json:"auth_key"`
	Discover bool   `json:"discover,omitempty"`
}

// passkeyReply answers a discovery probe.
type passkeyReply struct {
	Passkey string `json:"passkey"`
}

var (
	// ErrInvalidAuthKey marks a handshake or request-key mismatch.
	ErrInvalidAuthKey = errors.New("invalid auth key")
	// ErrEmptyResponse marks a zero-byte read from a pull.
	ErrEmptyResponse = errors.New("empty sync response from peer")
	// ErrMalformedFrame marks a request or envelope that failed to decode.
	ErrMalformedFrame = errors.New("malformed sync frame")
)

// PrepareEnvelope builds an envelope from local records, passing each record
// through the security layer's redaction before it can leave the process.
func PrepareEnvelope(layer *security.Layer, peer string, nonce uint64, protocol TransportProtocol, records []model.SessionRecord) SyncEnvelope {
	filtered := make([]model.SessionRecord, len(records))
	for i, rec := range records {
		filtered[i] = layer.FilterSensitive(rec)
	}
	return SyncEnvelope{
		Peer:     peer,
		Nonce:    nonce,
		Protocol: protocol,
		Payload:  filtered,
	}
}
