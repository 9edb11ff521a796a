package peersync

import (
	"encoding/json"
	"fmt"
)

// The wire format is canonical JSON passed through a reversible byte-wise
// transform. The transform is a confidentiality placeholder: substituting a
// real authenticated encryption scheme must happen inside Encode*/Decode*
// without changing any call site.
const obfuscationByte = 0xA5

func obfuscate(input []byte) []byte {
	out := make([]byte, len(input))
	for i, b := range input {
		out[i] = b ^ obfuscationByte
	}
	return out
}

// EncodeEnvelope serializes an envelope for transmission.
func EncodeEnvelope(env SyncEnvelope) ([]byte, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return obfuscate(raw), nil
}

// DecodeEnvelope reverses EncodeEnvelope.
func DecodeEnvelope(data []byte) (SyncEnvelope, error) {
	var env SyncEnvelope
	if err := json.Unmarshal(obfuscate(data), &env); err != nil {
		return SyncEnvelope{}, fmt.Errorf("%w: decode envelope: %v", ErrMalformedFrame, err)
	}
	return env, nil
}

// EncodeRequest serializes a pull request for transmission.
func EncodeRequest(req PullRequest) ([]byte, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return obfuscate(raw), nil
}

// DecodeRequest reverses EncodeRequest.
func DecodeRequest(data []byte) (PullRequest, error) {
	var req PullRequest
	if err := json.Unmarshal(obfuscate(data), &req); err != nil {
		return PullRequest{}, fmt.Errorf("%w: decode request: %v", ErrMalformedFrame, err)
	}
	return req, nil
}

func encodePasskeyReply(passkey string) ([]byte, error) {
	raw, err := json.Marshal(passkeyReply{Passkey: passkey})
	if err != nil {
		return nil, fmt.Errorf("encode passkey reply: %w", err)
	}
	return obfuscate(raw), nil
}

func decodePasskeyReply(data []byte) (string, error) {
	var reply passkeyReply
	if err := json.Unmarshal(obfuscate(data), &reply); err != nil {
		return "", fmt.Errorf("%w: decode passkey reply: %v", ErrMalformedFrame, err)
	}
	return reply.Passkey, nil
}
