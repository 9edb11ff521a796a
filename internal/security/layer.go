package security

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/reycn/agent-box/internal/model"
)

// Layer verifies the shared pairing key and scrubs session output before it
// leaves the process. Only a one-way digest of the key is retained.
//
// VerifyKey compares hex digests and is deliberately not constant-time: the
// key is a short-lived pairing code shown on screen, not a credential. Do not
// "harden" the comparison without also changing the pairing model.
type Layer struct {
	keyHash string
}

func NewLayer(sharedKey string) *Layer {
	return &Layer{keyHash: hashKey(sharedKey)}
}

// VerifyKey reports whether the candidate matches the configured key.
func (l *Layer) VerifyKey(candidate string) bool {
	return hashKey(candidate) == l.keyHash
}

// FilterSensitive returns a copy of the record with every tail line redacted.
func (l *Layer) FilterSensitive(rec model.SessionRecord) model.SessionRecord {
	lines := make([]string, len(rec.LastLines))
	for i, line := range rec.LastLines {
		lines[i] = RedactLine(line)
	}
	rec.LastLines = lines
	return rec
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// GeneratePasskey derives the 40-hex-char join code from the host label, the
// session start time, and an explicit random seed. It is deterministic so
// both sides of a symmetric pairing can compute the same candidate; it only
// guards against accidental collisions, not a motivated attacker.
func GeneratePasskey(hostLabel string, sessionMs int64, randomSeed uint64) string {
	h := sha1.New()
	h.Write([]byte(hostLabel))
	h.Write([]byte(":"))
	h.Write([]byte(strconv.FormatInt(sessionMs, 10)))
	h.Write([]byte(":"))
	h.Write([]byte(strconv.FormatUint(randomSeed, 10)))
	return hex.EncodeToString(h.Sum(nil))
}
