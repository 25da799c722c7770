// Package fingerprint produces salted content hashes for tamper evidence of
// a specific stored copy. A fresh random salt is drawn on every call, so two
// fingerprints of identical content differ; verification requires the
// persisted salt.
package fingerprint

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/wso2/consent-intake-api/internal/intake/model"
)

// saltSize is the number of random bytes drawn per fingerprint; the salt is
// stored hex-encoded.
const saltSize = 16

// Fingerprinter computes salted SHA-256 fingerprints. The random source is
// injectable so tests can fix the salt.
type Fingerprinter struct {
	rand io.Reader
}

// New returns a Fingerprinter backed by crypto/rand.
func New() *Fingerprinter {
	return &Fingerprinter{rand: rand.Reader}
}

// NewWithRand returns a Fingerprinter drawing salts from r.
func NewWithRand(r io.Reader) *Fingerprinter {
	return &Fingerprinter{rand: r}
}

// Fingerprint serializes content deterministically, draws a fresh salt and
// hashes the concatenation of the serialized content and the salt.
func (f *Fingerprinter) Fingerprint(content any) (model.Fingerprint, error) {
	serialized, err := json.Marshal(content)
	if err != nil {
		return model.Fingerprint{}, fmt.Errorf("failed to serialize content: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(f.rand, salt); err != nil {
		return model.Fingerprint{}, fmt.Errorf("failed to draw salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)

	return model.Fingerprint{
		Hash: Sum(serialized, saltHex),
		Salt: saltHex,
	}, nil
}

// Sum computes the hex-encoded SHA-256 digest of serialized||salt. Exported
// so a stored fingerprint can be re-verified against its persisted salt.
func Sum(serialized []byte, salt string) string {
	h := sha256.New()
	h.Write(serialized)
	h.Write([]byte(salt))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the fingerprint of content under fp.Salt and compares it
// with fp.Hash.
func Verify(content any, fp model.Fingerprint) (bool, error) {
	serialized, err := json.Marshal(content)
	if err != nil {
		return false, fmt.Errorf("failed to serialize content: %w", err)
	}
	return Sum(serialized, fp.Salt) == fp.Hash, nil
}
