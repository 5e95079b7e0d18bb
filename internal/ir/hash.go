package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for content-addressed module fingerprints. The version
// suffix enables future algorithm migration.
const DomainModule = "strata/module/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a content-addressed hash of the module. Two
// structurally identical modules fingerprint identically; any rewrite
// that changes the IR changes the fingerprint. The trace store keys
// runs by before/after fingerprints, and an unchanged fingerprint is
// the idempotence witness for a re-run pass.
func Fingerprint(m *Module) (string, error) {
	obj := map[string]any{
		"name": m.Name,
		"text": Print(m),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModule, canonical), nil
}
