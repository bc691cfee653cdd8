package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainSignature is the domain prefix for signature fingerprints.
// The version suffix enables future algorithm migration.
const DomainSignature = "procrt/signature/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a stable content hash of a signature's identity and
// shape. Descriptions are excluded so rewording docs does not look like an
// incompatible catalog change.
func Fingerprint(sig Signature) (string, error) {
	obj := map[string]any{
		"namespace": sig.Namespace,
		"name":      sig.Name,
		"inputs":    fieldsToCanonical(sig.Inputs),
		"outputs":   fieldsToCanonical(sig.Outputs),
	}
	if sig.Namespace == nil {
		obj["namespace"] = []string{}
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", sig.QualifiedName(), err)
	}
	return hashWithDomain(DomainSignature, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when the signature is known to be valid.
func MustFingerprint(sig Signature) string {
	fp, err := Fingerprint(sig)
	if err != nil {
		panic(err)
	}
	return fp
}

func fieldsToCanonical(fields []FieldSignature) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = map[string]any{
			"name": f.Name,
			"type": f.Type.String(),
		}
	}
	return out
}
