package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for content-addressed input identity.
// Version suffix enables future algorithm migration.
const hashDomainInput = "arbiter/resolve-input/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InputHash computes the deterministic hash of a resolve invocation's
// identifying fields: user, tenant, current intent, and priority override.
//
// The hash is consumed by the external audit collaborator for deduplication
// and tracing. It deliberately excludes the fusion context: it identifies
// "who asked for what", not the full situational payload.
//
// Empty intent and absent override are omitted from the hashed object so the
// hash of a minimal request is stable regardless of how the caller spelled
// the absence.
func InputHash(userID, tenantID, intent string, override *Domain) (string, error) {
	obj := map[string]any{
		"user_id":   userID,
		"tenant_id": tenantID,
	}
	if intent != "" {
		obj["intent"] = intent
	}
	if override != nil {
		obj["override"] = string(*override)
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("InputHash: failed to marshal: %w", err)
	}
	return hashWithDomain(hashDomainInput, canonical), nil
}

// MustInputHash is like InputHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustInputHash(userID, tenantID, intent string, override *Domain) string {
	h, err := InputHash(userID, tenantID, intent, override)
	if err != nil {
		panic(err)
	}
	return h
}
