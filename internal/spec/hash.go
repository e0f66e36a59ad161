package spec

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainManifest = "fnmanifest/manifest/v1"
	DomainEndpoint = "fnmanifest/endpoint/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ManifestHash computes the content hash of a lowered descriptor document.
// Two documents that differ only in map insertion order hash the same.
func ManifestHash(doc Value) (string, error) {
	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("ManifestHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainManifest, canonical), nil
}

// EndpointHash computes the content hash of one lowered endpoint.
func EndpointHash(endpoint Value) (string, error) {
	canonical, err := MarshalCanonical(endpoint)
	if err != nil {
		return "", fmt.Errorf("EndpointHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEndpoint, canonical), nil
}
