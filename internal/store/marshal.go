package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/roach88/fnmanifest/internal/spec"
)

// timeLayout is how recorded_at is stored. Fixed-width so that the
// TEXT column sorts chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// marshalDocument converts a descriptor document to canonical JSON TEXT
// for storage, together with its content hash.
func marshalDocument(doc *spec.Map) (string, string, error) {
	data, err := spec.MarshalCanonical(doc)
	if err != nil {
		return "", "", fmt.Errorf("marshal document: %w", err)
	}
	hash, err := spec.ManifestHash(doc)
	if err != nil {
		return "", "", fmt.Errorf("hash document: %w", err)
	}
	return string(data), hash, nil
}

// endpointDigest is the content hash of one endpoint of a document.
type endpointDigest struct {
	name string
	hash string
}

// endpointDigests hashes every endpoint of doc, sorted by name.
// A document without endpoints has no digests.
func endpointDigests(doc *spec.Map) ([]endpointDigest, error) {
	v, ok := doc.Get("endpoints")
	if !ok {
		return nil, nil
	}
	endpoints, ok := v.(*spec.Map)
	if !ok {
		return nil, fmt.Errorf("endpoints: expected a map, got %T", v)
	}

	names := endpoints.Keys()
	sort.Strings(names)
	digests := make([]endpointDigest, 0, len(names))
	for _, name := range names {
		ep, _ := endpoints.Get(name)
		hash, err := spec.EndpointHash(ep)
		if err != nil {
			return nil, fmt.Errorf("hash endpoint %s: %w", name, err)
		}
		digests = append(digests, endpointDigest{name: name, hash: hash})
	}
	return digests, nil
}

// specVersionOf reads the specVersion field of doc, or "" when missing.
func specVersionOf(doc *spec.Map) string {
	if v, ok := doc.Get("specVersion"); ok {
		if s, ok := v.(spec.String); ok {
			return string(s)
		}
	}
	return ""
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse recorded_at: %w", err)
	}
	return t, nil
}
