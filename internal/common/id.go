package common

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// NewContentID derives a deterministic content ID from the source type and a
// canonical slug. The same source document always maps to the same ID, so
// re-scraping updates the stored row instead of duplicating it.
// Format: doc_<first 32 hex chars of sha256>
func NewContentID(sourceType, slug string) string {
	sum := sha256.Sum256([]byte(sourceType + ":" + slug))
	return "doc_" + hex.EncodeToString(sum[:])[:32]
}

// NewResultID generates a unique run-result ID with the "run_" prefix
func NewResultID() string {
	return "run_" + uuid.New().String()
}

// CanonicalSlug reduces a URL to a stable slug: lowercased host plus path with
// any trailing slash removed. Query strings and fragments are dropped so that
// cosmetic URL variations map to the same document.
func CanonicalSlug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(strings.TrimSuffix(rawURL, "/"))
	}
	slug := strings.ToLower(u.Host) + strings.TrimSuffix(u.Path, "/")
	return slug
}
