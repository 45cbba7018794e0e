package plex

import (
	"fmt"
	"net/url"
)

const (
	// SectionsEndpoint lists every library section on a server.
	SectionsEndpoint = "/library/sections"

	// TokenParam is the query parameter Plex accepts authentication
	// tokens in. The token also travels as a header of the same name.
	TokenParam = "X-Plex-Token"
)

// SectionsURL constructs the URL listing all library sections.
func SectionsURL(baseURL, token string) string {
	params := url.Values{}
	params.Set(TokenParam, token)

	return fmt.Sprintf("%s%s?%s", baseURL, SectionsEndpoint, params.Encode())
}

// SectionItemsURL constructs the URL listing the top-level contents of the
// section identified by key. Section keys are bare IDs, not paths.
func SectionItemsURL(baseURL, key, token string) string {
	params := url.Values{}
	params.Set(TokenParam, token)

	return fmt.Sprintf("%s%s/%s/all?%s", baseURL, SectionsEndpoint, key, params.Encode())
}

// ChildrenURL constructs the URL listing an album's direct children. The
// key comes from the album Directory's key attribute, which is already a
// full server path.
func ChildrenURL(baseURL, key, token string) string {
	params := url.Values{}
	params.Set("includeChildren", "1")
	params.Set(TokenParam, token)

	return fmt.Sprintf("%s%s?%s", baseURL, key, params.Encode())
}

// DownloadURL constructs the URL serving a part's original binary. The
// download flag asks the server for the untranscoded file.
func DownloadURL(baseURL, partKey, token string) string {
	params := url.Values{}
	params.Set("download", "1")
	params.Set(TokenParam, token)

	return fmt.Sprintf("%s%s?%s", baseURL, partKey, params.Encode())
}

// RedactURL masks the token query parameter of a catalog or download URL so
// it can be logged safely. Unparseable input is returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	if q.Has(TokenParam) {
		q.Set(TokenParam, "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
