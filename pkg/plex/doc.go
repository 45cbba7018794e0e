// Package plex implements a read-only client for the Plex Media Server
// library API, covering the three catalog listings the mirror needs and
// streaming downloads of photo binaries.
//
// Catalog responses are attribute-styled XML wrapped in a MediaContainer
// element. The package models only the elements and attributes the mirror
// consumes:
//
//   - Directory: a library section (type="photo") or an album
//   - Photo / Metadata: a photo item, identified by ratingKey (or the
//     legacy id attribute on older servers)
//   - Media > Part: the downloadable binary behind a photo
//
// Authentication uses a Plex token sent both as the X-Plex-Token header and
// as a query parameter. URLs are never logged with the token in place; see
// RedactURL.
//
// Catalog requests share a token-bucket rate limiter and retry on
// transient failures (network errors, 429, 5xx) with exponential backoff.
// Binary downloads use a separate HTTP client with a longer timeout and a
// single attempt, streaming the body to the caller.
//
// Usage:
//
//	client := plex.NewClientWithConfig(cfg, log)
//
//	sections, err := client.Sections()
//	if err != nil {
//		// the run cannot proceed without the section listing
//	}
//	for _, section := range sections.PhotoSections() {
//		items, err := client.SectionItems(section.Key)
//		...
//	}
//
//	body, size, err := client.Download(client.DownloadURLFor(part.Key))
//	if err == nil {
//		defer body.Close()
//		// stream body to disk
//	}
package plex
