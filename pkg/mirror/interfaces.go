package mirror

import "plexmirror/pkg/plex"

// CatalogClient defines the interface for Plex catalog operations
type CatalogClient interface {
	Sections() (*plex.MediaContainer, error)
	SectionItems(key string) (*plex.MediaContainer, error)
	Children(key string) (*plex.MediaContainer, error)
	DownloadURLFor(partKey string) string
}
