package mirror

// DownloadTask represents a single photo to fetch, fully resolved at
// plan time: the executor needs no further catalog access.
type DownloadTask struct {
	AlbumTitle  string // title of the album (or section) the photo was listed under
	Filename    string // deterministic basename, e.g. "100_Beach.jpg"
	LocalPath   string // full destination path under the mirror base directory
	DownloadURL string // fully formed part URL, token included
	Size        int64  // expected size from the catalog, 0 when the server omits it
}

// Plan is the outcome of one catalog walk: the ordered task queue plus
// the counts the run summary and report are built from.
type Plan struct {
	Tasks        []DownloadTask
	Sections     int // photo sections seen in the library
	Skipped      int // photos already present locally
	Filtered     int // top-level albums dropped by the include filter
	MissingParts int // photos without a usable file part
	FailedNodes  int // sections or albums whose listing could not be fetched or parsed
}
