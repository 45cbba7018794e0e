package paths

import (
	"path/filepath"
	"strings"
)

// DefaultContainer is the file extension used when the catalog does not
// report one for a photo.
const DefaultContainer = "jpg"

// Sanitize replaces every character that is unsafe in a filename on at
// least one supported platform with an underscore. All other characters
// are preserved as-is.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|':
			return '_'
		default:
			return r
		}
	}, name)
}

// FileName returns the deterministic basename for a photo:
// "{ratingKey}_{sanitized title}.{container}". An absent title falls
// back to the rating key so the name component is never empty; an
// absent container falls back to DefaultContainer.
func FileName(ratingKey, title, container string) string {
	if title == "" {
		title = ratingKey
	}
	if container == "" {
		container = DefaultContainer
	}
	return ratingKey + "_" + Sanitize(title) + "." + container
}

// LocalPath joins a photo's deterministic filename onto its containing
// directory. Same inputs always map to the same path.
func LocalPath(dir, ratingKey, title, container string) string {
	return filepath.Join(dir, FileName(ratingKey, title, container))
}

// DirName returns the sanitized directory name for a section or album
// node, falling back to the rating key for untitled nodes.
func DirName(title, ratingKey string) string {
	if title == "" {
		title = ratingKey
	}
	return Sanitize(title)
}

// DisplayPath renders a local path for log output: relative to the base
// directory with the leading section component stripped, so users see
// "2022-01/Trip/102_Beach.jpg" rather than the full mirror path.
func DisplayPath(baseDir, localPath string) string {
	rel, err := filepath.Rel(baseDir, localPath)
	if err != nil {
		return localPath
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) > 1 {
		return filepath.Join(parts[1:]...)
	}
	return rel
}
