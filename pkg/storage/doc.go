// Package storage manages the local mirror tree on disk.
//
// The storage package handles:
//   - Creating the base directory and per-section/per-album directories
//   - Path-based existence checks used to skip already-mirrored photos
//   - Streaming photo binaries to their final paths
//
// Writes go directly to the final path with no temporary file or rename.
// An interrupted transfer therefore leaves a truncated file behind, and
// because existence is judged by path alone, later runs treat that file as
// already mirrored. Deleting the file forces a fresh download.
//
// Usage:
//
//	manager, err := storage.NewManager("photos")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if !manager.Exists(localPath) {
//	    _, err = manager.WriteStream(localPath, body)
//	    if err != nil {
//	        log.Printf("transfer failed: %v", err)
//	    }
//	}
package storage
