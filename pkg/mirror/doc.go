// Package mirror provides the core functionality for mirroring a Plex
// photo library onto a local directory tree.
//
// The mirror package orchestrates a full run, coordinating the Plex
// catalog client, path mapping, local storage, and the sequential
// transfer runner.
//
// Architecture:
//
// A run has two strictly separated phases:
//   - Plan: the Planner walks photo sections depth-first, queuing one
//     DownloadTask per photo not already on disk. A listing's photos
//     are queued before its sub-albums, siblings keep catalog order,
//     and the album include filter applies only to a section's direct
//     albums.
//   - Execute: the transfer runner fetches each task in queue order,
//     one at a time, pausing for the configured delay after each
//     successful download.
//
// A fetch or parse failure while listing a section or album costs only
// that subtree; the one failure that aborts a run is the top-level
// sections listing itself. Re-running is safe and cheap: existing files
// are detected by path and skipped at plan time.
//
// Usage:
//
//	cfg, err := config.Load("", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := mirror.New(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rep, err := m.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("downloaded %d photos\n", rep.Downloaded)
//
// Storage:
//
// Photos are written under {base}/{section}/{album}/.../ with the
// filename format {ratingKey}_{title}.{container}. Writes stream
// straight to the final path; an interrupted transfer can leave a
// truncated file, which the next run treats as present.
package mirror
