package mirror

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	errs "plexmirror/pkg/errors"
	"plexmirror/pkg/logger"
	"plexmirror/pkg/paths"
	"plexmirror/pkg/plex"
	"plexmirror/pkg/storage"
	"plexmirror/pkg/ui"
)

// Planner walks the remote photo catalog depth-first and turns it into
// an ordered Plan. A listing's photos are queued before its sub-albums,
// and siblings keep the order the catalog returned them in.
type Planner struct {
	client  CatalogClient
	storage *storage.Manager
	include map[string]bool
	logger  logger.Logger
	tui     ui.TUI
}

// NewPlanner creates a planner. The include list filters a section's
// direct albums by title; an empty list means every album is processed.
func NewPlanner(client CatalogClient, store *storage.Manager, includeAlbums []string, log logger.Logger) *Planner {
	if log == nil {
		log = logger.GetLogger()
	}

	include := make(map[string]bool, len(includeAlbums))
	for _, title := range includeAlbums {
		include[title] = true
	}

	return &Planner{
		client:  client,
		storage: store,
		include: include,
		logger:  log,
	}
}

// SetTUI routes the planner's console lines to a terminal UI instead of
// plain output.
func (p *Planner) SetTUI(tui ui.TUI) {
	p.tui = tui
}

// BuildPlan fetches the library sections and walks every photo section.
// The sections listing is the only request whose failure aborts the
// plan; failures below it cost just the affected subtree.
func (p *Planner) BuildPlan(ctx context.Context) (*Plan, error) {
	if p.tui != nil {
		p.tui.LogInfo("Requesting library sections...")
	} else {
		ui.PrintHighlight("Requesting library sections...")
	}
	p.logger.Info("requesting library sections")

	container, err := p.client.Sections()
	if err != nil {
		msg := fmt.Sprintf("ERROR: retrieving library sections -> %v", err)
		if isParseError(err) {
			msg = fmt.Sprintf("ERROR: parsing sections XML -> %v", err)
		}
		if p.tui != nil {
			p.tui.LogError("%s", msg)
		} else {
			ui.PrintError(msg)
		}
		p.logger.ErrorWithFields("failed to retrieve library sections", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("retrieving library sections: %w", err)
	}

	sections := container.PhotoSections()
	if len(sections) == 0 {
		if p.tui != nil {
			p.tui.LogWarning("No photo sections found!")
		} else {
			ui.PrintWarning("No photo sections found!")
		}
		p.logger.Warn("no photo sections found")
		return &Plan{}, nil
	}

	plan := &Plan{Sections: len(sections)}
	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.planSection(ctx, section, plan); err != nil {
			return nil, err
		}
	}

	p.logger.InfoWithFields("plan complete", map[string]interface{}{
		"queued":        len(plan.Tasks),
		"skipped":       plan.Skipped,
		"filtered":      plan.Filtered,
		"missing_parts": plan.MissingParts,
		"failed_nodes":  plan.FailedNodes,
	})

	return plan, nil
}

// planSection mirrors one library section. Listing failures are
// contained here so sibling sections still contribute.
func (p *Planner) planSection(ctx context.Context, section plex.Directory, plan *Plan) error {
	dir := filepath.Join(p.storage.BaseDir(), paths.DirName(section.Title, section.RatingKey))
	if err := p.storage.EnsureDir(dir); err != nil {
		p.dirError(dir, err, plan)
		return nil
	}

	if p.tui != nil {
		p.tui.LogInfo("Section: %s", section.Title)
	} else {
		ui.PrintHighlight(fmt.Sprintf("\nSection: %s", section.Title))
	}
	p.logger.InfoWithFields("planning section", map[string]interface{}{
		"section": section.Title,
		"key":     section.Key,
	})

	listing, err := p.client.SectionItems(section.Key)
	if err != nil {
		msg := fmt.Sprintf("ERROR: retrieving items for section '%s' -> %v", section.Title, err)
		if isParseError(err) {
			msg = fmt.Sprintf("ERROR: parsing items XML in section '%s' -> %v", section.Title, err)
		}
		p.nodeError(msg, section.Title, err, plan)
		return nil
	}

	return p.planListing(ctx, listing, section.Title, dir, true, plan)
}

// planListing queues a listing's photos, then descends into its albums.
// The include filter applies only when the listing belongs to a section
// (topLevel); once an album is accepted its descendants are processed
// unconditionally.
func (p *Planner) planListing(ctx context.Context, listing *plex.MediaContainer, nodeTitle, dir string, topLevel bool, plan *Plan) error {
	for _, photo := range listing.PhotoItems() {
		p.planPhoto(photo, nodeTitle, dir, plan)
	}

	for _, album := range listing.Directories {
		if err := ctx.Err(); err != nil {
			return err
		}

		if topLevel && len(p.include) > 0 && !p.include[album.Title] {
			if p.tui != nil {
				p.tui.LogWarning("SKIP (album not in include list) %s", album.Title)
			} else {
				ui.PrintWarning(fmt.Sprintf("SKIP (album not in include list) %s", album.Title))
			}
			p.logger.InfoWithFields("skipping album not in include list", map[string]interface{}{
				"album": album.Title,
			})
			plan.Filtered++
			continue
		}

		if err := p.planAlbum(ctx, album, dir, plan); err != nil {
			return err
		}
	}

	return nil
}

// planAlbum descends into one album. The directory is created before
// the children fetch, so a later failure still leaves the tree shaped
// for the next run.
func (p *Planner) planAlbum(ctx context.Context, album plex.Directory, parentDir string, plan *Plan) error {
	dir := filepath.Join(parentDir, paths.DirName(album.Title, album.RatingKey))
	if err := p.storage.EnsureDir(dir); err != nil {
		p.dirError(dir, err, plan)
		return nil
	}

	p.logger.DebugWithFields("descending into album", map[string]interface{}{
		"album": album.Title,
		"key":   album.Key,
	})

	children, err := p.client.Children(album.Key)
	if err != nil {
		msg := fmt.Sprintf("ERROR: cannot access album '%s' -> %v", album.Title, err)
		if isParseError(err) {
			msg = fmt.Sprintf("ERROR: XML parse in album '%s' -> %v", album.Title, err)
		}
		p.nodeError(msg, album.Title, err, plan)
		return nil
	}

	return p.planListing(ctx, children, album.Title, dir, false, plan)
}

// planPhoto resolves one photo to a task, a skip, or a dropped
// missing-part entry.
func (p *Planner) planPhoto(photo plex.Photo, albumTitle, dir string, plan *Plan) {
	part := photo.FirstPart()
	if part == nil || part.Key == "" {
		p.logger.WarnWithFields("photo has no usable file part", map[string]interface{}{
			"photo": photo.DisplayTitle(),
			"album": albumTitle,
		})
		plan.MissingParts++
		return
	}

	filename := paths.FileName(photo.Identifier(), photo.Title, part.Container)
	localPath := filepath.Join(dir, filename)

	if p.storage.Exists(localPath) {
		if p.tui != nil {
			p.tui.LogInfo("SKIP (exists) %s", filename)
		} else {
			ui.PrintDim(fmt.Sprintf("SKIP (exists) %s", filename))
		}
		p.logger.DebugWithFields("skipping existing file", map[string]interface{}{
			"file": filename,
		})
		plan.Skipped++
		return
	}

	if p.tui != nil {
		p.tui.LogSuccess("QUEUED %s", filename)
	} else {
		ui.PrintSuccess(fmt.Sprintf("QUEUED %s", filename))
	}
	p.logger.DebugWithFields("queued download", map[string]interface{}{
		"file":  filename,
		"album": albumTitle,
	})

	plan.Tasks = append(plan.Tasks, DownloadTask{
		AlbumTitle:  albumTitle,
		Filename:    filename,
		LocalPath:   localPath,
		DownloadURL: p.client.DownloadURLFor(part.Key),
		Size:        part.Size,
	})
}

// nodeError records a contained listing failure: the node contributes
// nothing and the walk moves on to its siblings.
func (p *Planner) nodeError(msg, title string, err error, plan *Plan) {
	if p.tui != nil {
		p.tui.LogError("%s", msg)
	} else {
		ui.PrintError(msg)
	}
	p.logger.ErrorWithFields("node listing failed", map[string]interface{}{
		"node":  title,
		"error": err.Error(),
	})
	plan.FailedNodes++
}

// dirError records a failed local directory creation, contained like a
// listing failure.
func (p *Planner) dirError(dir string, err error, plan *Plan) {
	msg := fmt.Sprintf("ERROR: creating directory '%s' -> %v", dir, err)
	if p.tui != nil {
		p.tui.LogError("%s", msg)
	} else {
		ui.PrintError(msg)
	}
	p.logger.ErrorWithFields("failed to create directory", map[string]interface{}{
		"dir":   dir,
		"error": err.Error(),
	})
	plan.FailedNodes++
}

func isParseError(err error) bool {
	var apiErr *errs.Error
	return errors.As(err, &apiErr) && apiErr.Type == errs.ErrorTypeParsing
}
