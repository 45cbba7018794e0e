package main

import (
	"crypto/tls"
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Only download top-level albums whose titles match one of these entries.
// If this list is empty, ALL top-level albums will be processed.
// Nested sub-albums are always processed if their parent is included.
var includeAlbums = []string{
	// Example: "2022-01", "2022-02", ...
}

type MediaContainer struct {
	Directories []Directory `xml:"Directory"`
	Photos      []Photo     `xml:"Photo"`
	Metadata    []Photo     `xml:"Metadata"`
}

type Directory struct {
	Key   string `xml:"key,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type Photo struct {
	RatingKey string  `xml:"ratingKey,attr"`
	ID        string  `xml:"id,attr"`
	Title     string  `xml:"title,attr"`
	Type      string  `xml:"type,attr"`
	Media     []Media `xml:"Media"`
	Parts     []Part  `xml:"Part"`
}

type Media struct {
	Parts []Part `xml:"Part"`
}

type Part struct {
	Key       string `xml:"key,attr"`
	Container string `xml:"container,attr"`
}

type downloadTask struct {
	albumTitle  string
	filename    string
	localPath   string
	downloadURL string
}

var disallowedChars = regexp.MustCompile(`[\\/*?:"<>|]`)

func main() {
	baseURL := flag.String("base-url", "", "Base Plex URL (e.g., https://your.plex.server:32400)")
	token := flag.String("token", "", "Your Plex token")
	downloadDir := flag.String("download-dir", "./plex_photos", "Directory to save downloaded photos")
	downloadDelay := flag.Duration("download-delay", 0, "Delay between downloads (e.g., 500ms)")
	flag.Parse()

	if *baseURL == "" || *token == "" {
		fmt.Println("Usage: plexmirror -base-url https://your.plex.server:32400 -token YOUR_PLEX_TOKEN")
		flag.PrintDefaults()
		return
	}

	base := strings.TrimRight(*baseURL, "/")

	if err := os.MkdirAll(*downloadDir, 0o755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		return
	}

	// Plex servers on a LAN usually present self-signed certificates
	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}

	fmt.Println("Requesting library sections...")
	sectionsURL := fmt.Sprintf("%s/library/sections?X-Plex-Token=%s", base, *token)
	body, err := get(client, sectionsURL, *token)
	if err != nil {
		fmt.Printf("ERROR: retrieving library sections -> %v\n", err)
		return
	}

	var sections MediaContainer
	if err := xml.Unmarshal(body, &sections); err != nil {
		fmt.Printf("ERROR: parsing sections XML -> %v\n", err)
		return
	}

	// Find photo sections (where type is "photo")
	var photoSections []Directory
	for _, d := range sections.Directories {
		if d.Type == "photo" {
			photoSections = append(photoSections, d)
		}
	}
	if len(photoSections) == 0 {
		fmt.Println("No photo sections found!")
		return
	}

	var allTasks []downloadTask
	for _, section := range photoSections {
		sectionTitle := section.Title
		if sectionTitle == "" {
			sectionTitle = "untitled"
		}
		sectionDir := filepath.Join(*downloadDir, sanitizeFilename(sectionTitle))
		if err := os.MkdirAll(sectionDir, 0o755); err != nil {
			fmt.Printf("ERROR: retrieving items for section '%s' -> %v\n", sectionTitle, err)
			continue
		}

		fmt.Printf("\nSection: %s\n", sectionTitle)
		allURL := fmt.Sprintf("%s/library/sections/%s/all?X-Plex-Token=%s", base, section.Key, *token)
		body, err := get(client, allURL, *token)
		if err != nil {
			fmt.Printf("ERROR: retrieving items for section '%s' -> %v\n", sectionTitle, err)
			continue
		}

		var items MediaContainer
		if err := xml.Unmarshal(body, &items); err != nil {
			fmt.Printf("ERROR: parsing items XML in section '%s' -> %v\n", sectionTitle, err)
			continue
		}

		allTasks = append(allTasks, gatherSectionPhotos(client, sectionTitle, &items, sectionDir, base, *token)...)
	}

	if len(allTasks) == 0 {
		fmt.Println("\nAll files already exist locally. Nothing to download.")
		return
	}

	fmt.Printf("\nTotal files to download: %d\n\n", len(allTasks))
	runDownloads(client, allTasks, *downloadDelay, *downloadDir)
}

// gatherSectionPhotos gathers top-level photos and top-level album
// directories (recursively), respecting the include list only for
// top-level albums.
func gatherSectionPhotos(client *http.Client, sectionTitle string, items *MediaContainer, sectionDir, base, token string) []downloadTask {
	var tasks []downloadTask

	for _, photo := range photoItems(items) {
		if task, ok := photoTask(photo, sectionTitle, sectionDir, base, token); ok {
			tasks = append(tasks, task)
		}
	}

	for _, album := range items.Directories {
		albumTitle := album.Title
		if albumTitle == "" {
			albumTitle = "untitled"
		}

		// Only filter top-level albums
		if len(includeAlbums) > 0 && !included(albumTitle) {
			fmt.Printf("SKIP (album not in include list) %s\n", albumTitle)
			continue
		}

		albumDir := filepath.Join(sectionDir, sanitizeFilename(albumTitle))
		if err := os.MkdirAll(albumDir, 0o755); err != nil {
			fmt.Printf("ERROR: cannot access album '%s' -> %v\n", albumTitle, err)
			continue
		}
		albumURL := fmt.Sprintf("%s%s?includeChildren=1&X-Plex-Token=%s", base, album.Key, token)
		tasks = append(tasks, gatherAlbumPhotos(client, albumTitle, albumURL, albumDir, base, token)...)
	}

	return tasks
}

// gatherAlbumPhotos recursively gathers all photos from a given album
// and any sub-albums.
func gatherAlbumPhotos(client *http.Client, albumTitle, albumURL, albumDir, base, token string) []downloadTask {
	var tasks []downloadTask

	body, err := get(client, albumURL, token)
	if err != nil {
		fmt.Printf("ERROR: cannot access album '%s' -> %v\n", albumTitle, err)
		return tasks
	}

	var album MediaContainer
	if err := xml.Unmarshal(body, &album); err != nil {
		fmt.Printf("ERROR: XML parse in album '%s' -> %v\n", albumTitle, err)
		return tasks
	}

	// Photos in the current album come first
	for _, photo := range photoItems(&album) {
		if task, ok := photoTask(photo, albumTitle, albumDir, base, token); ok {
			tasks = append(tasks, task)
		}
	}

	// Then any nested sub-albums
	for _, sub := range album.Directories {
		subTitle := sub.Title
		if subTitle == "" {
			subTitle = "untitled"
		}
		subDir := filepath.Join(albumDir, sanitizeFilename(subTitle))
		if err := os.MkdirAll(subDir, 0o755); err != nil {
			fmt.Printf("ERROR: cannot access album '%s' -> %v\n", subTitle, err)
			continue
		}
		subURL := fmt.Sprintf("%s%s?includeChildren=1&X-Plex-Token=%s", base, sub.Key, token)
		tasks = append(tasks, gatherAlbumPhotos(client, subTitle, subURL, subDir, base, token)...)
	}

	return tasks
}

// photoItems returns the photo entries of a container. Some Plex
// versions return Metadata elements instead of Photo elements.
func photoItems(mc *MediaContainer) []Photo {
	if len(mc.Photos) > 0 {
		return mc.Photos
	}
	var photos []Photo
	for _, m := range mc.Metadata {
		if m.Type == "photo" {
			photos = append(photos, m)
		}
	}
	return photos
}

// photoTask builds the download task for one photo, or reports it as
// skipped or unusable.
func photoTask(photo Photo, albumTitle, dir, base, token string) (downloadTask, bool) {
	ratingKey := photo.RatingKey
	if ratingKey == "" {
		ratingKey = photo.ID
	}
	title := photo.Title
	if title == "" {
		title = ratingKey
	}

	part := firstPart(photo)
	if part == nil || part.Key == "" {
		return downloadTask{}, false
	}
	container := part.Container
	if container == "" {
		container = "jpg"
	}

	filename := fmt.Sprintf("%s_%s.%s", ratingKey, sanitizeFilename(title), container)
	localPath := filepath.Join(dir, filename)

	if _, err := os.Stat(localPath); err == nil {
		fmt.Printf("SKIP (exists) %s\n", filename)
		return downloadTask{}, false
	}

	fmt.Printf("QUEUED %s\n", filename)
	return downloadTask{
		albumTitle:  albumTitle,
		filename:    filename,
		localPath:   localPath,
		downloadURL: fmt.Sprintf("%s%s?download=1&X-Plex-Token=%s", base, part.Key, token),
	}, true
}

func firstPart(photo Photo) *Part {
	for _, media := range photo.Media {
		if len(media.Parts) > 0 {
			return &media.Parts[0]
		}
	}
	if len(photo.Parts) > 0 {
		return &photo.Parts[0]
	}
	return nil
}

// runDownloads downloads the tasks one by one, showing progress that
// starts from the album folder rather than the base directory.
func runDownloads(client *http.Client, tasks []downloadTask, delay time.Duration, downloadDir string) {
	total := len(tasks)
	for i, task := range tasks {
		fmt.Printf("Downloading %d of %d - %s\n", i+1, total, displayPath(task.localPath, downloadDir))
		if err := downloadFile(client, task.downloadURL, task.localPath); err != nil {
			fmt.Printf("ERROR downloading %s -> %v\n", displayPath(task.localPath, downloadDir), err)
			continue
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

// displayPath removes the base download directory and the section
// folder so the path starts with the top-level album.
func displayPath(localPath, downloadDir string) string {
	rel, err := filepath.Rel(downloadDir, localPath)
	if err != nil {
		return localPath
	}
	parts := strings.Split(filepath.ToSlash(filepath.Clean(rel)), "/")
	if len(parts) > 1 {
		return filepath.Join(parts[1:]...)
	}
	return rel
}

func included(albumTitle string) bool {
	for _, name := range includeAlbums {
		if name == albumTitle {
			return true
		}
	}
	return false
}

func sanitizeFilename(name string) string {
	return disallowedChars.ReplaceAllString(name, "_")
}

func get(client *http.Client, url, token string) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Plex-Token", token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func downloadFile(client *http.Client, url, localPath string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %s", resp.Status)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}
