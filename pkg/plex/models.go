package plex

import "encoding/xml"

// MediaContainer is the envelope element of every Plex metadata response.
// All payload lives in attributes on repeated child elements: Directory for
// sections and albums, Photo (or Metadata on newer servers) for photo items.
type MediaContainer struct {
	XMLName     xml.Name    `xml:"MediaContainer"`
	Size        int         `xml:"size,attr"`
	Directories []Directory `xml:"Directory"`
	Photos      []Photo     `xml:"Photo"`
	Metadata    []Photo     `xml:"Metadata"`
}

// PhotoItems returns the photo entries of the container. Older servers emit
// Photo elements while newer ones emit Metadata elements with type="photo";
// the Metadata fallback only applies when no Photo elements are present.
func (mc *MediaContainer) PhotoItems() []Photo {
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

// PhotoSections returns the directories that are photo library sections.
func (mc *MediaContainer) PhotoSections() []Directory {
	var sections []Directory
	for _, d := range mc.Directories {
		if d.IsPhotoSection() {
			sections = append(sections, d)
		}
	}
	return sections
}

// Directory represents a library section or a photo album. For sections the
// key is a bare section ID; for albums it is a full server path such as
// /library/metadata/123/children.
type Directory struct {
	RatingKey string `xml:"ratingKey,attr"`
	Key       string `xml:"key,attr"`
	Title     string `xml:"title,attr"`
	Type      string `xml:"type,attr"`
}

// IsPhotoSection reports whether the directory is a photo library section.
func (d Directory) IsPhotoSection() bool {
	return d.Type == "photo"
}

// Photo represents a single photo item. The downloadable binary lives in a
// Part, normally nested under a Media element, though some server dialects
// attach the Part directly to the item.
type Photo struct {
	RatingKey string  `xml:"ratingKey,attr"`
	ID        string  `xml:"id,attr"`
	Key       string  `xml:"key,attr"`
	Title     string  `xml:"title,attr"`
	Type      string  `xml:"type,attr"`
	Media     []Media `xml:"Media"`
	Parts     []Part  `xml:"Part"`
}

// Identifier returns the stable identity of the photo: the ratingKey
// attribute, falling back to the legacy id attribute. Empty when the item
// carries neither.
func (p Photo) Identifier() string {
	if p.RatingKey != "" {
		return p.RatingKey
	}
	return p.ID
}

// DisplayTitle returns the photo title, falling back to the identifier for
// untitled items.
func (p Photo) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Identifier()
}

// FirstPart returns the photo's first Part element, or nil when it has
// none. Callers must still check the part's Key: a keyless part cannot be
// downloaded and the photo should be skipped.
func (p Photo) FirstPart() *Part {
	for i := range p.Media {
		if len(p.Media[i].Parts) > 0 {
			return &p.Media[i].Parts[0]
		}
	}
	if len(p.Parts) > 0 {
		return &p.Parts[0]
	}
	return nil
}

// Media groups the parts that make up one encoding of an item.
type Media struct {
	Parts []Part `xml:"Part"`
}

// Part points at a downloadable binary on the server. The container
// attribute names the file format and may be absent.
type Part struct {
	Key       string `xml:"key,attr"`
	Container string `xml:"container,attr"`
	Size      int64  `xml:"size,attr"`
}
