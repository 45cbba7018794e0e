package plex

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sectionListingXML mimics /library/sections on a server with two photo
// sections and a movie section. It carries attributes the client does not
// model.
const sectionListingXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="3" allowSync="0" title1="Plex Library">
	<Directory allowSync="1" art="/:/resources/photo-fanart.jpg" key="3" ratingKey="3" title="Family Photos" type="photo" scanner="Plex Photo Scanner" language="xn" uuid="3fd4e2a1" createdAt="1680000000" updatedAt="1704067200"/>
	<Directory allowSync="1" key="5" ratingKey="5" title="Movies" type="movie" scanner="Plex Movie"/>
	<Directory allowSync="1" key="7" ratingKey="7" title="Screenshots" type="photo"/>
</MediaContainer>`

// albumListingXML mimics a section or album listing holding one sub-album
// and two photos with Media/Part binaries.
const albumListingXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="3">
	<Directory ratingKey="400" key="/library/metadata/400/children" title="Summer 2023" type="photoalbum"/>
	<Photo ratingKey="401" key="/library/metadata/401" title="Beach" type="photo">
		<Media id="500" width="4032" height="3024">
			<Part id="600" key="/library/parts/600/file.jpg" container="jpg" size="2048000"/>
		</Media>
	</Photo>
	<Photo ratingKey="402" key="/library/metadata/402" title="Sunset" type="photo">
		<Media id="501">
			<Part id="601" key="/library/parts/601/file.heic" container="heic" size="1024000"/>
		</Media>
	</Photo>
</MediaContainer>`

// metadataListingXML mimics the newer server dialect that emits Metadata
// elements instead of Photo elements.
const metadataListingXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="2">
	<Metadata ratingKey="701" key="/library/metadata/701" title="Harbor" type="photo">
		<Media><Part key="/library/parts/801/file.jpg" container="jpg"/></Media>
	</Metadata>
	<Metadata ratingKey="702" key="/library/metadata/702" title="Harbor Clip" type="clip">
		<Media><Part key="/library/parts/802/file.mp4" container="mp4"/></Media>
	</Metadata>
</MediaContainer>`

func TestPhotoSections(t *testing.T) {
	var container MediaContainer
	require.NoError(t, xml.Unmarshal([]byte(sectionListingXML), &container))

	assert.Equal(t, 3, container.Size)
	require.Len(t, container.Directories, 3)

	sections := container.PhotoSections()
	require.Len(t, sections, 2)
	assert.Equal(t, "Family Photos", sections[0].Title)
	assert.Equal(t, "3", sections[0].Key)
	assert.Equal(t, "Screenshots", sections[1].Title)
	assert.Equal(t, "7", sections[1].Key)
}

func TestIsPhotoSection(t *testing.T) {
	tests := []struct {
		name     string
		dir      Directory
		expected bool
	}{
		{
			name:     "photo section",
			dir:      Directory{Type: "photo"},
			expected: true,
		},
		{
			name:     "movie section",
			dir:      Directory{Type: "movie"},
			expected: false,
		},
		{
			name:     "album is not a section",
			dir:      Directory{Type: "photoalbum"},
			expected: false,
		},
		{
			name:     "missing type",
			dir:      Directory{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dir.IsPhotoSection())
		})
	}
}

func TestPhotoItems(t *testing.T) {
	t.Run("photo elements", func(t *testing.T) {
		var container MediaContainer
		require.NoError(t, xml.Unmarshal([]byte(albumListingXML), &container))

		photos := container.PhotoItems()
		require.Len(t, photos, 2)
		assert.Equal(t, "401", photos[0].RatingKey)
		assert.Equal(t, "Beach", photos[0].Title)
		assert.Equal(t, "402", photos[1].RatingKey)

		// The sub-album stays in Directories, not in the photo list
		require.Len(t, container.Directories, 1)
		assert.Equal(t, "Summer 2023", container.Directories[0].Title)
	})

	t.Run("metadata fallback filters by type", func(t *testing.T) {
		var container MediaContainer
		require.NoError(t, xml.Unmarshal([]byte(metadataListingXML), &container))

		photos := container.PhotoItems()
		require.Len(t, photos, 1)
		assert.Equal(t, "701", photos[0].RatingKey)
		assert.Equal(t, "Harbor", photos[0].Title)
	})

	t.Run("photo elements win over metadata", func(t *testing.T) {
		container := MediaContainer{
			Photos:   []Photo{{RatingKey: "1", Type: "photo"}},
			Metadata: []Photo{{RatingKey: "2", Type: "photo"}},
		}

		photos := container.PhotoItems()
		require.Len(t, photos, 1)
		assert.Equal(t, "1", photos[0].RatingKey)
	})

	t.Run("empty container", func(t *testing.T) {
		var container MediaContainer
		assert.Empty(t, container.PhotoItems())
	})
}

func TestPhotoIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		photo    Photo
		expected string
	}{
		{
			name:     "rating key",
			photo:    Photo{RatingKey: "12345"},
			expected: "12345",
		},
		{
			name:     "legacy id fallback",
			photo:    Photo{ID: "legacy-9"},
			expected: "legacy-9",
		},
		{
			name:     "rating key wins over id",
			photo:    Photo{RatingKey: "12345", ID: "legacy-9"},
			expected: "12345",
		},
		{
			name:     "neither present",
			photo:    Photo{Title: "Untracked"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.photo.Identifier())
		})
	}
}

func TestPhotoDisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		photo    Photo
		expected string
	}{
		{
			name:     "title present",
			photo:    Photo{RatingKey: "1", Title: "Beach"},
			expected: "Beach",
		},
		{
			name:     "falls back to identifier",
			photo:    Photo{RatingKey: "12345"},
			expected: "12345",
		},
		{
			name:     "falls back to legacy id",
			photo:    Photo{ID: "legacy-9"},
			expected: "legacy-9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.photo.DisplayTitle())
		})
	}
}

func TestFirstPart(t *testing.T) {
	t.Run("nested under media", func(t *testing.T) {
		var container MediaContainer
		require.NoError(t, xml.Unmarshal([]byte(albumListingXML), &container))

		part := container.Photos[0].FirstPart()
		require.NotNil(t, part)
		assert.Equal(t, "/library/parts/600/file.jpg", part.Key)
		assert.Equal(t, "jpg", part.Container)
		assert.Equal(t, int64(2048000), part.Size)
	})

	t.Run("direct part child", func(t *testing.T) {
		photo := Photo{
			RatingKey: "1",
			Parts:     []Part{{Key: "/library/parts/1/file.jpg"}},
		}

		part := photo.FirstPart()
		require.NotNil(t, part)
		assert.Equal(t, "/library/parts/1/file.jpg", part.Key)
	})

	t.Run("first media empty, second has parts", func(t *testing.T) {
		photo := Photo{
			Media: []Media{
				{},
				{Parts: []Part{{Key: "/library/parts/2/file.jpg"}}},
			},
		}

		part := photo.FirstPart()
		require.NotNil(t, part)
		assert.Equal(t, "/library/parts/2/file.jpg", part.Key)
	})

	t.Run("keyless first part is still the first part", func(t *testing.T) {
		photo := Photo{
			Media: []Media{
				{Parts: []Part{{Container: "jpg"}, {Key: "/library/parts/3/file.jpg"}}},
			},
		}

		part := photo.FirstPart()
		require.NotNil(t, part)
		assert.Empty(t, part.Key)
	})

	t.Run("no parts at all", func(t *testing.T) {
		photo := Photo{RatingKey: "1"}
		assert.Nil(t, photo.FirstPart())
	})
}
