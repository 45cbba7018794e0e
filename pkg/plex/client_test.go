package plex

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"plexmirror/pkg/config"
	"plexmirror/pkg/errors"
	"plexmirror/pkg/logger"
)

// newTestClient builds a client pointed at a test server, with retry
// backoff shrunk to milliseconds and the rate limiter effectively disabled
// so failure paths stay fast.
func newTestClient(serverURL string, log logger.Logger) *Client {
	cfg := config.DefaultConfig()
	cfg.Plex.BaseURL = serverURL
	cfg.Plex.Token = "test-token"
	cfg.Retry.InitialDelay = time.Millisecond
	cfg.Retry.MaxDelay = 5 * time.Millisecond
	cfg.RateLimit.RequestsPerMinute = 6000
	cfg.RateLimit.BurstSize = 0

	return NewClientWithConfig(cfg, log)
}

func TestNewClient(t *testing.T) {
	log := logger.NewTestLogger()
	client := NewClient("http://plex.local:32400/", "tok", 10*time.Second, log)

	assert.NotNil(t, client)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.downloadClient)
	assert.NotNil(t, client.limiter)
	assert.NotNil(t, client.retrier)
	assert.Equal(t, "http://plex.local:32400", client.baseURL, "trailing slash should be trimmed")
	assert.Equal(t, "tok", client.token)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
}

func TestNewClientWithConfig(t *testing.T) {
	log := logger.NewTestLogger()

	cfg := config.DefaultConfig()
	cfg.Plex.BaseURL = "https://plex.example.com:32400"
	cfg.Plex.Token = "tok"
	cfg.Plex.RequestTimeout = 15 * time.Second
	cfg.Plex.DownloadTimeout = 2 * time.Minute
	cfg.Plex.InsecureSkipVerify = true

	client := NewClientWithConfig(cfg, log)

	assert.Equal(t, 15*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 2*time.Minute, client.downloadClient.Timeout)
	assert.Equal(t, "tok", client.headers[TokenParam])
	assert.Equal(t, "application/xml", client.headers["Accept"])
	assert.NotEmpty(t, client.headers["X-Plex-Client-Identifier"])

	transport, ok := client.httpClient.Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)

	// Each client gets its own identifier
	other := NewClientWithConfig(cfg, log)
	assert.NotEqual(t,
		client.headers["X-Plex-Client-Identifier"],
		other.headers["X-Plex-Client-Identifier"])
}

func TestSections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/sections", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get(TokenParam))
		assert.Equal(t, "test-token", r.Header.Get(TokenParam))
		assert.NotEmpty(t, r.Header.Get("X-Plex-Client-Identifier"))

		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(sectionListingXML))
	}))
	defer server.Close()

	client := newTestClient(server.URL, logger.NewTestLogger())

	container, err := client.Sections()
	require.NoError(t, err)
	require.NotNil(t, container)

	sections := container.PhotoSections()
	require.Len(t, sections, 2)
	assert.Equal(t, "Family Photos", sections[0].Title)
	assert.Equal(t, "Screenshots", sections[1].Title)
}

func TestSectionItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/sections/3/all", r.URL.Path)
		w.Write([]byte(albumListingXML))
	}))
	defer server.Close()

	client := newTestClient(server.URL, logger.NewTestLogger())

	container, err := client.SectionItems("3")
	require.NoError(t, err)
	assert.Len(t, container.PhotoItems(), 2)
	assert.Len(t, container.Directories, 1)
}

func TestChildren(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/metadata/400/children", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("includeChildren"))
		w.Write([]byte(metadataListingXML))
	}))
	defer server.Close()

	client := newTestClient(server.URL, logger.NewTestLogger())

	container, err := client.Children("/library/metadata/400/children")
	require.NoError(t, err)

	photos := container.PhotoItems()
	require.Len(t, photos, 1)
	assert.Equal(t, "Harbor", photos[0].Title)
}

func TestSectionsAuthError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL, logger.NewTestLogger())

	container, err := client.Sections()
	assert.Nil(t, container)
	assert.Error(t, err)
	assert.Equal(t, 1, attempts, "auth errors should not be retried")

	var apiErr *errors.Error
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeAuth, apiErr.Type)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
}

func TestSectionsRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sectionListingXML))
	}))
	defer server.Close()

	client := newTestClient(server.URL, logger.NewTestLogger())

	container, err := client.Sections()
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, container.PhotoSections(), 2)
}

func TestSectionsParseError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Write([]byte("this is not xml"))
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	client := newTestClient(server.URL, log)

	container, err := client.Sections()
	assert.Nil(t, container)
	assert.Error(t, err)
	assert.Equal(t, 1, attempts, "parse errors should not be retried")

	var apiErr *errors.Error
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeParsing, apiErr.Type)
	assert.True(t, log.HasMessage("failed to parse XML response"))
}

func TestCheckResponseStatus(t *testing.T) {
	client := newTestClient("http://plex.local:32400", logger.NewTestLogger())

	tests := []struct {
		name         string
		statusCode   int
		expectedType errors.ErrorType
	}{
		{
			name:       "200 OK",
			statusCode: http.StatusOK,
		},
		{
			name:         "401 Unauthorized",
			statusCode:   http.StatusUnauthorized,
			expectedType: errors.ErrorTypeAuth,
		},
		{
			name:         "404 Not Found",
			statusCode:   http.StatusNotFound,
			expectedType: errors.ErrorTypeNotFound,
		},
		{
			name:         "429 Too Many Requests",
			statusCode:   http.StatusTooManyRequests,
			expectedType: errors.ErrorTypeRateLimit,
		},
		{
			name:         "500 Internal Server Error",
			statusCode:   http.StatusInternalServerError,
			expectedType: errors.ErrorTypeServerError,
		},
		{
			name:         "503 Service Unavailable",
			statusCode:   http.StatusServiceUnavailable,
			expectedType: errors.ErrorTypeServerError,
		},
		{
			name:         "400 Bad Request",
			statusCode:   http.StatusBadRequest,
			expectedType: errors.ErrorTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "http://plex.local:32400/library/sections", nil)
			resp := &http.Response{
				StatusCode: tt.statusCode,
				Request:    req,
			}

			err := client.checkResponseStatus(resp)
			if tt.expectedType == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				var apiErr *errors.Error
				assert.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.expectedType, apiErr.Type)
				assert.Equal(t, tt.statusCode, apiErr.Code)
			}
		})
	}
}

func TestDownload(t *testing.T) {
	expectedData := []byte("fake image data")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/parts/600/file.jpg", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("download"))
		assert.Equal(t, "test-token", r.URL.Query().Get(TokenParam))

		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(expectedData)
	}))
	defer server.Close()

	client := newTestClient(server.URL, logger.NewTestLogger())

	body, size, err := client.Download(client.DownloadURLFor("/library/parts/600/file.jpg"))
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, expectedData, data)
	assert.Equal(t, int64(len(expectedData)), size)
}

func TestDownloadNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, logger.NewTestLogger())

	body, _, err := client.Download(server.URL + "/library/parts/999/file.jpg?download=1")
	assert.Nil(t, body)
	assert.Error(t, err)

	var apiErr *errors.Error
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeNotFound, apiErr.Type)
}

func TestDownloadURLFor(t *testing.T) {
	client := newTestClient("http://plex.local:32400", logger.NewTestLogger())

	result := client.DownloadURLFor("/library/parts/600/file.jpg")
	assert.Equal(t, DownloadURL("http://plex.local:32400", "/library/parts/600/file.jpg", "test-token"), result)
	assert.Contains(t, result, "download=1")
}

func TestRequestLoggingRedactsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sectionListingXML))
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	client := newTestClient(server.URL, log)

	_, err := client.Sections()
	require.NoError(t, err)

	assert.True(t, log.HasMessage("sending HTTP request"))
	for _, msg := range log.GetMessages() {
		if u, ok := msg.Fields["url"].(string); ok {
			assert.NotContains(t, u, "test-token")
		}
	}
}
