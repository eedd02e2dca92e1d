package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

// Sentinel errors for attachment handling.
var (
	// ErrDownload indicates the attachment could not be fetched.
	ErrDownload = errors.New("relay: attachment download failed")

	// ErrUnsupportedFile indicates a file attachment that is not
	// text-coded and cannot be read as content.
	ErrUnsupportedFile = errors.New("relay: unsupported file type")
)

const (
	maxImageBytes = 10 << 20 // vision payload cap
	maxFileBytes  = 512 << 10
)

// textExtensions are file extensions read as plain-text content.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".json": true, ".xml": true,
	".yaml": true, ".yml": true, ".log": true, ".html": true,
	".go": true, ".py": true, ".js": true, ".ts": true, ".java": true,
	".c": true, ".cpp": true, ".h": true, ".rb": true, ".rs": true,
	".sh": true, ".sql": true,
}

// Downloader fetches attachment payloads referenced by inbound events.
type Downloader interface {
	// FetchImage downloads an image and reports its media type.
	FetchImage(ctx context.Context, url string) (data []byte, mimeType string, err error)

	// FetchTextFile downloads a file and returns its content as text.
	// Returns ErrUnsupportedFile when the name/media type is not
	// text-coded; the download is skipped entirely in that case.
	FetchTextFile(ctx context.Context, url, fileName, mimeType string) (string, error)
}

// HTTPDownloader fetches attachments over plain HTTP GET.
type HTTPDownloader struct {
	http *http.Client
}

// NewHTTPDownloader creates a downloader with a bounded request timeout.
func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Compile-time interface check.
var _ Downloader = (*HTTPDownloader)(nil)

// FetchImage downloads an image attachment.
func (d *HTTPDownloader) FetchImage(ctx context.Context, url string) ([]byte, string, error) {
	data, contentType, err := d.get(ctx, url, maxImageBytes)
	if err != nil {
		return nil, "", err
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}

// FetchTextFile downloads a text-coded file attachment as content.
func (d *HTTPDownloader) FetchTextFile(ctx context.Context, url, fileName, mimeType string) (string, error) {
	if !IsTextFile(fileName, mimeType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, fileName)
	}
	data, _, err := d.get(ctx, url, maxFileBytes)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (d *HTTPDownloader) get(ctx context.Context, url string, maxBytes int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return data, strings.TrimSpace(contentType), nil
}

// IsTextFile reports whether a file attachment can be read as text
// content, judged by declared media type first, then file extension.
func IsTextFile(fileName, mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if strings.HasPrefix(mt, "text/") || mt == "application/json" || mt == "application/xml" {
		return true
	}
	if mt != "" && !strings.HasPrefix(mt, "application/octet-stream") {
		// A concrete non-text media type wins over the extension.
		return false
	}
	return textExtensions[strings.ToLower(path.Ext(fileName))]
}
