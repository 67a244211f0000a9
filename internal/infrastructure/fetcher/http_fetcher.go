package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bnrubin/discord-logbot/internal/domain"
	"github.com/bnrubin/discord-logbot/internal/ports"
)

const maxExtLen = 8

// HTTPFetcher downloads images over HTTP(S) into a local directory.
type HTTPFetcher struct {
	dir        string
	timeout    time.Duration
	maxBytes   int64
	httpClient *http.Client
}

// NewHTTPFetcher builds a fetcher writing into dir. maxBytes <= 0 disables the size cap.
func NewHTTPFetcher(dir string, timeout time.Duration, maxBytes int64) *HTTPFetcher {
	if timeout <= 0 {
		timeout = domain.DefaultImageTimeout
	}
	return &HTTPFetcher{
		dir:        dir,
		timeout:    timeout,
		maxBytes:   maxBytes,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Dir returns the storage directory.
func (f *HTTPFetcher) Dir() string {
	return f.dir
}

// Fetch implements ports.ImageFetcher. It returns "<uuid><ext>", never a full path.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", &domain.FetchError{Kind: domain.FetchNetwork, Err: errors.New("empty image url")}
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", &domain.FetchError{Kind: domain.FetchNetwork, URL: rawURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", &domain.FetchError{Kind: domain.FetchNetwork, URL: rawURL, Err: err}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", classify(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.FetchError{Kind: domain.FetchBadStatus, URL: rawURL, StatusCode: resp.StatusCode}
	}
	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return "", &domain.FetchError{Kind: domain.FetchBadStatus, URL: rawURL,
			Err: fmt.Errorf("content length %d exceeds limit %d", resp.ContentLength, f.maxBytes)}
	}

	filename := uuid.NewString() + extension(parsed.Path)
	if err := f.write(filename, resp.Body); err != nil {
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			fetchErr.URL = rawURL
			return "", fetchErr
		}
		return "", classify(rawURL, err)
	}
	return filename, nil
}

// Discard removes a previously fetched file. Missing files are not an error.
func (f *HTTPFetcher) Discard(filename string) error {
	if filename == "" {
		return nil
	}
	err := os.Remove(filepath.Join(f.dir, filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// write streams body into a temp file and renames it into place, so readers never
// observe a partially written image.
func (f *HTTPFetcher) write(filename string, body io.Reader) error {
	if err := os.MkdirAll(f.dir, domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create image directory: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, ".fetch-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	reader := body
	if f.maxBytes > 0 {
		reader = io.LimitReader(body, f.maxBytes+1)
	}
	n, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if f.maxBytes > 0 && n > f.maxBytes {
		return &domain.FetchError{Kind: domain.FetchBadStatus, Err: fmt.Errorf("body exceeds limit %d", f.maxBytes)}
	}
	if err := os.Chmod(tmpName, domain.ImageFilePermissions); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(f.dir, filename))
}

func classify(rawURL string, err error) *domain.FetchError {
	kind := domain.FetchNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = domain.FetchTimeout
	}
	return &domain.FetchError{Kind: kind, URL: rawURL, Err: err}
}

// extension keeps the URL path's suffix when it looks like a file extension.
func extension(urlPath string) string {
	ext := strings.ToLower(path.Ext(urlPath))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

var _ ports.ImageFetcher = (*HTTPFetcher)(nil)
var _ ports.ImageDiscarder = (*HTTPFetcher)(nil)
