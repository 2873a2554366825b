package network

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Resource represents a loaded resource.
type Resource struct {
	URL         string
	Content     []byte
	ContentType string
	Charset     string
	StatusCode  int
	Error       error
}

// IsSuccess returns true if the resource was loaded successfully.
func (r *Resource) IsSuccess() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 400
}

// Err returns the load error, or an error describing an unsuccessful status.
func (r *Resource) Err() error {
	if r.Error != nil {
		return r.Error
	}
	if !r.IsSuccess() {
		return fmt.Errorf("loading %s: status %d", r.URL, r.StatusCode)
	}
	return nil
}

// AsString returns the resource content as a string.
func (r *Resource) AsString() string {
	return string(r.Content)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithBase sets the location relative references are resolved against:
// an http(s) URL, a file:// URL or a local file path.
func WithBase(base string) LoaderOption {
	return func(l *Loader) {
		l.base = base
	}
}

// Loader loads resources from the local filesystem, HTTP or data URLs.
type Loader struct {
	client *Client
	base   string

	mu sync.RWMutex
}

// NewLoader creates a new resource loader. client may be nil when only
// local and data resources are needed.
func NewLoader(client *Client, opts ...LoaderOption) *Loader {
	l := &Loader{client: client}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Base returns the location relative references are resolved against.
func (l *Loader) Base() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.base
}

// SetBase changes the location relative references are resolved against.
func (l *Loader) SetBase(base string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.base = base
}

// Resolve returns the absolute URL or path ref refers to.
func (l *Loader) Resolve(ref string) (string, error) {
	base := l.Base()
	switch {
	case IsDataURL(ref), IsAbsoluteURL(ref):
		return ref, nil
	case IsRemoteURL(base) || strings.HasPrefix(strings.ToLower(base), "file://"):
		return ResolveURL(base, ref)
	case filepath.IsAbs(ref) || base == "":
		return filepath.Clean(filepath.FromSlash(ref)), nil
	default:
		return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref)), nil
	}
}

// Load loads the resource ref refers to.
func (l *Loader) Load(ctx context.Context, ref string) *Resource {
	if IsDataURL(ref) {
		return l.loadDataURL(ref)
	}

	target, err := l.Resolve(ref)
	if err != nil {
		return &Resource{URL: ref, Error: fmt.Errorf("failed to resolve URL: %w", err)}
	}

	switch {
	case IsRemoteURL(target):
		return l.loadFromHTTP(ctx, target)
	case strings.HasPrefix(strings.ToLower(target), "file://"):
		u, err := url.Parse(target)
		if err != nil {
			return &Resource{URL: target, Error: err}
		}
		return l.loadFromLocal(target, filepath.FromSlash(u.Path))
	case IsAbsoluteURL(target):
		return &Resource{URL: target, Error: fmt.Errorf("unsupported URL scheme: %s", target)}
	default:
		return l.loadFromLocal(target, target)
	}
}

// loadDataURL loads content from a data URL.
func (l *Loader) loadDataURL(urlStr string) *Resource {
	dataURL, err := ParseDataURL(urlStr)
	if err != nil {
		return &Resource{URL: urlStr, Error: err}
	}
	return &Resource{
		URL:         urlStr,
		Content:     dataURL.Data,
		ContentType: dataURL.MediaType,
		Charset:     dataURL.Charset,
		StatusCode:  200,
	}
}

// loadFromLocal reads a resource from the local filesystem.
func (l *Loader) loadFromLocal(urlStr, path string) *Resource {
	content, err := os.ReadFile(path)
	if err != nil {
		return &Resource{URL: urlStr, Error: err}
	}
	return &Resource{
		URL:         urlStr,
		Content:     content,
		ContentType: GuessContentType(path),
		StatusCode:  200,
	}
}

// loadFromHTTP loads a resource via HTTP.
func (l *Loader) loadFromHTTP(ctx context.Context, urlStr string) *Resource {
	if l.client == nil {
		return &Resource{URL: urlStr, Error: fmt.Errorf("no HTTP client configured for %s", urlStr)}
	}
	resp, err := l.client.Get(ctx, urlStr)
	if err != nil {
		return &Resource{URL: urlStr, Error: err}
	}

	mediaType, charset := ParseContentType(resp.ContentType)
	return &Resource{
		URL:         urlStr,
		Content:     resp.Body,
		ContentType: mediaType,
		Charset:     charset,
		StatusCode:  resp.StatusCode,
	}
}

// LoadString loads ref and returns its content, failing on unsuccessful statuses.
func (l *Loader) LoadString(ctx context.Context, ref string) (string, error) {
	res := l.Load(ctx, ref)
	if err := res.Err(); err != nil {
		return "", err
	}
	return res.AsString(), nil
}
