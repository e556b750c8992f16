package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "focusplan/internal/log"
)

// maxBodyBytes bounds a single ICS download.
const maxBodyBytes = 10 << 20

// ErrBodyTooLarge is returned for feeds over the download limit. Such a
// body is neither parsed nor cached.
var ErrBodyTooLarge = errors.New("ics body exceeds size limit")

// Source is one ICS subscription.
type Source struct {
	ID  string
	URL string
}

// FetchResult is the body obtained for one source.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool // true when the cached body was reused (304 or fallback)
}

// cacheMeta holds the HTTP validators stored next to a cached body.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads ICS feeds with conditional requests (ETag /
// Last-Modified) and keeps the last good body on disk, so a failing feed
// still yields its previous events.
type Fetcher struct {
	client   *http.Client
	cacheDir string
	maxBytes int64
}

// NewFetcher creates a Fetcher caching under cacheDir. A nil client gets a
// 15 second timeout client.
func NewFetcher(cacheDir string, client *http.Client) *Fetcher {
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "focusplan-ics-cache")
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client, cacheDir: cacheDir, maxBytes: maxBodyBytes}
}

// FetchAll fetches every source. Failures are logged and collected; the
// results only hold sources that produced a body.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	results := make([]FetchResult, 0, len(sources))
	var errs []error

	for _, src := range sources {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res, err := f.FetchOne(ctx, src)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch %s: %w", src.ID, err))
			appLog.Error("ics fetch failed", err, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

// FetchOne fetches a single source.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, errors.New("source URL is empty")
	}

	dir := f.cachePath(src.URL)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return FetchResult{}, err
	}
	meta, _ := loadMeta(dir)
	cached, _ := os.ReadFile(filepath.Join(dir, "body.ics"))

	fallback := func(cause error) (FetchResult, error) {
		if len(cached) == 0 {
			return FetchResult{}, cause
		}
		appLog.Warn("ics fetch failed, using cached body", "err", cause, "id", src.ID)
		return FetchResult{Source: src, Body: cached, FromCache: true}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fallback(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
		if err != nil {
			return fallback(err)
		}
		if int64(len(body)) > f.maxBytes {
			return fallback(fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, f.maxBytes))
		}
		next := cacheMeta{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := saveCache(dir, next, body); err != nil {
			appLog.Error("ics cache save failed", err, "id", src.ID)
		}
		appLog.Debug("ics fetch ok", "id", src.ID, "bytes", len(body))
		return FetchResult{Source: src, Body: body}, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return FetchResult{}, errors.New("304 Not Modified without a cached body")
		}
		appLog.Debug("ics not modified", "id", src.ID)
		return FetchResult{Source: src, Body: cached, FromCache: true}, nil

	default:
		return fallback(errors.New(resp.Status))
	}
}

// cachePath keys the cache directory by a hash of the URL.
func (f *Fetcher) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func loadMeta(dir string) (cacheMeta, error) {
	var meta cacheMeta
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(data, &meta)
	return meta, err
}

func saveCache(dir string, meta cacheMeta, body []byte) error {
	// Body first, so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(dir, "body.ics"), body, 0o600); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o600)
}

// redactURL keeps only scheme and host; subscription URLs often embed
// private tokens.
func redactURL(u string) string {
	const suffix = "/...(redacted)"
	i := strings.Index(u, "://")
	if i < 0 {
		return "ics://...(redacted)"
	}
	rest := u[i+3:]
	if j := strings.IndexAny(rest, "/?#"); j >= 0 {
		rest = rest[:j]
	}
	return u[:i+3] + rest + suffix
}
