// Package fetch localizes extraction inputs: local paths pass through,
// http(s) URLs are downloaded, and in-memory readers are spooled to disk.
// Localized copies are temporary files the caller removes on every exit
// path of the invocation that created them.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Client downloads remote inputs with bounded redirects and an optional
// custom user agent.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// PerRequestTimeout bounds each download. Zero means no bound.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following. Zero means default (5).
	RedirectMaxHops int
	// TempDir receives localized copies; empty means the OS default.
	TempDir string
}

// Localize makes src available as a local file. It returns the path and
// whether the file is a temporary copy the caller must remove. suffix
// names the kind of file being localized (".pdf", ".json"); a downloaded
// copy keeps it so extension-sniffing consumers see the right one.
func (c *Client) Localize(ctx context.Context, src, suffix string) (string, bool, error) {
	if isURL(src) {
		p, err := c.download(ctx, src, suffix)
		return p, err == nil, err
	}
	return expandUser(src), false, nil
}

// LocalizeReader spools r into a temporary file and returns its path. The
// caller removes the file.
func (c *Client) LocalizeReader(r io.Reader, suffix string) (string, error) {
	p := filepath.Join(c.tempDir(), uuid.NewString()+normalizeSuffix(suffix))
	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("spool input: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return "", err
	}
	return p, nil
}

func (c *Client) download(ctx context.Context, src, suffix string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return "", fmt.Errorf("unsupported URL scheme: %q", src)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !looksLikePDF(ct) {
		log.Warn().Str("contentType", ct).Str("url", src).Msg("downloaded content does not look like a PDF")
	}

	p := filepath.Join(c.tempDir(), downloadName(resp, suffix))
	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("download body: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return "", err
	}
	return p, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func (c *Client) tempDir() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	return os.TempDir()
}

// downloadName derives a unique local name, keeping the remote base name
// when it already carries the wanted suffix.
func downloadName(resp *http.Response, suffix string) string {
	suffix = normalizeSuffix(suffix)
	base := ""
	if resp.Request != nil && resp.Request.URL != nil {
		base = path.Base(resp.Request.URL.Path)
	}
	if strings.HasSuffix(strings.ToLower(base), suffix) {
		return uuid.NewString() + "-" + base
	}
	return uuid.NewString() + suffix
}

func normalizeSuffix(suffix string) string {
	if suffix == "" {
		return ".pdf"
	}
	return strings.ToLower(suffix)
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && isHTTPScheme(u)
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func looksLikePDF(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "application/pdf") || strings.HasPrefix(ct, "application/octet-stream")
}

func expandUser(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
