package download

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const defaultUserAgent = "marble-maze/1.0 (+asset fetch)"

// defaultTimeout bounds a transfer whose context carries no deadline.
var defaultTimeout = 60 * time.Second

// knownExts are the asset extensions kept when naming a saved file.
var knownExts = map[string]bool{
	".obj": true, ".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true,
	".ttf": true, ".otf": true,
}

// IsURL reports whether ref is an http(s) URL rather than a local path.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Fetch resolves an asset reference to a local file. A local path is returned as is after a
// stat check. A URL is looked up in cacheDir under its derived name and downloaded there on a miss.
func Fetch(ctx context.Context, ref, cacheDir string) (string, error) {
	if !IsURL(ref) {
		if _, err := os.Stat(ref); err != nil {
			return "", fmt.Errorf("download: %w", err)
		}
		return ref, nil
	}
	if name := cachedName(ref); name != "" {
		cached := filepath.Join(cacheDir, name)
		if st, err := os.Stat(cached); err == nil && st.Size() > 0 {
			return cached, nil
		}
	}
	return Download(ctx, ref, cacheDir)
}

// Download fetches url and saves it under destDir. Filename is derived from the URL path
// or Content-Disposition; extension from Content-Type or the URL. Returns the path to the saved
// file. destDir is created if needed. The body is written to a temp file first so a failed
// transfer never leaves a truncated asset behind. The context deadline, if any, is the only time
// limit; without one the transfer gets defaultTimeout.
func Download(ctx context.Context, url string, destDir string) (savedPath string, err error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: %s: HTTP %d", url, resp.StatusCode)
	}
	ext := extensionFromContentType(resp.Header.Get("Content-Type"))
	if ext == "" {
		ext = extensionFromURL(url)
	}
	if ext == "" {
		ext = ".bin"
	}
	name := filenameFromContentDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = filenameFromURL(url)
	}
	name = sanitizeFilename(name)
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name = name + ext
	}
	savedPath = filepath.Join(destDir, name)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	tmp, err := os.CreateTemp(destDir, name+".part-*")
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	if err := os.Rename(tmp.Name(), savedPath); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	return savedPath, nil
}

// cachedName is the file name Download would pick from the URL alone, or "" if the URL carries
// no known extension (the name then depends on response headers).
func cachedName(url string) string {
	ext := extensionFromURL(url)
	if ext == "" {
		return ""
	}
	return sanitizeFilename(filenameFromURL(url)) + ext
}

// contentTypes maps media types to the extension an asset is saved under.
var contentTypes = map[string]string{
	"model/obj":  ".obj",
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
	"font/ttf":   ".ttf",
	"font/otf":   ".otf",
}

// assetExt normalizes ext to a known asset extension, or "".
func assetExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if knownExts[ext] {
		return ext
	}
	return ""
}

func extensionFromContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return contentTypes[mt]
}

// filenameFromContentDisposition returns the suggested name without a known extension.
// RFC 2231 names (filename*=) are decoded by mime.
func filenameFromContentDisposition(cd string) string {
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	name := path.Base(params["filename"])
	if name == "." || name == "/" {
		return ""
	}
	if assetExt(path.Ext(name)) != "" {
		name = strings.TrimSuffix(name, path.Ext(name))
	}
	return name
}

// urlPath returns the path of raw without query or fragment.
func urlPath(raw string) string {
	if u, err := neturl.Parse(raw); err == nil {
		return u.Path
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

func extensionFromURL(url string) string {
	return assetExt(path.Ext(urlPath(url)))
}

func filenameFromURL(url string) string {
	base := path.Base(urlPath(url))
	return strings.TrimSuffix(base, path.Ext(base))
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// sanitizeFilename keeps names portable and bounded; empty names become "download".
func sanitizeFilename(name string) string {
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	name = unsafeChars.ReplaceAllString(name, "_")
	if len(name) > 96 {
		name = name[:96]
	}
	return name
}
