package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/models/board.obj", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("v 0 0 0\n"))
	})
	mux.HandleFunc("/tex", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", `attachment; filename="marble skin.png"`)
		_, _ = w.Write([]byte("png"))
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadNamesFile(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	dir := t.TempDir()

	tests := []struct {
		path string
		want string
	}{
		{"/models/board.obj", "board.obj"},
		{"/tex", "marble_skin.png"},
	}
	for _, tt := range tests {
		got, err := Download(context.Background(), srv.URL+tt.path, dir)
		if err != nil {
			t.Fatalf("Download(%s): %v", tt.path, err)
		}
		if filepath.Base(got) != tt.want {
			t.Errorf("Download(%s) saved %s, want %s", tt.path, filepath.Base(got), tt.want)
		}
		if _, err := os.Stat(got); err != nil {
			t.Errorf("saved file missing: %v", err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("dest dir has %d entries, want 2 (no temp leftovers)", len(entries))
	}
}

func TestDownloadHTTPError(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	dir := t.TempDir()
	if _, err := Download(context.Background(), srv.URL+"/missing.png", dir); err == nil {
		t.Fatal("Download of a 404 succeeded")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("failed download left %d files", len(entries))
	}
}

func TestDownloadCanceled(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Download(ctx, srv.URL+"/models/board.obj", t.TempDir()); err == nil {
		t.Fatal("Download with a canceled context succeeded")
	}
}

func TestFetchCachesURL(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	dir := t.TempDir()
	url := srv.URL + "/models/board.obj"

	first, err := Fetch(context.Background(), url, dir)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	second, err := Fetch(context.Background(), url, dir)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if first != second {
		t.Errorf("paths differ: %s vs %s", first, second)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestFetchLocalPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.obj")
	if err := os.WriteFile(path, []byte("v 0 0 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Fetch(context.Background(), path, t.TempDir())
	if err != nil || got != path {
		t.Fatalf("Fetch(local) = %q, %v", got, err)
	}
	if _, err := Fetch(context.Background(), path+".nope", t.TempDir()); err == nil {
		t.Fatal("Fetch of a missing local file succeeded")
	}
}

func TestNameHelpers(t *testing.T) {
	tests := []struct {
		in   string
		ext  string
		name string
	}{
		{"https://example.com/a/ball.PNG?x=1", ".png", "ball"},
		{"https://example.com/a/photo.jpeg#top", ".jpg", "photo"},
		{"https://example.com/a/archive.tar", "", "archive"},
	}
	for _, tt := range tests {
		if got := extensionFromURL(tt.in); got != tt.ext {
			t.Errorf("extensionFromURL(%q) = %q, want %q", tt.in, got, tt.ext)
		}
		if got := filenameFromURL(tt.in); got != tt.name {
			t.Errorf("filenameFromURL(%q) = %q, want %q", tt.in, got, tt.name)
		}
	}
	if got := cachedName("https://example.com/x/my board.obj"); got != "my_board.obj" {
		t.Errorf("cachedName = %q", got)
	}
	if got := sanitizeFilename(""); got != "download" {
		t.Errorf("sanitizeFilename(\"\") = %q", got)
	}
	if !IsURL("https://x") || IsURL("assets/board.obj") {
		t.Error("IsURL misclassified")
	}

	headers := []struct {
		cd, ct, name, ext string
	}{
		{`attachment; filename="Board.OBJ"`, "model/obj", "Board", ".obj"},
		{`attachment; filename*=UTF-8''ball%20skin.webp`, "image/webp; charset=binary", "ball skin", ".webp"},
		{"inline", "application/octet-stream", "", ""},
		{"", "image/jpeg", "", ".jpg"},
	}
	for _, h := range headers {
		if got := filenameFromContentDisposition(h.cd); got != h.name {
			t.Errorf("filenameFromContentDisposition(%q) = %q, want %q", h.cd, got, h.name)
		}
		if got := extensionFromContentType(h.ct); got != h.ext {
			t.Errorf("extensionFromContentType(%q) = %q, want %q", h.ct, got, h.ext)
		}
	}
}

func TestDownloadDeadlineFromContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png"))
	}))
	defer srv.Close()

	old := defaultTimeout
	defaultTimeout = 20 * time.Millisecond
	defer func() { defaultTimeout = old }()

	if _, err := Download(context.Background(), srv.URL+"/slow.png", t.TempDir()); err == nil {
		t.Fatal("download without deadline outlived the default timeout")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := Download(ctx, srv.URL+"/slow.png", t.TempDir())
	if err != nil {
		t.Fatalf("download within the context deadline: %v", err)
	}
	if filepath.Base(got) != "slow.png" {
		t.Fatalf("saved as %q", got)
	}
}
