package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/goleak"
)

type launchRecord struct {
	mu   sync.Mutex
	pids []int
	dirs []string
}

func (l *launchRecord) observe(pid int, dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pids = append(l.pids, pid)
	l.dirs = append(l.dirs, dir)
}

// newTestRenderer skips when no local browser exists, so CI without Chrome stays green.
func newTestRenderer(t *testing.T) (*Renderer, *launchRecord) {
	t.Helper()

	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no chromium-based browser found")
	}

	record := &launchRecord{}
	r := NewRenderer(Options{Bin: bin, Headless: true, UserAgent: "ArticleEnhancerTest/1.0"}, nil)
	r.launched = record.observe
	return r, record
}

// assertReleased checks that every launched browser process has exited and its profile is gone.
func assertReleased(t *testing.T, r *Renderer, record *launchRecord) {
	t.Helper()

	if n := r.live.Load(); n != 0 {
		t.Fatalf("expected no live sessions, got %d", n)
	}

	record.mu.Lock()
	defer record.mu.Unlock()
	if len(record.pids) == 0 {
		t.Fatalf("expected a browser to be launched")
	}
	for i, pid := range record.pids {
		if !processGone(pid, 5*time.Second) {
			t.Fatalf("browser process %d still running", pid)
		}
		if dir := record.dirs[i]; dir != "" {
			if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
				t.Fatalf("profile dir %s not removed: %v", dir, err)
			}
		}
	}
}

func processGone(pid int, within time.Duration) bool {
	deadline := time.Now().Add(within)
	for {
		if !processRunning(pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// processRunning treats zombies as exited; an unreaped orphan holds no browser resources.
func processRunning(pid int) bool {
	if raw, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid)); err == nil {
		if i := bytes.LastIndexByte(raw, ')'); i >= 0 && i+2 < len(raw) {
			return raw[i+2] != 'Z'
		}
		return true
	}
	p, err := os.FindProcess(pid)
	return err == nil && p.Signal(syscall.Signal(0)) == nil
}

func TestRenderReturnsDOMAndReleasesBrowser(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r, record := newTestRenderer(t)

	var (
		uaMu  sync.Mutex
		gotUA string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/" {
			uaMu.Lock()
			gotUA = req.Header.Get("User-Agent")
			uaMu.Unlock()
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><article><p>Rendered live chat guide</p></article>` +
			`<script>document.body.insertAdjacentHTML("beforeend", "<p id=js>added by script</p>")</script></body></html>`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	html, err := r.Render(ctx, server.URL)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(html, "Rendered live chat guide") || !strings.Contains(html, "added by script") {
		t.Fatalf("unexpected html: %s", html)
	}
	uaMu.Lock()
	defer uaMu.Unlock()
	if gotUA != "ArticleEnhancerTest/1.0" {
		t.Fatalf("expected custom user agent, got %q", gotUA)
	}

	assertReleased(t, r, record)
}

func TestRenderNavigationErrorReleasesBrowser(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r, record := newTestRenderer(t)

	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {}))
	refusedURL := closed.URL
	closed.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := r.Render(ctx, refusedURL); err == nil {
		t.Fatalf("expected navigation error for %s", refusedURL)
	}

	assertReleased(t, r, record)
}

func TestRenderDeadlineReleasesBrowser(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r, record := newTestRenderer(t)

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/poll" {
			select {
			case <-req.Context().Done():
			case <-release:
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><p>Never idle</p><script>fetch("/poll")</script></body></html>`))
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	if _, err := r.Render(ctx, server.URL); err == nil {
		t.Fatalf("expected deadline error for a page that never goes idle")
	}
	if ctx.Err() == nil {
		t.Fatalf("expected the context deadline to be reached")
	}

	assertReleased(t, r, record)
}
