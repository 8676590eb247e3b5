package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"ArticleEnhancer/internal/ports"
)

const networkIdleWindow = 500 * time.Millisecond

// Renderer opens a fresh headless browser for every Render call and tears it down before returning.
// No browser process outlives the call that launched it.
type Renderer struct {
	bin       string
	headless  bool
	userAgent string
	logger    *slog.Logger

	// live counts sessions that are open; launched observes each browser process.
	live     atomic.Int32
	launched func(pid int, profileDir string)
}

var _ ports.PageRenderer = (*Renderer)(nil)

// Options configure how sessions are launched.
type Options struct {
	Bin       string
	Headless  bool
	UserAgent string
}

// NewRenderer builds a renderer; an empty Bin lets rod locate or download a browser.
func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	return &Renderer{
		bin:       opts.Bin,
		headless:  opts.Headless,
		userAgent: opts.UserAgent,
		logger:    logger,
	}
}

// Render navigates to pageURL, waits for the network to go quiet and returns the DOM as HTML.
// The deadline comes from ctx.
func (r *Renderer) Render(ctx context.Context, pageURL string) (string, error) {
	session, err := r.open(ctx)
	if err != nil {
		return "", err
	}
	defer session.close()

	page, err := session.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if r.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.userAgent}); err != nil {
			return "", fmt.Errorf("set user agent: %w", err)
		}
	}

	waitIdle := page.WaitRequestIdle(networkIdleWindow, nil, nil, nil)
	if err := page.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	waitIdle()

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("wait for network idle: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read dom: %w", err)
	}
	return html, nil
}

type session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	logger   *slog.Logger
	done     func()
}

func (r *Renderer) open(ctx context.Context) (*session, error) {
	l := launcher.New().Context(ctx).Headless(r.headless)
	if r.bin != "" {
		l = l.Bin(r.bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	r.live.Add(1)
	if r.launched != nil {
		r.launched(l.PID(), l.Get(flags.UserDataDir))
	}
	return &session{launcher: l, browser: b, logger: r.logger, done: func() { r.live.Add(-1) }}, nil
}

// close releases the browser connection, the process and its profile directory.
func (s *session) close() {
	if err := s.browser.Close(); err != nil && s.logger != nil {
		s.logger.Debug("close browser", "error", err)
	}
	s.launcher.Kill()
	s.launcher.Cleanup()
	if s.done != nil {
		s.done()
	}
}
