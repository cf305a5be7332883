// Package renderer implements the page renderer on headless Chrome via
// chromedp.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-video-scraper/internal/scraper"
)

// Config controls browser behavior for every renderer the factory hands out.
type Config struct {
	UserAgent string
	// NavTimeout bounds each navigation.
	NavTimeout time.Duration
	// WaitTimeout bounds the wait for the requested selector. Expiry maps to
	// scraper.ErrRenderTimeout.
	WaitTimeout time.Duration
}

const (
	defaultNavTimeout  = 30 * time.Second
	defaultWaitTimeout = 10 * time.Second
)

// Factory creates independent Chrome instances. Each acquisition owns its own
// allocator and browser, so concurrent tasks never share a session.
type Factory struct {
	cfg    Config
	logger *zap.Logger
}

// NewFactory creates a Factory using the provided configuration.
func NewFactory(cfg Config, logger *zap.Logger) *Factory {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = defaultNavTimeout
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = defaultWaitTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{cfg: cfg, logger: logger}
}

// NewRenderer starts a fresh headless browser. The caller owns the returned
// renderer and must Close it on every exit path.
func (f *Factory) NewRenderer(ctx context.Context) (scraper.Renderer, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if f.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}
	return &chromeRenderer{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		cfg:           f.cfg,
		logger:        f.logger,
	}, nil
}

type chromeRenderer struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	cfg           Config
	logger        *zap.Logger
}

// Render navigates to the requested URL and returns the DOM snapshot once the
// wait selector is present. When a cookie is requested it is installed after
// a priming navigation and before the real one, so content that branches on
// the cookie renders the right variant.
func (r *chromeRenderer) Render(ctx context.Context, req scraper.RenderRequest) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()
	stopForward := forwardCancel(ctx, cancelTab)
	defer stopForward()

	if err := r.navigate(tabCtx, req); err != nil {
		return "", err
	}

	waitCtx, cancelWait := context.WithTimeout(tabCtx, r.cfg.WaitTimeout)
	defer cancelWait()
	var html string
	err := chromedp.Run(waitCtx,
		chromedp.WaitReady(req.WaitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("wait for %q on %s: %w", req.WaitSelector, req.URL, scraper.ErrRenderTimeout)
		}
		return "", fmt.Errorf("chromedp wait: %w", err)
	}
	return html, nil
}

func (r *chromeRenderer) navigate(tabCtx context.Context, req scraper.RenderRequest) error {
	navCtx, cancelNav := context.WithTimeout(tabCtx, r.cfg.NavTimeout)
	defer cancelNav()

	tasks := chromedp.Tasks{network.Enable()}
	if req.Cookie != nil {
		tasks = append(tasks,
			chromedp.Navigate(req.URL),
			chromedp.ActionFunc(func(ctx context.Context) error {
				err := network.SetCookie(req.Cookie.Name, req.Cookie.Value).
					WithURL(req.URL).
					Do(ctx)
				if err != nil {
					return fmt.Errorf("set cookie %q: %w", req.Cookie.Name, err)
				}
				return nil
			}),
		)
	}
	tasks = append(tasks, chromedp.Navigate(req.URL))
	if err := chromedp.Run(navCtx, tasks); err != nil {
		return fmt.Errorf("chromedp navigate %s: %w", req.URL, err)
	}
	return nil
}

// Close tears down the browser and its allocator.
func (r *chromeRenderer) Close(context.Context) error {
	r.browserCancel()
	r.allocCancel()
	return nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
