package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// DefaultRenderTimeout bounds a single headless render.
const DefaultRenderTimeout = 45 * time.Second

// Renderer renders a URL into HTML. Connectors fall back to it when
// a plain HTTP body yields no listings.
type Renderer interface {
	Render(ctx context.Context, url string, cfg RequestConfig) (string, error)
}

// BrowserRenderer renders pages in headless Chrome via chromedp.
// Requires Chrome/Chromium to be installed on the system.
type BrowserRenderer struct {
	Timeout time.Duration
	// Settle is how long to wait after the body is ready for scripts to populate listings.
	Settle time.Duration
}

// NewBrowserRenderer returns a renderer with default timings.
func NewBrowserRenderer() *BrowserRenderer {
	return &BrowserRenderer{Timeout: DefaultRenderTimeout, Settle: 3 * time.Second}
}

// Render navigates to url with cfg's user agent and returns the rendered HTML.
func (b *BrowserRenderer) Render(ctx context.Context, url string, cfg RequestConfig) (string, error) {
	log := zap.L().With(zap.String("url", url))
	log.Debug("starting headless render")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.Settle),
		// Consent banners hide results; don't fail if there is none
		chromedp.ActionFunc(func(ctx context.Context) error {
			_ = chromedp.Click(`button[aria-label*="Accept"], form[action*="consent"] button`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &TransientNetworkError{URL: url, Cause: fmt.Errorf("browser rendering failed: %w", err)}
	}

	log.Debug("rendered page", zap.Int("bytes", len(html)))
	return html, nil
}
