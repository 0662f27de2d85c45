package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures a Chrome renderer.
type ChromeOptions struct {
	// DeckURL is the page the controller serves, e.g. http://127.0.0.1:8080/.
	DeckURL string
	// RemoteURL attaches to a running browser; empty launches one.
	RemoteURL   string
	Headless    bool
	BrowserPath string
	Width       int
	Height      int
	// Settle is how long to wait after load for fonts and images.
	Settle  time.Duration
	Timeout time.Duration
}

// Chrome renders the deck's print view with chromedp.
type Chrome struct {
	opts ChromeOptions
}

func NewChrome(opts ChromeOptions) *Chrome {
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return &Chrome{opts: opts}
}

// PrintURL returns the print view of deckURL, limited to one slide when
// slide > 0.
func PrintURL(deckURL string, slide int) (string, error) {
	u, err := url.Parse(deckURL)
	if err != nil {
		return "", fmt.Errorf("export: parse deck url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("export: deck url %q is not absolute", deckURL)
	}
	q := u.Query()
	q.Set("mode", "print")
	if slide > 0 {
		q.Set("slide", strconv.Itoa(slide))
	} else {
		q.Del("slide")
	}
	u.RawQuery = q.Encode()
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// allocator returns a browser context: attached to RemoteURL when set,
// otherwise a freshly launched browser.
func (c *Chrome) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, c.opts.RemoteURL)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.opts.Headless),
		chromedp.WindowSize(c.opts.Width, c.opts.Height),
	)
	if c.opts.BrowserPath != "" {
		opts = append(opts, chromedp.ExecPath(c.opts.BrowserPath))
	}
	return chromedp.NewExecAllocator(ctx, opts...)
}

// session runs fn in a new tab of a browser that lives as long as the call.
func (c *Chrome) session(ctx context.Context, fn func(tabCtx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	allocCtx, allocCancel := c.allocator(ctx)
	defer allocCancel()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	if err := chromedp.Run(tabCtx, emulation.SetDeviceMetricsOverride(int64(c.opts.Width), int64(c.opts.Height), 1, false)); err != nil {
		return fmt.Errorf("export: open tab: %w", err)
	}
	return fn(tabCtx)
}

func (c *Chrome) load(tabCtx context.Context, target, ready string) error {
	return chromedp.Run(tabCtx,
		chromedp.Navigate(target),
		chromedp.WaitVisible(ready, chromedp.ByQuery),
		chromedp.Sleep(c.opts.Settle),
	)
}

// PDF prints every slide, one landscape page each.
func (c *Chrome) PDF(ctx context.Context) ([]byte, error) {
	target, err := PrintURL(c.opts.DeckURL, 0)
	if err != nil {
		return nil, err
	}
	var buf []byte
	err = c.session(ctx, func(tabCtx context.Context) error {
		if err := c.load(tabCtx, target, ".slide[data-slide]"); err != nil {
			return fmt.Errorf("export: load %s: %w", target, err)
		}
		return chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			out, _, err := page.PrintToPDF().
				WithLandscape(true).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("export: print to pdf: %w", err)
			}
			buf = out
			return nil
		}))
	})
	if err != nil {
		return nil, err
	}
	slog.Info("export pdf rendered", "url", target, "size_bytes", len(buf))
	return buf, nil
}

// SlidePNGs captures each listed slide in one browser session and hands
// the images to each in order.
func (c *Chrome) SlidePNGs(ctx context.Context, slides []int, each func(slide int, png []byte) error) error {
	return c.session(ctx, func(tabCtx context.Context) error {
		for _, n := range slides {
			target, err := PrintURL(c.opts.DeckURL, n)
			if err != nil {
				return err
			}
			sel := `.slide[data-slide="` + strconv.Itoa(n) + `"]`
			if err := c.load(tabCtx, target, sel); err != nil {
				return fmt.Errorf("export: load slide %d: %w", n, err)
			}
			var buf []byte
			if err := chromedp.Run(tabCtx, chromedp.Screenshot(sel, &buf, chromedp.ByQuery)); err != nil {
				return fmt.Errorf("export: screenshot slide %d: %w", n, err)
			}
			slog.Debug("export slide captured", "slide", n, "size_bytes", len(buf))
			if err := each(n, buf); err != nil {
				return err
			}
		}
		return nil
	})
}
