package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

// Renderer rasterizes documents through headless Chrome. Each call spins up
// its own browser context; the exec allocator options are shared.
type Renderer struct {
	// Timeout bounds a single rasterization, distinct from ordinary HTTP
	// timeouts since a render takes seconds.
	Timeout time.Duration

	// ExecPath optionally pins the browser binary.
	ExecPath string
}

const defaultRenderTimeout = 30 * time.Second

func (r *Renderer) Rasterize(ctx context.Context, document string, width int, height int) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.WindowSize(width, height),
		chromedp.Flag("hide-scrollbars", true),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(document))

	var capture []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURL),
		chromedp.FullScreenshot(&capture, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("rasterize document: %w", err)
	}
	return capture, nil
}

var _ ports.Renderer = (*Renderer)(nil)
