package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeBrowser is a lazily started headless Chrome shared by the layout
// measurer and the PDF printer. Each operation runs in its own tab.
type ChromeBrowser struct {
	execPath string

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromeBrowser creates a browser handle. execPath may be empty to let
// chromedp locate Chrome.
func NewChromeBrowser(execPath string) *ChromeBrowser {
	return &ChromeBrowser{execPath: execPath}
}

func (b *ChromeBrowser) start() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil && b.browserCtx.Err() == nil {
		return b.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	// Custom Chrome path (for headless-shell in Docker)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	b.allocCancel = allocCancel
	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	log.Println("[INFO] Headless Chrome started")
	return browserCtx, nil
}

// Run executes actions in a fresh tab holding htmlContent
func (b *ChromeBrowser) Run(ctx context.Context, htmlContent string, actions ...chromedp.Action) error {
	browserCtx, err := b.start()
	if err != nil {
		return err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()

	// Stop the tab when the caller gives up
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	all := append([]chromedp.Action{
		chromedp.EmulateViewport(SheetWidth, SheetHeight),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
	}, actions...)

	return chromedp.Run(tabCtx, all...)
}

// Close stops the browser process
func (b *ChromeBrowser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCancel != nil {
		b.browserCancel()
		b.allocCancel()
		b.browserCtx = nil
		b.browserCancel = nil
		b.allocCancel = nil
	}
}
