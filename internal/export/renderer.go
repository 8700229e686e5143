package export

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Letter paper with 0.75in margins, in inches.
const (
	paperWidth  = 8.5
	paperHeight = 11.0
	pageMargin  = 0.75
)

// PDFRenderer converts a complete HTML document to PDF bytes.
type PDFRenderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromedpRenderer prints pages with a headless Chrome.
type ChromedpRenderer struct {
	ChromePath string
	Timeout    time.Duration
}

// NewChromedpRenderer returns a renderer. An empty chromePath lets chromedp
// find the browser; CHROME_PATH overrides both.
func NewChromedpRenderer(chromePath string, timeout time.Duration) *ChromedpRenderer {
	if p := os.Getenv("CHROME_PATH"); p != "" {
		chromePath = p
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChromedpRenderer{ChromePath: chromePath, Timeout: timeout}
}

// RenderHTMLToPDF loads html from a temporary file and prints it.
func (r *ChromedpRenderer) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, r.Timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "resumebuilder-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return nil, err
	}

	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(htmlPath)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(pageMargin).
				WithMarginBottom(pageMargin).
				WithMarginLeft(pageMargin).
				WithMarginRight(pageMargin).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}
