package pdf

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
)

// ChromedpConfig contains configuration for the chromedp converter
type ChromedpConfig struct {
	// DefaultTimeout for conversion operations
	DefaultTimeout time.Duration
	// RemoteURL is the URL of a remote Chrome/Chromium instance (optional)
	// If empty, chromedp will launch a new browser instance
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Scale for rendering (default: 1.0)
	Scale float64
	// Logger for debug output
	Logger *zap.Logger
}

// ChromedpConverter converts HTML to PDF using Chrome DevTools Protocol.
// Relative asset references are resolved by materialising the HTML next
// to its assets and navigating to it, so <img>, <link> and CSS url()
// references behave exactly as they would in a browser.
type ChromedpConverter struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpConverter creates a new chromedp-based PDF converter
func NewChromedpConverter(config *ChromedpConfig) (*ChromedpConverter, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	if config.Scale == 0 {
		config.Scale = defaultScale
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &ChromedpConverter{
		config: config,
		logger: logger,
	}
	c.initAllocator()
	return c, nil
}

func (c *ChromedpConverter) initAllocator() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		// Templates reference sibling CSS and logo files via file:// URIs
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.Flag("font-render-hinting", "none"),
	)

	if c.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	if c.config.RemoteURL != "" {
		c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), c.config.RemoteURL)
	} else {
		c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
}

// Convert renders HTML content to PDF bytes. When baseURL names a
// file:// directory, the HTML is written to a temporary file inside it
// and Chrome navigates there so sibling assets resolve.
func (c *ChromedpConverter) Convert(ctx context.Context, html string, baseURL string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, NewConversionError(KindRender, "HTML content is empty", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.DefaultTimeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(c.allocCtx)
	defer browserCancel()

	var loadAction chromedp.Action
	var cleanup func()

	if baseURL != "" {
		fileURL, remove, err := c.materialise(html, baseURL)
		if err != nil {
			return nil, err
		}
		cleanup = remove
		loadAction = chromedp.Navigate(fileURL)
	} else {
		loadAction = chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		})
	}
	if cleanup != nil {
		defer cleanup()
	}

	var pdfData []byte
	err := chromedp.Run(browserCtx,
		loadAction,
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithScale(c.config.Scale).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, NewConversionError(KindRender, "PDF conversion timed out", err)
		}
		kind := KindRender
		if isFetchFailure(err) {
			kind = KindURLFetch
		}
		c.logger.Error("chromedp conversion failed", zap.Error(err), zap.String("kind", string(kind)))
		return nil, NewConversionError(kind, "chromedp execution failed", err)
	}

	if len(pdfData) == 0 {
		return nil, NewConversionError(KindRender, "generated PDF is empty", nil)
	}

	c.logger.Debug("PDF converted", zap.Int("bytes", len(pdfData)))
	return pdfData, nil
}

// materialise writes the HTML into the base-URL directory and returns
// the file:// URL to navigate to plus a cleanup func.
func (c *ChromedpConverter) materialise(html, baseURL string) (string, func(), error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme != "file" {
		return "", nil, NewConversionError(KindURLFetch, "base URL must be a file:// directory URI", err)
	}

	dir := filepath.FromSlash(u.Path)
	f, err := os.CreateTemp(dir, ".render-*.html")
	if err != nil {
		return "", nil, NewConversionError(KindURLFetch, "cannot write into base URL directory", err)
	}
	name := f.Name()
	if _, err := f.WriteString(html); err != nil {
		f.Close()
		os.Remove(name)
		return "", nil, NewConversionError(KindURLFetch, "cannot write into base URL directory", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", nil, NewConversionError(KindURLFetch, "cannot write into base URL directory", err)
	}

	fileURL := url.URL{Scheme: "file", Path: filepath.ToSlash(name)}
	return fileURL.String(), func() { os.Remove(name) }, nil
}

// Close releases resources held by the converter
func (c *ChromedpConverter) Close() error {
	if c.allocCancel != nil {
		c.allocCancel()
	}
	return nil
}

func isFetchFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "net::ERR") || strings.Contains(msg, "ERR_FILE_NOT_FOUND")
}

// Ensure ChromedpConverter implements Converter
var _ Converter = (*ChromedpConverter)(nil)
