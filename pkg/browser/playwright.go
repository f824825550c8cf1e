package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/darkaengl/aura-sub000/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

// Default values for the embedded browser.
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// LaunchOptions configures the embedded browser.
type LaunchOptions struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// Viewport sets the initial viewport size; zero values use defaults.
	ViewportWidth  int
	ViewportHeight int

	// Timeout sets the default timeout for page operations (milliseconds).
	Timeout float64

	// Logger receives lifecycle and script diagnostics.
	Logger *logging.Logger
}

// PlaywrightSandbox is the production Sandbox backed by a Playwright
// Chromium page. One sandbox owns one browser, one context, and one page for
// the lifetime of the shell.
type PlaywrightSandbox struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
	logger  *logging.Logger
	started time.Time
}

// Launch installs (if needed) and starts Playwright, launches Chromium, and
// opens the page the sandbox operates on.
func Launch(opts LaunchOptions) (*PlaywrightSandbox, error) {
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = DefaultViewportWidth
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = DefaultViewportHeight
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	s := &PlaywrightSandbox{
		pw:      pw,
		browser: browser,
		bctx:    bctx,
		page:    page,
		logger:  opts.Logger,
		started: time.Now(),
	}
	if s.logger != nil {
		s.logger.Infof("browser sandbox launched (headless=%v)", opts.Headless)
	}
	return s, nil
}

// Run executes JavaScript in the page and returns the result as JSON.
func (s *PlaywrightSandbox) Run(ctx context.Context, scriptSource string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := s.page.Evaluate(scriptSource)
	if err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("script result is not JSON-serializable: %w", err)
	}
	return raw, nil
}

// Navigate loads url in the page, waiting for DOM content.
func (s *PlaywrightSandbox) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	waitUntil := playwright.WaitUntilState("domcontentloaded")
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{WaitUntil: &waitUntil}); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if s.logger != nil {
		s.logger.Debugf("navigated to %s", url)
	}
	return nil
}

// CurrentURL returns the URL of the current page.
func (s *PlaywrightSandbox) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page.URL()
}

// PageHTML returns the full serialized HTML of the current page, for
// readable-content extraction.
func (s *PlaywrightSandbox) PageHTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return content, nil
}

// Close shuts the page, context, browser, and Playwright down. Safe to call
// once; later sandbox calls will fail.
func (s *PlaywrightSandbox) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Best-effort teardown in reverse order of construction.
	_ = s.page.Close()
	_ = s.bctx.Close()
	_ = s.browser.Close()
	if err := s.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	if s.logger != nil {
		s.logger.Infof("browser sandbox closed after %s", time.Since(s.started).Round(time.Second))
	}
	return nil
}
