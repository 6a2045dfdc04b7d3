package chromedp_browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/user/pdfscraper-service/internal/repository"
	"github.com/user/pdfscraper-service/pkg/proxy"
)

// ChromedpBrowser starts one headless Chrome process per session, so no
// cookies, cache or tabs are ever shared between concurrent site scrapes.
type ChromedpBrowser struct {
	proxies      *proxy.Manager
	extraHeaders map[string]string
	execPath     string

	// start runs the first actions of a session. Its ctx allocates the
	// browser process and must stay alive for the whole session.
	start func(ctx context.Context, actions ...chromedp.Action) error
}

// NewChromedpBrowser creates a new browser repository using chromedp.
// execPath may be empty to let chromedp locate Chrome.
func NewChromedpBrowser(proxies *proxy.Manager, extraHeaders map[string]string, execPath string) *ChromedpBrowser {
	return &ChromedpBrowser{
		proxies:      proxies,
		extraHeaders: extraHeaders,
		execPath:     execPath,
		start:        chromedp.Run,
	}
}

// NewSession launches a fresh browser and opens its first tab.
func (b *ChromedpBrowser) NewSession(ctx context.Context) (repository.BrowserSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.proxies.GetUserAgent()),
	)
	if p := b.proxies.GetProxy(); p != nil {
		opts = append(opts, chromedp.ProxyServer(p.String()))
	}
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(func(format string, args ...any) {
		slog.Debug("chromedp: " + fmt.Sprintf(format, args...))
	}))

	s := &session{
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}

	// The first Run allocates the browser with the ctx it is given, so it runs
	// on tabCtx itself: Chrome lives until Close or until the caller's ctx,
	// which tabCtx descends from, is done.
	headers := network.Headers{"Accept-Language": "en-US,en;q=0.9"}
	for k, v := range b.extraHeaders {
		headers[k] = v
	}
	if err := b.start(tabCtx, network.Enable(), network.SetExtraHTTPHeaders(headers)); err != nil {
		s.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("start browser: %w: %w", ctxErr, err)
		}
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return s, nil
}

type session struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	closeOnce   sync.Once
}

// run executes actions in an already started tab while honouring the
// caller's ctx. Cancelling the derived ctx leaves the browser running.
func (s *session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return err
}

// Navigate loads url and waits until the document body is ready.
func (s *session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *session) Title(ctx context.Context) (string, error) {
	var title string
	if err := s.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

func (s *session) PDFLinks(ctx context.Context) ([]string, error) {
	var links []string
	if err := s.run(ctx, chromedp.Evaluate(pdfLinksJS(), &links)); err != nil {
		return nil, err
	}
	return links, nil
}

func (s *session) AnchorText(ctx context.Context, href string) (string, error) {
	script, err := anchorTextJS(href)
	if err != nil {
		return "", err
	}
	var text string
	if err := s.run(ctx, chromedp.Evaluate(script, &text)); err != nil {
		return "", err
	}
	return text, nil
}

func (s *session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		// Cancel asks Chrome to close gracefully before the process is killed.
		err = chromedp.Cancel(s.tabCtx)
		s.tabCancel()
		s.allocCancel()
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// pdfLinksJS lists the resolved href of every PDF anchor in document order.
func pdfLinksJS() string {
	selector, _ := json.Marshal(repository.PDFAnchorSelector)
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%s), a => a.href)`, selector)
}

// anchorTextJS looks the anchor up again by its resolved href, since the DOM
// may have changed since the links were listed.
func anchorTextJS(href string) (string, error) {
	selector, err := json.Marshal(repository.PDFAnchorSelector)
	if err != nil {
		return "", err
	}
	arg, err := json.Marshal(href)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
	const href = %s;
	const anchor = Array.from(document.querySelectorAll(%s)).find(a => a.href === href);
	return anchor ? anchor.innerText.trim() : '';
})()`, arg, selector), nil
}
