package static_browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/pdfscraper-service/internal/repository"
	"github.com/user/pdfscraper-service/pkg/proxy"
	"github.com/user/pdfscraper-service/pkg/utils"
)

var errNotLoaded = errors.New("no page loaded")

// StaticBrowser fetches pages over plain HTTP and parses them with goquery.
// Scripts are not run, so it only sees links present in the served HTML.
type StaticBrowser struct {
	proxies *proxy.Manager
	timeout time.Duration
}

func NewStaticBrowser(proxies *proxy.Manager, timeout time.Duration) *StaticBrowser {
	return &StaticBrowser{proxies: proxies, timeout: timeout}
}

// NewSession gives each session its own client and cookie-free transport.
func (b *StaticBrowser) NewSession(ctx context.Context) (repository.BrowserSession, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = b.proxies.ProxyFunc
	return &session{
		client:    &http.Client{Timeout: b.timeout, Transport: transport},
		transport: transport,
		userAgent: b.proxies.GetUserAgent(),
	}, nil
}

type session struct {
	client    *http.Client
	transport *http.Transport
	userAgent string

	doc  *goquery.Document
	base *url.URL
}

func (s *session) Navigate(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	// Links resolve against the final URL after redirects, or <base href>.
	base := resp.Request.URL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if abs, err := utils.ToAbsoluteURL(base, href); err == nil {
			if u, err := url.Parse(abs); err == nil {
				base = u
			}
		}
	}

	s.doc = doc
	s.base = base
	return nil
}

func (s *session) Title(context.Context) (string, error) {
	if s.doc == nil {
		return "", errNotLoaded
	}
	return strings.TrimSpace(s.doc.Find("title").First().Text()), nil
}

func (s *session) PDFLinks(context.Context) ([]string, error) {
	if s.doc == nil {
		return nil, errNotLoaded
	}
	var links []string
	s.doc.Find(repository.PDFAnchorSelector).Each(func(_ int, a *goquery.Selection) {
		if abs, ok := s.resolve(a); ok {
			links = append(links, abs)
		}
	})
	return links, nil
}

func (s *session) AnchorText(_ context.Context, href string) (string, error) {
	if s.doc == nil {
		return "", errNotLoaded
	}
	var text string
	s.doc.Find(repository.PDFAnchorSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if abs, ok := s.resolve(a); ok && abs == href {
			text = strings.Join(strings.Fields(a.Text()), " ")
			return false
		}
		return true
	})
	return text, nil
}

func (s *session) resolve(a *goquery.Selection) (string, bool) {
	href, ok := a.Attr("href")
	if !ok {
		return "", false
	}
	abs, err := utils.ToAbsoluteURL(s.base, strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	return abs, true
}

func (s *session) Close() error {
	s.transport.CloseIdleConnections()
	s.doc = nil
	return nil
}
