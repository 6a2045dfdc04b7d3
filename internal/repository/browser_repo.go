package repository

import (
	"context"
	"errors"
)

// PDFAnchorSelector matches every anchor whose href ends in the literal,
// case-sensitive suffix ".pdf".
const PDFAnchorSelector = `a[href$=".pdf"]`

var (
	ErrSessionFailed    = errors.New("browser session could not be started")
	ErrNavigationFailed = errors.New("navigation failed")
	ErrExtractionFailed = errors.New("failed to extract data from page")
	ErrSiteTimeout      = errors.New("site scrape timed out")
)

// BrowserRepository hands out isolated browser sessions.
type BrowserRepository interface {
	// NewSession starts a session owned exclusively by the caller, who must Close it.
	NewSession(ctx context.Context) (BrowserSession, error)
}

// BrowserSession is one isolated browser page.
type BrowserSession interface {
	// Navigate loads url and returns once the DOM is parsed.
	Navigate(ctx context.Context, url string) error
	// Title returns the document title of the loaded page.
	Title(ctx context.Context) (string, error)
	// PDFLinks returns the absolute hrefs of anchors matching PDFAnchorSelector in DOM order.
	PDFLinks(ctx context.Context) ([]string, error)
	// AnchorText returns the trimmed visible text of the PDF anchor whose absolute href is href,
	// or "" when no such anchor exists any more.
	AnchorText(ctx context.Context, href string) (string, error)
	// Close releases the session. It is safe to call more than once.
	Close() error
}
