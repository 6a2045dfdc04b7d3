package static_browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/pdfscraper-service/pkg/proxy"
)

const page = `<html><head><title> Reports </title></head><body>
	<a href="/files/one.pdf">  Annual
	  report </a>
	<a href="notes.txt">Notes</a>
	<a href="two.PDF">Upper case suffix</a>
	<a href="three.pdf?download=1">Query string</a>
	<a href="sub/four.pdf">Four</a>
	<a href="https://elsewhere.example/five.pdf">Five</a>
</body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/docs/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusFound)
	})
	mux.HandleFunc("/based", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><base href="/archive/"></head><body><a href="x.pdf">X</a></body></html>`))
	})
	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newSession(t *testing.T) *session {
	t.Helper()
	pm, err := proxy.NewManager(nil, nil)
	require.NoError(t, err)
	s, err := NewStaticBrowser(pm, 2*time.Second).NewSession(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.(*session)
}

func TestSession_ExtractsPDFLinksInOrder(t *testing.T) {
	srv := newSite(t)
	s := newSession(t)
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, srv.URL+"/docs/"))

	title, err := s.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Reports", title)

	links, err := s.PDFLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/files/one.pdf",
		srv.URL + "/docs/sub/four.pdf",
		"https://elsewhere.example/five.pdf",
	}, links)

	text, err := s.AnchorText(ctx, srv.URL+"/files/one.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Annual report", text)

	text, err = s.AnchorText(ctx, srv.URL+"/not-on-page.pdf")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestSession_ResolvesAgainstRedirectTarget(t *testing.T) {
	srv := newSite(t)
	s := newSession(t)

	require.NoError(t, s.Navigate(context.Background(), srv.URL+"/moved"))
	links, err := s.PDFLinks(context.Background())
	require.NoError(t, err)
	assert.Contains(t, links, srv.URL+"/docs/sub/four.pdf")
}

func TestSession_HonoursBaseHref(t *testing.T) {
	srv := newSite(t)
	s := newSession(t)

	require.NoError(t, s.Navigate(context.Background(), srv.URL+"/based"))
	links, err := s.PDFLinks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/archive/x.pdf"}, links)
}

func TestSession_NavigateErrors(t *testing.T) {
	srv := newSite(t)
	s := newSession(t)

	assert.Error(t, s.Navigate(context.Background(), srv.URL+"/error"))
	assert.Error(t, s.Navigate(context.Background(), "http://127.0.0.1:1/"))

	_, err := s.Title(context.Background())
	assert.ErrorIs(t, err, errNotLoaded)
	_, err = s.PDFLinks(context.Background())
	assert.ErrorIs(t, err, errNotLoaded)
}
