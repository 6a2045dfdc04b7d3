package proxy

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// DefaultUserAgent is used when no user agents are configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// Manager handles the rotation of proxies and user agents.
type Manager struct {
	proxies    []*url.URL
	userAgents []string

	mu         sync.Mutex
	proxyIndex int
	rnd        *rand.Rand
}

// NewManager parses the proxy list up front so a bad entry is a startup error.
func NewManager(proxies, userAgents []string) (*Manager, error) {
	parsed := make([]*url.URL, 0, len(proxies))
	for _, p := range proxies {
		u, err := url.Parse(p)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", p)
		}
		parsed = append(parsed, u)
	}
	if len(userAgents) == 0 {
		userAgents = []string{DefaultUserAgent}
	}
	return &Manager{
		proxies:    parsed,
		userAgents: userAgents,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// GetProxy returns the next proxy, rotating sequentially, or nil for a direct connection.
func (m *Manager) GetProxy() *url.URL {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.proxies) == 0 {
		return nil
	}
	p := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return p
}

// ProxyFunc plugs the rotation into an http.Transport.
func (m *Manager) ProxyFunc(*http.Request) (*url.URL, error) {
	return m.GetProxy(), nil
}

// GetUserAgent returns a random user agent string.
func (m *Manager) GetUserAgent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userAgents[m.rnd.Intn(len(m.userAgents))]
}
