package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RotatesProxies(t *testing.T) {
	m, err := NewManager([]string{"http://p1:8000", "http://p2:8000"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "p1:8000", m.GetProxy().Host)
	assert.Equal(t, "p2:8000", m.GetProxy().Host)
	assert.Equal(t, "p1:8000", m.GetProxy().Host)
}

func TestManager_NoProxies(t *testing.T) {
	m, err := NewManager(nil, nil)
	require.NoError(t, err)

	assert.Nil(t, m.GetProxy())
	p, err := m.ProxyFunc(nil)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, DefaultUserAgent, m.GetUserAgent())
}

func TestManager_UserAgentFromList(t *testing.T) {
	agents := []string{"ua-a", "ua-b"}
	m, err := NewManager(nil, agents)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		assert.Contains(t, agents, m.GetUserAgent())
	}
}

func TestNewManager_InvalidProxy(t *testing.T) {
	_, err := NewManager([]string{"not a proxy"}, nil)
	assert.Error(t, err)
}
