package ice

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signaling-service/internal/config"
)

func TestCatalogStunOnly(t *testing.T) {
	cat, err := NewCatalog(config.ICEConfig{
		STUNURLs: []string{"stun:stun.l.google.com:19302"},
	})
	require.NoError(t, err)

	servers, err := cat.ServersFor("sess-1")
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, servers[0].URLs)
	assert.Empty(t, servers[0].Username)
}

func TestCatalogStaticTurnCredentials(t *testing.T) {
	cat, err := NewCatalog(config.ICEConfig{
		STUNURLs:       []string{"stun:stun.example.org:3478"},
		TURNURLs:       []string{"turn:turn.example.org:3478"},
		TURNUsername:   "static-user",
		TURNCredential: "static-pass",
	})
	require.NoError(t, err)

	servers, err := cat.ServersFor("sess-1")
	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, "static-user", servers[1].Username)
	assert.Equal(t, "static-pass", servers[1].Credential)
}

func TestCatalogTurnRestCredentials(t *testing.T) {
	cat, err := NewCatalog(config.ICEConfig{
		TURNURLs:       []string{"turns:turn.example.org:5349"},
		TURNRESTSecret: "shared-secret",
		TURNRESTPrefix: "signal",
		TURNRESTTTL:    10 * time.Minute,
	})
	require.NoError(t, err)

	servers, err := cat.ServersFor("sess-1")
	require.NoError(t, err)
	require.Len(t, servers, 1)

	assert.True(t, strings.HasSuffix(servers[0].Username, ":signal:sess-1"))
	assert.NotEmpty(t, servers[0].Credential)

	// Credentials are bound to the session, not shared across them.
	other, err := cat.ServersFor("sess-2")
	require.NoError(t, err)
	assert.NotEqual(t, servers[0].Credential, other[0].Credential)
}

func TestCatalogRejectsBadURLs(t *testing.T) {
	_, err := NewCatalog(config.ICEConfig{STUNURLs: []string{"http://not-stun"}})
	assert.Error(t, err)

	_, err = NewCatalog(config.ICEConfig{TURNURLs: []string{"stun:wrong-scheme:3478"}})
	assert.Error(t, err)
}
