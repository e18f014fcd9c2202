package ice

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0).UTC() }
}

func TestGeneratorCredentials(t *testing.T) {
	gen, err := NewGenerator("shared-secret", "signal", 10*time.Minute)
	require.NoError(t, err)
	gen.now = fixedClock(1700000000)

	creds, err := gen.Credentials("abc123")
	require.NoError(t, err)

	assert.Equal(t, "1700000600:signal:abc123", creds.Username)
	assert.Equal(t, int64(1700000600), creds.ExpiryUnix)

	mac := hmac.New(sha1.New, []byte("shared-secret"))
	mac.Write([]byte(creds.Username))
	assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), creds.Credential)

	raw, err := base64.StdEncoding.DecodeString(creds.Credential)
	require.NoError(t, err)
	assert.Len(t, raw, sha1.Size)
}

func TestGeneratorDeterministicPerClock(t *testing.T) {
	gen, err := NewGenerator("shared-secret", "signal", time.Minute)
	require.NoError(t, err)
	gen.now = fixedClock(1700000000)

	first, err := gen.Credentials("session-a")
	require.NoError(t, err)
	second, err := gen.Credentials("session-a")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := gen.Credentials("session-b")
	require.NoError(t, err)
	assert.NotEqual(t, first.Credential, other.Credential)
}

func TestGeneratorValidation(t *testing.T) {
	_, err := NewGenerator("", "signal", time.Minute)
	assert.Error(t, err)

	_, err = NewGenerator("secret", "signal", 0)
	assert.Error(t, err)

	_, err = NewGenerator("secret", "has:colon", time.Minute)
	assert.Error(t, err)

	gen, err := NewGenerator("secret", "signal", time.Minute)
	require.NoError(t, err)

	_, err = gen.Credentials("")
	assert.Error(t, err)
	_, err = gen.Credentials("has:colon")
	assert.Error(t, err)
}
