package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRoundTrip(t *testing.T) {
	auth := NewAuthService("a-secret-key-that-is-long-enough-for-hmac", t.TempDir(), time.Hour)

	token, err := auth.GenerateToken("watcher")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "watcher", claims.ClientName)
	assert.Equal(t, "hwmonitor-server", claims.Issuer)
}

func TestAuthRejectsForeignToken(t *testing.T) {
	a := NewAuthService("first-secret-key-that-is-long-enough", t.TempDir(), time.Hour)
	b := NewAuthService("second-secret-key-that-is-long-enough", t.TempDir(), time.Hour)

	token, err := a.GenerateToken("watcher")
	require.NoError(t, err)
	_, err = b.ValidateToken(token)
	assert.Error(t, err)

	_, err = a.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	auth := NewAuthService("a-secret-key-that-is-long-enough-for-hmac", t.TempDir(), -time.Minute)
	token, err := auth.GenerateToken("watcher")
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthPersistsGeneratedSecret(t *testing.T) {
	dir := t.TempDir()
	first := NewAuthService("", dir, time.Hour)

	_, err := os.Stat(filepath.Join(dir, secretKeyFilename))
	require.NoError(t, err)

	token, err := first.GenerateToken("watcher")
	require.NoError(t, err)

	second := NewAuthService("", dir, time.Hour)
	_, err = second.ValidateToken(token)
	assert.NoError(t, err, "restarted service must accept tokens from the persisted key")
}

func TestAuthPadsShortSecret(t *testing.T) {
	auth := NewAuthService("short", t.TempDir(), time.Hour)
	assert.GreaterOrEqual(t, len(auth.secretKey), 32)
}
