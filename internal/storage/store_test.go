package storage

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), "http://localhost:8080", []byte("test_secret"))
	require.NoError(t, err)
	return store
}

func tokenFromURL(t *testing.T, signedURL string) string {
	t.Helper()
	u, err := url.Parse(signedURL)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestSaveAndRead(t *testing.T) {
	store := newTestStore(t)

	err := store.Save("bills/p1/b1.pdf", []byte("%PDF-1.4 fake"))
	require.NoError(t, err)

	data, err := store.Read("bills/p1/b1.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), data)
}

func TestSignedURLRoundTrip(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("bills/p1/b1.pdf", []byte("data")))

	signedURL, err := store.SignedURL("bills/p1/b1.pdf", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signedURL, "http://localhost:8080/api/files/bills/p1/b1.pdf?token="))

	token := tokenFromURL(t, signedURL)
	require.NotEmpty(t, token)
	assert.NoError(t, store.VerifyToken(token, "bills/p1/b1.pdf"))
}

func TestVerifyTokenRejectsWrongObject(t *testing.T) {
	store := newTestStore(t)

	signedURL, err := store.SignedURL("bills/p1/b1.pdf", time.Hour)
	require.NoError(t, err)

	token := tokenFromURL(t, signedURL)
	assert.ErrorIs(t, store.VerifyToken(token, "bills/p1/b2.pdf"), ErrInvalidToken)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	store := newTestStore(t)

	signedURL, err := store.SignedURL("bills/p1/b1.pdf", -time.Minute)
	require.NoError(t, err)

	token := tokenFromURL(t, signedURL)
	assert.ErrorIs(t, store.VerifyToken(token, "bills/p1/b1.pdf"), ErrInvalidToken)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	store := newTestStore(t)
	assert.ErrorIs(t, store.VerifyToken("not-a-jwt", "bills/p1/b1.pdf"), ErrInvalidToken)
}

func TestSaveContainsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "root"), "http://localhost:8080", []byte("s"))
	require.NoError(t, err)

	// A leading ".." is cleaned away, so the write stays inside the root.
	require.NoError(t, store.Save("../escape.txt", []byte("x")))

	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(err))

	data, err := store.Read("escape.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}
