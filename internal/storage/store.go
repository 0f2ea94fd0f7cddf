// Package storage provides a local-disk blob store with signed, time-limited
// download URLs. Objects follow the bills/{projectId}/{billId}.<ext> layout.
package storage

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired download token")

// Store writes blobs under a root directory and issues signed URLs for them.
type Store struct {
	root    string
	baseURL string
	secret  []byte
}

// NewStore creates a blob store rooted at root. baseURL is the externally
// reachable address the signed URLs point at.
func NewStore(root, baseURL string, secret []byte) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Store{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
	}, nil
}

// Save writes data to the given object name, creating parent directories.
func (s *Store) Save(objectName string, data []byte) error {
	path, err := s.objectPath(objectName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write object %s: %w", objectName, err)
	}
	return nil
}

// Read returns the contents of the given object.
func (s *Store) Read(objectName string) ([]byte, error) {
	path, err := s.objectPath(objectName)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// SignedURL returns a time-limited download URL for an object. The token is an
// HS256 JWT binding the object name to the expiry.
func (s *Store) SignedURL(objectName string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"obj": objectName,
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign download token: %w", err)
	}
	return fmt.Sprintf("%s/api/files/%s?token=%s", s.baseURL, objectName, url.QueryEscape(signed)), nil
}

// VerifyToken checks a download token against the object name it was issued
// for.
func (s *Store) VerifyToken(tokenString, objectName string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidToken
	}
	obj, _ := claims["obj"].(string)
	if obj != objectName {
		return ErrInvalidToken
	}
	return nil
}

// objectPath resolves an object name to a filesystem path, rejecting names
// that escape the root.
func (s *Store) objectPath(objectName string) (string, error) {
	clean := filepath.Clean("/" + objectName)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	return filepath.Join(s.root, clean), nil
}
