package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viewer = "11111111-1111-4111-8111-111111111111"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func valid(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestHS256(t *testing.T) {
	v, err := NewValidator("HS256", "secret", "")
	require.NoError(t, err)

	sub, err := v.Validate(sign(t, jwt.SigningMethodHS256, []byte("secret"), valid(viewer)))
	require.NoError(t, err)
	assert.Equal(t, viewer, sub)

	_, err = v.Validate(sign(t, jwt.SigningMethodHS256, []byte("other"), valid(viewer)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := valid(viewer)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = v.Validate(sign(t, jwt.SigningMethodHS256, []byte("secret"), expired))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Validate(sign(t, jwt.SigningMethodHS256, []byte("secret"), jwt.RegisteredClaims{Subject: viewer}))
	assert.ErrorIs(t, err, ErrInvalidToken, "exp is required")

	_, err = v.Validate(sign(t, jwt.SigningMethodHS256, []byte("secret"), valid("")))
	assert.ErrorIs(t, err, ErrMissingSub)

	_, err = v.Validate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "pub.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))

	v, err := NewValidator("RS256", "", path)
	require.NoError(t, err)

	sub, err := v.Validate(sign(t, jwt.SigningMethodRS256, key, valid(viewer)))
	require.NoError(t, err)
	assert.Equal(t, viewer, sub)

	// an HS256 token must not pass an RS256 validator
	_, err = v.Validate(sign(t, jwt.SigningMethodHS256, []byte("secret"), valid(viewer)))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewValidatorErrors(t *testing.T) {
	_, err := NewValidator("HS256", "", "")
	assert.Error(t, err)
	_, err = NewValidator("RS256", "", filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
	_, err = NewValidator("none", "", "")
	assert.Error(t, err)
}
