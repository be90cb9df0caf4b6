package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrMissingSub   = errors.New("auth: token has no subject")
)

// Validator checks bearer tokens issued by the identity service and returns
// the subject, which is the caller's user id.
type Validator struct {
	alg    string
	pubKey *rsa.PublicKey
	secret []byte
	parser *jwt.Parser
}

// NewValidator supports HS256 with a shared secret and RS256 with a PEM public
// key read from pubKeyPath.
func NewValidator(alg, secret, pubKeyPath string) (*Validator, error) {
	v := &Validator{alg: alg}
	switch alg {
	case jwt.SigningMethodRS256.Alg():
		b, err := os.ReadFile(pubKeyPath)
		if err != nil {
			return nil, fmt.Errorf("auth: read public key: %w", err)
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(b)
		if err != nil {
			return nil, fmt.Errorf("auth: parse public key: %w", err)
		}
		v.pubKey = key
	case jwt.SigningMethodHS256.Alg():
		if secret == "" {
			return nil, errors.New("auth: hs256 secret required")
		}
		v.secret = []byte(secret)
	default:
		return nil, fmt.Errorf("auth: unsupported alg %q", alg)
	}
	v.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{alg}),
		jwt.WithExpirationRequired(),
	)
	return v, nil
}

func (v *Validator) key(*jwt.Token) (interface{}, error) {
	if v.pubKey != nil {
		return v.pubKey, nil
	}
	return v.secret, nil
}

// Validate returns the token subject.
func (v *Validator) Validate(token string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := v.parser.ParseWithClaims(token, &claims, v.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrMissingSub
	}
	return claims.Subject, nil
}
