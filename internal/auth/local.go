package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Identity is the result of a successful sign in
type Identity struct {
	Subject   string
	Token     string
	ExpiresAt time.Time
}

// LocalProvider checks a single configured user and issues HS256 tokens
type LocalProvider struct {
	username     string
	passwordHash []byte
	secret       []byte
	expiration   time.Duration
	now          func() time.Time
}

func NewLocalProvider(username, passwordHash, secret string, expiration time.Duration) *LocalProvider {
	return &LocalProvider{
		username:     username,
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		expiration:   expiration,
		now:          time.Now,
	}
}

// Authenticate compares the credentials and returns a signed token
func (p *LocalProvider) Authenticate(username, password string) (Identity, error) {
	if username != p.username {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(p.passwordHash, []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	expiresAt := p.now().Add(p.expiration)
	token, err := p.GenerateToken(username, expiresAt)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Subject: username, Token: token, ExpiresAt: expiresAt}, nil
}

func (p *LocalProvider) GenerateToken(subject string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": p.now().Unix(),
		"exp": expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token issued by GenerateToken and returns its subject
func (p *LocalProvider) ParseToken(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid token: missing subject")
	}
	return sub, nil
}
