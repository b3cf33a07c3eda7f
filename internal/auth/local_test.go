package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestLocalProvider(t *testing.T) *LocalProvider {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewLocalProvider("jay", string(hash), "test_key", time.Hour)
}

func TestLocalProvider_Authenticate(t *testing.T) {
	p := newTestLocalProvider(t)

	identity, err := p.Authenticate("jay", "password123")
	require.NoError(t, err)
	assert.Equal(t, "jay", identity.Subject)
	assert.NotEmpty(t, identity.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), identity.ExpiresAt, time.Minute)

	sub, err := p.ParseToken(identity.Token)
	require.NoError(t, err)
	assert.Equal(t, "jay", sub)
}

func TestLocalProvider_WrongCredentials(t *testing.T) {
	p := newTestLocalProvider(t)

	_, err := p.Authenticate("jay", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Authenticate("someone", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalProvider_ParseToken(t *testing.T) {
	p := newTestLocalProvider(t)

	expired, err := p.GenerateToken("jay", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = p.ParseToken(expired)
	assert.Error(t, err)

	other := NewLocalProvider("jay", "", "other_key", time.Hour)
	foreign, err := other.GenerateToken("jay", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = p.ParseToken(foreign)
	assert.Error(t, err)

	_, err = p.ParseToken("not-a-token")
	assert.Error(t, err)
}
