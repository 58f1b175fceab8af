package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to MessageStatus
		allowed  bool
	}{
		{StatusSending, StatusSent, true},
		{StatusSending, StatusError, true},
		{StatusSending, StatusDelivered, false},
		{StatusSent, StatusDelivered, true},
		{StatusSent, StatusError, true},
		{StatusSent, StatusSending, false},
		{StatusDelivered, StatusError, false},
		{StatusDelivered, StatusSent, false},
		{StatusError, StatusSent, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestMessageRole_IsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.False(t, MessageRole("system").IsValid())
}

func TestUser_Password(t *testing.T) {
	u := &User{Email: "a@b.co", Name: "Ann"}

	t.Run("rejects short passwords", func(t *testing.T) {
		assert.Error(t, u.HashPassword("12345"))
	})

	t.Run("hash and validate", func(t *testing.T) {
		require.NoError(t, u.HashPassword("secret1"))
		require.NotNil(t, u.Password)
		assert.NotEqual(t, "secret1", *u.Password)
		assert.NoError(t, u.ValidatePassword("secret1"))
		assert.Error(t, u.ValidatePassword("wrong!!"))
	})

	t.Run("oauth-only user has no password", func(t *testing.T) {
		oauthUser := &User{Email: "g@b.co", Name: "G"}
		assert.ErrorIs(t, oauthUser.ValidatePassword("anything"), ErrPasswordNotSet)
	})
}

func TestUser_IsValid(t *testing.T) {
	assert.NoError(t, (&User{Email: "x@y.com", Name: "X"}).IsValid())
	assert.Error(t, (&User{Email: "not-an-email", Name: "X"}).IsValid())
	assert.Error(t, (&User{Email: "x@y.com", Name: "  "}).IsValid())
}

func TestAuthSession_IsExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&AuthSession{Expires: now.Add(time.Minute)}).IsExpired(now))
	assert.True(t, (&AuthSession{Expires: now}).IsExpired(now))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@example.com", NormalizeEmail("  Ann@Example.COM "))
}
