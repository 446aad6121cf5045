package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
)

func typeToken(m LoginModel, token string) LoginModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(token)})
	return next.(LoginModel)
}

func TestLoginModel(t *testing.T) {
	verifier := auth.NewVerifier("test-secret", "invoicer")
	owner := uuid.New()

	token, err := verifier.Issue(owner, "owner@example.com", time.Hour)
	require.NoError(t, err)

	t.Run("ValidToken", func(t *testing.T) {
		m := typeToken(NewLoginModel(verifier, auth.Anonymous), token)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)

		msg, ok := cmd().(SessionChangedMsg)
		require.True(t, ok)
		assert.Equal(t, owner, msg.Session.OwnerID)
		assert.Equal(t, "owner@example.com", msg.Session.Email)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		logs := captureLogs(t)
		m := typeToken(NewLoginModel(verifier, auth.Anonymous), "not-a-token")

		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.ErrorIs(t, next.(LoginModel).err, auth.ErrInvalidToken)
		assert.Contains(t, logs.String(), "sign-in rejected")
	})

	t.Run("SignOut", func(t *testing.T) {
		m := NewLoginModel(verifier, auth.Session{OwnerID: owner})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
		require.NotNil(t, cmd)

		msg, ok := cmd().(SessionChangedMsg)
		require.True(t, ok)
		assert.False(t, msg.Session.Authenticated())
	})
}
