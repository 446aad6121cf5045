package view

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/editor"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate/memstore"
)

func newTemplatesModel(t *testing.T, sess auth.Session) (TemplatesModel, *editor.Session) {
	t.Helper()

	session := editor.NewSession(invoice.Default(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)))
	svc := savedtemplate.NewService(memstore.New())

	return NewTemplatesModel(session, svc, sess), session
}

func update(t *testing.T, m TemplatesModel, msg tea.Msg) (TemplatesModel, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)

	return next.(TemplatesModel), cmd
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	var logs bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))

	return &logs
}

func TestTemplatesModel_RequiresLogin(t *testing.T) {
	m, _ := newTemplatesModel(t, auth.Anonymous)

	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, LoginRequiredMsg{}, cmd())
}

func TestTemplatesModel_SaveLoadDelete(t *testing.T) {
	owner := auth.Session{OwnerID: uuid.New(), Email: "owner@example.com"}
	m, session := newTemplatesModel(t, owner)
	noop := func() {}

	m, _ = update(t, m, m.listCmd()())
	assert.False(t, m.loading)
	assert.Empty(t, m.templates)

	m, cmd := update(t, m, m.saveCmd("  Monthly retainer  ", noop)())
	require.NotNil(t, cmd, "a save reloads the list")
	assert.Equal(t, `Saved "Monthly retainer".`, m.status)

	m, _ = update(t, m, cmd())
	require.Len(t, m.templates, 1)
	assert.Equal(t, "Monthly retainer", m.templates[0].Name)

	require.NoError(t, session.SetField(editor.FieldClientName, "Someone Else"))

	m, _ = update(t, m, m.loadCmd(m.templates[0], noop)())
	require.NoError(t, m.err)
	assert.Equal(t, "Nama Klien", session.Document().ClientName)

	m, cmd = update(t, m, m.deleteCmd(m.templates[0], noop)())
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Empty(t, m.templates)
}

func TestTemplatesModel_ReleasesGuard(t *testing.T) {
	owner := auth.Session{OwnerID: uuid.New()}
	m, session := newTemplatesModel(t, owner)

	release, err := session.Guard().Begin(editor.ActionSave)
	require.NoError(t, err)

	m.saveCmd("Draft", release)()
	assert.False(t, session.Guard().Busy(editor.ActionSave))
}

func TestTemplatesModel_ListWhileBusy(t *testing.T) {
	owner := auth.Session{OwnerID: uuid.New()}
	m, session := newTemplatesModel(t, owner)

	release, err := session.Guard().Begin(editor.ActionList)
	require.NoError(t, err)
	defer release()

	msg := m.listCmd()().(templatesListedMsg)
	assert.ErrorIs(t, msg.err, editor.ErrBusy)
}

func TestTemplatesModel_LogsFailures(t *testing.T) {
	logs := captureLogs(t)
	owner := auth.Session{OwnerID: uuid.New()}
	refused := errors.New("connection refused")

	ctrl := gomock.NewController(t)
	repo := savedtemplate.NewMockRepository(ctrl)
	repo.EXPECT().ListByOwner(gomock.Any(), owner.OwnerID).Return(nil, refused)
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(refused)

	session := editor.NewSession(invoice.Default(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)))
	m := NewTemplatesModel(session, savedtemplate.NewService(repo), owner)

	m, _ = update(t, m, m.listCmd()())
	assert.ErrorIs(t, m.err, refused)
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "action=list")

	m, cmd := update(t, m, m.saveCmd("Draft", func() {})())
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.err, refused)
	assert.Contains(t, logs.String(), "action=save")
	assert.Contains(t, logs.String(), `error="connection refused"`)
}

func TestTemplatesModel_RefreshWhileListing(t *testing.T) {
	owner := auth.Session{OwnerID: uuid.New()}
	m, session := newTemplatesModel(t, owner)

	_, cmd := update(t, m, key('r'))
	assert.Nil(t, cmd, "the initial list is still loading")

	m, _ = update(t, m, m.listCmd()())
	require.False(t, m.loading)

	release, err := session.Guard().Begin(editor.ActionList)
	require.NoError(t, err)
	defer release()

	m, cmd = update(t, m, key('r'))
	assert.Nil(t, cmd)
	assert.False(t, m.loading)
	assert.NoError(t, m.err)
	assert.NotContains(t, m.ShortHelp(), "r: refresh")
}

func TestValidateTemplateName(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		wantErr bool
	}

	tests := []testCase{
		{name: "Plain", input: "Retainer"},
		{name: "Blank", input: "   ", wantErr: true},
		{name: "AtLimit", input: strings.Repeat("é", savedtemplate.MaxNameLength)},
		{name: "TooLong", input: strings.Repeat("a", savedtemplate.MaxNameLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTemplateName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}
