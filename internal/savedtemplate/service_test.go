package savedtemplate_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
)

var owner = auth.Session{OwnerID: uuid.MustParse("7b1c9f3e-5d2a-4b8e-9f60-1a2b3c4d5e6f"), Email: "owner@example.com"}

func sampleDocument() *invoice.Document {
	return invoice.Default(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
}

func TestService_Save(t *testing.T) {
	type args struct {
		sess auth.Session
		name string
		doc  func() *invoice.Document
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *savedtemplate.MockRepository)
		wantName  string
		wantErr   bool
		errIs     error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{sess: owner, name: "  Monthly retainer  ", doc: sampleDocument},
			setupMock: func(m *savedtemplate.MockRepository) {
				m.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tpl *savedtemplate.Template) error {
						tpl.ID = uuid.New()
						tpl.CreatedAt = time.Now()
						return nil
					})
			},
			wantName: "Monthly retainer",
		},
		{
			name:    "Anonymous",
			args:    args{sess: auth.Anonymous, name: "Retainer", doc: sampleDocument},
			wantErr: true,
			errIs:   auth.ErrAuthRequired,
		},
		{
			name:    "BlankName",
			args:    args{sess: owner, name: "   ", doc: sampleDocument},
			wantErr: true,
			errIs:   savedtemplate.ErrInvalidName,
		},
		{
			name:    "NameTooLong",
			args:    args{sess: owner, name: strings.Repeat("a", savedtemplate.MaxNameLength+1), doc: sampleDocument},
			wantErr: true,
			errIs:   savedtemplate.ErrInvalidName,
		},
		{
			name: "NameAtLimit",
			args: args{sess: owner, name: strings.Repeat("é", savedtemplate.MaxNameLength), doc: sampleDocument},
			setupMock: func(m *savedtemplate.MockRepository) {
				m.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantName: strings.Repeat("é", savedtemplate.MaxNameLength),
		},
		{
			name: "InvalidDocument",
			args: args{sess: owner, name: "Broken", doc: func() *invoice.Document {
				doc := sampleDocument()
				doc.Items[0].Quantity = 0

				return doc
			}},
			wantErr: true,
		},
		{
			name: "RepoError",
			args: args{sess: owner, name: "Retainer", doc: sampleDocument},
			setupMock: func(m *savedtemplate.MockRepository) {
				m.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := savedtemplate.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := savedtemplate.NewService(repo)
			got, err := svc.Save(context.Background(), tt.args.sess, tt.args.name, tt.args.doc())

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)

				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, owner.OwnerID, got.OwnerID)
			assert.NotEmpty(t, got.Snapshot)
		})
	}
}

func TestService_SaveSnapshotsIndependentCopy(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := savedtemplate.NewMockRepository(ctrl)

	var stored *savedtemplate.Template

	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tpl *savedtemplate.Template) error {
			stored = tpl
			return nil
		})

	svc := savedtemplate.NewService(repo)
	doc := sampleDocument()

	_, err := svc.Save(context.Background(), owner, "Retainer", doc)
	require.NoError(t, err)

	doc.ClientName = "Changed after save"
	doc.Items[0].Description = "Changed after save"

	loaded, err := svc.Load(stored)
	require.NoError(t, err)
	assert.Equal(t, "Nama Klien", loaded.ClientName)
	assert.Equal(t, "Layanan Konsultasi", loaded.Items[0].Description)
}

func TestService_List(t *testing.T) {
	tests := []struct {
		name      string
		sess      auth.Session
		setupMock func(m *savedtemplate.MockRepository)
		wantLen   int
		wantErr   bool
	}{
		{
			name: "Success",
			sess: owner,
			setupMock: func(m *savedtemplate.MockRepository) {
				m.EXPECT().
					ListByOwner(gomock.Any(), owner.OwnerID).
					Return([]*savedtemplate.Template{{ID: uuid.New()}, {ID: uuid.New()}}, nil)
			},
			wantLen: 2,
		},
		{
			name:    "Anonymous",
			sess:    auth.Anonymous,
			wantErr: true,
		},
		{
			name: "RepoError",
			sess: owner,
			setupMock: func(m *savedtemplate.MockRepository) {
				m.EXPECT().ListByOwner(gomock.Any(), owner.OwnerID).Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := savedtemplate.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := savedtemplate.NewService(repo).List(context.Background(), tt.sess)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_Delete(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		sess      auth.Session
		setupMock func(m *savedtemplate.MockRepository)
		wantErr   error
	}{
		{
			name: "Success",
			sess: owner,
			setupMock: func(m *savedtemplate.MockRepository) {
				m.EXPECT().Delete(gomock.Any(), owner.OwnerID, id).Return(nil)
			},
		},
		{
			name: "NotFound",
			sess: owner,
			setupMock: func(m *savedtemplate.MockRepository) {
				m.EXPECT().Delete(gomock.Any(), owner.OwnerID, id).Return(savedtemplate.ErrNotFound)
			},
			wantErr: savedtemplate.ErrNotFound,
		},
		{
			name:    "Anonymous",
			sess:    auth.Anonymous,
			wantErr: auth.ErrAuthRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := savedtemplate.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := savedtemplate.NewService(repo).Delete(context.Background(), tt.sess, id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := savedtemplate.NewMockRepository(ctrl)
	id := uuid.New()

	repo.EXPECT().Get(gomock.Any(), owner.OwnerID, id).Return(&savedtemplate.Template{ID: id, OwnerID: owner.OwnerID}, nil)

	svc := savedtemplate.NewService(repo)

	got, err := svc.Get(context.Background(), owner, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = svc.Get(context.Background(), auth.Anonymous, id)
	assert.ErrorIs(t, err, auth.ErrAuthRequired)
}

func TestService_LoadRejectsStaleSnapshot(t *testing.T) {
	svc := savedtemplate.NewService(nil)

	_, err := svc.Load(&savedtemplate.Template{ID: uuid.New(), Snapshot: json.RawMessage(`{"schemaVersion":2,"document":{"bogus":true}}`)})
	assert.ErrorIs(t, err, savedtemplate.ErrStaleSnapshot)
}
