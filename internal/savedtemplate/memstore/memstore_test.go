package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
)

func TestStore_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	alice, bob := uuid.New(), uuid.New()

	first := &savedtemplate.Template{OwnerID: alice, Name: "first", Snapshot: []byte(`{}`)}
	second := &savedtemplate.Template{OwnerID: alice, Name: "second", Snapshot: []byte(`{}`)}
	other := &savedtemplate.Template{OwnerID: bob, Name: "other", Snapshot: []byte(`{}`)}

	for _, tpl := range []*savedtemplate.Template{first, second, other} {
		require.NoError(t, s.Insert(ctx, tpl))
		assert.NotEqual(t, uuid.Nil, tpl.ID)
	}

	list, err := s.ListByOwner(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Name)
	assert.Equal(t, "first", list[1].Name)

	_, err = s.Get(ctx, bob, first.ID)
	assert.ErrorIs(t, err, savedtemplate.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, bob, first.ID), savedtemplate.ErrNotFound)
	require.NoError(t, s.Delete(ctx, alice, first.ID))
	assert.ErrorIs(t, s.Delete(ctx, alice, first.ID), savedtemplate.ErrNotFound)

	list, err = s.ListByOwner(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := uuid.New()

	tpl := &savedtemplate.Template{OwnerID: owner, Name: "a", Snapshot: []byte(`{"x":1}`)}
	require.NoError(t, s.Insert(ctx, tpl))

	tpl.Snapshot[0] = '['

	got, err := s.Get(ctx, owner, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(got.Snapshot))
}

func TestStore_SameInstantKeepsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	frozen := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return frozen }

	owner := uuid.New()
	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, s.Insert(ctx, &savedtemplate.Template{OwnerID: owner, Name: name, Snapshot: []byte(`{}`)}))
	}

	list, err := s.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{list[0].Name, list[1].Name, list[2].Name})
}
