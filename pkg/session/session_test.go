package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/session"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

// flaky fails Save while broken is set.
type flaky struct {
	store.Store
	broken bool
}

var errOffline = errors.New("offline")

func (f *flaky) Save(ctx context.Context, id string, s *schema.FormSchema) (store.Form, error) {
	if f.broken {
		return store.Form{}, errOffline
	}
	return f.Store.Save(ctx, id, s)
}

// editing runs during inside Save, before the write reaches the store.
type editing struct {
	store.Store
	during func()
}

func (e *editing) Save(ctx context.Context, id string, s *schema.FormSchema) (store.Form, error) {
	if e.during != nil {
		e.during()
	}
	return e.Store.Save(ctx, id, s)
}

func TestOpenMissingCreatesEmptyForm(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	sess, err := session.Open(ctx, st, builder.New(), "")
	require.NoError(t, err)
	require.NotEmpty(t, sess.FormID())

	_, err = st.Load(ctx, sess.FormID())
	require.NoError(t, err)
	require.False(t, sess.Engine().IsDirty())
	require.Empty(t, sess.Engine().Schema().Fields)
}

func TestOpenLoadsStoredDraftClean(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	doc := schema.New()
	doc.Fields = []*schema.Node{{ID: "a", Type: schema.TypeText, Label: "A"}}
	form, err := st.Create(ctx, doc)
	require.NoError(t, err)

	sess, err := session.Open(ctx, st, builder.New(), form.ID)
	require.NoError(t, err)
	require.Equal(t, form.ID, sess.FormID())

	state := sess.Engine().State()
	require.False(t, state.Dirty)
	require.Equal(t, 1, state.HistoryLen)
	require.Equal(t, "A", sess.Engine().Schema().Fields[0].Label)
}

func TestSavePersistsAndCleans(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	sess, err := session.Open(ctx, st, builder.New(), "")
	require.NoError(t, err)

	e := sess.Engine()
	_, ok := e.AddField(&schema.Node{Type: schema.TypeEmail, Label: "Email"}, builder.Root())
	require.True(t, ok)
	require.True(t, e.IsDirty())

	_, err = sess.Save(ctx)
	require.NoError(t, err)
	require.False(t, e.IsDirty())
	require.False(t, e.State().Saving)

	form, err := st.Load(ctx, sess.FormID())
	require.NoError(t, err)
	require.Len(t, form.Schema.Fields, 1)
	require.Equal(t, "Email", form.Schema.Fields[0].Label)
}

func TestEditDuringSaveStaysDirty(t *testing.T) {
	ctx := context.Background()
	st := &editing{Store: store.NewMemory()}
	sess, err := session.Open(ctx, st, builder.New(), "")
	require.NoError(t, err)

	e := sess.Engine()
	_, ok := e.AddField(&schema.Node{Type: schema.TypeText, Label: "Name"}, builder.Root())
	require.True(t, ok)
	st.during = func() {
		_, ok := e.AddField(&schema.Node{Type: schema.TypeEmail, Label: "Email"}, builder.Root())
		require.True(t, ok)
	}

	_, err = sess.Save(ctx)
	require.NoError(t, err)

	form, err := st.Load(ctx, sess.FormID())
	require.NoError(t, err)
	require.Len(t, form.Schema.Fields, 1)

	state := e.State()
	require.True(t, state.Dirty)
	require.False(t, state.Saving)
	require.Len(t, state.Document.Fields, 2)
	require.True(t, state.CanUndo)

	require.True(t, e.Undo())
	require.False(t, e.IsDirty())
}

func TestFailedSaveKeepsDirty(t *testing.T) {
	ctx := context.Background()
	st := &flaky{Store: store.NewMemory()}
	sess, err := session.Open(ctx, st, builder.New(), "")
	require.NoError(t, err)

	e := sess.Engine()
	e.AddField(&schema.Node{Type: schema.TypeText}, builder.Root())
	before := e.Schema()

	st.broken = true
	_, err = sess.Save(ctx)
	require.ErrorIs(t, err, errOffline)
	require.True(t, e.IsDirty())
	require.False(t, e.State().Saving)
	require.Equal(t, before, e.Schema())
	require.True(t, e.State().CanUndo, "history survives a failed save")

	_, err = sess.Publish(ctx)
	require.ErrorIs(t, err, errOffline)

	st.broken = false
	v, err := sess.Publish(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v.Number)
	require.False(t, e.IsDirty())
}

func TestReloadDiscardsEdits(t *testing.T) {
	ctx := context.Background()
	sess, err := session.Open(ctx, store.NewMemory(), builder.New(), "")
	require.NoError(t, err)

	e := sess.Engine()
	e.AddField(&schema.Node{Type: schema.TypeText}, builder.Root())
	require.NoError(t, sess.Reload(ctx))
	require.Empty(t, e.Schema().Fields)
	require.False(t, e.IsDirty())
}
