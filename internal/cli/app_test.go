package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbuilder/internal/cli"
	"github.com/goliatone/go-formbuilder/internal/prompt"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/session"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func newApp(t *testing.T, answers ...any) (*cli.App, *prompt.Script, *session.Session, store.Store) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory(store.WithIDFunc(func() string { return "form-1" }))
	sess, err := session.Open(ctx, st, testsupport.NewEngine(t, "f", nil), "")
	require.NoError(t, err)
	script := prompt.NewScript(answers...)
	return cli.New(sess, script), script, sess, st
}

func TestAddEditSaveQuit(t *testing.T) {
	app, script, _, st := newApp(t,
		cli.ActionAdd, "Text (text)", "End of form",
		cli.ActionEdit, "text", "Label (label)", "Full name",
		cli.ActionSave,
		cli.ActionQuit,
	)

	require.NoError(t, app.Run(context.Background()))

	form, err := st.Load(context.Background(), "form-1")
	require.NoError(t, err)
	require.Len(t, form.Schema.Fields, 1)
	assert.Equal(t, schema.TypeText, form.Schema.Fields[0].Type)
	assert.Equal(t, "Full name", form.Schema.Fields[0].Label)
	assert.Contains(t, script.Infos(), "saved")
}

func TestAbortLeavesStoreUntouched(t *testing.T) {
	app, _, sess, st := newApp(t, cli.ActionAdd, "Email (email)", "End of form")

	require.NoError(t, app.Run(context.Background()))

	assert.True(t, sess.Engine().IsDirty())
	form, err := st.Load(context.Background(), "form-1")
	require.NoError(t, err)
	assert.Empty(t, form.Schema.Fields)
}

func TestQuitDirtySavesOnConfirm(t *testing.T) {
	app, _, sess, st := newApp(t,
		cli.ActionAdd, "Email (email)", "End of form",
		cli.ActionQuit, true,
	)

	require.NoError(t, app.Run(context.Background()))

	assert.False(t, sess.Engine().IsDirty())
	form, err := st.Load(context.Background(), "form-1")
	require.NoError(t, err)
	require.Len(t, form.Schema.Fields, 1)
	assert.Equal(t, schema.TypeEmail, form.Schema.Fields[0].Type)
}

func TestMoveIntoGrid(t *testing.T) {
	app, _, sess, _ := newApp(t,
		cli.ActionAdd, "Grid (grid)", "End of form",
		cli.ActionAdd, "Text (text)", "End of form",
		cli.ActionMove, "text", "End of grid",
	)
	require.NoError(t, app.Run(context.Background()))

	doc := sess.Engine().Schema()
	require.Len(t, doc.Fields, 1)
	grid := doc.Fields[0]
	assert.Equal(t, schema.TypeGrid, grid.Type)
	require.Len(t, grid.Children, 1)
	assert.Equal(t, schema.TypeText, grid.Children[0].Type)
}

func TestUndoRedoAndEmptyMessages(t *testing.T) {
	app, script, sess, _ := newApp(t,
		cli.ActionUndo,
		cli.ActionPaste,
		cli.ActionAdd, "Text (text)", "End of form",
		cli.ActionUndo,
		cli.ActionRedo,
		cli.ActionRedo,
	)

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, []string{"nothing to undo", "clipboard is empty", "nothing to redo"}, script.Infos())
	assert.Len(t, sess.Engine().Schema().Fields, 1)
}

func TestCopyPasteAndDelete(t *testing.T) {
	app, _, sess, _ := newApp(t,
		cli.ActionAdd, "Text (text)", "End of form",
		cli.ActionCopy, "text",
		cli.ActionPaste, "End of form",
		cli.ActionDelete, "text",
	)

	require.NoError(t, app.Run(context.Background()))

	fields := sess.Engine().Schema().Fields
	require.Len(t, fields, 1)
	assert.NotEqual(t, "f-1", fields[0].ID)
}

func TestEditOptionsAndRequired(t *testing.T) {
	app, _, sess, _ := newApp(t,
		cli.ActionAdd, "Dropdown (select)", "End of form",
		cli.ActionEdit, "select", "Required (required)", true,
		cli.ActionEdit, "select", "Options (options)", "Red=r\nGreen",
	)

	require.NoError(t, app.Run(context.Background()))

	node := sess.Engine().Schema().Fields[0]
	assert.True(t, node.Required)
	assert.Equal(t, []schema.Option{{Label: "Red", Value: "r"}, {Label: "Green", Value: "green"}}, node.Options)
}

func TestPreviewWritesFileAndRestoresMode(t *testing.T) {
	out := filepath.Join(t.TempDir(), "preview.html")
	app, _, sess, _ := newApp(t,
		cli.ActionAdd, "Text (text)", "End of form",
		cli.ActionPreview, out,
	)

	require.NoError(t, app.Run(context.Background()))

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "fb-preview")
	assert.Contains(t, string(html), "Text field")
	assert.Equal(t, builder.ModeDesign, sess.Engine().Mode())
}

func TestPublishReportsVersion(t *testing.T) {
	app, script, _, st := newApp(t,
		cli.ActionAdd, "Text (text)", "End of form",
		cli.ActionPublish,
	)

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, script.Infos(), "published version 1")
	versions, err := st.Versions(context.Background(), "form-1")
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}
