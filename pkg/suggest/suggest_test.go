package suggest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/ids"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/suggest"
	"github.com/goliatone/go-formbuilder/pkg/tree"
)

func fixed(text string) suggest.Suggester {
	return suggest.SuggesterFunc(func(context.Context, suggest.Request) (string, error) {
		return text, nil
	})
}

func types(nodes []*schema.Node) []schema.FieldType {
	out := make([]schema.FieldType, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Type)
	}
	return out
}

func TestParseCandidateShapes(t *testing.T) {
	cases := []struct {
		name       string
		text       string
		wantTypes  []schema.FieldType
		wantSchema bool
	}{
		{
			name:      "bare array",
			text:      `[{"type":"text","label":"Name"},{"type":"email","label":"Email"}]`,
			wantTypes: []schema.FieldType{schema.TypeText, schema.TypeEmail},
		},
		{
			name:      "fenced fragment",
			text:      "Here you go:\n```json\n{\"fields\":[{\"type\":\"phone\"}]}\n```\nEnjoy.",
			wantTypes: []schema.FieldType{schema.TypePhone},
		},
		{
			name:       "full schema",
			text:       `{"version":"1.0","fields":[{"type":"rating"}],"settings":{"submitLabel":"Go"}}`,
			wantTypes:  []schema.FieldType{schema.TypeRating},
			wantSchema: true,
		},
		{
			name:      "single field",
			text:      `{"type":"date","label":"When"}`,
			wantTypes: []schema.FieldType{schema.TypeDate},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := suggest.ParseCandidate(tc.text)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if diff := cmp.Diff(tc.wantTypes, types(got.Fields)); diff != "" {
				t.Fatalf("types mismatch (-want +got):\n%s", diff)
			}
			if (got.Schema != nil) != tc.wantSchema {
				t.Fatalf("schema presence = %v, want %v", got.Schema != nil, tc.wantSchema)
			}
		})
	}
}

func TestParseCandidateEmpty(t *testing.T) {
	for _, text := range []string{"", "```\n```", "[]", `{"fields":[]}`, `{"note":"nothing"}`} {
		if _, err := suggest.ParseCandidate(text); !errors.Is(err, suggest.ErrEmptyCandidate) {
			t.Fatalf("ParseCandidate(%q) error = %v, want ErrEmptyCandidate", text, err)
		}
	}
	if _, err := suggest.ParseCandidate("not json"); err == nil || errors.Is(err, suggest.ErrEmptyCandidate) {
		t.Fatalf("expected a parse error, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	doc := schema.New()
	doc.Fields = []*schema.Node{
		{ID: "g", Type: schema.TypeGrid, Title: "Contact", Children: []*schema.Node{
			{ID: "e", Type: schema.TypeEmail, Label: "Email", Required: true},
		}},
		{ID: "h", Type: schema.TypeHeading, Content: "Thanks"},
	}
	want := []suggest.FieldSummary{
		{ID: "g", Type: schema.TypeGrid, Label: "Contact"},
		{ID: "e", Type: schema.TypeEmail, Label: "Email", Required: true, Depth: 1},
		{ID: "h", Type: schema.TypeHeading, Label: "Thanks"},
	}
	if diff := cmp.Diff(want, suggest.Summarize(doc)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyAppendSendsContextAndRegeneratesIDs(t *testing.T) {
	e := builder.New(builder.WithIDGenerator(ids.NewSequence("f")))
	existing, _ := e.AddField(&schema.Node{Type: schema.TypeText, Label: "Name"}, builder.Root())

	var seen suggest.Request
	gen := suggest.SuggesterFunc(func(_ context.Context, req suggest.Request) (string, error) {
		seen = req
		return `[{"id":"` + existing + `","type":"email","label":"Email"},{"type":"grid","children":[{"type":"phone"}]}]`, nil
	})

	result, err := suggest.Apply(context.Background(), e, gen, "add contact fields", suggest.ModeAppend,
		suggest.WithIDGenerator(ids.NewSequence("ai")))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if seen.Prompt != "add contact fields" || len(seen.Context) != 1 || seen.Context[0].ID != existing {
		t.Fatalf("unexpected request: %+v", seen)
	}
	if diff := cmp.Diff([]string{"ai-1", "ai-2"}, result.Added); diff != "" {
		t.Fatalf("added mismatch (-want +got):\n%s", diff)
	}

	doc := e.Schema()
	if diff := cmp.Diff([]schema.FieldType{schema.TypeText, schema.TypeEmail, schema.TypeGrid}, types(doc.Fields)); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if dupes := tree.DuplicateIDs(doc.Fields); len(dupes) > 0 {
		t.Fatalf("duplicate ids: %v", dupes)
	}
	if doc.Fields[2].Children[0].ID != "ai-3" {
		t.Fatalf("nested id not regenerated: %q", doc.Fields[2].Children[0].ID)
	}
	// Each appended field is one ordinary history entry.
	if state := e.State(); state.HistoryLen != 4 {
		t.Fatalf("history len = %d, want 4", state.HistoryLen)
	}
}

func TestApplyDropsUnknownTypes(t *testing.T) {
	e := builder.New()
	result, err := suggest.Apply(context.Background(), e,
		fixed(`[{"type":"hologram"},{"type":"section","children":[{"type":"teleporter"},{"type":"text"}]}]`),
		"x", suggest.ModeAppend)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := []schema.FieldType{"hologram", "teleporter"}
	if diff := cmp.Diff(want, result.Dropped); diff != "" {
		t.Fatalf("dropped mismatch (-want +got):\n%s", diff)
	}
	doc := e.Schema()
	if len(doc.Fields) != 1 || len(doc.Fields[0].Children) != 1 || doc.Fields[0].Children[0].Type != schema.TypeText {
		t.Fatalf("unexpected document: %+v", doc.Fields)
	}
}

func TestApplySkipsNullEntries(t *testing.T) {
	e := builder.New()
	result, err := suggest.Apply(context.Background(), e,
		fixed(`[null,{"type":"grid","children":[null,{"type":"text"}]},{"type":"tabs","tabs":[null,{"id":"t","title":"One","children":[null,{"type":"email"}]}]}]`),
		"x", suggest.ModeAppend)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(result.Added) != 2 {
		t.Fatalf("added = %v", result.Added)
	}
	doc := e.Schema()
	if diff := cmp.Diff([]schema.FieldType{schema.TypeGrid, schema.TypeTabs}, types(doc.Fields)); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]schema.FieldType{schema.TypeText}, types(doc.Fields[0].Children)); diff != "" {
		t.Fatalf("grid children mismatch (-want +got):\n%s", diff)
	}
	tabs := doc.Fields[1].Tabs
	if len(tabs) != 1 || len(tabs[0].Children) != 1 || tabs[0].Children[0].Type != schema.TypeEmail {
		t.Fatalf("unexpected tabs: %+v", tabs)
	}
}

func TestApplyOnlyUnknownTypesIsEmpty(t *testing.T) {
	e := builder.New()
	_, err := suggest.Apply(context.Background(), e, fixed(`[{"type":"hologram"}]`), "x", suggest.ModeAppend)
	if !errors.Is(err, suggest.ErrEmptyCandidate) {
		t.Fatalf("expected ErrEmptyCandidate, got %v", err)
	}
	if e.IsDirty() {
		t.Fatalf("engine should be untouched")
	}
}

func TestApplyReplaceKeepsCandidateSettings(t *testing.T) {
	e := builder.New()
	e.AddField(&schema.Node{Type: schema.TypeText, Label: "Old"}, builder.Root())

	_, err := suggest.Apply(context.Background(), e,
		fixed("```json\n{\"version\":\"1.0\",\"fields\":[{\"type\":\"email\"}],\"settings\":{\"submitLabel\":\"Join\"}}\n```"),
		"newsletter", suggest.ModeReplace)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	doc := e.Schema()
	if len(doc.Fields) != 1 || doc.Fields[0].Type != schema.TypeEmail || doc.Fields[0].ID == "" {
		t.Fatalf("unexpected fields: %+v", doc.Fields)
	}
	if doc.Settings.SubmitLabel != "Join" {
		t.Fatalf("settings not carried: %+v", doc.Settings)
	}
	if !e.Undo() || e.Schema().Fields[0].Label != "Old" {
		t.Fatalf("replace should be undoable")
	}
}

func TestApplyFailureLeavesEngineUntouched(t *testing.T) {
	e := builder.New()
	e.AddField(&schema.Node{Type: schema.TypeText}, builder.Root())
	before := e.State()

	boom := errors.New("quota exceeded")
	failing := suggest.SuggesterFunc(func(context.Context, suggest.Request) (string, error) {
		return "", boom
	})
	if _, err := suggest.Apply(context.Background(), e, failing, "x", suggest.ModeReplace); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
	if _, err := suggest.Apply(context.Background(), e, fixed("{oops"), "x", suggest.ModeAppend); err == nil {
		t.Fatalf("expected parse error")
	}
	after := e.State()
	if before.Revision != after.Revision || before.HistoryLen != after.HistoryLen {
		t.Fatalf("engine changed: before=%+v after=%+v", before, after)
	}
}
