package contract_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/contract"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

func ptr(v float64) *float64 { return &v }

func signupSchema() *schema.FormSchema {
	doc := schema.New()
	doc.Metadata = &schema.Metadata{Title: "Signup"}
	doc.Fields = []*schema.Node{
		{ID: "h", Type: schema.TypeHeading, Content: "Join us"},
		{ID: "f-name", Type: schema.TypeText, Name: "name", Label: "Name", Required: true},
		{ID: "grid", Type: schema.TypeGrid, Children: []*schema.Node{
			{ID: "f-email", Type: schema.TypeEmail, Name: "email", Required: true},
			{ID: "f-age", Type: schema.TypeNumber, Name: "age", Min: ptr(18), Max: ptr(120)},
		}},
		{ID: "tabs", Type: schema.TypeTabs, Tabs: []*schema.Section{
			{ID: "t1", Children: []*schema.Node{
				{ID: "f-plan", Type: schema.TypeSelect, Name: "plan", Options: []schema.Option{
					{Label: "Free", Value: "free"}, {Label: "Pro", Value: "pro"},
				}},
				{ID: "f-news", Type: schema.TypeSwitch},
			}},
		}},
	}
	return doc
}

func TestSchemaFlattensInputs(t *testing.T) {
	sch := contract.Schema(signupSchema())

	var keys []string
	for key := range sch.Properties {
		keys = append(keys, key)
	}
	want := map[string]bool{"name": true, "email": true, "age": true, "plan": true, "f-news": true}
	got := make(map[string]bool, len(keys))
	for _, key := range keys {
		got[key] = true
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "email"}, sch.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if sch.Title != "Signup" {
		t.Fatalf("title = %q", sch.Title)
	}
	if plan := sch.Properties["plan"].Value; len(plan.Enum) != 2 {
		t.Fatalf("plan enum = %v", plan.Enum)
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		payload map[string]any
		fields  []string
	}{
		{
			name:    "valid",
			payload: map[string]any{"name": "Ada", "email": "ada@example.com", "age": float64(36), "plan": "pro", "f-news": true},
		},
		{
			name:    "missing required",
			payload: map[string]any{"age": float64(40)},
			fields:  []string{"email", "name"},
		},
		{
			name:    "out of range and bad choice",
			payload: map[string]any{"name": "Ada", "email": "a@b.c", "age": float64(7), "plan": "gold"},
			fields:  []string{"age", "plan"},
		},
		{
			name:    "wrong type",
			payload: map[string]any{"name": "Ada", "email": "a@b.c", "f-news": "yes"},
			fields:  []string{"f-news"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issues, err := contract.Validate(ctx, signupSchema(), tc.payload)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			var fields []string
			for _, issue := range issues {
				if issue.Message == "" {
					t.Fatalf("issue without message: %+v", issue)
				}
				fields = append(fields, issue.Field)
			}
			if diff := cmp.Diff(tc.fields, fields); diff != "" {
				t.Fatalf("issue fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateStrictRejectsUnknownKeys(t *testing.T) {
	payload := map[string]any{"name": "Ada", "email": "a@b.c", "extra": 1.0}
	issues, err := contract.Validate(context.Background(), signupSchema(), payload)
	if err != nil || len(issues) != 0 {
		t.Fatalf("lenient validation failed: %v %v", issues, err)
	}
	issues, err = contract.Validate(context.Background(), signupSchema(), payload, contract.WithStrict(true))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(issues) == 0 {
		t.Fatalf("strict validation should reject unknown keys")
	}
}

func TestDocument(t *testing.T) {
	doc := contract.Document(signupSchema(), "/forms/abc/submissions")
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		OpenAPI string                     `json:"openapi"`
		Info    struct{ Title string }     `json:"info"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.OpenAPI != "3.0.3" || decoded.Info.Title != "Signup" {
		t.Fatalf("unexpected header: %+v", decoded)
	}
	if _, ok := decoded.Paths["/forms/abc/submissions"]; !ok {
		t.Fatalf("missing submission path: %s", raw)
	}
	if doc.Components.Schemas["Submission"].Value.Properties["email"] == nil {
		t.Fatalf("submission schema missing email")
	}
}
