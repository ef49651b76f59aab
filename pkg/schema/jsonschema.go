package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// DocumentJSONSchema describes the persisted document format so external
// tools (and the AI suggestion prompt) can validate or generate documents.
func DocumentJSONSchema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: false,
		AllowAdditionalProperties:  false,
	}
	doc := reflector.Reflect(&FormSchema{})
	doc.Title = "FormSchema"
	doc.Description = fmt.Sprintf("Form builder document, version %s", CurrentVersion)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: encode json schema: %w", err)
	}
	return data, nil
}
