package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/blocks"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// LoadFS walks fsys and merges every JSON/YAML catalog file in lexical order.
// A nil filesystem yields an empty catalog.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	cat := &Catalog{
		fields: make(map[schema.FieldType]FieldEntry),
		blocks: make(map[blocks.BlockType]BlockEntry),
	}
	if fsys == nil {
		return cat, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		for _, field := range doc.Fields {
			if err := cat.addField(field, path); err != nil {
				return err
			}
		}
		for _, block := range doc.Blocks {
			if err := cat.addBlock(block, path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

type documentFile struct {
	Fields []FieldEntry `json:"fields" yaml:"fields"`
	Blocks []BlockEntry `json:"blocks" yaml:"blocks"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("catalog: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("catalog: parse %s: invalid JSON or YAML", source)
}

func (c *Catalog) addField(entry FieldEntry, source string) error {
	if strings.TrimSpace(string(entry.Type)) == "" {
		return fmt.Errorf("catalog: file %s defines a field with an empty type", source)
	}
	if _, exists := c.fields[entry.Type]; exists {
		return fmt.Errorf("catalog: duplicate field type %q (file %s)", entry.Type, source)
	}
	allowed := schema.AttributeKeys(entry.Type)
	for _, attr := range entry.Attributes {
		if !slices.Contains(allowed, attr.Key) {
			return fmt.Errorf("catalog: field %q (file %s) describes attribute %q it does not have", entry.Type, source, attr.Key)
		}
	}
	for key := range entry.Defaults {
		if !slices.Contains(allowed, key) {
			return fmt.Errorf("catalog: field %q (file %s) defaults unknown attribute %q", entry.Type, source, key)
		}
	}
	if len(entry.Sections) > 0 && entry.Type.Kind() != schema.KindMultiBranch {
		return fmt.Errorf("catalog: field %q (file %s) declares sections but is not multi-branch", entry.Type, source)
	}
	entry.Icon = cleanPaletteIcon(entry.Icon)
	if entry.Category == "" {
		entry.Category = categoryOf(entry.Type)
	}
	c.fields[entry.Type] = entry
	c.fieldOrder = append(c.fieldOrder, entry.Type)
	return nil
}

func (c *Catalog) addBlock(entry BlockEntry, source string) error {
	if !entry.Type.Known() {
		return fmt.Errorf("catalog: file %s defines unknown block type %q", source, entry.Type)
	}
	if _, exists := c.blocks[entry.Type]; exists {
		return fmt.Errorf("catalog: duplicate block type %q (file %s)", entry.Type, source)
	}
	allowed := blocks.AttributeKeys(entry.Type)
	for _, attr := range entry.Attributes {
		if !slices.Contains(allowed, attr.Key) {
			return fmt.Errorf("catalog: block %q (file %s) describes attribute %q it does not have", entry.Type, source, attr.Key)
		}
	}
	if _, err := blocks.ApplyPatch(&blocks.Instance{BlockType: entry.Type}, entry.Defaults); err != nil {
		return fmt.Errorf("catalog: block %q (file %s) defaults: %w", entry.Type, source, err)
	}
	entry.Icon = cleanPaletteIcon(entry.Icon)
	if entry.Category == "" {
		entry.Category = CategoryInput
		if entry.Type.IsLayout() {
			entry.Category = CategoryLayout
		}
	}
	c.blocks[entry.Type] = entry
	c.blockOrder = append(c.blockOrder, entry.Type)
	return nil
}

func categoryOf(t schema.FieldType) Category {
	switch t.Kind() {
	case schema.KindStatic:
		return CategoryStatic
	case schema.KindContainer, schema.KindMultiBranch:
		return CategoryLayout
	}
	return CategoryInput
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
