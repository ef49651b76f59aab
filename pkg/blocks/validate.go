package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Validate checks the layout rules: unique non-empty ids, built-in block
// types, layout blocks only at the root, leaf blocks only inside layouts and
// header/footer zones locked.
func Validate(d *Document) error {
	if d == nil {
		return fmt.Errorf("blocks: nil document: %w", ErrInvalidDocument)
	}
	if d.Version != "" && d.Version != CurrentVersion {
		return fmt.Errorf("blocks: version %q: %w", d.Version, ErrInvalidDocument)
	}
	var problems []string
	seen := make(map[string]struct{})
	check := func(b *Instance, path string) {
		if b.ID == "" {
			problems = append(problems, path+": empty id")
		} else if _, dup := seen[b.ID]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate id %q", path, b.ID))
		}
		seen[b.ID] = struct{}{}
		if !b.BlockType.Known() {
			problems = append(problems, fmt.Sprintf("%s: unknown block type %q", path, b.BlockType))
		}
	}
	for i, block := range d.Blocks {
		path := fmt.Sprintf("blocks[%d]", i)
		if block == nil {
			problems = append(problems, path+": null block")
			continue
		}
		check(block, path)
		if block.BlockType.Known() && !block.BlockType.IsLayout() {
			problems = append(problems, fmt.Sprintf("%s: %s is not a layout block", path, block.BlockType))
		}
		if block.BlockType.IsZone() && !block.IsLocked {
			problems = append(problems, fmt.Sprintf("%s: %s must be locked", path, block.BlockType))
		}
		for j, child := range block.ChildBlocks {
			at := fmt.Sprintf("%s.childblocks[%d]", path, j)
			if child == nil {
				problems = append(problems, at+": null block")
				continue
			}
			check(child, at)
			if child.BlockType.IsLayout() {
				problems = append(problems, fmt.Sprintf("%s: layout %s cannot nest", at, child.BlockType))
			}
			if len(child.ChildBlocks) > 0 {
				problems = append(problems, at+": leaf block with children")
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(problems, "; "))
	}
	return nil
}

// Decode parses and validates a persisted block document.
func Decode(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("blocks: decode: empty document: %w", ErrInvalidDocument)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("blocks: decode: %w: %v", ErrInvalidDocument, err)
	}
	if doc.Version == "" {
		doc.Version = CurrentVersion
	}
	if doc.Blocks == nil {
		doc.Blocks = []*Instance{}
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode serialises d.
func Encode(d *Document) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("blocks: encode: %w", ErrInvalidDocument)
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("blocks: encode: %w", err)
	}
	return data, nil
}
