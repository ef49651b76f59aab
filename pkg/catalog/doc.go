// Package catalog describes what can be dropped on a builder canvas: the
// palette of field types and block types, their default attributes and the
// property descriptors the properties panel renders. Catalogs are YAML or
// JSON files loaded from any fs.FS; a default set is embedded.
package catalog
