package catalog

import (
	"embed"
	"io/fs"
)

//go:embed data/*.yaml
var embeddedCatalog embed.FS

// EmbeddedFS returns the bundled palettes. Pass it to LoadFS, or use Default.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedCatalog, "data")
	if err != nil {
		panic(err)
	}
	return sub
}
