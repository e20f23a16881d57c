package audio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Naming selects how output segments are named.
type Naming int

const (
	// ChunkNaming produces <stem>_chunk000<ext>, numbered from 0.
	ChunkNaming Naming = iota
	// PartNaming produces <stem>_part001<ext>, numbered from 1.
	PartNaming
)

// String returns "chunk" or "part".
func (n Naming) String() string {
	if n == PartNaming {
		return "part"
	}
	return "chunk"
}

// Name returns the file name of segment index (zero-based) cut from src.
func (n Naming) Name(src string, index int) string {
	stem, ext := splitName(src)
	number := index
	if n == PartNaming {
		number++
	}
	return fmt.Sprintf("%s_%s%03d%s", stem, n, number, ext)
}

// Path returns the output path of segment index in dir.
// An empty dir means the directory of src.
func (n Naming) Path(src, dir string, index int) string {
	if dir == "" {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, n.Name(src, index))
}

// splitName returns the base name of path without its extension, and the
// extension including the dot. A dot file such as ".mp3" is all stem.
func splitName(path string) (stem, ext string) {
	base := filepath.Base(path)
	ext = filepath.Ext(base)
	stem = strings.TrimSuffix(base, ext)
	if stem == "" {
		return base, ""
	}
	return stem, ext
}
