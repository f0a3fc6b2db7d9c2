package mesh

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Reader decodes one shape file format.
type Reader interface {
	CanRead(filename string) bool
	Read(data []byte, name string) (*PolyData, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ShapeName derives a display name from a file path: the base name without extension.
func ShapeName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads a shape file, selecting a reader by filename.
func Load(path string) (*PolyData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shape: %w", err)
	}
	for _, r := range registry {
		if r.CanRead(path) {
			p, err := r.Read(data, ShapeName(path))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
}

// LoadAll loads every path in order. Shapes must end up with distinct names.
func LoadAll(paths []string) ([]Shape, error) {
	shapes := make([]Shape, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		p, err := Load(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[p.Name()]; ok {
			return nil, fmt.Errorf("shape name %q used by both %s and %s", p.Name(), prev, path)
		}
		seen[p.Name()] = path
		shapes = append(shapes, p)
	}
	return shapes, nil
}

func init() {
	Register(vtkReader{})
	Register(tableReader{})
	Register(xlsxReader{})
}
