package mesh

import "strings"

// Catalog lists the names offered for a set of shapes.
type Catalog struct {
	// Fields are single-component arrays eligible for statistics.
	Fields []string
	// Regions starts with EntireShape, followed by the mask arrays.
	Regions []string
}

// Classify partitions the array names shared by every shape into fields and
// region masks. Only single-component arrays present under the same name on all
// shapes are offered; names ending in suffix are regions. Order follows the
// first shape.
func Classify(shapes []Shape, suffix string) Catalog {
	cat := Catalog{Regions: []string{EntireShape}}
	if len(shapes) == 0 {
		return cat
	}
	for _, name := range shapes[0].ArrayNames() {
		if !sharedScalar(shapes, name) {
			continue
		}
		if suffix != "" && strings.HasSuffix(name, suffix) {
			cat.Regions = append(cat.Regions, name)
		} else {
			cat.Fields = append(cat.Fields, name)
		}
	}
	return cat
}

func sharedScalar(shapes []Shape, name string) bool {
	for _, s := range shapes {
		nc, ok := s.Components(name)
		if !ok || nc != 1 {
			return false
		}
	}
	return true
}

// HasField reports whether name is an offered field.
func (c Catalog) HasField(name string) bool { return contains(c.Fields, name) }

// HasRegion reports whether name is an offered region.
func (c Catalog) HasRegion(name string) bool { return contains(c.Regions, name) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
