package aggregate

import (
	"encoding/json"
	"sort"

	"github.com/KaramelBytes/meshstats-cli/internal/stats"
)

// ShapeRecords maps shape name to its statistics for one field.
type ShapeRecords map[string]*stats.Record

// FieldRecords maps field name to the per-shape statistics of one region.
type FieldRecords map[string]ShapeRecords

// Store holds region -> field -> shape -> Record for one run.
// The zero value is ready to use. Store is not safe for concurrent mutation.
type Store struct {
	regions map[string]FieldRecords
}

// New returns an empty Store.
func New() *Store {
	return &Store{regions: make(map[string]FieldRecords)}
}

// Clear drops every record.
func (s *Store) Clear() {
	s.regions = make(map[string]FieldRecords)
}

// Record stores rec under (region, field, shape). An existing record is replaced.
func (s *Store) Record(region, field, shape string, rec *stats.Record) {
	if s.regions == nil {
		s.regions = make(map[string]FieldRecords)
	}
	fields := s.regions[region]
	if fields == nil {
		fields = make(FieldRecords)
		s.regions[region] = fields
	}
	shapes := fields[field]
	if shapes == nil {
		shapes = make(ShapeRecords)
		fields[field] = shapes
	}
	shapes[shape] = rec
}

// Get returns the record for (region, field, shape).
func (s *Store) Get(region, field, shape string) (*stats.Record, bool) {
	rec, ok := s.regions[region][field][shape]
	return rec, ok
}

// Regions returns region names in ascending order.
func (s *Store) Regions() []string {
	return SortedKeys(s.regions)
}

// Fields returns the field names recorded for region in ascending order.
func (s *Store) Fields(region string) []string {
	return SortedKeys(s.regions[region])
}

// Shapes returns the shape names recorded for (region, field) in ascending order.
func (s *Store) Shapes(region, field string) []string {
	return SortedKeys(s.regions[region][field])
}

// Region returns the field subtree of region, or nil when absent.
// The returned map is shared with the Store.
func (s *Store) Region(region string) FieldRecords {
	return s.regions[region]
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	n := 0
	for _, fields := range s.regions {
		for _, shapes := range fields {
			n += len(shapes)
		}
	}
	return n
}

// MarshalJSON encodes the store as nested objects keyed by region, field and shape.
func (s *Store) MarshalJSON() ([]byte, error) {
	if s.regions == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.regions)
}

// UnmarshalJSON replaces the store contents with the decoded records.
func (s *Store) UnmarshalJSON(b []byte) error {
	var m map[string]FieldRecords
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	if m == nil {
		m = make(map[string]FieldRecords)
	}
	s.regions = m
	return nil
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
