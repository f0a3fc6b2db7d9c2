// Package session persists completed runs so their statistics can be
// re-exported without recomputation.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/meshstats-cli/internal/aggregate"
	"github.com/KaramelBytes/meshstats-cli/internal/engine"
	"github.com/KaramelBytes/meshstats-cli/internal/utils"
)

const fileExt = ".json"

// ErrNotFound is returned when no saved run matches.
var ErrNotFound = errors.New("run not found")

// Failure is the persisted form of an engine.TripleError.
type Failure struct {
	Region string `json:"region"`
	Field  string `json:"field"`
	Shape  string `json:"shape"`
	Error  string `json:"error"`
}

// Run is one computation persisted on disk.
type Run struct {
	ID          string           `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	Shapes      []string         `json:"shapes"`
	Fields      []string         `json:"fields"`
	Regions     []string         `json:"regions"`
	Precision   int              `json:"precision"`
	Percentiles []float64        `json:"percentiles"`
	Failures    []Failure        `json:"failures,omitempty"`
	Store       *aggregate.Store `json:"store"`
}

// New builds a Run with a fresh ID from a finished computation.
func New(shapes, fields, regions []string, precision int, percentiles []float64, store *aggregate.Store, failures []*engine.TripleError) *Run {
	r := &Run{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		Shapes:      shapes,
		Fields:      fields,
		Regions:     regions,
		Precision:   precision,
		Percentiles: percentiles,
		Store:       store,
	}
	for _, f := range failures {
		r.Failures = append(r.Failures, Failure{Region: f.Region, Field: f.Field, Shape: f.Shape, Error: f.Err.Error()})
	}
	return r
}

// Save writes <dir>/<id>.json using atomic write.
func (r *Run) Save(dir string) error {
	if r.ID == "" {
		return errors.New("run id not set")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(dir, r.ID+fileExt), data)
}

// Load reads a run by ID. A unique ID prefix is accepted.
func Load(dir, id string) (*Run, error) {
	path := filepath.Join(dir, id+fileExt)
	if _, err := os.Stat(path); err != nil {
		resolved, rerr := resolvePrefix(dir, id)
		if rerr != nil {
			return nil, rerr
		}
		path = resolved
	}
	return read(path)
}

func resolvePrefix(dir, prefix string) (string, error) {
	entries, err := runFiles(dir)
	if err != nil {
		return "", err
	}
	var match string
	for _, name := range entries {
		if strings.HasPrefix(name, prefix) {
			if match != "" {
				return "", fmt.Errorf("run id %q is ambiguous", prefix)
			}
			match = name
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	return filepath.Join(dir, match), nil
}

func read(path string) (*Run, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}
	var r Run
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse run %s: %w", filepath.Base(path), err)
	}
	if r.Store == nil {
		r.Store = aggregate.New()
	}
	return &r, nil
}

// List returns every saved run, newest first. Unreadable files are skipped.
func List(dir string) ([]*Run, error) {
	names, err := runFiles(dir)
	if err != nil {
		return nil, err
	}
	var runs []*Run
	for _, name := range names {
		r, err := read(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		runs = append(runs, r)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	return runs, nil
}

// Latest returns the most recent saved run.
func Latest(dir string) (*Run, error) {
	runs, err := List(dir)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNotFound, dir)
	}
	return runs[0], nil
}

func runFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read runs dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
