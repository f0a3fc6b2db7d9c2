package mesh

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// vtkReader reads legacy VTK ASCII files (.vtk). Only POINT_DATA arrays are kept.
type vtkReader struct{}

func (vtkReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".vtk")
}

func (vtkReader) Read(data []byte, name string) (*PolyData, error) {
	body, err := vtkHeader(data)
	if err != nil {
		return nil, err
	}
	tk := newTokens(body)
	p := NewPolyData(name, 0)

	const (
		sectionNone = iota
		sectionPoint
		sectionCell
	)
	section := sectionNone
	tuples := 0 // tuple count of the current attribute section
	keep := func(a *Array) error {
		if section != sectionPoint {
			return nil
		}
		return p.AddArray(a)
	}

	for {
		kw, ok := tk.next()
		if !ok {
			break
		}
		switch strings.ToUpper(kw) {
		case "DATASET":
			if _, err := tk.word("dataset type"); err != nil {
				return nil, err
			}
		case "POINTS":
			n, err := tk.integer("point count")
			if err != nil {
				return nil, err
			}
			if _, err := tk.word("point type"); err != nil {
				return nil, err
			}
			if err := tk.skip(3 * n); err != nil {
				return nil, fmt.Errorf("points: %w", err)
			}
			p.points = n
		case "VERTICES", "LINES", "POLYGONS", "TRIANGLE_STRIPS", "CELLS":
			if err := tk.skipCells(kw); err != nil {
				return nil, err
			}
		case "CELL_TYPES":
			n, err := tk.integer("cell type count")
			if err != nil {
				return nil, err
			}
			if err := tk.skip(n); err != nil {
				return nil, fmt.Errorf("cell types: %w", err)
			}
		case "POINT_DATA":
			n, err := tk.integer("point data count")
			if err != nil {
				return nil, err
			}
			if p.points != 0 && n != p.points {
				return nil, fmt.Errorf("POINT_DATA %d does not match %d points", n, p.points)
			}
			section, tuples = sectionPoint, n
		case "CELL_DATA":
			n, err := tk.integer("cell data count")
			if err != nil {
				return nil, err
			}
			section, tuples = sectionCell, n
		case "SCALARS":
			a, err := tk.scalars(tuples)
			if err != nil {
				return nil, err
			}
			if err := keep(a); err != nil {
				return nil, err
			}
		case "COLOR_SCALARS":
			an, err := tk.word("array name")
			if err != nil {
				return nil, err
			}
			nc, err := tk.integer("component count")
			if err != nil {
				return nil, err
			}
			vals, err := tk.floats(tuples * nc)
			if err != nil {
				return nil, fmt.Errorf("color scalars %q: %w", an, err)
			}
			if err := keep(&Array{Name: decodeName(an), Components: nc, Values: vals}); err != nil {
				return nil, err
			}
		case "VECTORS", "NORMALS", "TENSORS":
			an, err := tk.word("array name")
			if err != nil {
				return nil, err
			}
			if _, err := tk.word("data type"); err != nil {
				return nil, err
			}
			nc := 3
			if strings.EqualFold(kw, "TENSORS") {
				nc = 9
			}
			vals, err := tk.floats(tuples * nc)
			if err != nil {
				return nil, fmt.Errorf("%s %q: %w", strings.ToLower(kw), an, err)
			}
			if err := keep(&Array{Name: decodeName(an), Components: nc, Values: vals}); err != nil {
				return nil, err
			}
		case "TEXTURE_COORDINATES":
			an, err := tk.word("array name")
			if err != nil {
				return nil, err
			}
			nc, err := tk.integer("dimension")
			if err != nil {
				return nil, err
			}
			if _, err := tk.word("data type"); err != nil {
				return nil, err
			}
			vals, err := tk.floats(tuples * nc)
			if err != nil {
				return nil, fmt.Errorf("texture coordinates %q: %w", an, err)
			}
			if err := keep(&Array{Name: decodeName(an), Components: nc, Values: vals}); err != nil {
				return nil, err
			}
		case "LOOKUP_TABLE":
			if _, err := tk.word("table name"); err != nil {
				return nil, err
			}
			size, err := tk.integer("table size")
			if err != nil {
				return nil, err
			}
			if err := tk.skip(4 * size); err != nil {
				return nil, fmt.Errorf("lookup table: %w", err)
			}
		case "FIELD":
			arrays, err := tk.field()
			if err != nil {
				return nil, err
			}
			for _, a := range arrays {
				if err := keep(a); err != nil {
					return nil, err
				}
			}
		case "METADATA":
			if err := tk.metadata(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unexpected keyword %q", ErrUnsupported, kw)
		}
	}
	return p, nil
}

// vtkHeader validates the three header lines and returns the remaining body.
func vtkHeader(data []byte) ([]byte, error) {
	rest := data
	var lines [3]string
	for i := range lines {
		idx := bytes.IndexByte(rest, '\n')
		if idx < 0 {
			return nil, fmt.Errorf("%w: truncated vtk header", ErrUnsupported)
		}
		lines[i] = strings.TrimSpace(string(rest[:idx]))
		rest = rest[idx+1:]
	}
	if !strings.HasPrefix(lines[0], "# vtk DataFile") {
		return nil, fmt.Errorf("%w: missing vtk signature", ErrUnsupported)
	}
	if !strings.EqualFold(lines[2], "ASCII") {
		return nil, fmt.Errorf("%w: %s vtk files", ErrUnsupported, strings.ToLower(lines[2]))
	}
	return rest, nil
}

// decodeName undoes VTK's %XX escaping of array names.
func decodeName(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	if d, err := url.PathUnescape(s); err == nil {
		return d
	}
	return s
}

type tokens struct {
	sc      *bufio.Scanner
	pending []string
}

func newTokens(body []byte) *tokens {
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)
	return &tokens{sc: sc}
}

func (t *tokens) next() (string, bool) {
	if n := len(t.pending); n > 0 {
		tok := t.pending[n-1]
		t.pending = t.pending[:n-1]
		return tok, true
	}
	if !t.sc.Scan() {
		return "", false
	}
	return t.sc.Text(), true
}

func (t *tokens) unread(tok string) { t.pending = append(t.pending, tok) }

func (t *tokens) word(what string) (string, error) {
	tok, ok := t.next()
	if !ok {
		return "", fmt.Errorf("unexpected end of file reading %s", what)
	}
	return tok, nil
}

func (t *tokens) integer(what string) (int, error) {
	tok, err := t.word(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", what, tok)
	}
	return n, nil
}

func (t *tokens) skip(n int) error {
	for i := 0; i < n; i++ {
		if _, ok := t.next(); !ok {
			return fmt.Errorf("expected %d values, found %d", n, i)
		}
	}
	return nil
}

func (t *tokens) floats(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		tok, ok := t.next()
		if !ok {
			return nil, fmt.Errorf("expected %d values, found %d", n, i)
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// skipCells skips a topology block, both the classic "n size" layout and the
// OFFSETS/CONNECTIVITY layout of format 5.x.
func (t *tokens) skipCells(kw string) error {
	n, err := t.integer(strings.ToLower(kw) + " count")
	if err != nil {
		return err
	}
	size, err := t.integer(strings.ToLower(kw) + " size")
	if err != nil {
		return err
	}
	tok, ok := t.next()
	if !ok {
		return nil
	}
	if !strings.EqualFold(tok, "OFFSETS") {
		t.unread(tok)
		return t.skip(size)
	}
	if _, err := t.word("offsets type"); err != nil {
		return err
	}
	if err := t.skip(n); err != nil {
		return fmt.Errorf("offsets: %w", err)
	}
	if tok, err := t.word("CONNECTIVITY"); err != nil || !strings.EqualFold(tok, "CONNECTIVITY") {
		return fmt.Errorf("%s: expected CONNECTIVITY", strings.ToLower(kw))
	}
	if _, err := t.word("connectivity type"); err != nil {
		return err
	}
	return t.skip(size)
}

// scalars reads "SCALARS name type [ncomp]" followed by an optional LOOKUP_TABLE
// line and the values.
func (t *tokens) scalars(tuples int) (*Array, error) {
	an, err := t.word("array name")
	if err != nil {
		return nil, err
	}
	if _, err := t.word("data type"); err != nil {
		return nil, err
	}
	// The optional component count is only taken when LOOKUP_TABLE follows it;
	// otherwise a leading integer is the first data value.
	nc := 1
	tok, ok := t.next()
	if ok {
		if n, err := strconv.Atoi(tok); err == nil {
			after, more := t.next()
			if more && strings.EqualFold(after, "LOOKUP_TABLE") {
				nc = n
				tok = after
			} else {
				if more {
					t.unread(after)
				}
				t.unread(tok)
				ok = false
			}
		}
	}
	if ok {
		if strings.EqualFold(tok, "LOOKUP_TABLE") {
			if _, err := t.word("lookup table name"); err != nil {
				return nil, err
			}
		} else {
			t.unread(tok)
		}
	}
	if nc < 1 {
		return nil, fmt.Errorf("scalars %q: invalid component count %d", an, nc)
	}
	vals, err := t.floats(tuples * nc)
	if err != nil {
		return nil, fmt.Errorf("scalars %q: %w", an, err)
	}
	return &Array{Name: decodeName(an), Components: nc, Values: vals}, nil
}

// field reads "FIELD name k" and its k "name ncomp ntuples type" arrays.
func (t *tokens) field() ([]*Array, error) {
	if _, err := t.word("field name"); err != nil {
		return nil, err
	}
	k, err := t.integer("field array count")
	if err != nil {
		return nil, err
	}
	out := make([]*Array, 0, k)
	for i := 0; i < k; i++ {
		an, err := t.word("array name")
		if err != nil {
			return nil, err
		}
		if an == "NULL_ARRAY" {
			continue
		}
		nc, err := t.integer("component count")
		if err != nil {
			return nil, err
		}
		nt, err := t.integer("tuple count")
		if err != nil {
			return nil, err
		}
		if _, err := t.word("data type"); err != nil {
			return nil, err
		}
		vals, err := t.floats(nc * nt)
		if err != nil {
			return nil, fmt.Errorf("field array %q: %w", an, err)
		}
		if tok, ok := t.next(); ok {
			if strings.EqualFold(tok, "METADATA") {
				if err := t.metadata(); err != nil {
					return nil, err
				}
			} else {
				t.unread(tok)
			}
		}
		out = append(out, &Array{Name: decodeName(an), Components: nc, Values: vals})
	}
	return out, nil
}

// metadata accepts the empty "METADATA INFORMATION 0" block written by recent VTK.
func (t *tokens) metadata() error {
	tok, err := t.word("metadata kind")
	if err != nil {
		return err
	}
	if !strings.EqualFold(tok, "INFORMATION") {
		return fmt.Errorf("%w: metadata %q", ErrUnsupported, tok)
	}
	n, err := t.integer("information count")
	if err != nil {
		return err
	}
	if n != 0 {
		return fmt.Errorf("%w: non-empty metadata", ErrUnsupported)
	}
	return nil
}
