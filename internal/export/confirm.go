package export

import (
	"fmt"
	"strings"
)

// Decision is the caller's answer when an export destination already exists.
type Decision int

const (
	// Skip leaves this file untouched.
	Skip Decision = iota
	// Overwrite replaces this file.
	Overwrite
	// SkipAll skips this file and every file still pending in the batch.
	SkipAll
	// OverwriteAll replaces this file and every later existing file in the batch without asking.
	OverwriteAll
)

func (d Decision) String() string {
	switch d {
	case Skip:
		return "no"
	case Overwrite:
		return "yes"
	case SkipAll:
		return "no to all"
	case OverwriteAll:
		return "yes to all"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// ParseDecision accepts yes/no/all/none and their usual spellings.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return Overwrite, nil
	case "n", "no":
		return Skip, nil
	case "a", "all", "yes to all", "yes-to-all":
		return OverwriteAll, nil
	case "none", "no to all", "no-to-all", "q", "quit":
		return SkipAll, nil
	default:
		return Skip, fmt.Errorf("unrecognized answer %q (use yes, no, all or none)", s)
	}
}

// Confirmer decides what to do with an export destination that already exists.
// Confirm may block, e.g. on an interactive prompt.
type Confirmer interface {
	Confirm(path string) (Decision, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(path string) (Decision, error)

func (f ConfirmFunc) Confirm(path string) (Decision, error) { return f(path) }

// Always returns a Confirmer that answers d without asking.
func Always(d Decision) Confirmer {
	return ConfirmFunc(func(string) (Decision, error) { return d, nil })
}

// batch applies the overwrite policy across one region directory, or across
// the whole run for the single-file layout.
type batch struct {
	confirm      Confirmer
	overwriteAll bool
	stopped      bool
}

// admit reports whether path may be written.
func (b *batch) admit(path string, exists bool) (bool, error) {
	if b.stopped {
		return false, nil
	}
	if !exists || b.overwriteAll {
		return true, nil
	}
	d, err := b.confirm.Confirm(path)
	if err != nil {
		return false, fmt.Errorf("confirm overwrite of %s: %w", path, err)
	}
	switch d {
	case Overwrite:
		return true, nil
	case OverwriteAll:
		b.overwriteAll = true
		return true, nil
	case SkipAll:
		b.stopped = true
		return false, nil
	default:
		return false, nil
	}
}
