package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/meshstats-cli/internal/export"
)

// promptConfirmer asks on the terminal before replacing an existing file.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *promptConfirmer) Confirm(path string) (export.Decision, error) {
	for {
		fmt.Fprintf(p.out, "%s already exists. Overwrite? [y]es/[n]o/[a]ll/[q]uit: ", path)
		line, err := p.in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			if errors.Is(err, io.EOF) {
				return export.SkipAll, fmt.Errorf("no answer for %s: input closed", path)
			}
			return export.SkipAll, fmt.Errorf("read answer: %w", err)
		}
		d, perr := export.ParseDecision(line)
		if perr == nil {
			return d, nil
		}
		fmt.Fprintln(p.out, perr)
	}
}

type overwriteMode string

const (
	overwriteAsk overwriteMode = "ask"
	overwriteYes overwriteMode = "yes"
	overwriteNo  overwriteMode = "no"
)

func parseOverwrite(s string) (overwriteMode, error) {
	switch overwriteMode(strings.ToLower(s)) {
	case overwriteAsk:
		return overwriteAsk, nil
	case overwriteYes:
		return overwriteYes, nil
	case overwriteNo:
		return overwriteNo, nil
	}
	return "", fmt.Errorf("invalid overwrite mode %q (use ask, yes or no)", s)
}

func confirmerFor(mode overwriteMode, in io.Reader, out io.Writer) export.Confirmer {
	switch mode {
	case overwriteYes:
		return export.Always(export.OverwriteAll)
	case overwriteNo:
		return export.Always(export.Skip)
	default:
		return newPromptConfirmer(in, out)
	}
}
