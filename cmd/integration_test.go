package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
}

// execute runs the root command with args and stdin, returning combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	// Reset state that persists across invocations
	cfg = nil
	for _, c := range []*cobra.Command{rootCmd, runCmd, exportCmd, inspectCmd, runsCmd} {
		resetFlags(c)
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// setupShapes writes two point tables sharing distance, thickness and jawROI.
func setupShapes(t *testing.T) (home string, shapes []string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	a := filepath.Join(home, "A.csv")
	b := filepath.Join(home, "B.csv")
	if err := os.WriteFile(a, []byte("distance,thickness,jawROI\n1,10,1\n2,20,0\n3,30,1\n"), 0o644); err != nil {
		t.Fatalf("write A: %v", err)
	}
	if err := os.WriteFile(b, []byte("distance,thickness,jawROI,label\n0.5,1,0,x\n1.5,2,1,y\n2.5,3,1,z\n"), 0o644); err != nil {
		t.Fatalf("write B: %v", err)
	}
	return home, []string{a, b}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestCLI_RunSeparateLayout(t *testing.T) {
	home, shapes := setupShapes(t)
	outDir := filepath.Join(home, "out")

	args := append([]string{"run"}, shapes...)
	out := mustExecute(t, append(args, "--all-fields", "--all-regions", "--output", outDir, "--quiet")...)
	if !strings.Contains(out, "Wrote 4 file(s)") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	got := readFile(t, filepath.Join(outDir, "jawROI", "distance.csv"))
	want := "distance\n" +
		"Shape,Min,Max,Mean,SD,5th centile,15th centile,25th centile,50th centile,75th centile,85th centile,95th centile\n" +
		"A,1,3,2,1,1,1,1,1,3,3,3\n" +
		"B,1.5,2.5,2,0.5,1.5,1.5,1.5,1.5,2.5,2.5,2.5\n"
	if got != want {
		t.Fatalf("jawROI/distance.csv =\n%s\nwant\n%s", got, want)
	}
	if _, err := os.Stat(filepath.Join(outDir, "Entire Shape", "thickness.csv")); err != nil {
		t.Fatalf("missing entire shape export: %v", err)
	}

	runs, err := os.ReadDir(filepath.Join(home, ".meshstats", "runs"))
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one saved run, got %d (%v)", len(runs), err)
	}
}

func TestCLI_RunSingleLayoutCommaLocale(t *testing.T) {
	home, shapes := setupShapes(t)
	outDir := filepath.Join(home, "out")

	args := append([]string{"run"}, shapes...)
	mustExecute(t, append(args, "--field", "distance", "--output", outDir, "--layout", "single", "--locale", "comma", "--no-save", "--quiet")...)

	got := readFile(t, filepath.Join(outDir, "Entire Shape.csv"))
	if !strings.HasPrefix(got, "Entire Shape\ndistance\nShape;Min;Max;Mean;SD;5th centile") {
		t.Fatalf("unexpected header:\n%s", got)
	}
	if !strings.Contains(got, "\nB;0,5;2,5;1,5;0,816;") {
		t.Fatalf("comma decimals missing:\n%s", got)
	}
	if _, err := os.Stat(filepath.Join(home, ".meshstats", "runs")); !os.IsNotExist(err) {
		t.Fatalf("--no-save still wrote history: %v", err)
	}
}

func TestCLI_OverwritePolicies(t *testing.T) {
	home, shapes := setupShapes(t)
	outDir := filepath.Join(home, "out")
	target := filepath.Join(outDir, "Entire Shape", "distance.csv")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	args := append(append([]string{"run"}, shapes...), "--field", "distance", "--output", outDir, "--no-save", "--quiet")

	out := mustExecute(t, append(args, "--overwrite", "no")...)
	if readFile(t, target) != "old" || !strings.Contains(out, "skipped existing") {
		t.Fatalf("--overwrite no replaced the file:\n%s", out)
	}

	out, err := execute(t, "maybe\ny\ny\n", args...)
	if err != nil {
		t.Fatalf("prompted run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "already exists") || readFile(t, target) == "old" {
		t.Fatalf("prompt not honoured:\n%s", out)
	}

	if _, err := execute(t, "", args...); err == nil {
		t.Fatalf("expected an error when the prompt gets no answer")
	}
}

func TestCLI_ExportSavedRun(t *testing.T) {
	home, shapes := setupShapes(t)
	args := append([]string{"run"}, shapes...)
	mustExecute(t, append(args, "--field", "thickness", "--output", filepath.Join(home, "first"), "--quiet")...)

	second := filepath.Join(home, "second")
	mustExecute(t, "export", "--output", second, "--format", "xlsx", "--layout", "single")
	if _, err := os.Stat(filepath.Join(second, "Entire Shape.xlsx")); err != nil {
		t.Fatalf("re-export missing: %v", err)
	}

	out := mustExecute(t, "runs")
	if strings.Contains(out, "(no runs)") {
		t.Fatalf("runs listing empty:\n%s", out)
	}
}

func TestCLI_InspectAndErrors(t *testing.T) {
	_, shapes := setupShapes(t)
	out := mustExecute(t, append([]string{"inspect"}, shapes...)...)
	for _, want := range []string{"distance", "thickness", "jawROI", "Entire Shape"} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "label") {
		t.Fatalf("text column offered as field:\n%s", out)
	}

	if _, err := execute(t, "", append([]string{"run"}, append(shapes, "--field", "nope")...)...); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := execute(t, "", append([]string{"run"}, shapes...)...); err == nil {
		t.Fatalf("expected error without --field")
	}
	if _, err := execute(t, "", append([]string{"run"}, append(shapes, "--field", "distance", "--precision", "400", "--no-save")...)...); err == nil {
		t.Fatalf("expected precision above the maximum to be rejected")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "cfg.yaml")
	mustExecute(t, "--config", path, "config", "set", "locale", "comma")
	mustExecute(t, "--config", path, "config", "set", "percentiles", "95,5")
	out := mustExecute(t, "--config", path, "config", "show")
	if !strings.Contains(out, "locale: comma") || !strings.Contains(out, "percentiles: 5,95") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, err := execute(t, "", "--config", path, "config", "set", "layout", "zip"); err == nil {
		t.Fatalf("expected invalid layout error")
	}
	if _, err := execute(t, "", "--config", path, "config", "set", "precision", "300"); err == nil {
		t.Fatalf("expected precision above the maximum to be rejected")
	}
}
