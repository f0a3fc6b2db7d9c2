package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Precision != 3 || c.RegionSuffix != "ROI" || c.Layout != "separate" || c.Overwrite != "ask" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if !reflect.DeepEqual(c.Percentiles, []float64{5, 15, 25, 50, 75, 85, 95}) {
		t.Fatalf("percentiles = %v", c.Percentiles)
	}
	if c.RunsDir != filepath.Join(home, ".meshstats", "runs") {
		t.Fatalf("runs dir = %q", c.RunsDir)
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	c.Precision = 5
	c.Locale = "comma"
	c.Percentiles = []float64{10, 90}
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Precision != 5 || got.Locale != "comma" || !reflect.DeepEqual(got.Percentiles, []float64{10, 90}) {
		t.Fatalf("reloaded = %+v", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("layout: single\nprecision: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MESHSTATS_PRECISION", "4")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Layout != "single" || c.Precision != 4 {
		t.Fatalf("got layout=%q precision=%d", c.Layout, c.Precision)
	}
}
