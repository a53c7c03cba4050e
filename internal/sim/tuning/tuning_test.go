package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValid(t *testing.T) {
	d := Defaults()
	if err := d.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if got := d.TemperatureSteps(); got != 19 {
		t.Fatalf("temperature steps: got %d want 19", got)
	}
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("max_oceans: 6\nmilestones:\n  price: 10\n  limit: 2\n  vp: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.MaxOceans != 6 || got.Milestones.Price != 10 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.StartingTR != 20 || got.StandardProjects.City != 25 {
		t.Fatalf("defaults lost: %+v", got)
	}
}

func TestLoadRejectsBadRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("temperature_min: 10\ntemperature_max: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
