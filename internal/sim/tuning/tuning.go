package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	StartingTR   int `yaml:"starting_tr"`
	StartingHand int `yaml:"starting_hand"`

	MaxOceans          int `yaml:"max_oceans"`
	TemperatureMin     int `yaml:"temperature_min"`
	TemperatureMax     int `yaml:"temperature_max"`
	TemperatureStep    int `yaml:"temperature_step"`
	OxygenMax          int `yaml:"oxygen_max"`
	OceanAdjacencyGain int `yaml:"ocean_adjacency_credits"`
	PlantConversion    int `yaml:"plant_conversion"`
	HeatConversion     int `yaml:"heat_conversion"`

	StandardProjects StandardProjects `yaml:"standard_projects"`
	Milestones       Milestones       `yaml:"milestones"`
	Awards           Awards           `yaml:"awards"`

	SnapshotEveryActions int `yaml:"snapshot_every_actions"`

	RateLimits RateLimits `yaml:"rate_limits"`
}

type StandardProjects struct {
	PowerPlant int `yaml:"power_plant"`
	Asteroid   int `yaml:"asteroid"`
	Aquifer    int `yaml:"aquifer"`
	Greenery   int `yaml:"greenery"`
	City       int `yaml:"city"`
}

type Milestones struct {
	Price int `yaml:"price"`
	Limit int `yaml:"limit"`
	VP    int `yaml:"vp"`
}

type Awards struct {
	Prices   []int `yaml:"prices"`
	FirstVP  int   `yaml:"first_vp"`
	SecondVP int   `yaml:"second_vp"`
}

type RateLimits struct {
	ActionsPerSecond float64 `yaml:"actions_per_second"`
	ActionsBurst     int     `yaml:"actions_burst"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		StartingTR:         20,
		StartingHand:       10,
		MaxOceans:          9,
		TemperatureMin:     -30,
		TemperatureMax:     8,
		TemperatureStep:    2,
		OxygenMax:          14,
		OceanAdjacencyGain: 2,
		PlantConversion:    8,
		HeatConversion:     8,
		StandardProjects: StandardProjects{
			PowerPlant: 11,
			Asteroid:   14,
			Aquifer:    18,
			Greenery:   23,
			City:       25,
		},
		Milestones:           Milestones{Price: 8, Limit: 3, VP: 5},
		Awards:               Awards{Prices: []int{8, 14, 20}, FirstVP: 5, SecondVP: 2},
		SnapshotEveryActions: 50,
		RateLimits:           RateLimits{ActionsPerSecond: 2, ActionsBurst: 5},
	}
}

// Load reads path over Defaults, so a file only needs the fields it changes.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case t.MaxOceans <= 0:
		return fmt.Errorf("max_oceans must be positive")
	case t.TemperatureStep <= 0 || t.TemperatureMax <= t.TemperatureMin:
		return fmt.Errorf("bad temperature range")
	case t.OxygenMax <= 0:
		return fmt.Errorf("oxygen_max must be positive")
	case len(t.Awards.Prices) == 0:
		return fmt.Errorf("awards.prices is empty")
	case t.Milestones.Limit <= 0:
		return fmt.Errorf("milestones.limit must be positive")
	}
	return nil
}

// TemperatureSteps is how many steps separate the minimum from the maximum.
func (t Tuning) TemperatureSteps() int {
	return (t.TemperatureMax - t.TemperatureMin) / t.TemperatureStep
}

// Digest identifies the effective tuning in WELCOME and the index.
func (t Tuning) Digest() string {
	b, _ := json.Marshal(t)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
