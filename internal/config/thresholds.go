package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jengzang/maritime-metrics-go/internal/classify"
)

// Thresholds is the analysis threshold profile
type Thresholds struct {
	SpeedDeviationRatio float64       `yaml:"speedDeviationRatio"`
	FuelDeviationRatio  float64       `yaml:"fuelDeviationRatio"`
	GroupWindow         time.Duration `yaml:"groupWindow"`
}

// DefaultThresholds returns the built-in profile
func DefaultThresholds() Thresholds {
	return Thresholds{
		SpeedDeviationRatio: classify.DefaultThresholds.SpeedDeviationRatio,
		FuelDeviationRatio:  classify.DefaultThresholds.FuelDeviationRatio,
		GroupWindow:         5 * time.Minute,
	}
}

// Classifier returns the classification part of the profile
func (t Thresholds) Classifier() classify.Thresholds {
	return classify.Thresholds{
		SpeedDeviationRatio: t.SpeedDeviationRatio,
		FuelDeviationRatio:  t.FuelDeviationRatio,
	}
}

// Validate rejects negative ratios and a non-positive group window
func (t Thresholds) Validate() error {
	if t.SpeedDeviationRatio < 0 || t.FuelDeviationRatio < 0 {
		return fmt.Errorf("deviation ratios must be non-negative")
	}
	if t.GroupWindow <= 0 {
		return fmt.Errorf("group window must be positive")
	}
	return nil
}

// LoadThresholds reads a YAML profile. Fields absent from the file keep their defaults.
func LoadThresholds(path string) (Thresholds, error) {
	th := DefaultThresholds()

	data, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &th); err != nil {
		return th, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	if err := th.Validate(); err != nil {
		return th, fmt.Errorf("invalid thresholds file %s: %w", path, err)
	}

	return th, nil
}
