package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid puzzle config")

// PuzzleConfig holds the parameters of a puzzle preset
type PuzzleConfig struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	P           float64 `json:"p"`
	K           int     `json:"k"`
	L           int     `json:"l"`

	// Seed makes every episode of a session reproducible when set.
	Seed *int64 `json:"seed,omitempty"`
}

// DefaultConfig returns the classic preset: qubits on a 10x10 lattice
func DefaultConfig() *PuzzleConfig {
	return &PuzzleConfig{
		Name:        "classic",
		Description: "Qubit puzzle on a 10x10 lattice",
		P:           0.1,
		K:           2,
		L:           10,
	}
}

// ValidateConfig checks a puzzle configuration before any episode is generated
func ValidateConfig(config *PuzzleConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil: %w", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required: %w", ErrInvalidConfig)
	}
	if config.L < MinLatticeSize || config.L > MaxLatticeSize {
		return fmt.Errorf("config validation: l must be between %d and %d, got %d: %w",
			MinLatticeSize, MaxLatticeSize, config.L, ErrInvalidConfig)
	}
	if config.K < MinModulus {
		return fmt.Errorf("config validation: k must be at least %d, got %d: %w", MinModulus, config.K, ErrInvalidConfig)
	}
	// NaN fails both comparisons, so test the accepted range positively
	if !(config.P >= 0 && config.P <= 1) {
		return fmt.Errorf("config validation: p must be within [0, 1], got %v: %w", config.P, ErrInvalidConfig)
	}
	return nil
}

// LoadPuzzleConfig loads a puzzle configuration from a JSON file
func LoadPuzzleConfig(filename string) (*PuzzleConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}
	if config.Name == "" {
		config.Name = strings.TrimSuffix(filepath.Base(filename), ".json")
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
