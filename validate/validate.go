// Command validate provides a small CLI that validates puzzle preset JSON
// files in the ../configs directory (or the directory given as the first
// argument). It checks:
//   - JSON structure and required fields (name, p, k, l)
//   - Parameter ranges accepted by the engine
//   - That the file name matches the preset name
//   - Solvability: a sweep toward a boundary clears the bulk for sample seeds
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/decodoku/game/engine"
)

// sampleSeeds are the episodes replayed by the solvability check
var sampleSeeds = []int64{1, 2, 3}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset JSON file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	for _, key := range []string{"name", "p", "k", "l"} {
		if _, ok := fields[key]; !ok {
			result.fail("Missing required field: %s", key)
		}
	}

	var config engine.PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid field types: %v", err)
		return result
	}
	if !result.Valid {
		return result
	}

	if err := engine.ValidateConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	stem := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if config.Name != stem {
		result.fail("Preset name %q does not match file name %q", config.Name, stem)
	}

	if result.Valid {
		solvability := validateSolvability(&config)
		if !solvability.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, solvability.Errors...)
	}

	// Add informational data
	if result.Valid {
		nodes, edges := engine.GraphSize(config.L)
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Lattice: %dx%d, k=%d, p=%g", config.L, config.L, config.K, config.P))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Expected defects: %.1f", engine.ExpectedErrorCount(config.P, config.L)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Decoding graph: %d nodes, %d edges", nodes, edges))
		if config.L < 3 {
			result.Errors = append(result.Errors, "✓ No bulk columns: every episode resolves immediately")
		}
	}

	return result
}

// validateSolvability replays sample episodes and checks that sweeping all
// bulk charge onto the left boundary resolves each of them
func validateSolvability(config *engine.PuzzleConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	for _, seed := range sampleSeeds {
		e, err := engine.NewEngine(config, engine.WithSeed(seed))
		if err != nil {
			result.fail("Seed %d: failed to create engine: %v", seed, err)
			continue
		}

		plan := engine.SweepPlan(e.Lattice(), 0)
		state := engine.ApplyPlan(e, plan)
		if state.Outcome == engine.OutcomePlaying {
			result.fail("Seed %d: %d moves left %d bulk charge", seed, len(plan), state.RemainingCharge)
		}
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Solvability: %d sample episodes cleared by a boundary sweep", len(sampleSeeds)))
	}
	return result
}

// main scans the preset directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
