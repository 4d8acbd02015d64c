package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
)

// ValidationResult captures the outcome of validating a single catalog file.
// Info holds informational lines for valid catalogs.
type ValidationResult struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
	Info   []string `json:"info,omitempty"`
}

// ValidateCatalog validates one catalog file, or every catalog in a directory
func ValidateCatalog(path string) ([]ValidationResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []ValidationResult{validateCatalogFile(path)}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map directory: %w", err)
	}

	var results []ValidationResult
	for _, entry := range entries {
		if entry.IsDir() || !IsCatalogFile(entry.Name()) {
			continue
		}
		results = append(results, validateCatalogFile(filepath.Join(path, entry.Name())))
	}
	return results, nil
}

func validateCatalogFile(path string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
	}

	defs, err := LoadCatalog(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	if len(defs) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "catalog contains no maps")
		return result
	}

	seen := make(map[mapKey]bool)
	counts := make(map[engine.Difficulty]int)
	for _, def := range defs {
		key := mapKey{difficulty: def.Difficulty, id: def.ID}
		if seen[key] {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("duplicate %s map id %d", def.Difficulty, def.ID))
			continue
		}
		seen[key] = true
		counts[def.Difficulty]++

		board, err := engine.NewBoardFromMap(def)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if engine.RemainingConvertible(board) == 0 {
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s map %d has no cells left to convert", def.Difficulty, def.ID))
			continue
		}

		hist := engine.TerrainHistogram(def.Layout, def.Size())
		result.Info = append(result.Info, fmt.Sprintf("✓ %s map %d (%s): %dx%d, %d open, %d mountains, %d bridges, %d oases",
			def.Difficulty, def.ID, def.DisplayName(), def.Size(), def.Size(),
			hist[engine.Empty], hist[engine.Mountain], hist[engine.Bridge], hist[engine.Oasis]))
	}

	difficulties := make([]string, 0, len(counts))
	for d, n := range counts {
		difficulties = append(difficulties, fmt.Sprintf("%s=%d", d, n))
	}
	sort.Strings(difficulties)
	result.Info = append(result.Info, fmt.Sprintf("✓ Maps: %v", difficulties))

	return result
}
