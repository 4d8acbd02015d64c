package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
)

// catalogFile mirrors the on-disk catalog shape:
//
//	{"maps": [{"difficulty": "easy", "maps": [{"id": 1, "0,0": "oasis.png", ...}]}]}
type catalogFile struct {
	Maps []catalogGroup `mapstructure:"maps"`
}

type catalogGroup struct {
	Difficulty string         `mapstructure:"difficulty"`
	Maps       []catalogEntry `mapstructure:"maps"`
}

// catalogEntry keeps every key that is not a known field as a tile
type catalogEntry struct {
	ID    int            `mapstructure:"id"`
	Name  string         `mapstructure:"name"`
	Tiles map[string]any `mapstructure:",remain"`
}

// IsCatalogFile reports whether name has a supported catalog extension
func IsCatalogFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadCatalog reads and parses a single catalog file
func LoadCatalog(path string) ([]*engine.MapDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data, filepath.Ext(path))
}

// ParseCatalog decodes catalog data. format is a file extension (".json", ".yaml" or
// ".yml"); anything that is not YAML is read as JSON. Every map is validated.
func ParseCatalog(data []byte, format string) ([]*engine.MapDefinition, error) {
	var raw map[string]any
	switch strings.ToLower(format) {
	case ".yaml", ".yml", "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: invalid YAML: %v", ErrInvalidMap, err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidMap, err)
		}
	}

	var file catalogFile
	if err := mapstructure.Decode(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	var defs []*engine.MapDefinition
	for _, group := range file.Maps {
		difficulty := engine.Difficulty(strings.ToLower(group.Difficulty))
		for _, entry := range group.Maps {
			def, err := entry.definition(difficulty)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}
	}

	return defs, nil
}

func (e catalogEntry) definition(difficulty engine.Difficulty) (*engine.MapDefinition, error) {
	entries := make(map[string]string, len(e.Tiles))
	for key, value := range e.Tiles {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s map %d: tile %q must be a string, got %T",
				ErrInvalidMap, difficulty, e.ID, key, value)
		}
		entries[key] = s
	}

	layout, err := engine.ParseLayout(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %s map %d: %v", ErrInvalidMap, difficulty, e.ID, err)
	}

	def := &engine.MapDefinition{
		ID:         e.ID,
		Name:       e.Name,
		Difficulty: difficulty,
		Layout:     layout,
	}
	if err := engine.ValidateMap(def); err != nil {
		return nil, fmt.Errorf("%w: %s map %d: %v", ErrInvalidMap, difficulty, e.ID, err)
	}
	return def, nil
}

// EncodeCatalog renders maps back into the JSON catalog shape, grouped by difficulty
func EncodeCatalog(defs []*engine.MapDefinition) ([]byte, error) {
	groups := make(map[engine.Difficulty][]map[string]any)
	for _, def := range defs {
		entry := map[string]any{"id": def.ID}
		if def.Name != "" {
			entry["name"] = def.Name
		}
		for key, tile := range def.Layout.Entries() {
			entry[key] = tile
		}
		groups[def.Difficulty] = append(groups[def.Difficulty], entry)
	}

	difficulties := make([]string, 0, len(groups))
	for d := range groups {
		difficulties = append(difficulties, string(d))
	}
	sort.Strings(difficulties)

	out := struct {
		Maps []map[string]any `json:"maps"`
	}{}
	for _, d := range difficulties {
		out.Maps = append(out.Maps, map[string]any{
			"difficulty": d,
			"maps":       groups[engine.Difficulty(d)],
		})
	}

	return json.MarshalIndent(out, "", "  ")
}
