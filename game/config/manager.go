package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"github.com/wricardo/mcp-training/railpuzzle/game/logging"
	"github.com/wricardo/mcp-training/railpuzzle/game/service"
)

var (
	ErrMapNotFound = service.ErrMapNotFound
	ErrNoMaps      = service.ErrNoMaps
	ErrInvalidMap  = errors.New("invalid map")
)

type mapKey struct {
	difficulty engine.Difficulty
	id         int
}

// Manager loads map catalogs from a directory and caches the parsed maps
type Manager struct {
	mapDir  string
	maps    map[mapKey]*engine.MapDefinition
	sources map[mapKey]string
	intn    func(n int) int
	logger  *slog.Logger
	mu      sync.RWMutex
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger used to report skipped catalogs
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithRandom replaces the source used by RandomMap. intn must return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(m *Manager) {
		m.intn = intn
	}
}

// NewManager creates a manager and loads every catalog in mapDir
func NewManager(mapDir string, opts ...Option) (*Manager, error) {
	if _, err := os.Stat(mapDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("map directory does not exist: %s", mapDir)
	}

	m := &Manager{
		mapDir: mapDir,
		intn:   rand.IntN,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.Refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// Dir returns the catalog directory
func (m *Manager) Dir() string {
	return m.mapDir
}

// Refresh reloads all catalogs from disk. Catalogs that fail to parse are skipped and
// logged; a map ID that appears twice for the same difficulty keeps its first definition.
func (m *Manager) Refresh() error {
	entries, err := os.ReadDir(m.mapDir)
	if err != nil {
		return fmt.Errorf("failed to read map directory: %w", err)
	}

	maps := make(map[mapKey]*engine.MapDefinition)
	sources := make(map[mapKey]string)

	for _, entry := range entries {
		if entry.IsDir() || !IsCatalogFile(entry.Name()) {
			continue
		}

		defs, err := LoadCatalog(filepath.Join(m.mapDir, entry.Name()))
		if err != nil {
			m.logger.Warn("skipping map catalog", "file", entry.Name(), "error", err)
			continue
		}

		for _, def := range defs {
			key := mapKey{difficulty: def.Difficulty, id: def.ID}
			if prev, exists := sources[key]; exists {
				m.logger.Warn("duplicate map id",
					"difficulty", def.Difficulty, "id", def.ID, "file", entry.Name(), "first", prev)
				continue
			}
			maps[key] = def
			sources[key] = entry.Name()
		}
	}

	m.mu.Lock()
	m.maps = maps
	m.sources = sources
	m.mu.Unlock()

	m.logger.Debug("map catalogs loaded", "dir", m.mapDir, "maps", len(maps))
	return nil
}

// LoadMap returns the map with the given difficulty and ID
func (m *Manager) LoadMap(difficulty engine.Difficulty, id int) (*engine.MapDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, exists := m.maps[mapKey{difficulty: difficulty, id: id}]
	if !exists {
		return nil, fmt.Errorf("%w: %s map %d", ErrMapNotFound, difficulty, id)
	}
	return def, nil
}

// MapsFor returns the maps of one difficulty ordered by ID
func (m *Manager) MapsFor(difficulty engine.Difficulty) []*engine.MapDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var defs []*engine.MapDefinition
	for key, def := range m.maps {
		if key.difficulty == difficulty {
			defs = append(defs, def)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// RandomMap picks one map of the difficulty uniformly at random
func (m *Manager) RandomMap(difficulty engine.Difficulty) (*engine.MapDefinition, error) {
	defs := m.MapsFor(difficulty)
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w for difficulty %q", ErrNoMaps, difficulty)
	}
	return defs[m.intn(len(defs))], nil
}

// ListMaps returns summary information about every loaded map, easy maps first
func (m *Manager) ListMaps() ([]*service.MapInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]*service.MapInfo, 0, len(m.maps))
	for key, def := range m.maps {
		hist := engine.TerrainHistogram(def.Layout, def.Size())
		infos = append(infos, &service.MapInfo{
			ID:         def.ID,
			Name:       def.DisplayName(),
			Difficulty: def.Difficulty,
			Size:       def.Size(),
			File:       m.sources[key],
			Mountains:  hist[engine.Mountain],
			Bridges:    hist[engine.Bridge],
			Oases:      hist[engine.Oasis],
			OpenCells:  hist[engine.Empty],
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Size != infos[j].Size {
			return infos[i].Size < infos[j].Size
		}
		return infos[i].ID < infos[j].ID
	})
	return infos, nil
}
