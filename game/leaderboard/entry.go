package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
)

var (
	ErrInvalidEntry = errors.New("invalid leaderboard entry")
	ErrInvalidClock = errors.New("invalid clock value")
)

// Entry is one completed puzzle
type Entry struct {
	ID             int               `json:"id"`
	Name           string            `json:"name"`
	Difficulty     engine.Difficulty `json:"difficulty"`
	TimeToComplete string            `json:"timeToComplete"`
	Seconds        int               `json:"seconds"`
	MapID          int               `json:"mapId"`
	RecordedAt     time.Time         `json:"recordedAt"`
}

// Store persists leaderboard entries
type Store interface {
	// Add assigns the entry an ID, stores it and returns the stored entry
	Add(ctx context.Context, e Entry) (Entry, error)
	// Top returns the fastest entries. An empty difficulty ranks all entries together;
	// a limit of zero or less returns every entry.
	Top(ctx context.Context, difficulty engine.Difficulty, limit int) ([]Entry, error)
	// All returns every entry in rank order
	All(ctx context.Context) ([]Entry, error)
}

// FormatClock renders a duration the way the game timer shows it: "MM:SS".
// Minutes are not wrapped at the hour.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ParseClock parses an "MM:SS" timer value back into a duration
func ParseClock(s string) (time.Duration, error) {
	ms, ss, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minutes, err := strconv.Atoi(ms)
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	seconds, err := strconv.Atoi(ss)
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return time.Duration(minutes*60+seconds) * time.Second, nil
}

// normalize validates e and fills whichever of Seconds and TimeToComplete is missing
func normalize(e Entry) (Entry, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return e, fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}
	if !e.Difficulty.IsValid() {
		return e, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidEntry, e.Difficulty)
	}
	if e.Seconds < 0 {
		return e, fmt.Errorf("%w: negative completion time", ErrInvalidEntry)
	}

	switch {
	case e.Seconds == 0 && e.TimeToComplete != "":
		d, err := ParseClock(e.TimeToComplete)
		if err != nil {
			return e, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
		e.Seconds = int(d / time.Second)
	default:
		e.TimeToComplete = FormatClock(time.Duration(e.Seconds) * time.Second)
	}

	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	return e, nil
}

// nextID returns the highest ID in entries plus one, or 0 for no entries
func nextID(entries []Entry) int {
	next := 0
	for _, e := range entries {
		if e.ID >= next {
			next = e.ID + 1
		}
	}
	return next
}

// rank sorts entries fastest first, ties by ID
func rank(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Seconds != entries[j].Seconds {
			return entries[i].Seconds < entries[j].Seconds
		}
		return entries[i].ID < entries[j].ID
	})
}

// top filters ranked entries by difficulty and truncates them to limit
func top(ranked []Entry, difficulty engine.Difficulty, limit int) []Entry {
	out := make([]Entry, 0, len(ranked))
	for _, e := range ranked {
		if difficulty != "" && e.Difficulty != difficulty {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
