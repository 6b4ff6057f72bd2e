package correction

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/masmgr/codestat/internal/aggregation"
	"github.com/masmgr/codestat/internal/window"
)

// Level selects which tallies an entry adjusts.
type Level uint8

const (
	LevelProject Level = 1 << iota
	LevelProjectAuthor
	LevelAuthor

	LevelAll = LevelProject | LevelProjectAuthor | LevelAuthor
)

// ParseLevel parses "project", "project_author" or "author".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "project":
		return LevelProject, nil
	case "project_author", "project-author":
		return LevelProjectAuthor, nil
	case "author":
		return LevelAuthor, nil
	case "all", "":
		return LevelAll, nil
	default:
		return 0, fmt.Errorf("unknown correction level %q", s)
	}
}

func (l Level) String() string {
	if l == 0 {
		l = LevelAll
	}
	var parts []string
	if l&LevelProject != 0 {
		parts = append(parts, "project")
	}
	if l&LevelProjectAuthor != 0 {
		parts = append(parts, "project_author")
	}
	if l&LevelAuthor != 0 {
		parts = append(parts, "author")
	}
	return strings.Join(parts, "+")
}

// Entry is a signed adjustment to added lines for (Month, Project, Author).
// Month is the first day of the month the adjustment belongs to.
type Entry struct {
	Month   time.Time
	Project string
	Author  string
	Delta   int
	Levels  Level
}

func (e Entry) levels() Level {
	if e.Levels == 0 {
		return LevelAll
	}
	return e.Levels
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s/%s %+d (%s)", e.Month.Format(window.DateLayout), e.Project, e.Author, e.Delta, e.levels())
}

// Report lists what Apply did with the entries falling into a window.
type Report struct {
	Applied        []Entry
	Stale          []Entry
	AlreadyApplied bool
}

// Layer applies a static correction table to window tallies.
type Layer struct {
	entries []Entry
	logger  zerolog.Logger
}

func NewLayer(entries []Entry, logger zerolog.Logger) *Layer {
	return &Layer{entries: entries, logger: logger}
}

// Apply adjusts ws with every entry whose month ws.Window covers. Entries
// whose targets are missing are logged as stale and left out. Applying to
// the same stats twice is a no-op.
func (l *Layer) Apply(ws *aggregation.WindowStats) Report {
	var rep Report
	if !ws.MarkCorrected() {
		l.logger.Warn().Str("window", ws.Window.String()).Msg("corrections already applied, skipping")
		rep.AlreadyApplied = true
		return rep
	}

	for _, e := range l.entries {
		if !ws.Window.CoversMonth(e.Month) {
			continue
		}
		if missing := missingTargets(ws, e); missing != "" {
			l.logger.Warn().
				Str("window", ws.Window.String()).
				Str("correction", e.String()).
				Str("missing", missing).
				Msg("stale correction entry")
			rep.Stale = append(rep.Stale, e)
			continue
		}

		lv := e.levels()
		if lv&LevelProject != 0 {
			ws.Projects.AdjustLines(e.Project, e.Delta)
		}
		if lv&LevelProjectAuthor != 0 {
			ws.ProjectAuthors.AdjustLines(e.Project, e.Author, e.Delta)
		}
		if lv&LevelAuthor != 0 {
			ws.Authors.AdjustLines(e.Author, e.Delta)
		}
		l.logger.Debug().Str("window", ws.Window.String()).Str("correction", e.String()).Msg("correction applied")
		rep.Applied = append(rep.Applied, e)
	}
	return rep
}

// Outside returns the entries whose month falls in none of windows.
func (l *Layer) Outside(windows []window.TimeWindow) []Entry {
	var out []Entry
	for _, e := range l.entries {
		hit := false
		for _, w := range windows {
			if w.CoversMonth(e.Month) {
				hit = true
				break
			}
		}
		if !hit {
			out = append(out, e)
		}
	}
	return out
}

func missingTargets(ws *aggregation.WindowStats, e Entry) string {
	lv := e.levels()
	var missing []string
	if lv&LevelProject != 0 {
		if _, ok := ws.Projects.Get(e.Project); !ok {
			missing = append(missing, "project")
		}
	}
	if lv&LevelProjectAuthor != 0 {
		if _, ok := ws.ProjectAuthors.Get(e.Project, e.Author); !ok {
			missing = append(missing, "project_author")
		}
	}
	if lv&LevelAuthor != 0 {
		if _, ok := ws.Authors.Get(e.Author); !ok {
			missing = append(missing, "author")
		}
	}
	return strings.Join(missing, ",")
}
