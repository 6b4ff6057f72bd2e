package aggregation

import (
	"sort"
	"strings"
)

// Counts holds added lines and commit count.
type Counts struct {
	LinesAdded int
	Commits    int
}

// Plus returns the component-wise sum.
func (c Counts) Plus(o Counts) Counts {
	return Counts{LinesAdded: c.LinesAdded + o.LinesAdded, Commits: c.Commits + o.Commits}
}

// ProjectTally is the tally of one project, or one (project, author) pair,
// within a window. LinesAdded may go negative after corrections.
type ProjectTally struct {
	Branch string
	Counts
}

// ProjectAuthorKey identifies a (project, author) tally.
type ProjectAuthorKey struct {
	Project string
	Author  string
}

// mergeBranch unions comma-separated branch lists. The result is sorted so
// merging is order independent.
func mergeBranch(a, b string) string {
	if a == b || b == "" {
		return a
	}
	if a == "" {
		return b
	}
	set := make(map[string]struct{})
	for _, part := range append(strings.Split(a, ","), strings.Split(b, ",")...) {
		if part = strings.TrimSpace(part); part != "" {
			set[part] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// ProjStat is the cross-project collection of project tallies. Project names
// are remapped through the merge table before insertion so renamed
// repositories fold into one key.
type ProjStat struct {
	merge   map[string]string
	entries map[string]*ProjectTally
}

// NewProjStat creates an empty collection using merge (old name -> new name).
func NewProjStat(merge map[string]string) *ProjStat {
	return &ProjStat{merge: merge, entries: make(map[string]*ProjectTally)}
}

// Key returns the logical project name after merge-table remapping.
func (s *ProjStat) Key(project string) string {
	return RemapProject(s.merge, project)
}

// Add merges t into the entry for project, summing component-wise.
func (s *ProjStat) Add(project string, t ProjectTally) {
	key := s.Key(project)
	if e, ok := s.entries[key]; ok {
		e.Branch = mergeBranch(e.Branch, t.Branch)
		e.Counts = e.Counts.Plus(t.Counts)
		return
	}
	copied := t
	s.entries[key] = &copied
}

// Get returns the tally for a logical project name.
func (s *ProjStat) Get(project string) (ProjectTally, bool) {
	e, ok := s.entries[s.Key(project)]
	if !ok {
		return ProjectTally{}, false
	}
	return *e, true
}

// AdjustLines adds delta to a project's added lines. It reports false when the
// project has no entry.
func (s *ProjStat) AdjustLines(project string, delta int) bool {
	e, ok := s.entries[s.Key(project)]
	if !ok {
		return false
	}
	e.LinesAdded += delta
	return true
}

func (s *ProjStat) Len() int { return len(s.entries) }

// Projects returns the project names in sorted order.
func (s *ProjStat) Projects() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Totals sums every entry.
func (s *ProjStat) Totals() Counts {
	var total Counts
	for _, e := range s.entries {
		total = total.Plus(e.Counts)
	}
	return total
}

// Snapshot returns a copy of all entries.
func (s *ProjStat) Snapshot() map[string]ProjectTally {
	out := make(map[string]ProjectTally, len(s.entries))
	for k, v := range s.entries {
		out[k] = *v
	}
	return out
}

// ProjAuthorStat is the cross-project collection of (project, author) tallies.
type ProjAuthorStat struct {
	merge   map[string]string
	entries map[ProjectAuthorKey]*ProjectTally
}

func NewProjAuthorStat(merge map[string]string) *ProjAuthorStat {
	return &ProjAuthorStat{merge: merge, entries: make(map[ProjectAuthorKey]*ProjectTally)}
}

func (s *ProjAuthorStat) key(project, author string) ProjectAuthorKey {
	return ProjectAuthorKey{Project: RemapProject(s.merge, project), Author: author}
}

// Add merges t into the entry for (project, author).
func (s *ProjAuthorStat) Add(project, author string, t ProjectTally) {
	k := s.key(project, author)
	if e, ok := s.entries[k]; ok {
		e.Branch = mergeBranch(e.Branch, t.Branch)
		e.Counts = e.Counts.Plus(t.Counts)
		return
	}
	copied := t
	s.entries[k] = &copied
}

func (s *ProjAuthorStat) Get(project, author string) (ProjectTally, bool) {
	e, ok := s.entries[s.key(project, author)]
	if !ok {
		return ProjectTally{}, false
	}
	return *e, true
}

// AdjustLines adds delta to the (project, author) entry. It reports false when
// the entry is absent.
func (s *ProjAuthorStat) AdjustLines(project, author string, delta int) bool {
	e, ok := s.entries[s.key(project, author)]
	if !ok {
		return false
	}
	e.LinesAdded += delta
	return true
}

func (s *ProjAuthorStat) Len() int { return len(s.entries) }

// Keys returns all keys ordered by project, then author.
func (s *ProjAuthorStat) Keys() []ProjectAuthorKey {
	keys := make([]ProjectAuthorKey, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Project != keys[j].Project {
			return keys[i].Project < keys[j].Project
		}
		return keys[i].Author < keys[j].Author
	})
	return keys
}

// SumByProject sums author rows per project.
func (s *ProjAuthorStat) SumByProject() map[string]Counts {
	sums := make(map[string]Counts)
	for k, e := range s.entries {
		sums[k.Project] = sums[k.Project].Plus(e.Counts)
	}
	return sums
}

func (s *ProjAuthorStat) Totals() Counts {
	var total Counts
	for _, e := range s.entries {
		total = total.Plus(e.Counts)
	}
	return total
}

func (s *ProjAuthorStat) Snapshot() map[ProjectAuthorKey]ProjectTally {
	out := make(map[ProjectAuthorKey]ProjectTally, len(s.entries))
	for k, v := range s.entries {
		out[k] = *v
	}
	return out
}

// AuthorStat is the project-independent collection of author tallies.
type AuthorStat struct {
	entries map[string]*Counts
}

func NewAuthorStat() *AuthorStat {
	return &AuthorStat{entries: make(map[string]*Counts)}
}

func (s *AuthorStat) Add(author string, c Counts) {
	if e, ok := s.entries[author]; ok {
		*e = e.Plus(c)
		return
	}
	copied := c
	s.entries[author] = &copied
}

func (s *AuthorStat) Get(author string) (Counts, bool) {
	e, ok := s.entries[author]
	if !ok {
		return Counts{}, false
	}
	return *e, true
}

func (s *AuthorStat) AdjustLines(author string, delta int) bool {
	e, ok := s.entries[author]
	if !ok {
		return false
	}
	e.LinesAdded += delta
	return true
}

func (s *AuthorStat) Len() int { return len(s.entries) }

// Authors returns author keys in sorted order.
func (s *AuthorStat) Authors() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *AuthorStat) Totals() Counts {
	var total Counts
	for _, e := range s.entries {
		total = total.Plus(*e)
	}
	return total
}

func (s *AuthorStat) Snapshot() map[string]Counts {
	out := make(map[string]Counts, len(s.entries))
	for k, v := range s.entries {
		out[k] = *v
	}
	return out
}

// RemapProject follows the merge table until a name with no further mapping
// is reached. Cycles stop at the first repeated name.
func RemapProject(merge map[string]string, project string) string {
	if len(merge) == 0 {
		return project
	}
	seen := map[string]bool{project: true}
	for {
		next, ok := merge[project]
		if !ok || seen[next] {
			return project
		}
		seen[next] = true
		project = next
	}
}
