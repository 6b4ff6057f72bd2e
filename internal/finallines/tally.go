package finallines

import (
	"fmt"
	"strings"
)

// Tally is the final line count of one project. Total is the sum of ByExt;
// lines of unrecognized extensions only count toward Others.
type Tally struct {
	ByExt  map[string]int
	Total  int
	Others int
}

// Result is a Tally plus the files the counter could not or would not read.
type Result struct {
	Tally
	Undefined map[string]int
	Skipped   map[string]string
	NotUTF8   map[string]string
	Errors    map[string]string
}

func newResult(extensions []string) Result {
	byExt := make(map[string]int, len(extensions))
	for _, e := range extensions {
		byExt[e] = 0
	}
	return Result{
		Tally:     Tally{ByExt: byExt},
		Undefined: make(map[string]int),
		Skipped:   make(map[string]string),
		NotUTF8:   make(map[string]string),
		Errors:    make(map[string]string),
	}
}

// Plus merges two tallies, used when renamed projects fold into one row.
func (t Tally) Plus(o Tally) Tally {
	out := Tally{ByExt: make(map[string]int, len(t.ByExt)), Total: t.Total + o.Total, Others: t.Others + o.Others}
	for k, v := range t.ByExt {
		out.ByExt[k] += v
	}
	for k, v := range o.ByExt {
		out.ByExt[k] += v
	}
	return out
}

// Condensed packs the nonzero extensions into one cell, e.g. ".java: 120; .py: 40".
func (t Tally) Condensed(extensions []string) string {
	var parts []string
	for _, e := range extensions {
		if n := t.ByExt[e]; n != 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", e, n))
		}
	}
	return strings.Join(parts, "; ")
}
