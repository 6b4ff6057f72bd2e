package gitlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrMalformedHeader marks a header line that lacks id, author or timestamp.
var ErrMalformedHeader = errors.New("malformed commit header")

// summaryPattern matches "N file(s) changed[, M insertion(s)(+)][, K deletion(s)(-)]".
var summaryPattern = regexp.MustCompile(`^\s*(\d+) files? changed(?:, (\d+) insertions?\(\+\))?(?:, (\d+) deletions?\(-\))?\s*$`)

// commitIDPattern matches the abbreviated or full hash opening a header line.
var commitIDPattern = regexp.MustCompile(`^[0-9a-fA-F]+$`)

const maxLineSize = 1024 * 1024

// Observer receives parse events in log order.
//
// OnCommit is called once per header line before any OnLinesAdded for the same
// commit. Returning an error skips the commit, and its summary line is ignored.
type Observer interface {
	OnCommit(rec CommitRecord) error
	OnLinesAdded(rec CommitRecord, n int)
}

// Parser reads git log --stat output produced with LogFormat.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a parser that reports skipped records to logger.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse streams r through obs. Malformed headers and commits rejected by obs
// are logged and skipped. A read error stops the parse; everything already
// passed to obs stays in place and the partial result is returned with the error.
func (p *Parser) Parse(r io.Reader, obs Observer) (ParseResult, error) {
	var res ParseResult
	var current *CommitRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if isHeader(line) {
			current = nil
			rec, err := parseHeader(line)
			if err != nil {
				res.Skipped++
				p.logger.Error().Err(err).Int("line", lineNo).Msg("skipping commit")
				continue
			}
			if err := obs.OnCommit(rec); err != nil {
				res.Skipped++
				p.logger.Error().Err(err).Str("commit", rec.ID).Msg("skipping commit")
				continue
			}
			res.Commits++
			res.Records = append(res.Records, rec)
			current = &res.Records[len(res.Records)-1]
			continue
		}

		added, ok := parseSummary(line)
		if !ok || current == nil {
			continue
		}
		current.LinesAdded += added
		res.LinesAdded += added
		obs.OnLinesAdded(*current, added)
	}

	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("read git log at line %d: %w", lineNo+1, err)
	}
	return res, nil
}

// isHeader reports whether line opens a commit. Stat file lines are indented
// and may contain FieldSeparator in a path, so they never qualify.
func isHeader(line string) bool {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return false
	}
	id, _, found := strings.Cut(line, FieldSeparator)
	return found && commitIDPattern.MatchString(id)
}

func parseHeader(line string) (CommitRecord, error) {
	fields := strings.SplitN(line, FieldSeparator, 3)
	if len(fields) < 3 {
		return CommitRecord{}, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}

	id := strings.TrimSpace(fields[0])
	author := strings.TrimSpace(fields[1])
	if id == "" || author == "" {
		return CommitRecord{}, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}

	when, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[2]))
	if err != nil {
		return CommitRecord{}, fmt.Errorf("%w: timestamp: %v", ErrMalformedHeader, err)
	}

	return CommitRecord{ID: id, RawAuthor: author, Timestamp: when}, nil
}

// parseSummary returns the insertion count of a summary line. A summary
// reporting only deletions yields 0.
func parseSummary(line string) (int, bool) {
	m := summaryPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	if m[2] == "" {
		return 0, true
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}
