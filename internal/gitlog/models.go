package gitlog

import "time"

// FieldSeparator separates commit id, author and timestamp in a header line.
const FieldSeparator = "||"

// LogFormat is the --pretty format producing header lines understood by Parser.
const LogFormat = "tformat:%H" + FieldSeparator + "%an <%ae>" + FieldSeparator + "%aI"

// UnknownBranch is reported when the branch of a working copy cannot be resolved.
const UnknownBranch = "unknown"

// CommitRecord is one commit found in a log.
type CommitRecord struct {
	ID         string
	RawAuthor  string
	Timestamp  time.Time
	LinesAdded int
}

// ParseResult summarizes one parse pass.
type ParseResult struct {
	Commits    int
	LinesAdded int
	Skipped    int
	Records    []CommitRecord
}
