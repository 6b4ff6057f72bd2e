package output

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/masmgr/codestat/internal/window"
)

const (
	reportDateLayout     = "2006-01-02"
	reportDateTimeLayout = "2006-01-02T15:04:05"
)

func rangeSuffix(since, before time.Time, byMonth bool) string {
	s := since.Format(window.DateLayout) + "_" + before.Format(window.DateLayout)
	if byMonth {
		s += "_month"
	}
	return s
}

// ProjStatFileName returns proj_stat_<since>_<before>[_month].txt.
func ProjStatFileName(since, before time.Time, byMonth bool) string {
	return "proj_stat_" + rangeSuffix(since, before, byMonth) + ".txt"
}

// ProjAuthorStatFileName returns proj_author_stat_<since>_<before>[_month].txt.
func ProjAuthorStatFileName(since, before time.Time, byMonth bool) string {
	return "proj_author_stat_" + rangeSuffix(since, before, byMonth) + ".txt"
}

// AuthorStatFileName returns author_stat_<since>_<before>[_month].txt.
func AuthorStatFileName(since, before time.Time, byMonth bool) string {
	return "author_stat_" + rangeSuffix(since, before, byMonth) + ".txt"
}

// FinalLinesFileName returns final_lines_stat_<date>.txt.
func FinalLinesFileName(date time.Time) string {
	return "final_lines_stat_" + date.Format(window.DateLayout) + ".txt"
}

// openOutputWriter returns the destination for a single-document format.
// The returned file, if any, must be closed by the caller.
func openOutputWriter(options OutputOptions) (io.Writer, *os.File, error) {
	if options.OutputPath == "" {
		return stdout(options), nil, nil
	}
	if dir := filepath.Dir(options.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	file, err := os.Create(options.OutputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

func stdout(options OutputOptions) io.Writer {
	if options.Out != nil {
		return options.Out
	}
	return os.Stdout
}
