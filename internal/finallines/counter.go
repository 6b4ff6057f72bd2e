package finallines

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/src-d/enry/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// Options configures which files are counted.
type Options struct {
	// Extensions are the tracked extensions, e.g. ".go". Other extensions
	// are folded into Others.
	Extensions []string
	// SkipPaths holds exact file or directory names, or doublestar patterns
	// matched against the slash-separated path relative to the project root.
	SkipPaths []string
	// SkipExtensions are never read.
	SkipExtensions []string
	// SkipVendor skips paths enry classifies as vendored.
	SkipVendor bool
}

// Counter counts final lines of a working copy per extension.
type Counter struct {
	extensions []string
	tracked    map[string]bool
	skipExt    map[string]bool
	skipNames  map[string]bool
	patterns   []string
	skipVendor bool
	logger     zerolog.Logger
}

// NewCounter creates a Counter. Extensions are matched case-insensitively.
func NewCounter(opts Options, logger zerolog.Logger) *Counter {
	c := &Counter{
		tracked:    make(map[string]bool),
		skipExt:    make(map[string]bool),
		skipNames:  make(map[string]bool),
		skipVendor: opts.SkipVendor,
		logger:     logger,
	}
	for _, e := range opts.Extensions {
		e = normalizeExt(e)
		if e == "" || c.tracked[e] {
			continue
		}
		c.tracked[e] = true
		c.extensions = append(c.extensions, e)
	}
	for _, e := range opts.SkipExtensions {
		c.skipExt[normalizeExt(e)] = true
	}
	for _, p := range opts.SkipPaths {
		if strings.ContainsAny(p, "*?[{/") {
			c.patterns = append(c.patterns, p)
		} else {
			c.skipNames[p] = true
		}
	}
	return c
}

// Extensions returns the tracked extensions in configured order.
func (c *Counter) Extensions() []string {
	return append([]string(nil), c.extensions...)
}

// Count walks root and tallies lines per tracked extension. Unreadable or
// undecodable files are recorded in the result and skipped.
func (c *Counter) Count(ctx context.Context, root string) (Result, error) {
	res := newResult(c.extensions)

	info, err := os.Stat(root)
	if err != nil {
		return res, fmt.Errorf("stat project root: %w", err)
	}
	if !info.IsDir() {
		return res, fmt.Errorf("project root %s is not a directory", root)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return walkErr
		}
		if walkErr != nil {
			res.Errors[path] = walkErr.Error()
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if reason := c.skipReason(rel, d); reason != "" {
			res.Skipped[path] = reason
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if depth := strings.Count(rel, "/"); depth < 1 {
				c.logger.Debug().Str("dir", rel).Msg("counting final lines")
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if c.skipExt[ext] {
			res.Skipped[path] = "extension is skipped"
			return nil
		}

		n, encoding, err := c.countFile(path)
		if err != nil {
			res.Errors[path] = err.Error()
			return nil
		}
		if encoding != "" {
			res.NotUTF8[path] = encoding
		}

		if c.tracked[ext] {
			res.ByExt[ext] += n
			res.Total += n
		} else {
			res.Undefined[ext] += n
			res.Others += n
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	c.logger.Info().
		Str("root", root).
		Int("total", res.Total).
		Int("others", res.Others).
		Int("skipped", len(res.Skipped)).
		Int("not_utf8", len(res.NotUTF8)).
		Int("errors", len(res.Errors)).
		Msg("final lines counted")
	if len(res.Undefined) > 0 {
		c.logger.Debug().Interface("undefined", res.Undefined).Msg("others by extension")
	}
	return res, nil
}

func (c *Counter) skipReason(rel string, d fs.DirEntry) string {
	if c.skipNames[d.Name()] {
		return "path is matched"
	}
	for _, p := range c.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return "pattern " + p + " is matched"
		}
	}
	if c.skipVendor {
		vendorPath := rel
		if d.IsDir() {
			vendorPath += "/"
		}
		if enry.IsVendor(vendorPath) {
			return "vendored path"
		}
	}
	return ""
}

var (
	bomUTF16LE = []byte{0xff, 0xfe}
	bomUTF16BE = []byte{0xfe, 0xff}
)

// countFile returns the line count of a file and the encoding it was decoded
// with when that was not UTF-8.
func (c *Counter) countFile(path string) (int, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, "", err
	}
	if utf8.Valid(data) {
		return countLines(data), "", nil
	}

	if bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE) {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return 0, "", fmt.Errorf("decode utf-16: %w", err)
		}
		return countLines(decoded), "utf-16", nil
	}

	if enry.IsBinary(data) {
		return 0, "", fmt.Errorf("binary content")
	}

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return 0, "", fmt.Errorf("decode gbk: %w", err)
	}
	return countLines(decoded), "gbk", nil
}

// countLines counts newline-terminated lines plus a final unterminated one.
func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	count := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		count++
	}
	return count
}

func normalizeExt(e string) string {
	e = strings.ToLower(strings.TrimSpace(e))
	if e != "" && !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

// SortedUndefined returns the unrecognized extensions ordered by line count.
func (r Result) SortedUndefined() []string {
	exts := make([]string, 0, len(r.Undefined))
	for e := range r.Undefined {
		exts = append(exts, e)
	}
	sort.Slice(exts, func(i, j int) bool {
		if r.Undefined[exts[i]] != r.Undefined[exts[j]] {
			return r.Undefined[exts[i]] > r.Undefined[exts[j]]
		}
		return exts[i] < exts[j]
	})
	return exts
}
