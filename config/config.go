package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/masmgr/codestat/internal/correction"
	"github.com/masmgr/codestat/internal/window"
)

// MonthLayout is the format of correction months.
const MonthLayout = "2006-01"

var (
	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidRange is returned for missing, malformed or empty date ranges.
	ErrInvalidRange = errors.New("invalid date range")
)

// Config is the root configuration structure.
type Config struct {
	GitHost     string              `json:"gitHost" yaml:"gitHost"`
	Workspace   string              `json:"workspace" yaml:"workspace"`
	OutputDir   string              `json:"outputDir" yaml:"outputDir"`
	Projects    map[string][]string `json:"projects" yaml:"projects"` // group -> project names
	Authors     AuthorConfig        `json:"authors" yaml:"authors"`
	Merge       map[string]string   `json:"projectMerge" yaml:"projectMerge"` // old name -> new name
	Corrections []CorrectionConfig  `json:"corrections" yaml:"corrections"`
	FinalLines  FinalLinesConfig    `json:"finalLines" yaml:"finalLines"`
	Log         LogConfig           `json:"log" yaml:"log"`
}

// AuthorConfig holds author normalization settings.
type AuthorConfig struct {
	Aliases map[string]string `json:"aliases" yaml:"aliases"` // raw email -> canonical email
}

// CorrectionConfig is one manual adjustment of added lines.
type CorrectionConfig struct {
	Month   string   `json:"month" yaml:"month"` // YYYY-MM
	Project string   `json:"project" yaml:"project"`
	Author  string   `json:"author" yaml:"author"`
	Delta   int      `json:"delta" yaml:"delta"`
	Levels  []string `json:"levels,omitempty" yaml:"levels,omitempty"` // default: all
}

// FinalLinesConfig holds final line counting options.
type FinalLinesConfig struct {
	Extensions     []string `json:"extensions" yaml:"extensions"`
	SkipExtensions []string `json:"skipExtensions" yaml:"skipExtensions"`
	SkipPaths      []string `json:"skipPaths" yaml:"skipPaths"`
	SkipVendor     bool     `json:"skipVendor" yaml:"skipVendor"`
	Branch         string   `json:"branch" yaml:"branch"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // text or json
	File   string `json:"file" yaml:"file"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		GitHost:   "github.com",
		Workspace: "workspace",
		OutputDir: "output",
		Projects:  map[string][]string{},
		Authors:   AuthorConfig{Aliases: map[string]string{}},
		Merge:     map[string]string{},
		FinalLines: FinalLinesConfig{
			Extensions: []string{
				".java",
				".sh", ".sql", ".job",
				".htm", ".html", ".css", ".less", ".js", ".ts", ".vue",
				".py",
				".c", ".cpp", ".h",
				".scala",
				".properties", ".md", ".xml", ".yml", ".bat", ".json",
			},
			SkipExtensions: []string{
				".iml", ".vcxproj", ".bak",
				".jar", ".zip", ".gz", ".7z", ".tar", ".war", ".class", ".exe", ".dat", ".swp", ".keystore", ".jks", ".aps",
				".png", ".gif", ".jpg", ".bmp", ".ico", ".cur", ".mp3", ".wav", ".m4a", ".flac", ".wma", ".wmv", ".mp4", ".flv",
				".otf", ".eot", ".ttf", ".woff", ".swf", ".crc", ".psd", ".ogg",
				".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".pages", ".numbers", ".key", ".vsd",
				".out", ".txt", ".log", ".dic", ".csv", ".avro",
			},
			SkipPaths: []string{
				".git", ".svn", ".idea", ".vscode", "__pycache__", ".DS_Store", "target",
			},
			Branch: "master",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// candidates returns the default config file locations in search order.
func candidates() []string {
	names := []string{".codestat.yaml", ".codestat.yml", ".codestat.json"}
	paths := append([]string(nil), names...)
	if home, err := homedir.Dir(); err == nil && home != "" {
		for _, n := range names {
			paths = append(paths, filepath.Join(home, n))
		}
	}
	return paths
}

// LoadConfig loads configuration from a file, merging with defaults. An empty
// path searches the working directory, then the home directory. Environment
// variables (optionally from .env) override file values.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := DefaultConfig()

	if path == "" {
		for _, p := range candidates() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("expand config path: %w", err)
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := decode(expanded, data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", expanded, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CODESTAT_GIT_HOST"); v != "" {
		c.GitHost = v
	}
	if v := os.Getenv("CODESTAT_WORKSPACE"); v != "" {
		c.Workspace = v
	}
	if v := os.Getenv("CODESTAT_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("CODESTAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Workspace, &c.OutputDir, &c.Log.File} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// SaveConfig saves configuration to a file, as YAML or JSON by extension.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects contradictory settings.
func (c *Config) Validate() error {
	if len(c.FinalLines.Extensions) == 0 {
		return fmt.Errorf("%w: finalLines.extensions is empty", ErrInvalidConfig)
	}
	for group, names := range c.Projects {
		if group == "" {
			return fmt.Errorf("%w: project group name is empty", ErrInvalidConfig)
		}
		for _, n := range names {
			if n == "" || strings.Contains(n, "/") {
				return fmt.Errorf("%w: invalid project name %q in group %s", ErrInvalidConfig, n, group)
			}
		}
	}
	for raw, canonical := range c.Authors.Aliases {
		if next, ok := c.Authors.Aliases[canonical]; ok && canonical != raw {
			return fmt.Errorf("%w: alias %s -> %s is itself remapped to %s", ErrInvalidConfig, raw, canonical, next)
		}
	}
	if _, err := c.CorrectionEntries(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// ProjectList returns the registry as "group/name" entries, groups sorted,
// projects in configured order.
func (c *Config) ProjectList() []string {
	groups := make([]string, 0, len(c.Projects))
	for g := range c.Projects {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var out []string
	for _, g := range groups {
		for _, n := range c.Projects[g] {
			out = append(out, g+"/"+n)
		}
	}
	return out
}

// CorrectionEntries converts the correction table.
func (c *Config) CorrectionEntries() ([]correction.Entry, error) {
	entries := make([]correction.Entry, 0, len(c.Corrections))
	for i, cc := range c.Corrections {
		month, err := time.Parse(MonthLayout, cc.Month)
		if err != nil {
			return nil, fmt.Errorf("correction %d: invalid month %q (expected YYYY-MM)", i, cc.Month)
		}
		if cc.Project == "" || cc.Author == "" {
			return nil, fmt.Errorf("correction %d: project and author are required", i)
		}

		var levels correction.Level
		for _, s := range cc.Levels {
			lv, err := correction.ParseLevel(s)
			if err != nil {
				return nil, fmt.Errorf("correction %d: %w", i, err)
			}
			levels |= lv
		}

		entries = append(entries, correction.Entry{
			Month:   month,
			Project: cc.Project,
			Author:  cc.Author,
			Delta:   cc.Delta,
			Levels:  levels,
		})
	}
	return entries, nil
}

// ParseRange parses the since and before dates of a run.
func ParseRange(since, before string) (time.Time, time.Time, error) {
	if since == "" || before == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: both --since and --before are required", ErrInvalidRange)
	}
	s, err := window.ParseDate(since)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	b, err := window.ParseDate(before)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if !b.After(s) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: before %s is not later than since %s", ErrInvalidRange, before, since)
	}
	return s, b, nil
}
