package script

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// yamlScript is the on-disk representation of a script. JSON files are
// read through the same structure since JSON is valid YAML.
type yamlScript struct {
	ID      string      `yaml:"id"`
	Title   string      `yaml:"title"`
	Summary string      `yaml:"summary"`
	Roles   []yamlRole  `yaml:"roles"`
	Clues   []yamlClue  `yaml:"clues"`
	Truth   string      `yaml:"truth"`
	Events  []yamlEvent `yaml:"events"`
}

type yamlRole struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Intro string `yaml:"intro"`
	Story string `yaml:"story"`
}

type yamlClue struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Content string `yaml:"content"`
}

type yamlEvent struct {
	Time    string `yaml:"time"`
	Content string `yaml:"content"`
}

// LoadFromFile reads and validates a single script file.
//
// Precondition: path must point to a YAML or JSON script file.
// Postcondition: Returns a validated Script or a non-nil error.
func LoadFromFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a script from YAML or JSON bytes.
//
// Postcondition: Returns a validated Script or a non-nil error.
func LoadFromBytes(data []byte) (*Script, error) {
	var ys yamlScript
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}

	s := convertYAMLScript(ys)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validating script: %w", err)
	}
	return s, nil
}

// LoadDir loads every .yaml, .yml and .json file in dir into a Repository.
// Files that fail to load are skipped with a warning, and a script id seen
// twice keeps the file that sorts first.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a Repository (possibly empty) or an error if dir cannot be read.
func LoadDir(dir string, logger *zap.Logger) (*Repository, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading script directory %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	seen := make(map[string]string)
	var scripts []*Script
	for _, entry := range entries {
		if entry.IsDir() || !isScriptFile(entry.Name()) {
			continue
		}
		name := entry.Name()
		s, err := LoadFromFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping script file", zap.String("file", name), zap.Error(err))
			continue
		}
		if prev, dup := seen[s.ID]; dup {
			logger.Warn("skipping duplicate script id",
				zap.String("file", name),
				zap.String("script_id", s.ID),
				zap.String("kept", prev),
			)
			continue
		}
		seen[s.ID] = name
		scripts = append(scripts, s)
	}

	return NewRepository(scripts)
}

func isScriptFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// convertYAMLScript converts the parsed file structure into domain types.
func convertYAMLScript(ys yamlScript) *Script {
	s := &Script{
		ID:      strings.TrimSpace(ys.ID),
		Title:   ys.Title,
		Summary: strings.TrimSpace(ys.Summary),
		Truth:   strings.TrimSpace(ys.Truth),
	}
	for _, yr := range ys.Roles {
		s.Roles = append(s.Roles, Role{ID: yr.ID, Name: yr.Name, Intro: yr.Intro, Story: yr.Story})
	}
	for _, yc := range ys.Clues {
		s.Clues = append(s.Clues, Clue{ID: yc.ID, Name: yc.Name, Type: yc.Type, Content: yc.Content})
	}
	for _, ye := range ys.Events {
		s.Events = append(s.Events, Event{Time: ye.Time, Content: ye.Content})
	}
	return s
}
