// Package script holds the static murder-mystery scenarios the room plays.
// Scripts are loaded once at startup and never mutated afterwards.
package script

import (
	"errors"
	"fmt"
	"sort"
)

// Role is one character template of a script.
type Role struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Intro string `json:"intro"`
	Story string `json:"story"`
}

// Clue is a piece of evidence that can be revealed during investigation.
type Clue struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Event is one entry of the script's true timeline.
type Event struct {
	Time    string `json:"time"`
	Content string `json:"content"`
}

// Script is a complete scenario.
type Script struct {
	ID      string
	Title   string
	Summary string
	Roles   []Role
	Clues   []Clue
	Truth   string
	Events  []Event
}

// Summary is the catalog view of a script.
type Summary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	RoleCount int    `json:"role_count"`
}

// Validate checks the script's structural invariants.
//
// Postcondition: Returns nil when ID is set and role and clue ids are non-empty and unique.
func (s *Script) Validate() error {
	if s.ID == "" {
		return errors.New("script id must not be empty")
	}
	roles := make(map[string]bool, len(s.Roles))
	for i, r := range s.Roles {
		if r.ID == "" {
			return fmt.Errorf("script %q: role %d has no id", s.ID, i)
		}
		if roles[r.ID] {
			return fmt.Errorf("script %q: duplicate role id %q", s.ID, r.ID)
		}
		roles[r.ID] = true
	}
	clues := make(map[string]bool, len(s.Clues))
	for i, c := range s.Clues {
		if c.ID == "" {
			return fmt.Errorf("script %q: clue %d has no id", s.ID, i)
		}
		if clues[c.ID] {
			return fmt.Errorf("script %q: duplicate clue id %q", s.ID, c.ID)
		}
		clues[c.ID] = true
	}
	return nil
}

// Clue returns the clue with the given id.
func (s *Script) Clue(id string) (Clue, bool) {
	for _, c := range s.Clues {
		if c.ID == id {
			return c, true
		}
	}
	return Clue{}, false
}

// Summarize returns the catalog entry for the script.
func (s *Script) Summarize() Summary {
	return Summary{
		ID:        s.ID,
		Title:     s.Title,
		Summary:   s.Summary,
		RoleCount: len(s.Roles),
	}
}

// Repository is a read-only, id-indexed set of scripts.
// It is immutable after construction and safe for concurrent use.
type Repository struct {
	scripts map[string]*Script
	catalog []Summary
}

// NewRepository indexes the given scripts by id.
//
// Precondition: every script must pass Validate.
// Postcondition: Returns a Repository or an error on the first invalid or duplicate script.
func NewRepository(scripts []*Script) (*Repository, error) {
	r := &Repository{scripts: make(map[string]*Script, len(scripts))}
	for _, s := range scripts {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.scripts[s.ID]; dup {
			return nil, fmt.Errorf("duplicate script id %q", s.ID)
		}
		r.scripts[s.ID] = s
		r.catalog = append(r.catalog, s.Summarize())
	}
	sort.Slice(r.catalog, func(i, j int) bool { return r.catalog[i].ID < r.catalog[j].ID })
	return r, nil
}

// List returns the catalog sorted by script id.
//
// Postcondition: The returned slice is a copy and may be modified by the caller.
func (r *Repository) List() []Summary {
	out := make([]Summary, len(r.catalog))
	copy(out, r.catalog)
	return out
}

// Get returns the script with the given id.
func (r *Repository) Get(id string) (*Script, bool) {
	s, ok := r.scripts[id]
	return s, ok
}

// Count returns the number of scripts.
func (r *Repository) Count() int {
	return len(r.scripts)
}
