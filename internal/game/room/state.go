package room

import "github.com/cory-johannsen/mystery/internal/game/script"

// PlayerView is the public record of a player in a room snapshot.
type PlayerView struct {
	PlayerID    int     `json:"player_id"`
	DisplayName string  `json:"display_name"`
	RoleID      *string `json:"role_id"`
	IsHost      bool    `json:"is_host"`
	Connected   bool    `json:"connected"`
	CurrentVote *int    `json:"current_vote"`
}

// ScriptInfo identifies the selected script.
type ScriptInfo struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// RoleIntro is the public face of a role: everyone may read it, only the
// assignee receives the story.
type RoleIntro struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Intro string `json:"intro"`
}

// ClueOverview lists a clue without its content.
type ClueOverview struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Tally summarizes the votes of the current round.
//
// Invariant: Submitted <= Eligible and the values of Counts sum to Submitted.
type Tally struct {
	Submitted int            `json:"submitted"`
	Eligible  int            `json:"eligible"`
	Counts    map[string]int `json:"counts"`
}

func (t Tally) clone() Tally {
	counts := make(map[string]int, len(t.Counts))
	for k, v := range t.Counts {
		counts[k] = v
	}
	t.Counts = counts
	return t
}

// Result is the round outcome frozen on entering ResultReview.
type Result struct {
	Truth  string         `json:"truth"`
	Events []script.Event `json:"events"`
	Votes  Tally          `json:"votes"`
}

func (r *Result) clone() *Result {
	if r == nil {
		return nil
	}
	return &Result{
		Truth:  r.Truth,
		Events: append([]script.Event{}, r.Events...),
		Votes:  r.Votes.clone(),
	}
}

// State is a point-in-time copy of the room. It shares no memory with the
// room and may be serialized or compared freely.
type State struct {
	Phase         Phase          `json:"phase"`
	PlayerCount   int            `json:"player_count"`
	Players       []PlayerView   `json:"players"`
	Script        *ScriptInfo    `json:"script"`
	Roles         []RoleIntro    `json:"roles"`
	Clues         []ClueOverview `json:"clues"`
	RevealedClues []script.Clue  `json:"revealed_clues"`
	Votes         Tally          `json:"votes"`
	Result        *Result        `json:"result"`
}

// RolePayload is a role personalized for the player it was dealt to.
type RolePayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Intro string `json:"intro"`
	Story string `json:"story"`
}
