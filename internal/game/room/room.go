// Package room implements the authoritative murder-mystery game room: the
// players table, the phase state machine, role dealing, clue reveals and
// vote tallies. It performs no I/O.
package room

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cory-johannsen/mystery/internal/game/random"
	"github.com/cory-johannsen/mystery/internal/game/script"
)

// ScriptSource is the read-only script catalog the room plays from.
type ScriptSource interface {
	List() []script.Summary
	Get(id string) (*script.Script, bool)
}

// Player is one participant. Players are never removed; a dropped
// connection only clears Connected.
type Player struct {
	ID          int
	DisplayName string
	RoleID      string // empty until roles are dealt
	IsHost      bool
	Connected   bool
	CurrentVote int // zero when the player has not voted
}

// Room owns all game state. Every exported method holds the room lock for
// its whole duration, so each operation is atomic with respect to the
// others. Failed operations never mutate state.
type Room struct {
	mu sync.Mutex

	scripts ScriptSource
	src     random.Source

	nextID      int
	players     map[int]*Player
	phase       Phase
	playerCount int
	scriptID    string
	revealed    map[string]script.Clue
	votes       map[int]int // voter id → target id
	result      *Result
}

// New creates an idle room with no players.
//
// Precondition: scripts and src must be non-nil; playerCount must already be validated.
// Postcondition: Returns a Room in PhaseIdle.
func New(scripts ScriptSource, src random.Source, playerCount int) *Room {
	return &Room{
		scripts:     scripts,
		src:         src,
		nextID:      1,
		players:     make(map[int]*Player),
		phase:       PhaseIdle,
		playerCount: playerCount,
		revealed:    make(map[string]script.Clue),
		votes:       make(map[int]int),
	}
}

// ListScripts returns the script catalog.
func (r *Room) ListScripts() []script.Summary {
	return r.scripts.List()
}

// AddPlayer registers a new connected player.
//
// Postcondition: Returns the new player's id; ids start at 1 and increase
// monotonically. A blank name becomes "Player <id>".
func (r *Room) AddPlayer(displayName string, isHost bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = fmt.Sprintf("Player %d", id)
	}
	r.players[id] = &Player{
		ID:          id,
		DisplayName: name,
		IsHost:      isHost,
		Connected:   true,
	}
	return id
}

// RemovePlayer marks the player as disconnected. The player's id, role
// and recorded vote are kept.
//
// Postcondition: Returns false if the id is unknown.
func (r *Room) RemovePlayer(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return false
	}
	p.Connected = false
	return true
}

// IsHost reports whether id names a host player.
func (r *Room) IsHost(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	return ok && p.IsHost
}

// Player returns a copy of the player with the given id.
func (r *Room) Player(id int) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Phase returns the current phase.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// SetName renames a player while the room is Idle or Configuring.
//
// Postcondition: Returns ErrNameLocked outside those phases, or
// ErrInvalidName if the player is unknown or the name is blank.
func (r *Room) SetName(id int, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.phase.namesEditable() {
		return ErrNameLocked
	}
	p, ok := r.players[id]
	name := strings.TrimSpace(displayName)
	if !ok || name == "" {
		return ErrInvalidName
	}
	p.DisplayName = name
	return nil
}

// SetPlayerCount sets how many players the next deal requires. Range
// checking belongs to the caller.
func (r *Room) SetPlayerCount(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playerCount = n
}

// SelectScript activates a script in any phase, discarding the current
// round, and moves the room to Configuring.
//
// Postcondition: Returns ErrInvalidScript if the id is not in the catalog.
func (r *Room) SelectScript(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scripts.Get(id); !ok {
		return ErrInvalidScript
	}
	r.scriptID = id
	r.resetRound()
	r.phase = PhaseConfiguring
	return nil
}

// Reset discards the current round. The room returns to Configuring when a
// script is selected and to Idle otherwise; players and player count are kept.
func (r *Room) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resetRound()
	if r.activeScript() != nil {
		r.phase = PhaseConfiguring
	} else {
		r.phase = PhaseIdle
	}
}

// AdvancePhase moves the room to the next phase. Entering Voting clears
// all votes; entering ResultReview freezes the result; leaving Archived
// starts a fresh round.
//
// Postcondition: Returns the new phase, or ErrCannotAdvance for a phase
// with no successor.
func (r *Room) AdvancePhase() (Phase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, ok := r.phase.next(r.activeScript() != nil)
	if !ok {
		return r.phase, ErrCannotAdvance
	}

	switch {
	case next == PhaseVoting:
		r.clearVotes()
	case next == PhaseResultReview:
		r.result = r.freezeResult()
	case r.phase == PhaseArchived:
		r.resetRound()
	}
	r.phase = next
	return next, nil
}

// RevealClue records a clue of the active script as revealed. Revealing
// the same clue again stores the same record.
//
// Postcondition: Returns ErrNotInvestigation outside Investigation, or
// ErrInvalidClue if the active script has no such clue.
func (r *Room) RevealClue(id string) (script.Clue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseInvestigation {
		return script.Clue{}, ErrNotInvestigation
	}
	s := r.activeScript()
	if s == nil {
		return script.Clue{}, ErrInvalidClue
	}
	clue, ok := s.Clue(id)
	if !ok {
		return script.Clue{}, ErrInvalidClue
	}
	r.revealed[clue.ID] = clue
	return clue, nil
}

// SubmitVote records voter's accusation of target, replacing any earlier
// vote by the same voter.
//
// Postcondition: Returns the live tally, or ErrNotVoting, ErrUnknownPlayer
// or ErrInvalidVoteTarget without recording anything.
func (r *Room) SubmitVote(voter, target int) (Tally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseVoting {
		return Tally{}, ErrNotVoting
	}
	v, ok := r.players[voter]
	if !ok {
		return Tally{}, ErrUnknownPlayer
	}
	if _, ok := r.players[target]; !ok {
		return Tally{}, ErrInvalidVoteTarget
	}
	r.votes[voter] = target
	v.CurrentVote = target
	return r.tally(), nil
}

// Snapshot returns a deep copy of the room state.
func (r *Room) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := State{
		Phase:         r.phase,
		PlayerCount:   r.playerCount,
		Players:       make([]PlayerView, 0, len(r.players)),
		Roles:         []RoleIntro{},
		Clues:         []ClueOverview{},
		RevealedClues: make([]script.Clue, 0, len(r.revealed)),
		Votes:         r.tally(),
		Result:        r.result.clone(),
	}

	for _, p := range r.sortedPlayers(false) {
		view := PlayerView{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			IsHost:      p.IsHost,
			Connected:   p.Connected,
		}
		if p.RoleID != "" {
			role := p.RoleID
			view.RoleID = &role
		}
		if p.CurrentVote != 0 {
			vote := p.CurrentVote
			view.CurrentVote = &vote
		}
		st.Players = append(st.Players, view)
	}

	if s := r.activeScript(); s != nil {
		st.Script = &ScriptInfo{ID: s.ID, Title: s.Title, Summary: s.Summary}
		for _, role := range s.Roles {
			st.Roles = append(st.Roles, RoleIntro{ID: role.ID, Name: role.Name, Intro: role.Intro})
		}
		for _, c := range s.Clues {
			st.Clues = append(st.Clues, ClueOverview{ID: c.ID, Name: c.Name, Type: c.Type})
		}
	}

	for _, c := range r.revealed {
		st.RevealedClues = append(st.RevealedClues, c)
	}
	sort.Slice(st.RevealedClues, func(i, j int) bool {
		return st.RevealedClues[i].ID < st.RevealedClues[j].ID
	})
	return st
}

// activeScript returns the selected script, or nil.
//
// Precondition: r.mu is held.
func (r *Room) activeScript() *script.Script {
	if r.scriptID == "" {
		return nil
	}
	s, ok := r.scripts.Get(r.scriptID)
	if !ok {
		return nil
	}
	return s
}

// resetRound clears every per-round field.
//
// Precondition: r.mu is held.
func (r *Room) resetRound() {
	r.revealed = make(map[string]script.Clue)
	r.result = nil
	r.clearVotes()
	for _, p := range r.players {
		p.RoleID = ""
	}
}

// Precondition: r.mu is held.
func (r *Room) clearVotes() {
	r.votes = make(map[int]int)
	for _, p := range r.players {
		p.CurrentVote = 0
	}
}

// sortedPlayers returns players in ascending id order, which is also
// registration order.
//
// Precondition: r.mu is held.
func (r *Room) sortedPlayers(connectedOnly bool) []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if connectedOnly && !p.Connected {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// tally counts the votes cast by connected players.
//
// Precondition: r.mu is held.
func (r *Room) tally() Tally {
	t := Tally{Counts: make(map[string]int)}
	for _, p := range r.players {
		if p.Connected {
			t.Eligible++
		}
	}
	for voter, target := range r.votes {
		if p, ok := r.players[voter]; !ok || !p.Connected {
			continue
		}
		t.Submitted++
		t.Counts[strconv.Itoa(target)]++
	}
	return t
}

// Precondition: r.mu is held.
func (r *Room) freezeResult() *Result {
	res := &Result{Events: []script.Event{}, Votes: r.tally()}
	if s := r.activeScript(); s != nil {
		res.Truth = s.Truth
		res.Events = append(res.Events, s.Events...)
	}
	return res
}
