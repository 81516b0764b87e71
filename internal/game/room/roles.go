package room

import (
	"strings"

	"github.com/cory-johannsen/mystery/internal/game/random"
	"github.com/cory-johannsen/mystery/internal/game/script"
)

// AssignRoles deals a random permutation of the active script's roles to
// the first PlayerCount connected players in ascending id order, and moves
// the room to Reading. Any earlier deal is discarded first.
//
// Postcondition: Returns the personalized payload for every dealt player,
// keyed by player id, or one of ErrNoScript, ErrNotEnoughPlayers,
// ErrNotEnoughRoles with the room unchanged.
func (r *Room) AssignRoles() (map[int]RolePayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.activeScript()
	if s == nil {
		return nil, ErrNoScript
	}
	connected := r.sortedPlayers(true)
	if len(connected) < r.playerCount {
		return nil, ErrNotEnoughPlayers
	}
	if len(s.Roles) < r.playerCount {
		return nil, ErrNotEnoughRoles
	}

	r.resetRound()
	perm := random.Perm(len(s.Roles), r.src)

	dealt := make(map[int]RolePayload, r.playerCount)
	for i, p := range connected[:r.playerCount] {
		role := s.Roles[perm[i]]
		p.RoleID = role.ID
		dealt[p.ID] = Personalize(role, p.DisplayName)
	}
	r.phase = PhaseReading
	return dealt, nil
}

// Personalize renders role for the named player: the role's default name
// is replaced by displayName in the name, intro and story.
//
// The replacement is a literal substring substitution, so a default name
// that also occurs inside unrelated words is replaced there too.
func Personalize(role script.Role, displayName string) RolePayload {
	payload := RolePayload{
		ID:    role.ID,
		Name:  displayName,
		Intro: role.Intro,
		Story: role.Story,
	}
	if role.Name != "" {
		payload.Intro = strings.ReplaceAll(role.Intro, role.Name, displayName)
		payload.Story = strings.ReplaceAll(role.Story, role.Name, displayName)
	}
	return payload
}
