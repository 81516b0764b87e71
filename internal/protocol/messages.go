package protocol

import (
	"github.com/cory-johannsen/mystery/internal/game/room"
	"github.com/cory-johannsen/mystery/internal/game/script"
)

// Inbound message types.
const (
	TypeConnect        = "connect"
	TypeSetName        = "set_name"
	TypeRequestScripts = "request_scripts"
	TypeRequestState   = "request_state"
	TypeSelectScript   = "select_script"
	TypeSetPlayerCount = "set_player_count"
	TypeAssignRoles    = "assign_roles"
	TypeAdvancePhase   = "advance_phase"
	TypeResetGame      = "reset_game"
	TypeRequestClue    = "request_clue"
	TypeSubmitVote     = "submit_vote"
	TypePing           = "ping"
)

// Outbound message types.
const (
	TypeWelcome      = "welcome"
	TypeScripts      = "scripts"
	TypeState        = "state"
	TypeRoleAssigned = "role_assigned"
	TypeError        = "error"
	TypePong         = "pong"
)

// Inbound field names.
const (
	FieldDisplayName = "display_name"
	FieldIsHost      = "is_host"
	FieldScriptID    = "script_id"
	FieldPlayerCount = "player_count"
	FieldClueID      = "clue_id"
	FieldTargetID    = "target_id"
)

// Welcome confirms a connect and tells the client its player id.
type Welcome struct {
	Type     string `json:"type"`
	PlayerID int    `json:"player_id"`
	IsHost   bool   `json:"is_host"`
}

// Scripts carries the script catalog.
type Scripts struct {
	Type    string           `json:"type"`
	Scripts []script.Summary `json:"scripts"`
}

// State carries a full room snapshot.
type State struct {
	Type  string     `json:"type"`
	State room.State `json:"state"`
}

// RoleAssigned privately delivers a player's personalized role.
type RoleAssigned struct {
	Type string           `json:"type"`
	Role room.RolePayload `json:"role"`
}

// Error reports a rejected request to its sender.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Pong answers a ping.
type Pong struct {
	Type string `json:"type"`
}

func NewWelcome(playerID int, isHost bool) Welcome {
	return Welcome{Type: TypeWelcome, PlayerID: playerID, IsHost: isHost}
}

func NewScripts(scripts []script.Summary) Scripts {
	if scripts == nil {
		scripts = []script.Summary{}
	}
	return Scripts{Type: TypeScripts, Scripts: scripts}
}

func NewState(st room.State) State {
	return State{Type: TypeState, State: st}
}

func NewRoleAssigned(role room.RolePayload) RoleAssigned {
	return RoleAssigned{Type: TypeRoleAssigned, Role: role}
}

func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}

func NewPong() Pong {
	return Pong{Type: TypePong}
}
