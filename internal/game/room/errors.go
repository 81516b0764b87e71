package room

import "errors"

// Room validation errors. The message of each is sent verbatim to the
// client whose request failed.
var (
	ErrInvalidScript     = errors.New("Invalid script")
	ErrNoScript          = errors.New("No script selected")
	ErrNotEnoughPlayers  = errors.New("Not enough players connected")
	ErrNotEnoughRoles    = errors.New("Not enough roles in script")
	ErrCannotAdvance     = errors.New("Cannot advance phase")
	ErrNotInvestigation  = errors.New("Not in investigation phase")
	ErrInvalidClue       = errors.New("Invalid clue")
	ErrNotVoting         = errors.New("Not in voting phase")
	ErrUnknownPlayer     = errors.New("Unknown player")
	ErrInvalidVoteTarget = errors.New("Invalid vote target")
	ErrNameLocked        = errors.New("Name changes are locked after the game starts")
	ErrInvalidName       = errors.New("Invalid player name")
)
