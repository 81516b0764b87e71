// Package gameserver connects network sessions to the game room: it
// authorizes and dispatches inbound messages, and broadcasts the room
// state after every successful change.
package gameserver

import (
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mystery/internal/config"
	"github.com/cory-johannsen/mystery/internal/game/room"
	"github.com/cory-johannsen/mystery/internal/game/session"
	"github.com/cory-johannsen/mystery/internal/protocol"
)

// Client is the dispatcher's handle on one connection: it carries the
// connection's player identity and sends replies back on it.
type Client interface {
	session.Sender
	// PlayerID returns the player this connection speaks for, if any.
	PlayerID() (int, bool)
	// SetPlayerID binds the connection to a player.
	SetPlayerID(id int)
}

// handlerFunc performs one message type for an identified player.
// A nil return means the room changed (or was read) successfully.
type handlerFunc func(s *Server, c Client, playerID int, msg *protocol.Message) error

type route struct {
	hostOnly  bool
	broadcast bool
	handle    handlerFunc
}

// routes is the dispatch table for every message except connect and ping.
var routes = map[string]route{
	protocol.TypeSetName:        {broadcast: true, handle: (*Server).handleSetName},
	protocol.TypeRequestScripts: {handle: (*Server).handleRequestScripts},
	protocol.TypeRequestState:   {handle: (*Server).handleRequestState},
	protocol.TypeSelectScript:   {hostOnly: true, broadcast: true, handle: (*Server).handleSelectScript},
	protocol.TypeSetPlayerCount: {hostOnly: true, broadcast: true, handle: (*Server).handleSetPlayerCount},
	protocol.TypeAssignRoles:    {hostOnly: true, broadcast: true, handle: (*Server).handleAssignRoles},
	protocol.TypeAdvancePhase:   {hostOnly: true, broadcast: true, handle: (*Server).handleAdvancePhase},
	protocol.TypeResetGame:      {hostOnly: true, broadcast: true, handle: (*Server).handleResetGame},
	protocol.TypeRequestClue:    {broadcast: true, handle: (*Server).handleRequestClue},
	protocol.TypeSubmitVote:     {broadcast: true, handle: (*Server).handleSubmitVote},
}

// Server is the single server context shared by all sessions.
type Server struct {
	room     *room.Room
	sessions *session.Manager
	minCount int
	maxCount int
	logger   *zap.Logger
}

// New creates a Server around a room and a session registry.
//
// Precondition: rm, sessions and logger must be non-nil; cfg must be validated.
// Postcondition: Returns a Server ready to be used as a linenet.SessionHandler.
func New(rm *room.Room, sessions *session.Manager, cfg config.GameConfig, logger *zap.Logger) *Server {
	return &Server{
		room:     rm,
		sessions: sessions,
		minCount: cfg.MinPlayerCount,
		maxCount: cfg.MaxPlayerCount,
		logger:   logger,
	}
}

// Dispatch handles one decoded message from c. Validation and
// authorization failures are answered with an error message to c only and
// leave the room untouched; successful changes are broadcast.
func (s *Server) Dispatch(c Client, msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypePing:
		c.Send(protocol.NewPong())
		return
	case protocol.TypeConnect:
		if err := s.handleConnect(c, msg); err != nil {
			c.Send(protocol.NewError(err.Error()))
		}
		return
	}

	playerID, ok := c.PlayerID()
	if !ok {
		c.Send(protocol.NewError(ErrNotConnected.Error()))
		return
	}

	rt, known := routes[msg.Type]
	if !known {
		s.logger.Debug("ignoring unknown message type",
			zap.Int("player_id", playerID),
			zap.String("type", msg.Type),
		)
		return
	}
	if rt.hostOnly && !s.room.IsHost(playerID) {
		c.Send(protocol.NewError(ErrHostOnly.Error()))
		return
	}
	if err := rt.handle(s, c, playerID, msg); err != nil {
		s.logger.Debug("request rejected",
			zap.Int("player_id", playerID),
			zap.String("type", msg.Type),
			zap.Error(err),
		)
		c.Send(protocol.NewError(err.Error()))
		return
	}
	if rt.broadcast {
		s.Broadcast()
	}
}

// RemoveSession marks the player disconnected, forgets its connection and
// tells everyone else.
func (s *Server) RemoveSession(playerID int) {
	s.room.RemovePlayer(playerID)
	s.sessions.Unregister(playerID)
	s.logger.Info("player disconnected", zap.Int("player_id", playerID))
	s.Broadcast()
}

// Broadcast sends one fresh snapshot to every registered session. The room
// lock is released before any write begins.
func (s *Server) Broadcast() {
	msg := protocol.NewState(s.room.Snapshot())
	for _, sender := range s.sessions.Snapshot() {
		sender.Send(msg)
	}
}

func (s *Server) handleConnect(c Client, msg *protocol.Message) error {
	if _, ok := c.PlayerID(); ok {
		return ErrAlreadyConnected
	}
	name, _ := msg.String(protocol.FieldDisplayName)
	isHost := msg.Bool(protocol.FieldIsHost)

	playerID := s.room.AddPlayer(name, isHost)
	c.SetPlayerID(playerID)
	if err := s.sessions.Register(playerID, c); err != nil {
		// Player ids are never reused, so this indicates a bug.
		s.logger.Error("registering session", zap.Int("player_id", playerID), zap.Error(err))
	}
	s.logger.Info("player connected",
		zap.Int("player_id", playerID),
		zap.Bool("is_host", isHost),
	)

	c.Send(protocol.NewWelcome(playerID, isHost))
	c.Send(protocol.NewScripts(s.room.ListScripts()))
	s.Broadcast()
	return nil
}

func (s *Server) handleSetName(_ Client, playerID int, msg *protocol.Message) error {
	name, _ := msg.String(protocol.FieldDisplayName)
	return s.room.SetName(playerID, name)
}

func (s *Server) handleRequestScripts(c Client, _ int, _ *protocol.Message) error {
	c.Send(protocol.NewScripts(s.room.ListScripts()))
	return nil
}

func (s *Server) handleRequestState(c Client, _ int, _ *protocol.Message) error {
	c.Send(protocol.NewState(s.room.Snapshot()))
	return nil
}

func (s *Server) handleSelectScript(_ Client, playerID int, msg *protocol.Message) error {
	scriptID, ok := msg.String(protocol.FieldScriptID)
	if !ok || scriptID == "" {
		return room.ErrInvalidScript
	}
	if err := s.room.SelectScript(scriptID); err != nil {
		return err
	}
	s.logger.Info("script selected", zap.Int("player_id", playerID), zap.String("script_id", scriptID))
	return nil
}

func (s *Server) handleSetPlayerCount(_ Client, _ int, msg *protocol.Message) error {
	n, err := msg.Int(protocol.FieldPlayerCount)
	if err != nil {
		return ErrInvalidPlayerCount
	}
	if n < s.minCount || n > s.maxCount {
		return &PlayerCountRangeError{Min: s.minCount, Max: s.maxCount}
	}
	s.room.SetPlayerCount(n)
	return nil
}

func (s *Server) handleAssignRoles(_ Client, _ int, _ *protocol.Message) error {
	dealt, err := s.room.AssignRoles()
	if err != nil {
		return err
	}

	ids := make([]int, 0, len(dealt))
	for id := range dealt {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		sender, ok := s.sessions.Get(id)
		if !ok {
			continue
		}
		sender.Send(protocol.NewRoleAssigned(dealt[id]))
	}
	s.logger.Info("roles assigned", zap.Ints("player_ids", ids))
	return nil
}

func (s *Server) handleAdvancePhase(_ Client, _ int, _ *protocol.Message) error {
	phase, err := s.room.AdvancePhase()
	if err != nil {
		return err
	}
	s.logger.Info("phase advanced", zap.Stringer("phase", phase))
	return nil
}

func (s *Server) handleResetGame(_ Client, _ int, _ *protocol.Message) error {
	s.room.Reset()
	s.logger.Info("game reset")
	return nil
}

func (s *Server) handleRequestClue(_ Client, playerID int, msg *protocol.Message) error {
	clueID, _ := msg.String(protocol.FieldClueID)
	clue, err := s.room.RevealClue(clueID)
	if err != nil {
		return err
	}
	s.logger.Debug("clue revealed", zap.Int("player_id", playerID), zap.String("clue_id", clue.ID))
	return nil
}

func (s *Server) handleSubmitVote(_ Client, playerID int, msg *protocol.Message) error {
	target, err := msg.Int(protocol.FieldTargetID)
	if err != nil {
		return room.ErrInvalidVoteTarget
	}
	tally, err := s.room.SubmitVote(playerID, target)
	if err != nil {
		return err
	}
	s.logger.Debug("vote recorded",
		zap.Int("player_id", playerID),
		zap.Int("target_id", target),
		zap.Int("submitted", tally.Submitted),
		zap.Int("eligible", tally.Eligible),
	)
	return nil
}
