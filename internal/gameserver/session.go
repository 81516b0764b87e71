package gameserver

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mystery/internal/frontend/linenet"
	"github.com/cory-johannsen/mystery/internal/protocol"
)

// connSession is the Client for one network connection.
type connSession struct {
	conn   *linenet.Conn
	logger *zap.Logger

	mu       sync.Mutex
	playerID int
	bound    bool
}

func newConnSession(conn *linenet.Conn, logger *zap.Logger) *connSession {
	return &connSession{
		conn:   conn,
		logger: logger.With(zap.String("conn_id", conn.ID())),
	}
}

func (cs *connSession) PlayerID() (int, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.playerID, cs.bound
}

func (cs *connSession) SetPlayerID(id int) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.playerID = id
	cs.bound = true
}

// Send writes msg as one line. Failures are logged and dropped; the read
// loop notices a dead connection on its own.
func (cs *connSession) Send(msg any) {
	data, err := protocol.Encode(msg)
	if err != nil {
		cs.logger.Error("encoding outbound message", zap.Error(err))
		return
	}
	if err := cs.conn.Write(data); err != nil {
		cs.logger.Debug("dropping outbound message", zap.Error(err))
	}
}

// HandleSession runs the read loop for one connection until the peer
// hangs up or the connection fails. Lines that do not decode are dropped.
// When the loop ends, a bound player is removed exactly once.
//
// Postcondition: Returns nil on a clean end of stream, or the read error.
func (s *Server) HandleSession(ctx context.Context, conn *linenet.Conn) error {
	cs := newConnSession(conn, s.logger)
	defer func() {
		if id, ok := cs.PlayerID(); ok {
			s.RemoveSession(id)
		}
	}()

	for {
		line, err := conn.ReadLine()
		if len(line) > 0 && ctx.Err() == nil {
			s.handleLine(cs, line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (s *Server) handleLine(cs *connSession, line []byte) {
	msg, err := protocol.Decode(line)
	if err != nil {
		cs.logger.Debug("dropping malformed line", zap.Error(err))
		return
	}
	if msg == nil {
		return
	}
	s.Dispatch(cs, msg)
}
