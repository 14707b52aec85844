package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// ErrFeedClosed is returned by Subscribe after Close
var ErrFeedClosed = errors.New("session feed closed")

const (
	writeTimeout   = 10 * time.Second
	minBackoff     = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
	handshakeLimit = 10 * time.Second
)

// Feed is a session change feed read from a websocket. All subscriptions
// share one connection, dialed on first use and redialed after it drops
// for as long as subscriptions remain. Events sent while disconnected are
// lost.
type Feed struct {
	url     string
	dialer  *websocket.Dialer
	logger  *zap.Logger
	metrics *monitoring.Metrics

	dialMu sync.Mutex // serializes dialing

	mu           sync.Mutex
	conn         *websocket.Conn                                // Protected by mu
	subs         map[string]map[uint64]func(types.SessionEvent) // Protected by mu
	nextID       uint64                                         // Protected by mu
	closed       bool                                           // Protected by mu
	reconnecting bool                                           // Protected by mu

	writeMu sync.Mutex // one writer at a time per connection
}

// NewFeed creates a feed reading from url (ws:// or wss://)
func NewFeed(url string, logger *zap.Logger, metrics *monitoring.Metrics) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		url:     url,
		dialer:  &websocket.Dialer{HandshakeTimeout: handshakeLimit},
		logger:  logger.With(zap.String("feed", url)),
		metrics: metrics,
		subs:    make(map[string]map[uint64]func(types.SessionEvent)),
	}
}

// Subscribe delivers events for sessionID to handler until the returned
// function is called or ctx is done. Handlers run on the feed's read
// goroutine.
func (f *Feed) Subscribe(ctx context.Context, sessionID string, handler func(types.SessionEvent)) (func(), error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, ErrFeedClosed
	}
	f.nextID++
	subID := f.nextID
	handlers, watched := f.subs[sessionID]
	if !watched {
		handlers = make(map[uint64]func(types.SessionEvent))
		f.subs[sessionID] = handlers
	}
	handlers[subID] = handler
	f.mu.Unlock()

	conn, fresh, err := f.ensureConn(ctx)
	if err == nil && !fresh && !watched {
		err = f.write(conn, frame{Type: frameSub, SessionID: sessionID})
	}
	if err != nil {
		f.unsubscribe(sessionID, subID, false)
		return nil, fmt.Errorf("subscribe to session %s: %w", sessionID, err)
	}
	f.metrics.IncFeedSubscriptions()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			f.unsubscribe(sessionID, subID, true)
			f.metrics.DecFeedSubscriptions()
		})
	}
	context.AfterFunc(ctx, stop)
	return stop, nil
}

// Close drops the connection and rejects further subscriptions
func (f *Feed) Close() error {
	f.mu.Lock()
	f.closed = true
	conn := f.conn
	f.conn = nil
	f.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (f *Feed) unsubscribe(sessionID string, subID uint64, notify bool) {
	f.mu.Lock()
	handlers := f.subs[sessionID]
	delete(handlers, subID)
	last := len(handlers) == 0
	if last {
		delete(f.subs, sessionID)
	}
	conn := f.conn
	f.mu.Unlock()

	if last && notify && conn != nil {
		if err := f.write(conn, frame{Type: frameUnsub, SessionID: sessionID}); err != nil {
			f.logger.Debug("Failed to send unsub", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
}

// ensureConn returns the live connection, dialing one if needed. fresh is
// true when this call dialed; a fresh connection has already been sent a
// sub frame for every watched session.
func (f *Feed) ensureConn(ctx context.Context) (conn *websocket.Conn, fresh bool, err error) {
	f.dialMu.Lock()
	defer f.dialMu.Unlock()

	f.mu.Lock()
	conn, closed := f.conn, f.closed
	f.mu.Unlock()
	if closed {
		return nil, false, ErrFeedClosed
	}
	if conn != nil {
		return conn, false, nil
	}

	conn, _, err = f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("dial feed: %w", err)
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		_ = conn.Close()
		return nil, false, ErrFeedClosed
	}
	f.conn = conn
	sessions := make([]string, 0, len(f.subs))
	for sessionID := range f.subs {
		sessions = append(sessions, sessionID)
	}
	f.mu.Unlock()

	go f.readLoop(conn)

	for _, sessionID := range sessions {
		if err := f.write(conn, frame{Type: frameSub, SessionID: sessionID}); err != nil {
			_ = conn.Close()
			return nil, false, err
		}
	}
	f.logger.Info("Session feed connected", zap.Int("sessions", len(sessions)))
	return conn, true, nil
}

func (f *Feed) write(conn *websocket.Conn, fr frame) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return writeFrame(conn, fr)
}

func (f *Feed) readLoop(conn *websocket.Conn) {
	for {
		fr, err := readFrame(conn)
		if err != nil {
			f.dropped(conn, err)
			return
		}

		switch fr.Type {
		case framePing:
			_ = f.write(conn, frame{Type: framePong})
		case frameError:
			f.logger.Warn("Session feed reported an error", zap.String("message", fr.Message))
		default:
			if ev, ok := fr.event(); ok {
				f.dispatch(ev)
			}
		}
	}
}

func (f *Feed) dispatch(ev types.SessionEvent) {
	f.mu.Lock()
	handlers := make([]func(types.SessionEvent), 0, len(f.subs[ev.SessionID]))
	for _, handler := range f.subs[ev.SessionID] {
		handlers = append(handlers, handler)
	}
	f.mu.Unlock()

	for _, handler := range handlers {
		handler(ev)
	}
}

func (f *Feed) dropped(conn *websocket.Conn, err error) {
	_ = conn.Close()

	f.mu.Lock()
	if f.conn == conn {
		f.conn = nil
	}
	retry := !f.closed && len(f.subs) > 0 && !f.reconnecting
	if retry {
		f.reconnecting = true
	}
	closed := f.closed
	f.mu.Unlock()

	if closed {
		return
	}
	f.logger.Warn("Session feed disconnected", zap.Error(err))
	if retry {
		go f.reconnect()
	}
}

func (f *Feed) reconnect() {
	defer func() {
		f.mu.Lock()
		f.reconnecting = false
		f.mu.Unlock()
	}()

	backoff := minBackoff
	for {
		time.Sleep(backoff)

		f.mu.Lock()
		done := f.closed || len(f.subs) == 0
		f.mu.Unlock()
		if done {
			return
		}

		_, _, err := f.ensureConn(context.Background())
		if err == nil {
			return
		}
		f.logger.Debug("Session feed redial failed", zap.Duration("backoff", backoff), zap.Error(err))
		backoff = min(backoff*2, maxBackoff)
	}
}
