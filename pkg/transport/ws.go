package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	handshakeWait  = 10 * time.Second
	maxMessageSize = 1 << 20 // 1MB
	sendBufferSize = 64
)

var ErrBadHello = errors.New("bad hello")

// Hello is exchanged once when a websocket connection opens. PeerID is the
// stable identifier used for host election.
type Hello struct {
	PeerID uuid.UUID `json:"peerId"`
	Name   string    `json:"name"`
}

// Conn is a websocket link to the remote peer. Writes go through a buffered
// queue drained by a single writer goroutine.
type Conn struct {
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	log    zerolog.Logger
	Remote Hello
}

func newConn(ws *websocket.Conn, remote Hello, logger zerolog.Logger) *Conn {
	return &Conn{
		ws:     ws,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		log:    logger.With().Str("remote", remote.PeerID.String()).Logger(),
		Remote: remote,
	}
}

// handshake sends local and reads the peer's hello.
func handshake(ws *websocket.Conn, local Hello) (Hello, error) {
	_ = ws.SetWriteDeadline(time.Now().Add(handshakeWait))
	if err := ws.WriteJSON(local); err != nil {
		return Hello{}, fmt.Errorf("send hello: %w", err)
	}
	_ = ws.SetReadDeadline(time.Now().Add(handshakeWait))
	var remote Hello
	if err := ws.ReadJSON(&remote); err != nil {
		return Hello{}, fmt.Errorf("read hello: %w", err)
	}
	if remote.PeerID == uuid.Nil {
		return Hello{}, fmt.Errorf("%w: missing peer id", ErrBadHello)
	}
	if remote.PeerID == local.PeerID {
		return Hello{}, fmt.Errorf("%w: peer id %s is our own", ErrBadHello, remote.PeerID)
	}
	_ = ws.SetWriteDeadline(time.Time{})
	_ = ws.SetReadDeadline(time.Time{})
	return remote, nil
}

// Send queues b for the writer. It never blocks.
func (c *Conn) Send(b []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- append([]byte(nil), b...):
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close shuts the connection. It is idempotent.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		err = c.ws.Close()
	})
	return err
}

// Run starts the writer and reads until the connection fails or is closed.
// onClose is called once reading stops.
func (c *Conn) Run(onReceive func([]byte), onClose func()) {
	go c.writeLoop()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn().Err(err).Msg("read")
			} else {
				c.log.Debug().Err(err).Msg("connection closed")
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		onReceive(msg)
	}

	_ = c.Close()
	if onClose != nil {
		onClose()
	}
}

func (c *Conn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn().Err(err).Msg("write")
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Acceptor upgrades incoming requests and hands out connections that
// completed the hello exchange.
type Acceptor struct {
	local    Hello
	upgrader websocket.Upgrader
	conns    chan *Conn
	log      zerolog.Logger
}

func NewAcceptor(local Hello, logger *zerolog.Logger) *Acceptor {
	l := log.Logger
	if logger != nil {
		l = *logger
	}
	return &Acceptor{
		local: local,
		upgrader: websocket.Upgrader{
			// Peers connect from anywhere; there is no browser origin to check.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(chan *Conn),
		log:   l.With().Str("component", "acceptor").Logger(),
	}
}

func (a *Acceptor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn().Err(err).Msg("upgrade")
		return
	}
	remote, err := handshake(ws, a.local)
	if err != nil {
		a.log.Warn().Err(err).Str("addr", r.RemoteAddr).Msg("handshake")
		_ = ws.Close()
		return
	}

	c := newConn(ws, remote, a.log)
	select {
	case a.conns <- c:
		a.log.Info().Str("peer", remote.PeerID.String()).Str("name", remote.Name).Msg("peer connected")
	case <-r.Context().Done():
		_ = c.Close()
	default:
		a.log.Info().Str("peer", remote.PeerID.String()).Msg("busy, rejecting peer")
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "busy"),
			time.Now().Add(writeWait))
		_ = ws.Close()
	}
}

// Accept waits for the next peer. Only peers arriving while Accept is waiting
// are taken; others are rejected as busy.
func (a *Acceptor) Accept(ctx context.Context) (*Conn, error) {
	select {
	case c := <-a.conns:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Dial connects to a host's websocket endpoint and exchanges hellos.
func Dial(ctx context.Context, url string, local Hello, logger *zerolog.Logger) (*Conn, error) {
	l := log.Logger
	if logger != nil {
		l = *logger
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	remote, err := handshake(ws, local)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}
	return newConn(ws, remote, l.With().Str("component", "dialer").Logger()), nil
}
