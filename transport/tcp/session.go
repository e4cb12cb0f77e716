package tcp

import (
	"bufio"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

const closeGrace = 5 * time.Second

// Session is one accepted connection. Outbound lines go through a bounded queue
// drained by writeLoop, so Send never blocks the caller.
type Session struct {
	id     string
	conn   net.Conn
	logger *slog.Logger

	mu       sync.Mutex
	closed   bool
	outbound chan string

	done chan struct{}
}

func newSession(conn net.Conn, logger *slog.Logger, buffer int) *Session {
	id := uuid.NewString()

	session := &Session{
		id:       id,
		conn:     conn,
		logger:   logger.With("session", id, "remote", conn.RemoteAddr().String()),
		outbound: make(chan string, buffer),
		done:     make(chan struct{}),
	}

	go session.writeLoop()

	return session
}

func (that *Session) ID() string {
	return that.id
}

// Send queues a line. A peer that lets its queue fill up is closed as a slow consumer.
func (that *Session) Send(line string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	select {
	case that.outbound <- line:
	default:
		that.logger.Warn("outbound queue is full, closing slow session")
		that.closeLocked()
	}
}

// Close stops accepting lines, flushes what is queued and then closes the socket.
// It is safe to call more than once.
func (that *Session) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closeLocked()
}

func (that *Session) closeLocked() {
	if that.closed {
		return
	}

	that.closed = true
	close(that.outbound)

	// bounds the final flush when the peer stopped reading
	_ = that.conn.SetWriteDeadline(time.Now().Add(closeGrace))
}

// Done is closed once the socket has been closed.
func (that *Session) Done() <-chan struct{} {
	return that.done
}

func (that *Session) writeLoop() {
	defer close(that.done)
	defer that.conn.Close()

	writer := bufio.NewWriter(that.conn)
	failed := false

	for line := range that.outbound {
		if failed {
			continue
		}

		if _, err := writer.WriteString(line + "\n"); err != nil {
			that.logger.Debug("write failed", "error", err)
			failed = true
			_ = that.conn.Close()
			continue
		}

		// flush once the queue is drained so bursts go out in one write
		if len(that.outbound) == 0 {
			if err := writer.Flush(); err != nil {
				that.logger.Debug("flush failed", "error", err)
				failed = true
				_ = that.conn.Close()
			}
		}
	}

	if !failed {
		_ = writer.Flush()
	}
}
