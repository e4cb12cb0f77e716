package tcp

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

const (
	defaultOutboundBuffer = 64
	defaultMaxLineLength  = 4096
)

type Options struct {
	OutboundBuffer int
	MaxLineLength  int
}

func (that Options) withDefaults() Options {
	if that.OutboundBuffer <= 0 {
		that.OutboundBuffer = defaultOutboundBuffer
	}
	if that.MaxLineLength <= 0 {
		that.MaxLineLength = defaultMaxLineLength
	}
	return that
}

type Server struct {
	logger      *slog.Logger
	coordinator coordinator
	dispatcher  *Dispatcher
	options     Options

	mu       sync.Mutex
	sessions map[*Session]struct{}
	wg       sync.WaitGroup
}

func New(logger *slog.Logger, coordinator coordinator, counter messageCounter, options Options) *Server {
	return &Server{
		logger:      logger.With("component", "tcp"),
		coordinator: coordinator,
		dispatcher:  NewDispatcher(logger, coordinator, counter),
		options:     options.withDefaults(),
		sessions:    make(map[*Session]struct{}),
	}
}

// Start - binds the port and serves until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}

	that.logger.Info("listening", "addr", listener.Addr().String())

	return that.Serve(ctx, listener)
}

// Serve accepts connections until ctx is done or accepting fails.
func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	defer that.shutdown()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}

		session := newSession(conn, that.logger, that.options.OutboundBuffer)
		that.track(session)

		that.wg.Add(1)
		go func() {
			defer that.wg.Done()
			defer that.untrack(session)

			that.handle(session)
		}()
	}
}

// handle runs the read loop for one session. Disconnect is reported exactly once.
func (that *Server) handle(session *Session) {
	log := session.logger.With("method", "handle")

	if _, err := that.coordinator.RegisterSession(session); err != nil {
		log.Info("connection rejected", "reason", err)
		session.Close()
		return
	}

	defer func() {
		session.Close()
		that.coordinator.Disconnect(session)
	}()

	scanner := bufio.NewScanner(session.conn)
	scanner.Buffer(make([]byte, 0, 512), that.options.MaxLineLength)
	scanner.Split(newLineSplitter(that.options.MaxLineLength, log).split)

	for scanner.Scan() {
		if !that.dispatcher.Dispatch(session, scanner.Text()) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		log.Info("connection lost", "error", err)
		return
	}

	log.Info("connection closed by peer")
}

func (that *Server) track(session *Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session] = struct{}{}
}

func (that *Server) untrack(session *Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, session)
}

// shutdown closes every live session and waits for their read loops.
func (that *Server) shutdown() {
	that.mu.Lock()
	for session := range that.sessions {
		session.Close()
	}
	that.mu.Unlock()

	that.wg.Wait()
	that.logger.Info("listener stopped")
}
