package tcp

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-server/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-server/internal/usecase"
)

type client struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, addr string) *client {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &client{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

func (that *client) send(line string) {
	that.t.Helper()

	_, err := that.conn.Write([]byte(line + "\n"))
	require.NoError(that.t, err)
}

func (that *client) expect(lines ...string) {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for _, want := range lines {
		got, err := that.reader.ReadString('\n')
		require.NoError(that.t, err, "waiting for %q", want)
		assert.Equal(that.t, want+"\n", got)
	}
}

func (that *client) expectClosed() {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := that.reader.ReadString('\n')
	assert.ErrorIs(that.t, err, io.EOF)
}

func startServer(t *testing.T) string {
	t.Helper()

	return startServerWith(t, &countingMetrics{})
}

// startServerWith serves a fresh coordinator that reports to obs.
func startServerWith(t *testing.T, counter messageCounter, obs ...usecase.Observer) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	coordinator := usecase.NewCoordinator(logger, obs...)
	server := New(logger, coordinator, counter, Options{})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return listener.Addr().String()
}

// connectPair connects Alice then Bob and completes the name exchange.
func connectPair(t *testing.T, addr string) (*client, *client) {
	t.Helper()

	alice := dial(t, addr)
	alice.expect("ASSIGN|0")

	bob := dial(t, addr)
	bob.expect("ASSIGN|1")

	alice.send("NAME|Alice")
	alice.expect("NAME_CONFIRMED|0|Alice")
	bob.expect("NAME_CONFIRMED|0|Alice")

	bob.send("NAME|Bob")
	bob.expect("NAME_CONFIRMED|1|Bob", "NAME_CONFIRMED|0|Alice", "ROUND_START|0")
	alice.expect("NAME_CONFIRMED|1|Bob", "ROUND_START|0")

	return alice, bob
}

// playTopRowWin has Alice win the opening round along the top row.
func playTopRowWin(alice, bob *client) {
	moves := []struct {
		player *client
		line   string
		mark   string
		turn   string
	}{
		{alice, "MOVE|0|0", "MARK|0|0|X", "TURN|1"},
		{bob, "MOVE|1|0", "MARK|1|0|O", "TURN|0"},
		{alice, "MOVE|0|1", "MARK|0|1|X", "TURN|1"},
		{bob, "MOVE|1|1", "MARK|1|1|O", "TURN|0"},
	}
	for _, m := range moves {
		m.player.send(m.line)
		alice.expect(m.mark, m.turn)
		bob.expect(m.mark, m.turn)
	}

	alice.send("MOVE|0|2")
	alice.expect("MARK|0|2|X", "ROUND_END|WIN|0|1|0|0")
	bob.expect("MARK|0|2|X", "ROUND_END|WIN|0|1|0|0")
}

func TestServer_FullRound(t *testing.T) {
	addr := startServer(t)
	alice, bob := connectPair(t, addr)

	playTopRowWin(alice, bob)

	// both agree to another round; scores survive
	alice.send("RESTART|YES")
	bob.send("RESTART|YES")
	alice.expect("ROUND_START|0")
	bob.expect("ROUND_START|0")
}

func TestServer_InvalidInput(t *testing.T) {
	addr := startServer(t)
	alice, bob := connectPair(t, addr)

	bob.send("MOVE|0|0")
	bob.expect("INVALID|Not your turn.")

	alice.send("MOVE|a|b")
	alice.expect("INVALID|Invalid move coordinates.")

	alice.send("NAME|Again")
	alice.expect("INVALID|Name already submitted.")

	// malformed lines are ignored and the connection stays usable
	alice.send("MOVE|1")
	alice.send("BOGUS")
	alice.send("MOVE|1|1")
	alice.expect("MARK|1|1|X", "TURN|1")
}

func TestServer_ThirdConnectionRejected(t *testing.T) {
	addr := startServer(t)
	connectPair(t, addr)

	carol := dial(t, addr)
	carol.expect("STATUS|Server is currently full.")
	carol.expectClosed()
}

func TestServer_ExitNotifiesOpponent(t *testing.T) {
	addr := startServer(t)
	alice, bob := connectPair(t, addr)

	alice.send("EXIT")
	alice.expectClosed()
	bob.expect("OPPONENT_LEFT")

	// the freed slot goes to the next connection
	carol := dial(t, addr)
	carol.expect("ASSIGN|0", "NAME_CONFIRMED|1|Bob")
}

func TestServer_DeclinedRestart(t *testing.T) {
	addr := startServer(t)
	alice, bob := connectPair(t, addr)

	playTopRowWin(alice, bob)

	bob.send("RESTART|NO")
	bob.expectClosed()
	alice.expect("OPPONENT_LEFT")
}

func TestServer_OversizedLineIsDropped(t *testing.T) {
	addr := startServer(t)

	alice := dial(t, addr)
	alice.expect("ASSIGN|0")
	bob := dial(t, addr)
	bob.expect("ASSIGN|1")

	// When: a line far over the default limit arrives before a normal one
	alice.send("NAME|" + strings.Repeat("x", 5000))
	alice.send("NAME|Alice")

	// Then: the session survives and only the second line is applied
	alice.expect("NAME_CONFIRMED|0|Alice")
	bob.expect("NAME_CONFIRMED|0|Alice")
}

func TestServer_RejectionsReachMetrics(t *testing.T) {
	// Given: a server reporting to prometheus metrics
	collector := metrics.New("tictactoe")
	addr := startServerWith(t, collector, collector)
	alice, bob := connectPair(t, addr)

	// When: Alice sends coordinates that are not numbers, and Bob moves out of turn
	alice.send("MOVE|a|b")
	alice.expect("INVALID|Invalid move coordinates.")
	bob.send("MOVE|0|0")
	bob.expect("INVALID|Not your turn.")

	// Then: both rejections are counted by reason
	recorder := httptest.NewRecorder()
	collector.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := recorder.Body.String()
	assert.Contains(t, body, `tictactoe_requests_rejected_total{reason="invalid_coordinates"} 1`)
	assert.Contains(t, body, `tictactoe_requests_rejected_total{reason="not_your_turn"} 1`)
}
