package tcp

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-server/internal/entity"
	"github.com/rocketscienceinc/tictactoe-server/internal/usecase"
)

type mockCoordinator struct {
	mock.Mock
}

func (m *mockCoordinator) RegisterSession(peer usecase.Peer) (entity.Slot, error) {
	args := m.Called(peer)
	return args.Get(0).(entity.Slot), args.Error(1)
}

func (m *mockCoordinator) SubmitName(peer usecase.Peer, rawName string) error {
	return m.Called(peer, rawName).Error(0)
}

func (m *mockCoordinator) SubmitMove(peer usecase.Peer, row, col int) error {
	return m.Called(peer, row, col).Error(0)
}

func (m *mockCoordinator) SubmitRestartVote(peer usecase.Peer, restart bool) {
	m.Called(peer, restart)
}

func (m *mockCoordinator) Disconnect(peer usecase.Peer) {
	m.Called(peer)
}

func (m *mockCoordinator) RejectRequest(peer usecase.Peer, reason error) {
	m.Called(peer, reason)
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[entity.Action]int
}

func (that *countingMetrics) MessageReceived(action entity.Action) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.counts == nil {
		that.counts = make(map[entity.Action]int)
	}
	that.counts[action]++
}

type fakePeer struct {
	lines []string
}

func (that *fakePeer) ID() string       { return "peer" }
func (that *fakePeer) Send(line string) { that.lines = append(that.lines, line) }
func (that *fakePeer) Close()           {}

func newTestDispatcher(coordinator *mockCoordinator) (*Dispatcher, *countingMetrics) {
	counter := &countingMetrics{}
	return NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), coordinator, counter), counter
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("NAME is forwarded untrimmed", func(t *testing.T) {
		// Given: a dispatcher over a mock coordinator
		coordinator := &mockCoordinator{}
		dispatcher, counter := newTestDispatcher(coordinator)
		peer := &fakePeer{}

		coordinator.On("SubmitName", peer, " Alice ").Return(nil).Once()

		// When: a NAME line arrives
		keepReading := dispatcher.Dispatch(peer, "NAME| Alice ")

		// Then: the coordinator receives the raw name
		assert.True(t, keepReading)
		coordinator.AssertExpectations(t)
		assert.Equal(t, 1, counter.counts[entity.ActionName])
	})

	t.Run("MOVE is forwarded with coordinates", func(t *testing.T) {
		coordinator := &mockCoordinator{}
		dispatcher, _ := newTestDispatcher(coordinator)
		peer := &fakePeer{}

		coordinator.On("SubmitMove", peer, 2, 0).Return(nil).Once()

		assert.True(t, dispatcher.Dispatch(peer, "MOVE|2|0"))
		coordinator.AssertExpectations(t)
	})

	t.Run("Unparsable MOVE is rejected instead of played", func(t *testing.T) {
		coordinator := &mockCoordinator{}
		dispatcher, _ := newTestDispatcher(coordinator)
		peer := &fakePeer{}

		coordinator.On("RejectRequest", peer, apperror.ErrInvalidCoordinates).Once()

		assert.True(t, dispatcher.Dispatch(peer, "MOVE|x|1"))

		coordinator.AssertExpectations(t)
		coordinator.AssertNotCalled(t, "SubmitMove", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Messages missing fields are dropped silently", func(t *testing.T) {
		coordinator := &mockCoordinator{}
		dispatcher, _ := newTestDispatcher(coordinator)
		peer := &fakePeer{}

		for _, line := range []string{"NAME", "MOVE|1", "RESTART", "", "HELLO|there"} {
			assert.True(t, dispatcher.Dispatch(peer, line), line)
		}

		assert.Empty(t, peer.lines)
		coordinator.AssertExpectations(t)
	})

	t.Run("RESTART votes", func(t *testing.T) {
		coordinator := &mockCoordinator{}
		dispatcher, _ := newTestDispatcher(coordinator)
		peer := &fakePeer{}

		coordinator.On("SubmitRestartVote", peer, true).Once()
		coordinator.On("SubmitRestartVote", peer, false).Twice()

		dispatcher.Dispatch(peer, "RESTART|yes")
		dispatcher.Dispatch(peer, "RESTART|NO")
		dispatcher.Dispatch(peer, "RESTART|")

		coordinator.AssertExpectations(t)
	})

	t.Run("EXIT stops the read loop", func(t *testing.T) {
		coordinator := &mockCoordinator{}
		dispatcher, counter := newTestDispatcher(coordinator)

		assert.False(t, dispatcher.Dispatch(&fakePeer{}, "EXIT"))
		assert.Equal(t, 1, counter.counts[entity.ActionExit])
	})
}
