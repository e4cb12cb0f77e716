package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rocketscienceinc/tictactoe-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-server/internal/entity"
)

// Metrics implements usecase.Observer on top of a private prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	connectedPlayers    prometheus.Gauge
	rejectedConnections prometheus.Counter
	messagesReceived    *prometheus.CounterVec
	roundsFinished      *prometheus.CounterVec
	requestsRejected    *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connectedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_players",
			Help:      "Number of occupied player slots",
		}),
		rejectedConnections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Connections turned away because both slots were taken",
		}),
		messagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Client lines received, by message type",
		}, []string{"type"}),
		roundsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_finished_total",
			Help:      "Completed rounds, by outcome",
		}, []string{"outcome"}),
		requestsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_rejected_total",
			Help:      "Requests answered with INVALID, by reason",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		m.connectedPlayers,
		m.rejectedConnections,
		m.messagesReceived,
		m.roundsFinished,
		m.requestsRejected,
	)

	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var knownTypes = map[entity.Action]bool{
	entity.ActionName:    true,
	entity.ActionMove:    true,
	entity.ActionRestart: true,
	entity.ActionExit:    true,
}

// MessageReceived counts a client line. Unknown types share one label value.
func (m *Metrics) MessageReceived(action entity.Action) {
	label := string(action)
	if !knownTypes[action] {
		label = "unknown"
	}

	m.messagesReceived.WithLabelValues(label).Inc()
}

func (m *Metrics) PlayerJoined(entity.Slot) { m.connectedPlayers.Inc() }
func (m *Metrics) PlayerLeft(entity.Slot)   { m.connectedPlayers.Dec() }
func (m *Metrics) ConnectionRejected()      { m.rejectedConnections.Inc() }
func (m *Metrics) RoundStarted()            {}
func (m *Metrics) MatchReset()              {}

func (m *Metrics) RoundEnded(result entity.RoundResult) {
	m.roundsFinished.WithLabelValues(string(result.Outcome)).Inc()
}

func (m *Metrics) RequestRejected(reason error) {
	m.requestsRejected.WithLabelValues(reasonLabel(reason)).Inc()
}

var reasonLabels = []struct {
	err   error
	label string
}{
	{apperror.ErrNoSlot, "no_slot"},
	{apperror.ErrNameAlreadySet, "name_already_set"},
	{apperror.ErrEmptyName, "empty_name"},
	{apperror.ErrRoundNotActive, "round_not_active"},
	{apperror.ErrNotYourTurn, "not_your_turn"},
	{apperror.ErrOutsideBoard, "outside_board"},
	{apperror.ErrCellOccupied, "cell_occupied"},
	{apperror.ErrInvalidCoordinates, "invalid_coordinates"},
}

func reasonLabel(reason error) string {
	for _, known := range reasonLabels {
		if errors.Is(reason, known.err) {
			return known.label
		}
	}

	return "other"
}
