package websocket

import (
	"sync"
	"time"
)

// Metrics tracks hub activity for the stats endpoint. Counters only; the
// numbers answer "is the hub healthy and how busy is it" and nothing more.
type Metrics struct {
	mu sync.RWMutex

	activeConnections int
	totalConnections  int64
	peakConnections   int

	broadcastsSent  int64
	messagesDropped int64
	forcedEvictions int64

	signalsRelayed int64
	signalsDropped int64
	authFailures   int64

	startedAt time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startedAt: time.Now()}
}

func (m *Metrics) ConnectionOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeConnections++
	m.totalConnections++
	if m.activeConnections > m.peakConnections {
		m.peakConnections = m.activeConnections
	}
}

func (m *Metrics) ConnectionClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeConnections > 0 {
		m.activeConnections--
	}
}

func (m *Metrics) BroadcastSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcastsSent++
}

func (m *Metrics) MessageDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesDropped++
}

func (m *Metrics) ForcedEviction() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forcedEvictions++
}

func (m *Metrics) SignalRelayed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signalsRelayed++
}

func (m *Metrics) SignalDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signalsDropped++
}

func (m *Metrics) AuthFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authFailures++
}

// MetricsSnapshot is the JSON shape served by the stats endpoint.
type MetricsSnapshot struct {
	ActiveConnections int   `json:"active_connections"`
	TotalConnections  int64 `json:"total_connections"`
	PeakConnections   int   `json:"peak_connections"`
	BroadcastsSent    int64 `json:"broadcasts_sent"`
	MessagesDropped   int64 `json:"messages_dropped"`
	ForcedEvictions   int64 `json:"forced_evictions"`
	SignalsRelayed    int64 `json:"signals_relayed"`
	SignalsDropped    int64 `json:"signals_dropped"`
	AuthFailures      int64 `json:"auth_failures"`
	UptimeSeconds     int64 `json:"uptime_seconds"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		ActiveConnections: m.activeConnections,
		TotalConnections:  m.totalConnections,
		PeakConnections:   m.peakConnections,
		BroadcastsSent:    m.broadcastsSent,
		MessagesDropped:   m.messagesDropped,
		ForcedEvictions:   m.forcedEvictions,
		SignalsRelayed:    m.signalsRelayed,
		SignalsDropped:    m.signalsDropped,
		AuthFailures:      m.authFailures,
		UptimeSeconds:     int64(time.Since(m.startedAt).Seconds()),
	}
}
