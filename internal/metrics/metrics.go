// Package metrics collects and exposes Prometheus metrics for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the service's Prometheus instruments.
type Collector struct {
	sessionsStarted     prometheus.Counter
	sessionsEnded       prometheus.Counter
	attendanceMarked    prometheus.Counter
	attendanceDuplicate prometheus.Counter
	realtimeClients     prometheus.Gauge
}

// NewCollector creates a Collector and registers its instruments on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classroll_sessions_started_total",
			Help: "Total attendance sessions started.",
		}),
		sessionsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classroll_sessions_ended_total",
			Help: "Total attendance sessions ended.",
		}),
		attendanceMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classroll_attendance_marked_total",
			Help: "Total attendance records appended.",
		}),
		attendanceDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classroll_attendance_duplicate_total",
			Help: "Total mark requests rejected as already recorded.",
		}),
		realtimeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "classroll_realtime_clients",
			Help: "Currently connected realtime listeners.",
		}),
	}
	reg.MustRegister(
		c.sessionsStarted,
		c.sessionsEnded,
		c.attendanceMarked,
		c.attendanceDuplicate,
		c.realtimeClients,
	)
	return c
}

// SessionStarted counts one started session.
func (c *Collector) SessionStarted() { c.sessionsStarted.Inc() }

// SessionEnded counts one ended session.
func (c *Collector) SessionEnded() { c.sessionsEnded.Inc() }

// AttendanceMarked counts one appended record.
func (c *Collector) AttendanceMarked() { c.attendanceMarked.Inc() }

// AttendanceDuplicate counts one already-recorded outcome.
func (c *Collector) AttendanceDuplicate() { c.attendanceDuplicate.Inc() }

// ClientConnected tracks a realtime listener joining.
func (c *Collector) ClientConnected() { c.realtimeClients.Inc() }

// ClientDisconnected tracks a realtime listener leaving.
func (c *Collector) ClientDisconnected() { c.realtimeClients.Dec() }
