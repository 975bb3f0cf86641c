package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.SessionStarted()
	c.SessionStarted()
	c.SessionEnded()
	c.AttendanceMarked()
	c.AttendanceDuplicate()
	c.ClientConnected()
	c.ClientConnected()
	c.ClientDisconnected()

	checks := []struct {
		name string
		m    prometheus.Collector
		want float64
	}{
		{"sessions started", c.sessionsStarted, 2},
		{"sessions ended", c.sessionsEnded, 1},
		{"marked", c.attendanceMarked, 1},
		{"duplicate", c.attendanceDuplicate, 1},
		{"clients", c.realtimeClients, 1},
	}
	for _, tc := range checks {
		if got := testutil.ToFloat64(tc.m); got != tc.want {
			t.Errorf("%s = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCollectorRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration did not panic")
		}
	}()
	NewCollector(reg)
}
