// Package metrics exposes the service's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission results.
const (
	ResultAccepted    = "accepted"
	ResultOutside     = "outside_geofence"
	ResultNoRoom      = "no_room_selected"
	ResultInvalid     = "invalid"
	ResultRateLimited = "rate_limited"
	ResultError       = "error"
	ResultSuccess     = "success"
	ResultFailure     = "failure"
	ResultNotFound    = "not_found"
)

// Metrics groups the counters.
type Metrics struct {
	Submissions    *prometheus.CounterVec
	RoomSelections *prometheus.CounterVec
	RoomsCreated   prometheus.Counter
	Logins         *prometheus.CounterVec
	Registrations  *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoattend",
			Name:      "attendance_submissions_total",
			Help:      "Attendance submissions by outcome.",
		}, []string{"result"}),
		RoomSelections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoattend",
			Name:      "room_selections_total",
			Help:      "Room selection attempts by outcome.",
		}, []string{"result"}),
		RoomsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: "geoattend",
			Name:      "rooms_created_total",
			Help:      "Rooms added by administrators.",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoattend",
			Name:      "logins_total",
			Help:      "Login attempts by principal kind and outcome.",
		}, []string{"kind", "result"}),
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoattend",
			Name:      "registrations_total",
			Help:      "Student registrations by outcome.",
		}, []string{"result"}),
	}
}

// Submission counts one attendance submission.
func (m *Metrics) Submission(result string) {
	m.Submissions.WithLabelValues(result).Inc()
}
