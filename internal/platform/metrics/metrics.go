package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClinicMetrics exposes counters and gauges for the visit lifecycle.
type ClinicMetrics struct {
	bookings            *prometheus.CounterVec
	transitions         *prometheus.CounterVec
	triageRecords       *prometheus.CounterVec
	consultations       *prometheus.CounterVec
	consistencyWarnings *prometheus.CounterVec
	recordAccess        *prometheus.CounterVec
	queueSize           prometheus.Gauge
}

func NewClinicMetrics(reg prometheus.Registerer) *ClinicMetrics {
	m := &ClinicMetrics{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "visits",
			Name:      "booked_total",
			Help:      "Visits booked, by initial status",
		}, []string{"status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "visits",
			Name:      "transitions_total",
			Help:      "Visit status transitions",
		}, []string{"from", "to"}),
		triageRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "triage",
			Name:      "records_total",
			Help:      "Triage assessments recorded, by priority",
		}, []string{"priority"}),
		consultations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "consultation",
			Name:      "completed_total",
			Help:      "Consultation completions, by outcome",
		}, []string{"outcome"}),
		consistencyWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "consultation",
			Name:      "consistency_warnings_total",
			Help:      "Medical records whose visit status could not be updated",
		}, []string{"kind"}),
		recordAccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "audit",
			Name:      "record_access_total",
			Help:      "Audited API requests, by resource and action",
		}, []string{"resource", "action"}),
		queueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinic",
			Subsystem: "consultation",
			Name:      "queue_size",
			Help:      "Visits waiting for consultation at the last queue read",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookings, m.transitions, m.triageRecords, m.consultations,
		m.consistencyWarnings, m.recordAccess, m.queueSize)
	return m
}

func (m *ClinicMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(status).Inc()
}

func (m *ClinicMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *ClinicMetrics) ObserveTriage(priority string) {
	if m == nil {
		return
	}
	m.triageRecords.WithLabelValues(priority).Inc()
}

func (m *ClinicMetrics) ObserveConsultation(outcome string) {
	if m == nil {
		return
	}
	m.consultations.WithLabelValues(outcome).Inc()
}

func (m *ClinicMetrics) ObserveConsistencyWarning(kind string) {
	if m == nil {
		return
	}
	m.consistencyWarnings.WithLabelValues(kind).Inc()
}

func (m *ClinicMetrics) ObserveRecordAccess(resource, action string) {
	if m == nil {
		return
	}
	m.recordAccess.WithLabelValues(resource, action).Inc()
}

func (m *ClinicMetrics) SetQueueSize(n int) {
	if m == nil {
		return
	}
	m.queueSize.Set(float64(n))
}
