package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authorization metrics
	AuthzDecisionsTotal *prometheus.CounterVec
	AuthzCheckDuration  prometheus.Histogram

	// Invitation metrics
	InvitationsCreatedTotal  prometheus.Counter
	InvitationsAcceptedTotal *prometheus.CounterVec
	InvitationMailTotal      *prometheus.CounterVec

	// Membership metrics
	MembershipChangesTotal *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "farmhand_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "farmhand_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		AuthzDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "farmhand_authz_decisions_total",
				Help: "Authorization resolver decisions by outcome",
			},
			[]string{"outcome"},
		),
		AuthzCheckDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "farmhand_authz_check_duration_seconds",
				Help:    "Authorization check duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		InvitationsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "farmhand_invitations_created_total",
				Help: "Total number of invitations created",
			},
		),
		InvitationsAcceptedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "farmhand_invitations_accepted_total",
				Help: "Invitation acceptance outcomes",
			},
			[]string{"outcome"},
		),
		InvitationMailTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "farmhand_invitation_mail_total",
				Help: "Invitation email dispatch results",
			},
			[]string{"status"},
		),
		MembershipChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "farmhand_membership_changes_total",
				Help: "Membership mutations by kind",
			},
			[]string{"kind"},
		),
		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "farmhand_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "farmhand_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthzDecisionsTotal,
		m.AuthzCheckDuration,
		m.InvitationsCreatedTotal,
		m.InvitationsAcceptedTotal,
		m.InvitationMailTotal,
		m.MembershipChangesTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
	)

	return m
}

// Handler returns the Prometheus scrape handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records a completed HTTP request
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveAuthzDecision records an authorization decision
func (m *Metrics) ObserveAuthzDecision(allowed bool, duration time.Duration) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	m.AuthzDecisionsTotal.WithLabelValues(outcome).Inc()
	m.AuthzCheckDuration.Observe(duration.Seconds())
}

// ObserveDBPool exports connection pool statistics
func (m *Metrics) ObserveDBPool(stats sql.DBStats) {
	m.DBConnectionsActive.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))
}
