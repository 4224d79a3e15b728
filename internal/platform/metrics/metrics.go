package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LoginSuccess      prometheus.Counter
	LoginFailure      prometheus.Counter
	AuditAppends      prometheus.Counter
	AuditAppendErrors prometheus.Counter
	AuditSkippedLines prometheus.Counter
	UsersCreated      prometheus.Counter
	PostsCreated      prometheus.Counter
}

// New creates and registers all Prometheus metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginSuccess: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_login_success_total",
			Help: "Total number of successful logins",
		}),
		LoginFailure: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_login_failure_total",
			Help: "Total number of failed login attempts",
		}),
		AuditAppends: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_audit_appends_total",
			Help: "Total number of audit events appended to the log",
		}),
		AuditAppendErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_audit_append_errors_total",
			Help: "Total number of audit append failures",
		}),
		AuditSkippedLines: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_audit_skipped_lines_total",
			Help: "Total number of audit log lines skipped as undecryptable",
		}),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_users_created_total",
			Help: "Total number of users created",
		}),
		PostsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_posts_created_total",
			Help: "Total number of posts created",
		}),
	}
}

// NewForTest registers against a throwaway registry so parallel tests never
// collide on metric names.
func NewForTest() *Metrics {
	return New(prometheus.NewRegistry())
}
