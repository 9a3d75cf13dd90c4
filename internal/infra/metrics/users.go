package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		usersRegisteredTotal,
		loginAttemptsTotal,
		rateLimitTriggeredTotal,
	)
}

var (
	usersRegisteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of new users registered, by role.",
		},
		[]string{"role"},
	)

	loginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"}, // 'ok', 'invalid', 'inactive'
	)

	rateLimitTriggeredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_triggered_total",
			Help: "Total number of times a request was rate-limited.",
		},
		[]string{"scope"},
	)
)

func IncUsersRegistered(role string) {
	usersRegisteredTotal.WithLabelValues(norm(role)).Inc()
}

func IncLogin(result string) {
	loginAttemptsTotal.WithLabelValues(norm(result)).Inc()
}

func IncRateLimitTriggered(scope string) {
	rateLimitTriggeredTotal.WithLabelValues(norm(scope)).Inc()
}
