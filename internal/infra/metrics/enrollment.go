package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(enrollmentsTotal, capacityOverflowTotal, checkinsTotal)
}

var (
	enrollmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrollments_total",
			Help: "Enrollment operations by target kind, action and result.",
		},
		[]string{"kind", "action", "result"}, // kind: activity/tournament/project
	)

	capacityOverflowTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_capacity_overflow_total",
			Help: "Unenrollments that left available_spots above capacity.",
		},
	)

	checkinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Check-in attempts by result.",
		},
		[]string{"result"},
	)
)

func IncEnrollment(kind, action, result string) {
	enrollmentsTotal.WithLabelValues(norm(kind), norm(action), norm(result)).Inc()
}

func IncCapacityOverflow() { capacityOverflowTotal.Inc() }

func IncCheckin(result string) {
	checkinsTotal.WithLabelValues(norm(result)).Inc()
}
