package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobRunsTotal, jobItemsTotal) }

var (
	jobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_runs_total",
			Help: "Scheduled job runs, labeled by job and status.",
		},
		[]string{"job", "status"}, // 'ok', 'failed'
	)

	jobItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_items_processed_total",
			Help: "Items processed by scheduled jobs.",
		},
		[]string{"job"},
	)
)

func IncJobRun(job, status string) {
	jobRunsTotal.WithLabelValues(norm(job), norm(status)).Inc()
}

func AddJobItems(job string, n int) {
	if n <= 0 {
		return
	}
	jobItemsTotal.WithLabelValues(norm(job)).Add(float64(n))
}
