package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(notificationsTotal, notificationsDedupedTotal, campaignRecipientsTotal)
}

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notifications created, labeled by channel and resulting status.",
		},
		[]string{"channel", "status"},
	)

	notificationsDedupedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_deduped_total",
			Help: "Dispatch attempts skipped because an identical notification was recent.",
		},
	)

	campaignRecipientsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_recipients_total",
			Help: "Recipients targeted by campaign dispatches, by segment.",
		},
		[]string{"segment"},
	)
)

func IncNotification(channel, status string) {
	notificationsTotal.WithLabelValues(norm(channel), norm(status)).Inc()
}

func IncNotificationDeduped() { notificationsDedupedTotal.Inc() }

func AddCampaignRecipients(segment string, n int) {
	campaignRecipientsTotal.WithLabelValues(norm(segment)).Add(float64(n))
}
