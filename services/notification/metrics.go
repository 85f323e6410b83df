package notification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	channelEmail = "email"
	channelSMS   = "sms"
	channelPush  = "push"

	outcomeSent    = "sent"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
)

var dispatchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notification_dispatch_total",
		Help: "Outbound notifications by channel and outcome.",
	},
	[]string{"channel", "outcome"},
)

func recordDispatch(channel, outcome string) {
	dispatchTotal.WithLabelValues(channel, outcome).Inc()
}
