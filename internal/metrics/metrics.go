package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PayoutsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "edupayout",
		Name:      "payouts_created_total",
		Help:      "Payouts created from completed sessions.",
	})

	PayoutAmountCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "edupayout",
		Name:      "payout_final_amount_total",
		Help:      "Sum of final amounts of created payouts, in whole currency units.",
	})

	PayoutTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edupayout",
		Name:      "payout_status_transitions_total",
		Help:      "Payout status changes by target status.",
	}, []string{"status"})

	ReceiptsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "edupayout",
		Name:      "receipts_issued_total",
		Help:      "Receipts issued when payouts are marked paid.",
	})

	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "edupayout",
		Name:      "login_failures_total",
		Help:      "Rejected login attempts.",
	})

	ChatMessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edupayout",
		Name:      "chat_messages_sent_total",
		Help:      "Chat messages stored, by sender role.",
	}, []string{"role"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "edupayout",
		Name:      "websocket_clients",
		Help:      "Currently connected chat clients.",
	})

	DashboardCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edupayout",
		Name:      "dashboard_cache_lookups_total",
		Help:      "Dashboard cache lookups by result.",
	}, []string{"result"})
)
