package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook deliveries by event type and outcome (ok, ignored, error,
// bad_signature). Alert on the error rate: webhook failures are invisible to
// end users.
var WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fintrack_webhook_events_total",
	Help: "Stripe webhook deliveries by event type and outcome.",
}, []string{"type", "outcome"})

var CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fintrack_checkout_sessions_total",
	Help: "Checkout session creations by outcome.",
}, []string{"outcome"})

var PlanChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fintrack_plan_tier_changes_total",
	Help: "Plan tier transitions applied by the webhook reconciler.",
}, []string{"tier"})
