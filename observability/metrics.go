package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GracePeriodsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camguard_grace_periods_started_total",
		Help: "The total number of grace periods scheduled",
	})
	GracePeriodsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camguard_grace_periods_cancelled_total",
		Help: "The total number of grace periods cancelled before expiry",
	})
	GracePeriodsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camguard_grace_periods_expired_total",
		Help: "The total number of grace periods that expired and triggered enforcement",
	})
	GracePeriodsPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "camguard_grace_periods_pending",
		Help: "The number of grace periods currently waiting to expire",
	})
	Enforcements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camguard_enforcements_total",
		Help: "Enforcement steps performed, partitioned by step and result",
	}, []string{"step", "result"})
	PresenceEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camguard_presence_events_total",
		Help: "Voice presence events handled, partitioned by transition and result",
	}, []string{"transition", "result"})
	GatewayOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "camguard_gateway_online",
		Help: "1 when the platform gateway session is ready, 0 otherwise",
	})
)

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func BoolGauge(g prometheus.Gauge, v bool) {
	if v {
		g.Set(1)
		return
	}
	g.Set(0)
}
