package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency = metric.NewHistogram("1m1s")
	FloodLatency    = metric.NewHistogram("1m1s")
	FloodPasses     = metric.NewHistogram("1m1s")
	FloodUpdates    = metric.NewHistogram("1m1s")
	SpfLatency      = metric.NewHistogram("1m1s")
	SpfRuns         = metric.NewCounter("10s1s")
	LsaAccepted     = metric.NewCounter("10s1s")
	LsaRejected     = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("linkstate:DispatchLatency (µs)", DispatchLatency)
	expvar.Publish("linkstate:FloodLatency (µs)", FloodLatency)
	expvar.Publish("linkstate:FloodPasses", FloodPasses)
	expvar.Publish("linkstate:FloodUpdates", FloodUpdates)
	expvar.Publish("linkstate:SpfLatency (µs)", SpfLatency)
	expvar.Publish("linkstate:SpfRuns/s", SpfRuns)
	expvar.Publish("linkstate:LsaAccepted/s", LsaAccepted)
	expvar.Publish("linkstate:LsaRejected/s", LsaRejected)
}
