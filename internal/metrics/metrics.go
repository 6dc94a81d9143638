package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var jobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "snatch",
	Name:      "jobs_total",
	Help:      "Download jobs by channel and outcome",
}, []string{"channel", "outcome"})

func init() {
	prometheus.MustRegister(jobsTotal)
}

// RecordJob counts one finished job. outcome is "success" or a failure
// kind label.
func RecordJob(channel, outcome string) {
	jobsTotal.WithLabelValues(channel, outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
