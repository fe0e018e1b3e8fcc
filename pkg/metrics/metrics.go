package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PostsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "blog", Name: "posts_created_total", Help: "Number of posts created."},
	)
	PostsUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "blog", Name: "posts_updated_total", Help: "Number of posts updated."},
	)
	FormRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "form_rejected_total", Help: "Number of post form submissions rejected by validation, by form."},
		[]string{"form"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(PostsCreated)
	reg.MustRegister(PostsUpdated)
	reg.MustRegister(FormRejected)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
