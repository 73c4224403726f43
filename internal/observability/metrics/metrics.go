package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"service", "result"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)

	OTPVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_otp_verifications_total",
			Help: "Total number of one-time-password verification attempts.",
		},
		[]string{"service", "kind", "result"},
	)

	InvitationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_invitations_total",
			Help: "Total number of invitation lifecycle events.",
		},
		[]string{"service", "action", "result"},
	)

	APITokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_tokens_issued_total",
			Help: "Total number of API tokens issued.",
		},
		[]string{"service", "result"},
	)

	APITokenAuthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_token_auth_total",
			Help: "Total number of API token authentication attempts.",
		},
		[]string{"service", "result"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName}).(*prometheus.HistogramVec)
	RegistrationsTotal = RegistrationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	LoginsTotal = LoginsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	OTPVerificationsTotal = OTPVerificationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	InvitationsTotal = InvitationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	APITokensIssuedTotal = APITokensIssuedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	APITokenAuthTotal = APITokenAuthTotal.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		RegistrationsTotal,
		LoginsTotal,
		OTPVerificationsTotal,
		InvitationsTotal,
		APITokensIssuedTotal,
		APITokenAuthTotal,
	)
}
