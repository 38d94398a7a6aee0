package tsp

import (
	"github.com/prometheus/client_golang/prometheus"
	"time"
)

const (
	OutcomeOK             = "ok"
	OutcomeRemoteError    = "remote_error"
	OutcomeTimeout        = "timeout"
	OutcomeTransportError = "transport_error"
	OutcomeDecodeError    = "decode_error"
	OutcomeRejected       = "rejected"
)

// Metrics records gateway calls and history scans. A nil *Metrics records
// nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	pages    *prometheus.CounterVec
	rows     *prometheus.CounterVec
}

// NewMetrics creates the client metrics and registers them with reg when reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsp_gateway_requests_total",
			Help: "Gateway actions invoked, by action and outcome.",
		}, []string{"action", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tsp_gateway_request_duration_seconds",
			Help:    "Gateway round trip time in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsp_store_range_pages_total",
			Help: "Range pages read from the history store.",
		}, []string{"table"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsp_store_range_rows_total",
			Help: "Rows read from the history store.",
		}, []string{"table"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.pages, m.rows)
	}
	return m
}

func (m *Metrics) observeCall(action Action, resp *ActionResponse, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(action), outcomeOf(resp)).Inc()
	m.duration.WithLabelValues(string(action)).Observe(elapsed.Seconds())
}

func (m *Metrics) observePage(table string, rows int) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(table).Inc()
	m.rows.WithLabelValues(table).Add(float64(rows))
}

func outcomeOf(resp *ActionResponse) string {
	switch resp.Err.(type) {
	case nil:
		if resp.Status == StatusOK {
			return OutcomeOK
		}
		return OutcomeRemoteError
	case *TransportError:
		if IsTimeout(resp.Err) {
			return OutcomeTimeout
		}
		return OutcomeTransportError
	case *DecodeError:
		return OutcomeDecodeError
	default:
		return OutcomeRejected
	}
}
