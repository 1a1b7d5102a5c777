package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP метрики
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)

	// Операции над сигналами
	BoardOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_operations_total",
			Help: "Signal board operations by result",
		},
		[]string{"operation", "result"},
	)
	BoardStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_steps_total",
			Help: "Saga steps by status",
		},
		[]string{"operation", "step", "status"},
	)

	// Уведомления
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_notifications_total",
			Help: "Chat notifications by event and result",
		},
		[]string{"event", "result"},
	)

	Signals = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "board_signals",
			Help: "Number of signals per view",
		},
		[]string{"view"},
	)
)

var once sync.Once

// InitMetrics регистрирует метрики в prometheus.DefaultRegisterer. Повторный вызов ничего не делает.
func InitMetrics() {
	once.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)

		prometheus.MustRegister(BoardOperationsTotal)
		prometheus.MustRegister(BoardStepsTotal)
		prometheus.MustRegister(NotificationsTotal)
		prometheus.MustRegister(Signals)
	})
}
