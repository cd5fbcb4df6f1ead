// Package metrics 提供 Prometheus helper，暴露合约生命周期相关指标
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/optionlifecycle/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// 注册合约总数
	ContractsRegistered prometheus.Counter
	// 退市合约总数
	ContractsDelisted prometheus.Counter
	// 强制平仓次数
	PositionsForceClosed prometheus.Counter
	// 时钟推进耗时
	AdvanceDuration prometheus.Histogram
	// 当前未平仓头寸数量
	OpenPositions prometheus.Gauge
	// HTTP 请求计数（按路由与状态码）
	HTTPRequestsTotal *prometheus.CounterVec
}

// New 创建并注册指标集合
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ContractsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "contracts_registered_total",
			Help:      "Total number of contracts registered.",
		}),
		ContractsDelisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "contracts_delisted_total",
			Help:      "Total number of contracts delisted at their effective expiry.",
		}),
		PositionsForceClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "positions_force_closed_total",
			Help:      "Total number of positions force-closed by delisting.",
		}),
		AdvanceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: serviceName,
			Name:      "clock_advance_duration_seconds",
			Help:      "Duration of simulation clock advance calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Name:      "open_positions",
			Help:      "Number of currently open positions.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
	}

	registry.MustRegister(
		m.ContractsRegistered,
		m.ContractsDelisted,
		m.PositionsForceClosed,
		m.AdvanceDuration,
		m.OpenPositions,
		m.HTTPRequestsTotal,
	)

	return m
}

// ObserveAdvance 记录一次时钟推进的耗时
func (m *Metrics) ObserveAdvance(start time.Time) {
	m.AdvanceDuration.Observe(time.Since(start).Seconds())
}

// ExposeHTTP 在指定端口暴露 /metrics
func (m *Metrics) ExposeHTTP(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "metrics endpoint listening", "addr", addr, "path", path)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error(context.Background(), "metrics endpoint failed", "error", err)
	}
}
