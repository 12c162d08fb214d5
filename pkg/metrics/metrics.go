// Package metrics 贷款申请服务的 Prometheus 指标
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/loanapplication/pkg/logger"
)

const namespace = "loan"

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 业务指标
	ApplicationsCreated *prometheus.CounterVec
	StatusTransitions   *prometheus.CounterVec
	Notifications       *prometheus.CounterVec
	DecisionsConsumed   *prometheus.CounterVec
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ApplicationsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "applications_created_total",
			Help:      "Loan applications created, by loan type",
		}, []string{"loan_type"}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "status_transitions_total",
			Help:      "Persisted status transitions, by target status",
		}, []string{"status"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "notifications_total",
			Help:      "Outbound notifications, by kind and result",
		}, []string{"kind", "result"}),
		DecisionsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "decisions_consumed_total",
			Help:      "Capacity decisions consumed, by result",
		}, []string{"result"}),
	}
}

// Register 注册到指定 registerer
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ApplicationsCreated,
		m.StatusTransitions,
		m.Notifications,
		m.DecisionsConsumed,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return nil
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ApplicationCreated 记录创建的申请
func (m *Metrics) ApplicationCreated(loanType string) {
	if m == nil {
		return
	}
	m.ApplicationsCreated.WithLabelValues(loanType).Inc()
}

// StatusChanged 记录状态变更
func (m *Metrics) StatusChanged(status string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(status).Inc()
}

// NotificationSent 记录通知发送结果
func (m *Metrics) NotificationSent(kind string, err error) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind, result(err)).Inc()
}

// DecisionConsumed 记录决策消息处理结果
func (m *Metrics) DecisionConsumed(err error) {
	if m == nil {
		return
	}
	m.DecisionsConsumed.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// Server 独立端口的指标 HTTP 服务
type Server struct {
	srv *http.Server
}

// NewServer 创建指标服务
func NewServer(port int, path string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{srv: &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start 阻塞监听，正常关闭时返回 nil
func (s *Server) Start() error {
	logger.Info(context.Background(), "metrics server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
