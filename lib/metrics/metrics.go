// Package metrics -----------------------------
// @file      : metrics.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/22 11:00
// -------------------------------------------
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "redis_client"

// Metrics 客户端指标，nil 接收者上的方法什么都不做
type Metrics struct {
	commands     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	reconnects   prometheus.Counter
	messages     prometheus.Counter
	poolWait     prometheus.Histogram
	poolTimeouts prometheus.Counter
}

// New 创建并注册到 reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by command name and outcome.",
		}, []string{"command", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Round-trip time of executed commands.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"command"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connects_total",
			Help:      "Transports opened, including reconnects after failures.",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pubsub_messages_total",
			Help:      "Push messages delivered to subscription queues.",
		}),
		poolWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pool_wait_seconds",
			Help:      "Time spent waiting to acquire a pooled connection.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		poolTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_timeouts_total",
			Help:      "Acquire attempts that timed out.",
		}),
	}
	reg.MustRegister(m.commands, m.latency, m.reconnects, m.messages, m.poolWait, m.poolTimeouts)
	return m
}

// ObserveCommand 记录一次命令执行
func (m *Metrics) ObserveCommand(command string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.commands.WithLabelValues(command, status).Inc()
	m.latency.WithLabelValues(command).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncConnects() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) IncMessages() {
	if m == nil {
		return
	}
	m.messages.Inc()
}

// ObserveAcquire 记录一次从连接池取连接的等待
func (m *Metrics) ObserveAcquire(start time.Time, timedOut bool) {
	if m == nil {
		return
	}
	m.poolWait.Observe(time.Since(start).Seconds())
	if timedOut {
		m.poolTimeouts.Inc()
	}
}
