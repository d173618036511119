// Package health 定期探测录像后端，维护连接状态
package health

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ixugo/goddd/pkg/conc"
)

// DefaultInterval 探测间隔
const DefaultInterval = 30 * time.Second

// Checker 后端探测，失败时返回 false，不返回错误
type Checker interface {
	HealthCheck(ctx context.Context) bool
}

// Monitor 单次失败立即标记为断开，下一次成功立即恢复，不做防抖
type Monitor struct {
	checker  Checker
	interval time.Duration
	timeout  time.Duration
	log      *slog.Logger

	connected atomic.Bool
	checked   atomic.Bool
	mu        sync.Mutex
	checkedAt time.Time
}

type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithTimeout 单次探测超时，0 表示由 Checker 自行控制
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		m.timeout = d
	}
}

func NewMonitor(checker Checker, opts ...Option) *Monitor {
	m := Monitor{
		checker:  checker,
		interval: DefaultInterval,
		log:      slog.With("hook", "health"),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return &m
}

// Start 立即探测一次，之后按间隔探测，直到 ctx 结束
func (m *Monitor) Start(ctx context.Context) {
	m.Poll(ctx)
	go conc.Timer(ctx, m.interval, m.interval, func() {
		m.Poll(ctx)
	})
}

// Poll 执行一次探测并返回结果
func (m *Monitor) Poll(ctx context.Context) bool {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	ok := m.checker.HealthCheck(ctx)

	m.mu.Lock()
	m.checkedAt = time.Now()
	m.mu.Unlock()

	prev := m.connected.Swap(ok)
	first := !m.checked.Swap(true)
	switch {
	case first:
		m.log.InfoContext(ctx, "nvr health", "connected", ok)
	case prev && !ok:
		m.log.WarnContext(ctx, "nvr disconnected")
	case !prev && ok:
		m.log.InfoContext(ctx, "nvr reconnected")
	}
	return ok
}

// Connected 最近一次探测结果，从未探测时为 false
func (m *Monitor) Connected() bool {
	return m.connected.Load()
}

// CheckedAt 最近一次探测时间
func (m *Monitor) CheckedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkedAt
}
