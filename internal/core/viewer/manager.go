package viewer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gowvp/owlview/internal/core/correlate"
	"github.com/gowvp/owlview/internal/core/nvr"
	"github.com/ixugo/goddd/pkg/conc"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

// DefaultIdleTTL 会话空闲超过该时长被回收
const DefaultIdleTTL = 30 * time.Minute

// Manager 会话管理，每个会话独立持有选择状态与播放器
type Manager struct {
	sessions   conc.Map[string, *Session]
	backend    nvr.Backend
	health     Connectivity
	policy     correlate.Policy
	eventLimit int
	idleTTL    time.Duration
	log        *slog.Logger
}

type Option func(*Manager)

func WithHealth(h Connectivity) Option {
	return func(m *Manager) {
		m.health = h
	}
}

func WithPolicy(p correlate.Policy) Option {
	return func(m *Manager) {
		m.policy = p
	}
}

func WithEventLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.eventLimit = n
		}
	}
}

func WithIdleTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTTL = d
		}
	}
}

func NewManager(backend nvr.Backend, opts ...Option) *Manager {
	m := Manager{
		backend:    backend,
		policy:     correlate.DefaultPolicy(),
		eventLimit: nvr.DefaultEventLimit,
		idleTTL:    DefaultIdleTTL,
		log:        slog.With("hook", "viewer"),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return &m
}

// Create 新建会话
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.backend, m.health, m.policy, m.eventLimit)
	m.sessions.Store(s.ID, s)
	m.log.Debug("session created", "session_id", s.ID)
	return s
}

// Get 获取会话
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.sessions.Load(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete 关闭会话
func (m *Manager) Delete(id string) error {
	if _, ok := m.sessions.Load(id); !ok {
		return ErrSessionNotFound
	}
	m.sessions.Delete(id)
	return nil
}

// Len 当前会话数量
func (m *Manager) Len() int {
	var n int
	m.sessions.Range(func(string, *Session) bool {
		n++
		return true
	})
	return n
}

// Expire 回收在 now 之前空闲超过 TTL 的会话，返回回收数量
func (m *Manager) Expire(now time.Time) int {
	var n int
	m.sessions.Range(func(id string, s *Session) bool {
		if now.Sub(s.LastSeen()) > m.idleTTL {
			m.sessions.Delete(id)
			n++
		}
		return true
	})
	if n > 0 {
		m.log.Info("expire idle sessions", "count", n)
	}
	return n
}

// Start 定期回收空闲会话，直到 ctx 结束
func (m *Manager) Start(ctx context.Context) {
	interval := max(m.idleTTL/4, time.Minute)
	go conc.Timer(ctx, interval, interval, func() {
		m.Expire(time.Now())
	})
}
