// Package playback 管理唯一的播放器：加载录像、等待元数据就绪后执行一次跳转并开始播放
package playback

import (
	"log/slog"
	"math"
	"sync"
)

// State 播放协调器状态
type State string

const (
	StateIdle    State = "idle"    // 未加载录像
	StateLoading State = "loading" // 已设置播放源，元数据未就绪
	StateSeeking State = "seeking" // 元数据就绪，正在执行跳转
	StatePlaying State = "playing" // 已发出播放指令（可能被浏览器自动播放策略拦截）
	StateFailed  State = "failed"  // 当前录像加载失败
)

// Media 播放器抽象，只有 Coordinator 可以调用
// 每次加载录像都会分配新的 cycle，实现方需要在回调中带回 cycle，用于丢弃过期信号
// 调用发生在 Coordinator 持锁期间，实现方不得同步回调 Coordinator
type Media interface {
	Load(cycle uint64, src string)
	Seek(cycle uint64, seconds float64)
	Play(cycle uint64) error
	// Stop 卸载当前播放源，之前周期的指令全部作废
	Stop(cycle uint64)
}

// Snapshot 协调器当前状态，供界面渲染
type Snapshot struct {
	State           State    `json:"state"`
	Cycle           uint64   `json:"cycle"`
	RecordingIndex  int      `json:"recording_index"`
	Source          string   `json:"source,omitempty"`
	PendingSeek     *float64 `json:"pending_seek,omitempty"` // 尚未应用的跳转（秒）
	AppliedSeek     *float64 `json:"applied_seek,omitempty"` // 已应用的跳转（秒，已截断）
	Duration        float64  `json:"duration,omitempty"`     // 录像总时长（秒）
	AutoplayBlocked bool     `json:"autoplay_blocked"`       // 自动播放被拒绝，需要手动开始
	Reason          string   `json:"reason,omitempty"`       // 失败原因
}

// Coordinator 播放状态机
//
//	Idle/Playing/Failed --Select--> Loading
//	Loading --MetadataReady--> Seeking --applied--> Playing
//	Loading|Seeking --MediaError--> Failed
//
// 同一时刻最多一个待执行的跳转，新的 Select 会丢弃旧的；每个加载周期内跳转最多执行一次
type Coordinator struct {
	mu    sync.Mutex
	media Media
	log   *slog.Logger

	state           State
	cycle           uint64
	index           int
	src             string
	pending         *float64
	applied         *float64
	duration        float64
	autoplayBlocked bool
	reason          string
}

type Option func(*Coordinator)

// WithLogger 注入日志
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

// NewCoordinator 创建协调器，media 由协调器独占
func NewCoordinator(media Media, opts ...Option) *Coordinator {
	c := Coordinator{
		media: media,
		log:   slog.Default(),
		state: StateIdle,
		index: -1,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Select 加载指定录像，offset 为可选的跳转位置（秒）
// 任意状态均可调用；未完成的旧加载及其跳转被丢弃，返回新的加载周期
func (c *Coordinator) Select(index int, src string, offset *float64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cycle++
	c.state = StateLoading
	c.index = index
	c.src = src
	c.applied = nil
	c.duration = 0
	c.autoplayBlocked = false
	c.reason = ""
	c.pending = nil
	if offset != nil {
		v := *offset
		c.pending = &v
	}

	c.media.Load(c.cycle, src)
	c.log.Debug("playback load", "cycle", c.cycle, "index", index, "src", src, "has_seek", offset != nil)
	return c.cycle
}

// MetadataReady 播放器已获知录像总时长
// 待执行的跳转截断到 [0, duration-1] 后应用，然后发出播放指令
// 过期周期或重复的就绪信号被忽略，不会再次跳转；返回实际跳转位置及是否跳转
func (c *Coordinator) MetadataReady(cycle uint64, duration float64) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cycle != c.cycle || c.state != StateLoading {
		c.log.Debug("ignore metadata ready", "cycle", cycle, "current", c.cycle, "state", c.state)
		return 0, false
	}

	c.state = StateSeeking
	c.duration = duration

	var target float64
	seeked := c.pending != nil
	if seeked {
		target = Clamp(*c.pending, duration)
		c.pending = nil
		c.applied = &target
		c.media.Seek(cycle, target)
	}

	c.state = StatePlaying
	if err := c.media.Play(cycle); err != nil {
		c.autoplayBlocked = true
		c.log.Warn("autoplay blocked", "cycle", cycle, "err", err)
	}
	return target, seeked
}

// PlayRejected 远端播放器上报播放被拒绝（如自动播放策略），不视为失败
func (c *Coordinator) PlayRejected(cycle uint64, reason string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cycle != c.cycle || c.state != StatePlaying {
		return false
	}
	c.autoplayBlocked = true
	c.log.Warn("autoplay blocked", "cycle", cycle, "reason", reason)
	return true
}

// MediaError 加载或跳转阶段出错，进入 Failed；其他状态下的错误被忽略
func (c *Coordinator) MediaError(cycle uint64, reason string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cycle != c.cycle {
		return false
	}
	if c.state != StateLoading && c.state != StateSeeking {
		c.log.Debug("ignore media error", "cycle", cycle, "state", c.state, "reason", reason)
		return false
	}
	c.state = StateFailed
	c.reason = reason
	c.pending = nil
	c.log.Error("media load failed", "cycle", cycle, "src", c.src, "reason", reason)
	return true
}

// Reset 回到 Idle 并丢弃待执行的跳转，切换通道时调用
// 周期号继续递增，之前加载的信号全部失效；已加载过播放源时通知播放器卸载
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cycle++
	if c.src != "" {
		c.media.Stop(c.cycle)
	}
	c.state = StateIdle
	c.index = -1
	c.src = ""
	c.pending = nil
	c.applied = nil
	c.duration = 0
	c.autoplayBlocked = false
	c.reason = ""
}

// Snapshot 当前状态
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		State:           c.state,
		Cycle:           c.cycle,
		RecordingIndex:  c.index,
		Source:          c.src,
		PendingSeek:     copyFloat(c.pending),
		AppliedSeek:     copyFloat(c.applied),
		Duration:        c.duration,
		AutoplayBlocked: c.autoplayBlocked,
		Reason:          c.reason,
	}
}

// Clamp 跳转位置限制在 [0, duration-1]，不允许跳到最后一秒之后
// duration 未知（<=0、NaN、Inf）时只保证非负
func Clamp(offset, duration float64) float64 {
	if math.IsNaN(offset) || offset < 0 {
		offset = 0
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		if math.IsInf(offset, 1) {
			return 0
		}
		return offset
	}
	return max(0, min(offset, duration-1))
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
