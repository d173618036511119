// Package selection 保存一个查看会话当前选中的通道、录像、事件及待执行的跳转
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gowvp/owlview/internal/core/correlate"
	"github.com/gowvp/owlview/internal/core/event"
	"github.com/gowvp/owlview/internal/core/nvr"
	"github.com/gowvp/owlview/internal/core/recording"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoCamera         = errors.New("no camera selected")
	ErrEmptyCameraID    = errors.New("camera id is empty")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrEventNotSeekable = errors.New("event has no timestamp")
	ErrStaleGeneration  = errors.New("selection changed")
)

// RefreshOutcome 一次 LoadCamera 的结果
// 两个列表独立失败，失败的列表为空并在对应字段返回错误
type RefreshOutcome struct {
	CameraID      string
	Generation    uint64
	Recordings    int
	Events        int
	RecordingsErr error
	EventsErr     error
	// Superseded 加载期间切换了通道，本次结果已丢弃
	Superseded bool
	Elapsed    time.Duration
}

// OK 两个列表都拉取成功且结果已生效
func (o RefreshOutcome) OK() bool {
	return !o.Superseded && o.RecordingsErr == nil && o.EventsErr == nil
}

// Player 播放器，由 State 在持锁期间驱动，保证播放意图与选择状态一致
type Player interface {
	Select(index int, src string, offset *float64) uint64
	Reset()
}

// Resolution 事件关联结果及生效时的代数
type Resolution struct {
	Generation uint64
	Cycle      uint64 // 播放器加载周期，未匹配时为 0
	EventIndex int
	Event      event.Event
	Result     correlate.Result
	Recording  recording.Recording
}

// State 会话选择状态，所有字段只能通过方法访问
// 每次 LoadCamera 生成新的代数，只有代数仍为最新的拉取结果才会写入
type State struct {
	mu         sync.Mutex
	backend    nvr.Backend
	correlator correlate.Correlator
	eventLimit int
	player     Player
	log        *slog.Logger

	generation    uint64
	cameraID      string
	loading       bool
	index         recording.Index
	events        []event.Event
	recordingsErr error
	eventsErr     error
	current       int
	activeEvent   int
	pendingSeek   *float64
	cycle         uint64 // 最近一次交给播放器的加载周期
}

type Option func(*State)

// WithPolicy 覆盖关联策略
func WithPolicy(p correlate.Policy) Option {
	return func(s *State) {
		s.correlator = correlate.New(p)
	}
}

// WithEventLimit 单次拉取事件数量
func WithEventLimit(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.eventLimit = n
		}
	}
}

// WithPlayer 绑定播放器，切换通道时重置，选中录像时加载
func WithPlayer(p Player) Option {
	return func(s *State) {
		s.player = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *State) {
		s.log = l
	}
}

// New 创建选择状态
func New(backend nvr.Backend, opts ...Option) *State {
	s := State{
		backend:     backend,
		correlator:  correlate.New(correlate.DefaultPolicy()),
		eventLimit:  nvr.DefaultEventLimit,
		log:         slog.Default(),
		current:     -1,
		activeEvent: -1,
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.index = recording.NewIndex(nil, s.correlator.Policy().IndexOptions()...)
	return &s
}

// LoadCamera 切换通道并并发拉取录像与事件
// 调用时立即清空当前录像、选中事件与待执行跳转；拉取完成后若期间再次切换，结果被丢弃
// 进行中的请求不会被取消，只是在返回时通过代数判断是否生效
func (s *State) LoadCamera(ctx context.Context, cameraID string) (RefreshOutcome, error) {
	if cameraID == "" {
		return RefreshOutcome{}, ErrEmptyCameraID
	}
	start := time.Now()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.cameraID = cameraID
	s.loading = true
	s.index = recording.NewIndex(nil, s.correlator.Policy().IndexOptions()...)
	s.events = nil
	s.recordingsErr, s.eventsErr = nil, nil
	s.resetIntentLocked()
	s.mu.Unlock()

	var (
		recs    []recording.Recording
		evs     []event.Event
		recsErr error
		evsErr  error
	)
	// 各自记录错误，不让一个列表的失败取消另一个
	var g errgroup.Group
	g.Go(func() error {
		out, err := s.backend.ListRecordings(ctx, cameraID)
		if err != nil {
			recsErr = fmt.Errorf("list recordings: %w", err)
			return nil
		}
		recs = out
		return nil
	})
	g.Go(func() error {
		out, err := s.backend.ListEvents(ctx, cameraID, s.eventLimit)
		if err != nil {
			evsErr = fmt.Errorf("list events: %w", err)
			return nil
		}
		evs = out
		return nil
	})
	_ = g.Wait()

	outcome := RefreshOutcome{
		CameraID:      cameraID,
		Generation:    gen,
		RecordingsErr: recsErr,
		EventsErr:     evsErr,
		Elapsed:       time.Since(start),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		outcome.Superseded = true
		s.log.InfoContext(ctx, "discard superseded camera load", "camera_id", cameraID, "generation", gen, "current", s.generation)
		return outcome, nil
	}

	s.index = recording.NewIndex(recs, s.correlator.Policy().IndexOptions()...)
	s.events = append([]event.Event(nil), evs...)
	s.recordingsErr, s.eventsErr = recsErr, evsErr
	s.loading = false

	outcome.Recordings = s.index.Len()
	outcome.Events = len(s.events)
	if recsErr != nil || evsErr != nil {
		s.log.WarnContext(ctx, "camera load partially failed", "camera_id", cameraID, "recordings_err", recsErr, "events_err", evsErr)
	}
	return outcome, nil
}

func (s *State) resetIntentLocked() {
	s.current = -1
	s.activeEvent = -1
	s.pendingSeek = nil
	s.cycle = 0
	if s.player != nil {
		s.player.Reset()
	}
}

// Generation 当前代数
func (s *State) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// ResolveEvent 选中事件并关联录像
// 事件总会被标记为选中；匹配成功时同时设置当前录像和待执行跳转，NotFound 不改变播放意图
func (s *State) ResolveEvent(eventIndex int) (Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cameraID == "" {
		return Resolution{}, ErrNoCamera
	}
	if eventIndex < 0 || eventIndex >= len(s.events) {
		return Resolution{}, fmt.Errorf("event %d: %w", eventIndex, ErrIndexOutOfRange)
	}
	ev := s.events[eventIndex]
	if !ev.Seekable() {
		return Resolution{}, fmt.Errorf("event %d: %w", eventIndex, ErrEventNotSeekable)
	}

	s.activeEvent = eventIndex
	res := Resolution{
		Generation: s.generation,
		EventIndex: eventIndex,
		Event:      ev,
		Result:     s.correlator.Resolve(s.index, *ev.Timestamp),
	}
	if !res.Result.Found {
		return res, nil
	}
	res.Recording, _ = s.index.At(res.Result.RecordingIndex)
	s.current = res.Result.RecordingIndex
	offset := res.Result.OffsetSeconds()
	s.pendingSeek = &offset
	if s.player != nil {
		res.Cycle = s.player.Select(s.current, res.Recording.URL, &offset)
		s.cycle = res.Cycle
	}
	return res, nil
}

// SelectRecording 直接播放某段录像，丢弃待执行的跳转，返回播放器加载周期
func (s *State) SelectRecording(index int) (recording.Recording, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cameraID == "" {
		return recording.Recording{}, 0, ErrNoCamera
	}
	r, ok := s.index.At(index)
	if !ok {
		return recording.Recording{}, 0, fmt.Errorf("recording %d: %w", index, ErrIndexOutOfRange)
	}
	s.current = index
	s.pendingSeek = nil
	var cycle uint64
	if s.player != nil {
		cycle = s.player.Select(index, r.URL, nil)
		s.cycle = cycle
	}
	return r, cycle, nil
}

// SeekConsumed 播放器已在 cycle 周期内应用跳转
// 周期不一致说明之后又选择了录像或切换了通道，此时保留新的待执行跳转
func (s *State) SeekConsumed(cycle uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cycle == 0 || cycle != s.cycle {
		return ErrStaleGeneration
	}
	s.pendingSeek = nil
	return nil
}

// Snapshot 渲染所需的只读副本
type Snapshot struct {
	Generation            uint64
	CameraID              string
	Loading               bool
	Index                 recording.Index
	Events                []event.Event
	RecordingsErr         error
	EventsErr             error
	CurrentRecordingIndex int
	ActiveEventIndex      int
	PendingSeek           *float64
}

// HasEvent 每段录像是否有事件，用于时间轴高亮
func (s Snapshot) HasEvent() []bool {
	return s.Index.Annotate(recording.NewAnnotator(event.Stamps(s.Events)))
}

// Timeline 时间轴数据
func (s Snapshot) Timeline() []recording.TimeRange {
	return s.Index.Timeline(recording.NewAnnotator(event.Stamps(s.Events)))
}

// Snapshot 当前状态副本
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending *float64
	if s.pendingSeek != nil {
		v := *s.pendingSeek
		pending = &v
	}
	return Snapshot{
		Generation:            s.generation,
		CameraID:              s.cameraID,
		Loading:               s.loading,
		Index:                 s.index,
		Events:                append([]event.Event(nil), s.events...),
		RecordingsErr:         s.recordingsErr,
		EventsErr:             s.eventsErr,
		CurrentRecordingIndex: s.current,
		ActiveEventIndex:      s.activeEvent,
		PendingSeek:           pending,
	}
}
