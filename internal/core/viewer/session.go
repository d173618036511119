// Package viewer 操作员查看会话，组合选择状态、事件关联与播放协调
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gowvp/owlview/internal/core/correlate"
	"github.com/gowvp/owlview/internal/core/nvr"
	"github.com/gowvp/owlview/internal/core/playback"
	"github.com/gowvp/owlview/internal/core/recording"
	"github.com/gowvp/owlview/internal/core/selection"
	"github.com/gowvp/owlview/internal/core/timex"
)

// Connectivity 后端连接状态
type Connectivity interface {
	Connected() bool
	CheckedAt() time.Time
}

// Session 一个播放器窗口
type Session struct {
	ID        string
	CreatedAt time.Time

	state  *selection.State
	player *playback.Coordinator
	queue  *playback.CommandQueue
	health Connectivity
	log    *slog.Logger

	lastSeen atomic.Int64
}

func newSession(id string, backend nvr.Backend, health Connectivity, policy correlate.Policy, eventLimit int) *Session {
	log := slog.With("hook", "viewer", "session_id", id)
	queue := playback.NewCommandQueue()
	player := playback.NewCoordinator(queue, playback.WithLogger(log))
	s := Session{
		ID:        id,
		CreatedAt: time.Now(),
		queue:     queue,
		player:    player,
		health:    health,
		log:       log,
		state: selection.New(backend,
			selection.WithPolicy(policy),
			selection.WithEventLimit(eventLimit),
			selection.WithPlayer(player),
			selection.WithLogger(log),
		),
	}
	s.touch()
	return &s
}

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen 最近一次操作时间
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// SelectCamera 切换通道，拉取失败的列表在结果中单独标记
func (s *Session) SelectCamera(ctx context.Context, cameraID string) (selection.RefreshOutcome, error) {
	s.touch()
	return s.state.LoadCamera(ctx, cameraID)
}

// SeekOutcome 点击事件的结果
type SeekOutcome struct {
	selection.Resolution
	// Notice 未找到录像时需要提示操作员
	Notice string
}

// SeekToEvent 选中事件，找到录像时加载并在就绪后跳转
func (s *Session) SeekToEvent(eventIndex int) (SeekOutcome, error) {
	s.touch()
	res, err := s.state.ResolveEvent(eventIndex)
	if err != nil {
		return SeekOutcome{}, err
	}
	out := SeekOutcome{Resolution: res}
	if !res.Result.Found {
		out.Notice = fmt.Sprintf("no recording found for %s event at %s", res.Event.Type, timex.FormatPtr(res.Event.Timestamp))
		s.log.Info("no matching recording", "event_index", eventIndex, "event_time", res.Event.Timestamp)
	}
	return out, nil
}

// PlayRecording 从头播放指定录像
func (s *Session) PlayRecording(index int) (recording.Recording, uint64, error) {
	s.touch()
	return s.state.SelectRecording(index)
}

// MetadataReady 播放器上报时长，返回实际跳转位置
func (s *Session) MetadataReady(cycle uint64, duration float64) (float64, bool) {
	s.touch()
	target, seeked := s.player.MetadataReady(cycle, duration)
	if seeked {
		_ = s.state.SeekConsumed(cycle)
	}
	return target, seeked
}

// MediaError 播放器加载失败
func (s *Session) MediaError(cycle uint64, reason string) bool {
	s.touch()
	return s.player.MediaError(cycle, reason)
}

// PlayRejected 浏览器拒绝自动播放
func (s *Session) PlayRejected(cycle uint64, reason string) bool {
	s.touch()
	return s.player.PlayRejected(cycle, reason)
}

// DrainCommands 取走待下发的播放指令
func (s *Session) DrainCommands() []playback.Command {
	s.touch()
	return s.queue.Drain()
}

// WaitCommands 长轮询播放指令
func (s *Session) WaitCommands(ctx context.Context) []playback.Command {
	s.touch()
	return s.queue.Wait(ctx)
}
