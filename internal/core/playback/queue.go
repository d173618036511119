package playback

import (
	"context"
	"sync"
)

// Op 播放器指令类型
type Op string

const (
	OpLoad Op = "load"
	OpSeek Op = "seek"
	OpPlay Op = "play"
	OpStop Op = "stop"
)

// Command 发给远端播放器的指令
type Command struct {
	Cycle   uint64  `json:"cycle"`
	Op      Op      `json:"op"`
	Src     string  `json:"src,omitempty"`
	Seconds float64 `json:"seconds,omitempty"`
}

// CommandQueue 缓存指令，由浏览器端轮询取走
// 新的 load 或 stop 会丢弃旧周期中尚未取走的指令
type CommandQueue struct {
	mu     sync.Mutex
	cmds   []Command
	notify chan struct{}
}

var _ Media = (*CommandQueue)(nil)

func NewCommandQueue() *CommandQueue {
	return &CommandQueue{notify: make(chan struct{}, 1)}
}

func (q *CommandQueue) Load(cycle uint64, src string) {
	q.mu.Lock()
	q.cmds = append(q.cmds[:0], Command{Cycle: cycle, Op: OpLoad, Src: src})
	q.mu.Unlock()
	q.signal()
}

func (q *CommandQueue) Seek(cycle uint64, seconds float64) {
	q.push(Command{Cycle: cycle, Op: OpSeek, Seconds: seconds})
}

// Stop 清空未取走的指令，只保留一条 stop
func (q *CommandQueue) Stop(cycle uint64) {
	q.mu.Lock()
	q.cmds = append(q.cmds[:0], Command{Cycle: cycle, Op: OpStop})
	q.mu.Unlock()
	q.signal()
}

// Play 只负责下发，拒绝播放由远端通过 PlayRejected 上报
func (q *CommandQueue) Play(cycle uint64) error {
	q.push(Command{Cycle: cycle, Op: OpPlay})
	return nil
}

func (q *CommandQueue) push(cmd Command) {
	q.mu.Lock()
	q.cmds = append(q.cmds, cmd)
	q.mu.Unlock()
	q.signal()
}

func (q *CommandQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Drain 取走全部待执行指令
func (q *CommandQueue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.cmds
	q.cmds = nil
	return out
}

// Wait 队列为空时阻塞，直到有新指令或 ctx 结束，然后取走全部指令
func (q *CommandQueue) Wait(ctx context.Context) []Command {
	for {
		if cmds := q.Drain(); len(cmds) > 0 {
			return cmds
		}
		select {
		case <-ctx.Done():
			return nil
		case <-q.notify:
		}
	}
}
