// Package correlate 将事件时间映射到录像及录像内的偏移量
package correlate

import (
	"time"

	"github.com/gowvp/owlview/internal/core/recording"
)

// DefaultNearestCutoff 近似匹配允许的最大距离，超过则认为没有可用录像
// 这是策略常量，与录像时长无关
const DefaultNearestCutoff = 30 * time.Minute

// Policy 关联策略，各部署可按需调整
type Policy struct {
	AssumedSegment time.Duration // 录像缺失结束时间时的假定时长
	NearestCutoff  time.Duration // 近似匹配的最大距离
}

// DefaultPolicy 默认策略
func DefaultPolicy() Policy {
	return Policy{
		AssumedSegment: recording.DefaultAssumedSegment,
		NearestCutoff:  DefaultNearestCutoff,
	}
}

func (p Policy) withDefaults() Policy {
	if p.AssumedSegment <= 0 {
		p.AssumedSegment = recording.DefaultAssumedSegment
	}
	if p.NearestCutoff <= 0 {
		p.NearestCutoff = DefaultNearestCutoff
	}
	return p
}

// IndexOptions 按策略构建录像索引的参数
func (p Policy) IndexOptions() []recording.IndexOption {
	return []recording.IndexOption{recording.WithAssumedSegment(p.withDefaults().AssumedSegment)}
}

// Result 关联结果，Found 为 false 表示没有匹配的录像
type Result struct {
	Found          bool          `json:"found"`
	RecordingIndex int           `json:"recording_index"`
	Offset         time.Duration `json:"-"`
	Exact          bool          `json:"exact"`    // 是否精确包含；近似匹配时 Offset 恒为 0
	Distance       time.Duration `json:"-"`        // 近似匹配时与录像开始时间的距离
	Filename       string        `json:"filename"` // 命中录像的文件名，便于界面展示
}

// NotFound 未匹配
var NotFound = Result{RecordingIndex: -1}

// OffsetSeconds 录像内偏移量（秒）
func (r Result) OffsetSeconds() float64 {
	return r.Offset.Seconds()
}

// Correlator 无状态，可以并发使用
type Correlator struct {
	policy Policy
}

// New 创建关联器，零值字段使用默认策略
func New(p Policy) Correlator {
	return Correlator{policy: p.withDefaults()}
}

// Policy 当前生效的策略
func (c Correlator) Policy() Policy { return c.policy }

// Resolve 按以下顺序匹配，先命中者生效：
//  1. 录像包含事件时间，偏移量为事件时间减开始时间
//  2. 开始时间最近且距离不超过 NearestCutoff 的录像，偏移量为 0
//  3. NotFound
func (c Correlator) Resolve(idx recording.Index, t time.Time) Result {
	if r, i, ok := idx.Containing(t); ok {
		return Result{
			Found:          true,
			RecordingIndex: i,
			Offset:         t.Sub(*r.StartTime),
			Exact:          true,
			Filename:       r.Filename,
		}
	}
	if r, i, dist, ok := idx.Nearest(t); ok && dist <= c.policy.NearestCutoff {
		return Result{
			Found:          true,
			RecordingIndex: i,
			Distance:       dist,
			Filename:       r.Filename,
		}
	}
	return NotFound
}
