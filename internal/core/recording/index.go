package recording

import (
	"time"
)

// DefaultAssumedSegment 后端未提供结束时间时假定的录像时长
// 这是经验值而非测量结果，仅用于判断时间点是否落在录像内
const DefaultAssumedSegment = 15 * time.Minute

// Index 当前通道的录像集合，下标即后端返回顺序，在一次拉取结果内保持稳定
// 不假设录像按时间升序排列
type Index struct {
	items   []Recording
	assumed time.Duration
}

type IndexOption func(*Index)

// WithAssumedSegment 覆盖缺失结束时间时的假定时长
func WithAssumedSegment(d time.Duration) IndexOption {
	return func(x *Index) {
		if d > 0 {
			x.assumed = d
		}
	}
}

// NewIndex 创建录像索引，items 会被复制，调用方后续修改不影响索引
func NewIndex(items []Recording, opts ...IndexOption) Index {
	x := Index{
		items:   make([]Recording, len(items)),
		assumed: DefaultAssumedSegment,
	}
	for i, r := range items {
		x.items[i] = r.Sanitize()
	}
	for _, opt := range opts {
		opt(&x)
	}
	return x
}

// Len 录像数量
func (x Index) Len() int { return len(x.items) }

// At 按下标获取录像
func (x Index) At(i int) (Recording, bool) {
	if i < 0 || i >= len(x.items) {
		return Recording{}, false
	}
	return x.items[i], true
}

// Items 返回录像列表的副本
func (x Index) Items() []Recording {
	out := make([]Recording, len(x.items))
	copy(out, x.items)
	return out
}

// AssumedSegment 当前使用的假定时长
func (x Index) AssumedSegment() time.Duration { return x.assumed }

// EffectiveEnd 返回用于包含判断的结束时间
// 有 EndTime 时直接使用，否则为 StartTime + 假定时长；assumed 表示是否为估算值
func (x Index) EffectiveEnd(r Recording) (end time.Time, assumed bool, ok bool) {
	if r.StartTime == nil {
		return time.Time{}, false, false
	}
	if r.EndTime != nil {
		return *r.EndTime, false, true
	}
	return r.StartTime.Add(x.assumed), true, true
}

// Containing 查找包含时间点 t 的录像，start <= t <= effectiveEnd
// 多段录像重叠时返回第一个命中的
func (x Index) Containing(t time.Time) (Recording, int, bool) {
	for i, r := range x.items {
		end, _, ok := x.EffectiveEnd(r)
		if !ok {
			continue
		}
		if !t.Before(*r.StartTime) && !t.After(end) {
			return r, i, true
		}
	}
	return Recording{}, -1, false
}

// Nearest 查找开始时间距离 t 最近的录像，返回绝对距离
// 距离相同时保留先出现的，保证同一输入结果确定
func (x Index) Nearest(t time.Time) (Recording, int, time.Duration, bool) {
	best := -1
	var bestDist time.Duration
	for i, r := range x.items {
		if r.StartTime == nil {
			continue
		}
		d := absDuration(t.Sub(*r.StartTime))
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Recording{}, -1, 0, false
	}
	return x.items[best], best, bestDist, true
}

// Timeline 生成时间轴数据，无开始时间的录像不参与
func (x Index) Timeline(a Annotator) []TimeRange {
	out := make([]TimeRange, 0, len(x.items))
	for i, r := range x.items {
		end, assumed, ok := x.EffectiveEnd(r)
		if !ok {
			continue
		}
		out = append(out, TimeRange{
			Index:    i,
			StartMs:  r.StartTime.UnixMilli(),
			EndMs:    end.UnixMilli(),
			Assumed:  assumed,
			HasEvent: a.HasEvent(r),
		})
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
