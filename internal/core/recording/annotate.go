package recording

import (
	"time"

	"github.com/gowvp/owlview/internal/core/timex"
	"github.com/samber/lo"
)

// Annotator 判断录像时间范围内是否有事件，仅用于界面高亮
type Annotator struct {
	stamps []time.Time
}

// NewAnnotator 事件时间在此处截断到秒
func NewAnnotator(stamps []time.Time) Annotator {
	return Annotator{stamps: lo.Map(stamps, func(t time.Time, _ int) time.Time {
		return timex.TruncateSecond(t)
	})}
}

// HasEvent 要求录像同时具备开始和结束时间
// 与 Index.Containing 不同，这里不使用假定时长，结束时间缺失时一律返回 false
func (a Annotator) HasEvent(r Recording) bool {
	if r.StartTime == nil || r.EndTime == nil {
		return false
	}
	start, end := *r.StartTime, *r.EndTime
	return lo.ContainsBy(a.stamps, func(t time.Time) bool {
		return !t.Before(start) && !t.After(end)
	})
}

// Annotate 按索引顺序返回每段录像是否有事件
func (x Index) Annotate(a Annotator) []bool {
	return lo.Map(x.items, func(r Recording, _ int) bool {
		return a.HasEvent(r)
	})
}
