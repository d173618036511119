package recording

import "time"

// Recording 一段连续存储的录像，由 NVR 后端提供
// 同一通道下 Filename 唯一；StartTime/EndTime 可能缺失
type Recording struct {
	Filename  string     `json:"filename"`             // 文件名
	URL       string     `json:"url"`                  // 可播放地址
	StartTime *time.Time `json:"start_time,omitempty"` // 开始时间，缺失时无法参与时间关联
	EndTime   *time.Time `json:"end_time,omitempty"`   // 结束时间，缺失表示时长未知
	SizeBytes int64      `json:"size_bytes"`           // 文件大小（字节）
	Source    string     `json:"source"`               // 来源标识，如 NVR 名称
}

// Sanitize 保证 EndTime 不早于 StartTime，不满足时丢弃 EndTime，视为时长未知
func (r Recording) Sanitize() Recording {
	if r.StartTime != nil && r.EndTime != nil && r.EndTime.Before(*r.StartTime) {
		r.EndTime = nil
	}
	if r.SizeBytes < 0 {
		r.SizeBytes = 0
	}
	return r
}

// Duration 已知起止时间时返回录像时长
func (r Recording) Duration() (time.Duration, bool) {
	if r.StartTime == nil || r.EndTime == nil {
		return 0, false
	}
	return r.EndTime.Sub(*r.StartTime), true
}

// TimeRange 时间轴数据项，表示一段录像的时间范围
type TimeRange struct {
	Index    int   `json:"index"`    // 在当前录像列表中的下标
	StartMs  int64 `json:"start_ms"` // 开始时间（毫秒时间戳）
	EndMs    int64 `json:"end_ms"`   // 有效结束时间（毫秒时间戳）
	Assumed  bool  `json:"assumed"`  // 结束时间是否为估算值
	HasEvent bool  `json:"has_event"`
}
