package event

import (
	"strings"
	"time"
	"unicode"
)

// Type 检测事件类别，未知类别保留原始字符串
type Type string

const (
	TypeMotion    Type = "motion"
	TypePerson    Type = "person"
	TypeVehicle   Type = "vehicle"
	TypeFace      Type = "face"
	TypeIntrusion Type = "intrusion"
)

// Event 一次检测事件
// Timestamp 缺失的事件无法用于跳转，但仍然展示
type Event struct {
	Type       Type       `json:"type"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	RawTime    string     `json:"raw_time,omitempty"` // 后端原始时间字符串，解析失败时用于展示
	Confidence int        `json:"confidence"`         // 0-100，仅展示
	Reason     string     `json:"reason,omitempty"`
}

// Seekable 是否可以用于关联录像
func (e Event) Seekable() bool {
	return e.Timestamp != nil && !e.Timestamp.IsZero()
}

// Known 是否为已定义的类别
func (t Type) Known() bool {
	switch t {
	case TypeMotion, TypePerson, TypeVehicle, TypeFace, TypeIntrusion:
		return true
	}
	return false
}

var aliases = map[string]Type{
	"motion":         TypeMotion,
	"videomotion":    TypeMotion,
	"cellmotion":     TypeMotion,
	"person":         TypePerson,
	"human":          TypePerson,
	"pedestrian":     TypePerson,
	"people":         TypePerson,
	"vehicle":        TypeVehicle,
	"car":            TypeVehicle,
	"truck":          TypeVehicle,
	"face":           TypeFace,
	"facedetection":  TypeFace,
	"intrusion":      TypeIntrusion,
	"regionentrance": TypeIntrusion,
	"linecross":      TypeIntrusion,
	"linecrossing":   TypeIntrusion,
	"crossline":      TypeIntrusion,
	"tripwire":       TypeIntrusion,
}

// ParseType 归一化各厂商的事件名称，如 VideoMotion、human、Car
// 按单词匹配：整体、相邻两个单词、单个单词依次查找，不做子串匹配
// 无法识别的保留原值（去除首尾空白）
func ParseType(s string) Type {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return TypeMotion
	}
	words := splitWords(raw)
	if t, ok := aliases[strings.Join(words, "")]; ok {
		return t
	}
	for i := 0; i+1 < len(words); i++ {
		if t, ok := aliases[words[i]+words[i+1]]; ok {
			return t
		}
	}
	for _, w := range words {
		if t, ok := aliases[w]; ok {
			return t
		}
	}
	return Type(raw)
}

// splitWords 按分隔符与驼峰拆分并转为小写，如 LineCrossDetection -> line cross detection
func splitWords(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
			continue
		case i > 0 && unicode.IsUpper(r) && unicode.IsLower(rs[i-1]):
			flush()
		case i > 0 && unicode.IsUpper(r) && i+1 < len(rs) && unicode.IsUpper(rs[i-1]) && unicode.IsLower(rs[i+1]):
			flush()
		case i > 0 && unicode.IsDigit(r) != unicode.IsDigit(rs[i-1]):
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// NormalizeConfidence 兼容 0-1 与 0-100 两种置信度表示，结果限制在 0-100
func NormalizeConfidence(v float64) int {
	if v > 0 && v <= 1 {
		v *= 100
	}
	return min(max(int(v+0.5), 0), 100)
}

// Stamps 返回可跳转事件的时间列表
func Stamps(events []Event) []time.Time {
	out := make([]time.Time, 0, len(events))
	for _, e := range events {
		if e.Seekable() {
			out = append(out, *e.Timestamp)
		}
	}
	return out
}
