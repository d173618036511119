// Package timex 提供容错的时间解析与格式化，后端返回的时间格式并不统一
package timex

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DisplayLayout 界面展示使用的时间格式
const DisplayLayout = time.DateTime

// ErrMalformed 无法识别的时间字符串
var ErrMalformed = errors.New("malformed timestamp")

// 带时区的格式优先，无时区的格式按 loc 解析
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02T15:04:05Z0700",
		"2006-01-02 15:04:05Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.999999999",
		time.DateTime,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
)

// Parse 解析时间字符串，支持 RFC3339、无时区 ISO、空格分隔的日期时间以及秒/毫秒时间戳
// 无时区信息的时间按 time.Local 解释
func Parse(s string) (time.Time, error) {
	return ParseInLocation(s, time.Local)
}

// ParseInLocation 与 Parse 相同，无时区时间按 loc 解释
func ParseInLocation(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMalformed
	}
	if loc == nil {
		loc = time.Local
	}

	if t, ok := parseEpoch(s); ok {
		return t, nil
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformed, s)
}

// parseEpoch 纯数字视为时间戳，13 位及以上按毫秒处理
func parseEpoch(s string) (time.Time, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}, false
	}
	if len(s) >= 13 {
		return time.UnixMilli(n), true
	}
	return time.Unix(n, 0), true
}

// ParsePtr 解析失败返回 nil，用于可选的开始/结束时间
func ParsePtr(s string, loc *time.Location) *time.Time {
	t, err := ParseInLocation(s, loc)
	if err != nil {
		return nil
	}
	return &t
}

var filenamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[T_](\d{2})-(\d{2})-(\d{2})`),
	regexp.MustCompile(`(\d{4})(\d{2})(\d{2})[_T](\d{2})(\d{2})(\d{2})`),
}

// ParseFilename 从录像文件名中提取开始时间
// 例如 2024-01-15T14-30-22.mp4、2024-01-15_14-30-22.mp4、20240115_143022.mp4
func ParseFilename(name string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, re := range filenamePatterns {
		m := re.FindStringSubmatch(name)
		if len(m) != 7 {
			continue
		}
		var parts [6]int
		for i := range parts {
			parts[i], _ = strconv.Atoi(m[i+1])
		}
		if parts[1] < 1 || parts[1] > 12 || parts[2] < 1 || parts[2] > 31 || parts[3] > 23 || parts[4] > 59 || parts[5] > 59 {
			continue
		}
		return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, loc), true
	}
	return time.Time{}, false
}

// Format 界面展示，零值返回空字符串
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DisplayLayout)
}

// FormatPtr 同 Format，nil 返回空字符串
func FormatPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

// FormatRaw 解析并格式化原始字符串，无法解析时原样返回，不向上抛出错误
func FormatRaw(raw string) string {
	t, err := Parse(raw)
	if err != nil {
		return raw
	}
	return Format(t)
}

// TruncateSecond 截断到秒
func TruncateSecond(t time.Time) time.Time {
	return t.Truncate(time.Second)
}
