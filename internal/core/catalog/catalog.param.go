package catalog

import (
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/web"
)

type FindCameraInput struct {
	web.PagerFilter
	Key string `form:"key"` // 名称或 ID 模糊查询
}

type AddCameraInput struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name"`
}

type EditCameraInput struct {
	Name string `json:"name"`
}

type FindRecordingInput struct {
	web.PagerFilter
	web.DateFilter
	CID string `form:"cid"` // 通道 ID
}

type AddRecordingInput struct {
	CID       string    `json:"cid" binding:"required"`      // 通道 ID
	Filename  string    `json:"filename" binding:"required"` // 文件名
	Path      string    `json:"path"`                        // 本地文件相对路径
	URL       string    `json:"url"`                         // 外部播放地址
	StartedAt orm.Time  `json:"started_at"`                  // 录像开始时间，为空时从文件名解析
	EndedAt   *orm.Time `json:"ended_at"`                    // 录像结束时间
	Duration  float64   `json:"duration"`                    // 持续时长（秒）
	Size      int64     `json:"size"`                        // 文件大小（字节）
	Source    string    `json:"source"`
}

type FindEventInput struct {
	web.PagerFilter
	web.DateFilter
	CID  string `form:"cid"`
	Type string `form:"type"`
}

type AddEventInput struct {
	CID        string  `json:"cid" binding:"required"`
	Type       string  `json:"type"`
	StartedAt  int64   `json:"started_at"` // 毫秒时间戳
	Time       string  `json:"time"`       // started_at 为空时解析该字符串
	Confidence float64 `json:"confidence"` // 0-1 或 0-100
	Reason     string  `json:"reason"`
	ImagePath  string  `json:"image_path"`
}

// MonthlyStatsInput 月度统计查询参数
type MonthlyStatsInput struct {
	CID   string `form:"cid"`   // 通道 ID（可选，不传则查所有通道）
	Year  int    `form:"year"`  // 年份，如 2024
	Month int    `form:"month"` // 月份，1-12
}

// MonthlyStatsOutput 月度统计输出
type MonthlyStatsOutput struct {
	Year     int    `json:"year"`      // 年份
	Month    int    `json:"month"`     // 月份
	Days     int    `json:"days"`      // 该月总天数
	HasVideo string `json:"has_video"` // 位图字符串，如 "10101010..." 第 1 天有录像则第 1 位为 1
}
