package catalog

import (
	"github.com/ixugo/goddd/pkg/orm"
)

// Camera 通道
type Camera struct {
	ID        string   `gorm:"primaryKey" json:"id"`
	Name      string   `gorm:"column:name;notNull;default:''" json:"name"`
	CreatedAt orm.Time `gorm:"column:created_at;notNull;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt orm.Time `gorm:"column:updated_at;notNull;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (*Camera) TableName() string {
	return "cameras"
}

// Recording 一段录像文件
// 本地文件通过 Path 描述，外部存储直接给出 URL
type Recording struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	CID        string    `gorm:"column:cid;index;notNull;default:''" json:"cid"`              // 通道 ID
	Filename   string    `gorm:"column:filename;notNull;default:''" json:"filename"`          // 文件名，同一通道内唯一
	Path       string    `gorm:"column:path;notNull;default:''" json:"path"`                  // 相对存储目录的路径
	URL        string    `gorm:"column:url;notNull;default:''" json:"url"`                    // 可直接播放的地址
	StartedAt  orm.Time  `gorm:"column:started_at;index;notNull" json:"started_at"`           // 录像开始时间
	EndedAt    *orm.Time `gorm:"column:ended_at" json:"ended_at"`                             // 录像结束时间，未知时为空
	Duration   float64   `gorm:"column:duration;notNull;default:0" json:"duration"`           // 时长（秒）
	Size       int64     `gorm:"column:size;notNull;default:0" json:"size"`                   // 文件大小（字节）
	Source     string    `gorm:"column:source;notNull;default:''" json:"source"`              // 来源，如 NVR 名称
	DeleteFlag bool      `gorm:"column:delete_flag;notNull;default:false" json:"delete_flag"` // 即将被清理
	CreatedAt  orm.Time  `gorm:"column:created_at;notNull;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (*Recording) TableName() string {
	return "recordings"
}

// Event 检测事件
type Event struct {
	ID         int64    `gorm:"primaryKey" json:"id"`
	CID        string   `gorm:"column:cid;index;notNull;default:''" json:"cid"`
	Type       string   `gorm:"column:type;notNull;default:''" json:"type"`
	StartedAt  int64    `gorm:"column:started_at;index;notNull;default:0" json:"started_at"` // 事件时间（毫秒时间戳），0 表示未知
	RawTime    string   `gorm:"column:raw_time;notNull;default:''" json:"raw_time"`          // 上报的原始时间，解析失败时用于展示
	Confidence int      `gorm:"column:confidence;notNull;default:0" json:"confidence"`       // 0-100
	Reason     string   `gorm:"column:reason;notNull;default:''" json:"reason"`
	ImagePath  string   `gorm:"column:image_path;notNull;default:''" json:"image_path"` // 抓图，相对存储目录
	CreatedAt  orm.Time `gorm:"column:created_at;notNull;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (*Event) TableName() string {
	return "events"
}
