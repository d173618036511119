// Package nvr 定义录像后端需要提供的能力
package nvr

import (
	"context"
	"errors"

	"github.com/gowvp/owlview/internal/core/event"
	"github.com/gowvp/owlview/internal/core/recording"
)

// DefaultEventLimit 单次拉取事件的最大数量
const DefaultEventLimit = 100

// ErrFetch 后端请求失败，列表拉取错误均包装此错误
var ErrFetch = errors.New("nvr fetch failed")

// Camera 通道
type Camera struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Backend 录像后端，线上为 NVR REST 接口，开发环境为本地目录库
type Backend interface {
	ListCameras(ctx context.Context) ([]Camera, error)
	ListRecordings(ctx context.Context, cameraID string) ([]recording.Recording, error)
	ListEvents(ctx context.Context, cameraID string, limit int) ([]event.Event, error)
	// HealthCheck 不返回错误，任何失败都视为不可用
	HealthCheck(ctx context.Context) bool
}

// RecordingLister 仅覆盖录像列表，例如从对象存储读取
type RecordingLister interface {
	ListRecordings(ctx context.Context, cameraID string) ([]recording.Recording, error)
}

// Overlay 录像列表由 lister 提供，其余能力仍由 base 提供
type Overlay struct {
	Backend
	Recordings RecordingLister
}

// NewOverlay lister 为空时直接返回 base
func NewOverlay(base Backend, lister RecordingLister) Backend {
	if lister == nil {
		return base
	}
	return Overlay{Backend: base, Recordings: lister}
}

func (o Overlay) ListRecordings(ctx context.Context, cameraID string) ([]recording.Recording, error) {
	return o.Recordings.ListRecordings(ctx, cameraID)
}
