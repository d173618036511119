package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/gowvp/owlview/internal/core/event"
	"github.com/gowvp/owlview/internal/core/nvr"
	"github.com/gowvp/owlview/internal/core/recording"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/web"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// maxRecordings 单个通道一次返回的录像上限
const maxRecordings = 1000

// Backend 以目录库作为录像后端
type Backend struct {
	core Core
}

var _ nvr.Backend = Backend{}

func NewBackend(core Core) Backend {
	return Backend{core: core}
}

func (b Backend) ListCameras(ctx context.Context) ([]nvr.Camera, error) {
	var items []*Camera
	if _, err := b.core.store.Camera().Find(ctx, &items, &defaultPager{limit: maxRecordings}, orm.OrderBy("id ASC")); err != nil {
		return nil, fmt.Errorf("%w: cameras: %w", nvr.ErrFetch, err)
	}
	return lo.Map(items, func(c *Camera, _ int) nvr.Camera {
		return nvr.Camera{ID: c.ID, Name: c.Name}
	}), nil
}

// ListRecordings 最新的录像在前
func (b Backend) ListRecordings(ctx context.Context, cameraID string) ([]recording.Recording, error) {
	var items []*Recording
	if _, err := b.core.store.Recording().Find(ctx, &items, &defaultPager{limit: maxRecordings},
		orm.Where("cid = ?", cameraID),
		orm.OrderBy("started_at DESC"),
	); err != nil {
		return nil, fmt.Errorf("%w: recordings: %w", nvr.ErrFetch, err)
	}
	return lo.Map(items, func(r *Recording, _ int) recording.Recording {
		return b.core.toRecording(r)
	}), nil
}

func (c Core) toRecording(r *Recording) recording.Recording {
	out := recording.Recording{
		Filename:  r.Filename,
		URL:       c.PlayURL(r),
		SizeBytes: r.Size,
		Source:    r.Source,
	}
	if !r.StartedAt.IsZero() {
		start := r.StartedAt.Time
		out.StartTime = &start
	}
	if r.EndedAt != nil && !r.EndedAt.IsZero() {
		end := r.EndedAt.Time
		out.EndTime = &end
	}
	return out.Sanitize()
}

func (b Backend) ListEvents(ctx context.Context, cameraID string, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = nvr.DefaultEventLimit
	}
	var items []*Event
	pager := web.PagerFilter{Page: 1, Size: limit}
	if _, err := b.core.store.Event().Find(ctx, &items, &pager,
		orm.Where("cid = ?", cameraID),
		orm.OrderBy("started_at DESC"),
	); err != nil {
		return nil, fmt.Errorf("%w: events: %w", nvr.ErrFetch, err)
	}
	return lo.Map(items, func(e *Event, _ int) event.Event {
		return toEvent(e)
	}), nil
}

func toEvent(e *Event) event.Event {
	out := event.Event{
		Type:       event.ParseType(e.Type),
		RawTime:    e.RawTime,
		Confidence: e.Confidence,
		Reason:     e.Reason,
	}
	if e.StartedAt > 0 {
		t := time.UnixMilli(e.StartedAt)
		out.Timestamp = &t
	}
	return out
}

// HealthCheck 数据库可用即视为健康
func (b Backend) HealthCheck(ctx context.Context) bool {
	err := b.core.store.Camera().Session(ctx, func(tx *gorm.DB) error {
		return tx.Exec("SELECT 1").Error
	})
	return err == nil
}
