package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/gowvp/owlview/internal/core/event"
	"github.com/gowvp/owlview/internal/core/timex"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// FindCameras 分页查询通道
func (c Core) FindCameras(ctx context.Context, in *FindCameraInput) ([]*Camera, int64, error) {
	query := orm.NewQuery(2).OrderBy("id ASC")
	if in.Key != "" {
		query.Where("id LIKE ? OR name LIKE ?", "%"+in.Key+"%", "%"+in.Key+"%")
	}
	items := make([]*Camera, 0, in.Limit())
	total, err := c.store.Camera().Find(ctx, &items, in, query.Encode()...)
	if err != nil {
		return nil, 0, reason.ErrDB.Withf(`Find in[%+v] err[%s]`, in, err.Error())
	}
	return items, total, nil
}

// AddCamera 新增通道
func (c Core) AddCamera(ctx context.Context, in *AddCameraInput) (*Camera, error) {
	var out Camera
	if err := copier.Copy(&out, in); err != nil {
		slog.ErrorContext(ctx, "Copy", "err", err)
	}
	if out.Name == "" {
		out.Name = out.ID
	}
	out.CreatedAt = orm.Now()
	out.UpdatedAt = orm.Now()
	if err := c.store.Camera().Add(ctx, &out); err != nil {
		return nil, reason.ErrDB.Withf(`Add err[%s]`, err.Error())
	}
	return &out, nil
}

// EditCamera 修改通道名称
func (c Core) EditCamera(ctx context.Context, in *EditCameraInput, id string) (*Camera, error) {
	var out Camera
	if err := c.store.Camera().Edit(ctx, &out, func(b *Camera) {
		if err := copier.Copy(b, in); err != nil {
			slog.ErrorContext(ctx, "Copy", "err", err)
		}
		b.UpdatedAt = orm.Now()
	}, orm.Where("id=?", id)); err != nil {
		if orm.IsErrRecordNotFound(err) {
			return nil, reason.ErrNotFound.Withf(`Edit id[%v] err[%s]`, id, err.Error())
		}
		return nil, reason.ErrDB.Withf(`Edit id[%v] err[%s]`, id, err.Error())
	}
	return &out, nil
}

// FindRecordings 分页查询录像列表，支持通道ID和时间范围筛选
func (c Core) FindRecordings(ctx context.Context, in *FindRecordingInput) ([]*Recording, int64, error) {
	query := orm.NewQuery(3).OrderBy("started_at DESC")

	if in.CID != "" {
		query.Where("cid = ?", in.CID)
	}
	if in.StartMs > 0 && in.EndMs > 0 {
		query.Where("started_at >= ? AND started_at <= ?", in.StartAt(), in.EndAt())
	}

	items := make([]*Recording, 0, in.Limit())
	total, err := c.store.Recording().Find(ctx, &items, in, query.Encode()...)
	if err != nil {
		return nil, 0, reason.ErrDB.Withf(`Find in[%+v] err[%s]`, in, err.Error())
	}
	return items, total, nil
}

// GetRecording Query a single object
func (c Core) GetRecording(ctx context.Context, id int64) (*Recording, error) {
	out := Recording{ID: id}
	if err := c.store.Recording().Get(ctx, &out, orm.Where("id=?", id)); err != nil {
		if orm.IsErrRecordNotFound(err) {
			return nil, reason.ErrNotFound.Withf(`Get id[%v] err[%s]`, id, err.Error())
		}
		return nil, reason.ErrDB.Withf(`Get id[%v] err[%s]`, id, err.Error())
	}
	return &out, nil
}

// AddRecording Insert into database
// 未给出开始时间时从文件名解析，结束时间早于开始时间视为未知
func (c Core) AddRecording(ctx context.Context, in *AddRecordingInput) (*Recording, error) {
	var out Recording
	if err := copier.Copy(&out, in); err != nil {
		slog.ErrorContext(ctx, "Copy", "err", err)
	}
	if out.StartedAt.IsZero() {
		t, ok := timex.ParseFilename(in.Filename, time.Local)
		if !ok {
			return nil, reason.ErrBadRequest.SetMsg("started_at is required when the filename carries no time")
		}
		out.StartedAt = orm.Time{Time: t}
	}
	if out.EndedAt != nil && out.EndedAt.Before(out.StartedAt.Time) {
		out.EndedAt = nil
	}
	if out.EndedAt != nil && out.Duration <= 0 {
		out.Duration = out.EndedAt.Sub(out.StartedAt.Time).Seconds()
	}
	out.Size = max(out.Size, 0)
	out.CreatedAt = orm.Now()

	if err := c.store.Recording().Add(ctx, &out); err != nil {
		return nil, reason.ErrDB.Withf(`Add err[%s]`, err.Error())
	}
	return &out, nil
}

// DelRecording Delete object
func (c Core) DelRecording(ctx context.Context, id int64) (*Recording, error) {
	var out Recording
	if err := c.store.Recording().Del(ctx, &out, orm.Where("id=?", id)); err != nil {
		return nil, reason.ErrDB.Withf(`Del id[%v] err[%s]`, id, err.Error())
	}
	return &out, nil
}

// cidCount 用于接收 GROUP BY 查询结果
type cidCount struct {
	CID   string `gorm:"column:cid"`
	Count int64  `gorm:"column:cnt"`
}

// HasRecordings 批量检查通道是否有录像
// 使用 WHERE IN + GROUP BY 一次性查询所有通道是否有录像
func (c Core) HasRecordings(ctx context.Context, cids []string) (map[string]bool, error) {
	result := make(map[string]bool, len(cids))
	if len(cids) == 0 {
		return result, nil
	}

	var counts []cidCount
	err := c.store.Recording().Session(ctx, func(db *gorm.DB) error {
		return db.Model(&Recording{}).
			Select("cid, COUNT(*) as cnt").
			Where("cid IN ?", cids).
			Group("cid").
			Find(&counts).Error
	})
	if err != nil {
		return result, reason.ErrDB.Withf(`HasRecordings err[%s]`, err.Error())
	}
	for _, c := range counts {
		result[c.CID] = c.Count > 0
	}
	return result, nil
}

// GetMonthlyStats 获取月度录像统计
// 返回指定月份每天是否有录像的位图字符串
func (c Core) GetMonthlyStats(ctx context.Context, in *MonthlyStatsInput) (*MonthlyStatsOutput, error) {
	if in.Year <= 0 || in.Month < 1 || in.Month > 12 {
		return nil, reason.ErrBadRequest.Withf("invalid year or month")
	}

	firstDay := time.Date(in.Year, time.Month(in.Month), 1, 0, 0, 0, 0, time.Local)
	lastDay := firstDay.AddDate(0, 1, 0).Add(-time.Nanosecond)
	daysInMonth := lastDay.Day()

	query := orm.NewQuery(2)
	query.Where("started_at >= ? AND started_at <= ?", orm.Time{Time: firstDay}, orm.Time{Time: lastDay})
	if in.CID != "" {
		query.Where("cid = ?", in.CID)
	}

	var recordings []*Recording
	_, err := c.store.Recording().Find(ctx, &recordings, &defaultPager{limit: 10000}, query.Encode()...)
	if err != nil {
		return nil, reason.ErrDB.Withf(`GetMonthlyStats err[%s]`, err.Error())
	}

	bitmap := make([]byte, daysInMonth)
	for i := range bitmap {
		bitmap[i] = '0'
	}
	for _, r := range recordings {
		day := r.StartedAt.Local().Day()
		if day >= 1 && day <= daysInMonth {
			bitmap[day-1] = '1'
		}
	}

	return &MonthlyStatsOutput{
		Year:     in.Year,
		Month:    in.Month,
		Days:     daysInMonth,
		HasVideo: string(bitmap),
	}, nil
}

// FindEvents 分页查询事件，按时间倒序
func (c Core) FindEvents(ctx context.Context, in *FindEventInput) ([]*Event, int64, error) {
	query := orm.NewQuery(4).OrderBy("started_at DESC")
	if in.CID != "" {
		query.Where("cid = ?", in.CID)
	}
	if in.Type != "" {
		query.Where("type = ?", string(event.ParseType(in.Type)))
	}
	if in.StartMs > 0 && in.EndMs > 0 {
		query.Where("started_at >= ? AND started_at <= ?", in.StartMs, in.EndMs)
	}

	items := make([]*Event, 0, in.Limit())
	total, err := c.store.Event().Find(ctx, &items, in, query.Encode()...)
	if err != nil {
		return nil, 0, reason.ErrDB.Withf(`Find in[%+v] err[%s]`, in, err.Error())
	}
	return items, total, nil
}

// AddEvent 新增事件，类型与置信度在入库前归一化
// 时间无法解析时仍然入库，该事件不能用于跳转
func (c Core) AddEvent(ctx context.Context, in *AddEventInput) (*Event, error) {
	out := Event{
		CID:        in.CID,
		Type:       string(event.ParseType(in.Type)),
		StartedAt:  in.StartedAt,
		RawTime:    in.Time,
		Confidence: event.NormalizeConfidence(in.Confidence),
		Reason:     in.Reason,
		ImagePath:  in.ImagePath,
		CreatedAt:  orm.Now(),
	}
	if out.StartedAt <= 0 && in.Time != "" {
		if t, err := timex.Parse(in.Time); err == nil {
			out.StartedAt = t.UnixMilli()
		} else {
			slog.WarnContext(ctx, "event time malformed", "cid", in.CID, "time", in.Time)
		}
	}
	if err := c.store.Event().Add(ctx, &out); err != nil {
		return nil, reason.ErrDB.Withf(`Add err[%s]`, err.Error())
	}
	return &out, nil
}

// defaultPager 内部使用的分页器，避免传入 nil 导致空指针
type defaultPager struct {
	limit int
}

func (p *defaultPager) Offset() int { return 0 }
func (p *defaultPager) Limit() int  { return p.limit }
