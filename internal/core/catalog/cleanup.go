package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ixugo/goddd/pkg/conc"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/web"
	"github.com/shirou/gopsutil/v4/disk"
	"gorm.io/gorm"
)

// CleanupInterval 清理间隔
const CleanupInterval = 24 * time.Hour

// CleanupReport 一次清理的结果
type CleanupReport struct {
	RecordingsDeleted int
	EventsDeleted     int
	FilesDeleted      int
	FailedFiles       int
	FreedBytes        int64
}

// StartCleanupWorker 启动定时清理协程
// 程序启动时执行一次清理，随后每天执行一次，直到 ctx 结束
func (c Core) StartCleanupWorker(ctx context.Context) {
	if c.conf.RetainDays <= 0 && c.conf.DiskUsageThreshold <= 0 {
		slog.InfoContext(ctx, "catalog cleanup disabled")
		return
	}

	slog.InfoContext(ctx, "catalog cleanup worker started",
		"retain_days", c.conf.RetainDays,
		"disk_threshold", c.conf.DiskUsageThreshold,
		"storage_dir", c.conf.StorageDir,
	)
	c.RunCleanup(ctx, time.Now())
	go conc.Timer(ctx, CleanupInterval, CleanupInterval, func() {
		c.RunCleanup(ctx, time.Now())
	})
}

// RunCleanup 先清理过期的事件与录像，再处理磁盘空间
func (c Core) RunCleanup(ctx context.Context, now time.Time) CleanupReport {
	var report CleanupReport
	if c.conf.RetainDays > 0 {
		cutoff := now.AddDate(0, 0, -c.conf.RetainDays)
		report.EventsDeleted = c.cleanupExpiredEvents(ctx, cutoff)
		c.cleanupExpiredRecordings(ctx, cutoff, &report)
	}
	c.cleanupByDiskUsage(ctx, &report)

	if report.RecordingsDeleted > 0 || report.EventsDeleted > 0 || report.FailedFiles > 0 {
		slog.InfoContext(ctx, "catalog cleanup completed",
			"retain_days", c.conf.RetainDays,
			"recordings_deleted", report.RecordingsDeleted,
			"events_deleted", report.EventsDeleted,
			"files_deleted", report.FilesDeleted,
			"failed_files", report.FailedFiles,
			"freed_bytes", report.FreedBytes,
		)
	}
	return report
}

// cleanupExpiredEvents 分批删除过期事件及其抓图
// 事件时间未知（started_at 为 0）时按入库时间判断
func (c Core) cleanupExpiredEvents(ctx context.Context, cutoff time.Time) int {
	const batchSize = 100
	var total int
	for {
		var events []*Event
		pager := web.PagerFilter{Page: 1, Size: batchSize}
		_, err := c.store.Event().Find(ctx, &events, &pager,
			orm.Where("(started_at > 0 AND started_at < ?) OR (started_at <= 0 AND created_at < ?)",
				cutoff.UnixMilli(), orm.Time{Time: cutoff}),
		)
		if err != nil {
			slog.ErrorContext(ctx, "failed to query expired events", "err", err)
			break
		}
		if len(events) == 0 {
			break
		}

		ids := make([]int64, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
			if e.ImagePath != "" {
				if err := os.Remove(c.GetFullPath(e.ImagePath)); err != nil && !os.IsNotExist(err) {
					slog.WarnContext(ctx, "failed to delete event image", "path", e.ImagePath, "err", err)
				}
			}
		}

		err = c.store.Event().Session(ctx, func(tx *gorm.DB) error {
			return tx.Where("id IN ?", ids).Delete(&Event{}).Error
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to batch delete events", "count", len(ids), "err", err)
			break
		}
		total += len(ids)
	}
	return total
}

// cleanupExpiredRecordings 清理开始时间早于 cutoff 的录像
func (c Core) cleanupExpiredRecordings(ctx context.Context, cutoff time.Time, report *CleanupReport) {
	const batchSize = 100
	for {
		var recordings []*Recording
		pager := web.PagerFilter{Page: 1, Size: batchSize}
		_, err := c.store.Recording().Find(ctx, &recordings, &pager,
			orm.Where("started_at < ?", orm.Time{Time: cutoff}),
		)
		if err != nil || len(recordings) == 0 {
			break
		}
		if !c.deleteRecordings(ctx, recordings, report) {
			break
		}
	}
	c.cleanupEmptyDirs()
}

// cleanupByDiskUsage 磁盘使用率超过阈值时删除最旧的录像，直到低于阈值
func (c Core) cleanupByDiskUsage(ctx context.Context, report *CleanupReport) {
	if c.conf.DiskUsageThreshold <= 0 || c.conf.DiskUsageThreshold >= 100 || c.conf.StorageDir == "" {
		return
	}
	dir := c.StorageRoot()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return
	}

	const batchSize = 50
	for {
		usage, err := disk.UsageWithContext(ctx, dir)
		if err != nil {
			slog.WarnContext(ctx, "failed to get disk usage", "err", err)
			return
		}
		if usage.UsedPercent < c.conf.DiskUsageThreshold {
			break
		}

		var oldest []*Recording
		pager := web.PagerFilter{Page: 1, Size: batchSize}
		_, err = c.store.Recording().Find(ctx, &oldest, &pager,
			orm.Where("path <> ?", ""),
			orm.OrderBy("started_at ASC"),
		)
		if err != nil || len(oldest) == 0 {
			break
		}
		slog.InfoContext(ctx, "disk usage over threshold", "usage", usage.UsedPercent, "threshold", c.conf.DiskUsageThreshold)
		if !c.deleteRecordings(ctx, oldest, report) {
			break
		}
	}
	c.cleanupEmptyDirs()
}

// deleteRecordings 删除本地文件与数据库记录，返回数据库删除是否成功
func (c Core) deleteRecordings(ctx context.Context, recordings []*Recording, report *CleanupReport) bool {
	ids := make([]int64, 0, len(recordings))
	for _, rec := range recordings {
		ids = append(ids, rec.ID)
		if rec.Path == "" {
			continue
		}
		if err := os.Remove(c.GetFullPath(rec.Path)); err != nil {
			if !os.IsNotExist(err) {
				report.FailedFiles++
			}
			continue
		}
		report.FilesDeleted++
		report.FreedBytes += rec.Size
	}

	err := c.store.Recording().Session(ctx, func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Delete(&Recording{}).Error
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to batch delete recordings", "count", len(ids), "err", err)
		return false
	}
	report.RecordingsDeleted += len(ids)
	return true
}

func (c Core) cleanupEmptyDirs() {
	if c.conf.StorageDir == "" {
		return
	}
	removeEmptyDirs(c.StorageRoot())
}

// removeEmptyDirs 递归删除空目录
func removeEmptyDirs(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			subDir := filepath.Join(dir, entry.Name())
			removeEmptyDirs(subDir)

			subEntries, err := os.ReadDir(subDir)
			if err == nil && len(subEntries) == 0 {
				if err := os.Remove(subDir); err == nil {
					slog.Debug("removed empty directory", "path", subDir)
				}
			}
		}
	}
}
