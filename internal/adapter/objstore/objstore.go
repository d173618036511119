// Package objstore 从 S3 兼容存储列出录像，对象路径为 <bucket>/<cameraID>/<file>
package objstore

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/gowvp/owlview/internal/core/nvr"
	"github.com/gowvp/owlview/internal/core/recording"
	"github.com/gowvp/owlview/internal/core/timex"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var _ nvr.RecordingLister = (*Lister)(nil)

// Source 录像来源标识
const Source = "s3"

// DefaultPresignExpiry 播放地址默认有效期
const DefaultPresignExpiry = time.Hour

var videoExts = []string{".mp4", ".m4v", ".mkv", ".mov", ".ts", ".webm"}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Region 指定后签名不再请求桶所在区域
	Region        string
	PresignExpiry time.Duration
	Location      *time.Location
}

type Lister struct {
	cfg    Config
	client *minio.Client
}

func NewLister(cfg Config) (*Lister, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = DefaultPresignExpiry
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &Lister{cfg: cfg, client: client}, nil
}

// ListRecordings 列出通道目录下的视频文件，开始时间取自文件名，最新的在前
func (l *Lister) ListRecordings(ctx context.Context, cameraID string) ([]recording.Recording, error) {
	objectCh := l.client.ListObjects(ctx, l.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    strings.Trim(cameraID, "/") + "/",
		Recursive: true,
	})

	out := make([]recording.Recording, 0, 64)
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("%w: list objects: %w", nvr.ErrFetch, object.Err)
		}
		rec, ok := l.fromObject(object)
		if !ok {
			continue
		}
		u, err := l.presign(ctx, object.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: presign: %w", nvr.ErrFetch, err)
		}
		rec.URL = u
		out = append(out, rec)
	}

	slices.SortStableFunc(out, func(a, b recording.Recording) int {
		return cmp.Compare(startUnix(b), startUnix(a))
	})
	return out, nil
}

// fromObject 跳过目录与非视频文件
func (l *Lister) fromObject(obj minio.ObjectInfo) (recording.Recording, bool) {
	if strings.HasSuffix(obj.Key, "/") {
		return recording.Recording{}, false
	}
	name := path.Base(obj.Key)
	if !slices.Contains(videoExts, strings.ToLower(path.Ext(name))) {
		return recording.Recording{}, false
	}
	rec := recording.Recording{
		Filename:  name,
		SizeBytes: obj.Size,
		Source:    Source,
	}
	if t, ok := timex.ParseFilename(name, l.cfg.Location); ok {
		rec.StartTime = &t
	}
	return rec.Sanitize(), true
}

func (l *Lister) presign(ctx context.Context, key string) (string, error) {
	u, err := l.client.PresignedGetObject(ctx, l.cfg.Bucket, key, l.cfg.PresignExpiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func startUnix(r recording.Recording) int64 {
	if r.StartTime == nil {
		return 0
	}
	return r.StartTime.UnixMilli()
}
