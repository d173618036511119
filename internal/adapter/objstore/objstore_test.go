package objstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

func newTestLister(t *testing.T) *Lister {
	t.Helper()
	l, err := NewLister(Config{
		Endpoint:  "127.0.0.1:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "recordings",
		Location:  time.UTC,
	})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestFromObject(t *testing.T) {
	l := newTestLister(t)
	tests := []struct {
		name   string
		key    string
		ok     bool
		hasTS  bool
		wantTS time.Time
	}{
		{name: "dated", key: "front/2024-01-15T14-30-22.mp4", ok: true, hasTS: true, wantTS: time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)},
		{name: "compact", key: "front/day/20240115_143022.MKV", ok: true, hasTS: true, wantTS: time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)},
		{name: "undated", key: "front/clip.mp4", ok: true},
		{name: "directory", key: "front/2024/", ok: false},
		{name: "snapshot", key: "front/2024-01-15T14-30-22.jpg", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := l.fromObject(minio.ObjectInfo{Key: tt.key, Size: 42})
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if rec.SizeBytes != 42 || rec.Source != Source || rec.EndTime != nil {
				t.Fatalf("rec = %+v", rec)
			}
			if (rec.StartTime != nil) != tt.hasTS {
				t.Fatalf("start = %v", rec.StartTime)
			}
			if tt.hasTS && !rec.StartTime.Equal(tt.wantTS) {
				t.Fatalf("start = %v, want %v", rec.StartTime, tt.wantTS)
			}
		})
	}
}

func TestPresign(t *testing.T) {
	l := newTestLister(t)
	u, err := l.presign(context.Background(), "front/2024-01-15T14-30-22.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(u, "http://127.0.0.1:9000/recordings/front/2024-01-15T14-30-22.mp4?") {
		t.Fatalf("url = %q", u)
	}
	if !strings.Contains(u, "X-Amz-Expires=3600") {
		t.Fatalf("expiry missing in %q", u)
	}
}
