// Package shinobi Shinobi NVR 的 REST 客户端，实现 nvr.Backend
package shinobi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gowvp/owlview/internal/core/event"
	"github.com/gowvp/owlview/internal/core/nvr"
	"github.com/gowvp/owlview/internal/core/recording"
	"github.com/gowvp/owlview/internal/core/timex"
	"github.com/samber/lo"
)

var _ nvr.Backend = (*Client)(nil)

// Source 录像来源标识
const Source = "shinobi"

type Config struct {
	BaseURL  string
	APIKey   string
	GroupKey string
	Timeout  time.Duration
	// Location 不带时区的时间按此解析，为空使用本地时区
	Location *time.Location
}

type Client struct {
	cfg Config
	cli *http.Client
	log *slog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg: cfg,
		cli: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        30,
				MaxIdleConnsPerHost: 30,
				MaxConnsPerHost:     100,
			},
		},
		log: slog.With("hook", "shinobi"),
	}
}

func (c *Client) monitorsPath() string {
	return "/" + url.PathEscape(c.cfg.APIKey) + "/monitor/" + url.PathEscape(c.cfg.GroupKey)
}

func (c *Client) videosPath(mid string) string {
	return "/" + url.PathEscape(c.cfg.APIKey) + "/videos/" + url.PathEscape(c.cfg.GroupKey) + "/" + url.PathEscape(mid)
}

func (c *Client) eventsPath(mid string) string {
	return "/" + url.PathEscape(c.cfg.APIKey) + "/events/" + url.PathEscape(c.cfg.GroupKey) + "/" + url.PathEscape(mid)
}

// RecordingURL 录像文件的直接播放地址
func (c *Client) RecordingURL(mid, filename string) string {
	return c.cfg.BaseURL + c.videosPath(mid) + "/" + url.PathEscape(filename)
}

// get 发送 GET 请求，非 2xx 视为失败
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.cli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) ListCameras(ctx context.Context) ([]nvr.Camera, error) {
	var raw json.RawMessage
	if err := c.get(ctx, c.monitorsPath(), &raw); err != nil {
		return nil, fmt.Errorf("%w: monitors: %w", nvr.ErrFetch, err)
	}
	monitors, err := unwrapList[monitor](raw, "monitors")
	if err != nil {
		return nil, fmt.Errorf("%w: monitors: %w", nvr.ErrFetch, err)
	}
	cams := make([]nvr.Camera, 0, len(monitors))
	for _, m := range monitors {
		if m.Mid == "" {
			continue
		}
		cams = append(cams, nvr.Camera{ID: m.Mid, Name: lo.CoalesceOrEmpty(m.Name, m.Mid)})
	}
	return cams, nil
}

func (c *Client) ListRecordings(ctx context.Context, cameraID string) ([]recording.Recording, error) {
	var raw json.RawMessage
	if err := c.get(ctx, c.videosPath(cameraID), &raw); err != nil {
		return nil, fmt.Errorf("%w: videos: %w", nvr.ErrFetch, err)
	}
	items, err := unwrapList[video](raw, "videos")
	if err != nil {
		return nil, fmt.Errorf("%w: videos: %w", nvr.ErrFetch, err)
	}
	out := make([]recording.Recording, 0, len(items))
	for _, v := range items {
		if v.Filename == "" {
			continue
		}
		out = append(out, c.toRecording(cameraID, v))
	}
	return out, nil
}

func (c *Client) toRecording(mid string, v video) recording.Recording {
	r := recording.Recording{
		Filename:  v.Filename,
		URL:       c.RecordingURL(mid, v.Filename),
		SizeBytes: v.Size.Int64(),
		Source:    Source,
	}
	if t := timex.ParsePtr(string(v.Time), c.cfg.Location); t != nil {
		r.StartTime = t
	} else if t, ok := timex.ParseFilename(v.Filename, c.cfg.Location); ok {
		r.StartTime = &t
	}
	r.EndTime = timex.ParsePtr(string(v.End), c.cfg.Location)
	return r.Sanitize()
}

// ListEvents 返回的事件保留原始时间字符串，解析失败的事件不能用于跳转
func (c *Client) ListEvents(ctx context.Context, cameraID string, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = nvr.DefaultEventLimit
	}
	var raw json.RawMessage
	path := c.eventsPath(cameraID) + "?limit=" + strconv.Itoa(limit)
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("%w: events: %w", nvr.ErrFetch, err)
	}
	items, err := unwrapList[shinobiEvent](raw, "events")
	if err != nil {
		return nil, fmt.Errorf("%w: events: %w", nvr.ErrFetch, err)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return lo.Map(items, func(e shinobiEvent, _ int) event.Event {
		return c.toEvent(e)
	}), nil
}

func (c *Client) toEvent(e shinobiEvent) event.Event {
	out := event.Event{
		Type:       event.ParseType(lo.CoalesceOrEmpty(e.Details.Name, e.Details.Plug)),
		RawTime:    string(e.Time),
		Confidence: event.NormalizeConfidence(e.Details.Confidence.Float64()),
		Reason:     e.Details.Reason,
	}
	t, err := timex.ParseInLocation(string(e.Time), c.cfg.Location)
	if err != nil {
		c.log.Debug("event time malformed", "mid", e.Mid, "time", string(e.Time))
		return out
	}
	out.Timestamp = &t
	return out
}

// HealthCheck 通道列表可以访问即视为在线
func (c *Client) HealthCheck(ctx context.Context) bool {
	return c.get(ctx, c.monitorsPath(), nil) == nil
}
