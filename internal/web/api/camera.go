package api

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/owlview/internal/core/correlate"
	"github.com/gowvp/owlview/internal/core/health"
	"github.com/gowvp/owlview/internal/core/nvr"
	"github.com/gowvp/owlview/internal/core/recording"
	"github.com/gowvp/owlview/internal/core/timex"
	"github.com/grafov/m3u8"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/ixugo/goddd/pkg/web"
)

// CameraAPI 直接读取录像后端的通道与录像
type CameraAPI struct {
	backend nvr.Backend
	health  *health.Monitor
	policy  correlate.Policy
}

func NewCameraAPI(backend nvr.Backend, monitor *health.Monitor, policy correlate.Policy) CameraAPI {
	return CameraAPI{backend: backend, health: monitor, policy: policy}
}

func RegisterCamera(g gin.IRouter, api CameraAPI, handler ...gin.HandlerFunc) {
	group := g.Group("/cameras", handler...)
	group.GET("", web.WrapH(api.findCameras))
	// HLS 播放列表，按时间顺序串联通道的全部录像
	group.GET("/:cid/index.m3u8", api.cameraPlaylist)
}

type findCamerasOutput struct {
	Items     []nvr.Camera `json:"items"`
	Connected bool         `json:"connected"`
	CheckedAt string       `json:"checked_at"`
}

func (a CameraAPI) findCameras(c *gin.Context, _ *struct{}) (*findCamerasOutput, error) {
	items, err := a.backend.ListCameras(c.Request.Context())
	if err != nil {
		return nil, reason.ErrServer.SetMsg(err.Error())
	}
	out := findCamerasOutput{Items: items}
	if a.health != nil {
		out.Connected = a.health.Connected()
		out.CheckedAt = timex.Format(a.health.CheckedAt())
	}
	return &out, nil
}

// cameraPlaylist 生成 VOD m3u8
// 路径: /cameras/:cid/index.m3u8?start_ms=xxx&end_ms=xxx，时间范围可选
func (a CameraAPI) cameraPlaylist(c *gin.Context) {
	cid := c.Param("cid")
	recs, err := a.backend.ListRecordings(c.Request.Context(), cid)
	if err != nil {
		web.Fail(c, reason.ErrServer.SetMsg(err.Error()))
		return
	}

	startMs, _ := strconv.ParseInt(c.Query("start_ms"), 10, 64)
	endMs, _ := strconv.ParseInt(c.Query("end_ms"), 10, 64)
	idx := recording.NewIndex(recs, a.policy.IndexOptions()...)
	segments := playlistSegments(idx, startMs, endMs)
	if len(segments) == 0 {
		web.Fail(c, reason.ErrNotFound.SetMsg("no recordings found"))
		return
	}

	body, err := generateM3U8(segments)
	if err != nil {
		web.Fail(c, reason.ErrServer.SetMsg(err.Error()))
		return
	}
	c.Header("Content-Type", "application/vnd.apple.mpegurl")
	c.Header("Cache-Control", "no-cache")
	c.String(http.StatusOK, body)
}

type segment struct {
	URI      string
	Start    time.Time
	Duration float64
}

// playlistSegments 跳过没有开始时间或播放地址的录像，按开始时间升序
func playlistSegments(idx recording.Index, startMs, endMs int64) []segment {
	out := make([]segment, 0, idx.Len())
	for _, r := range idx.Items() {
		if r.StartTime == nil || r.URL == "" {
			continue
		}
		end, _, ok := idx.EffectiveEnd(r)
		if !ok {
			continue
		}
		if startMs > 0 && end.UnixMilli() < startMs {
			continue
		}
		if endMs > 0 && r.StartTime.UnixMilli() > endMs {
			continue
		}
		out = append(out, segment{URI: r.URL, Start: *r.StartTime, Duration: end.Sub(*r.StartTime).Seconds()})
	}
	slices.SortStableFunc(out, func(a, b segment) int {
		return cmp.Compare(a.Start.UnixMilli(), b.Start.UnixMilli())
	})
	return out
}

// generateM3U8 每个录像文件的时间戳都从 0 开始，片段之间需要 EXT-X-DISCONTINUITY
func generateM3U8(segments []segment) (string, error) {
	pl, err := m3u8.NewMediaPlaylist(0, uint(len(segments)))
	if err != nil {
		return "", err
	}
	pl.MediaType = m3u8.VOD
	for i, s := range segments {
		if err := pl.Append(s.URI, s.Duration, ""); err != nil {
			return "", err
		}
		// 标记作用于刚追加的片段，输出在该片段之前
		if i > 0 {
			_ = pl.SetDiscontinuity()
		}
	}
	pl.Close()
	return pl.String(), nil
}
