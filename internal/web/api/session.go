package api

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/owlview/internal/core/playback"
	"github.com/gowvp/owlview/internal/core/recording"
	"github.com/gowvp/owlview/internal/core/selection"
	"github.com/gowvp/owlview/internal/core/viewer"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/ixugo/goddd/pkg/web"
)

// longPollTimeout 播放指令长轮询的最长等待时间
const longPollTimeout = 25 * time.Second

// SessionAPI 操作员查看会话
type SessionAPI struct {
	viewers *viewer.Manager
}

func NewSessionAPI(viewers *viewer.Manager) SessionAPI {
	return SessionAPI{viewers: viewers}
}

func RegisterSession(g gin.IRouter, api SessionAPI, handler ...gin.HandlerFunc) {
	group := g.Group("/sessions", handler...)
	group.POST("", web.WrapH(api.createSession))
	group.GET("/:id", web.WrapH(api.getSession))
	group.DELETE("/:id", web.WrapH(api.delSession))
	group.PUT("/:id/camera", web.WrapH(api.selectCamera))
	group.POST("/:id/events/:idx/seek", web.WrapH(api.seekToEvent))
	group.POST("/:id/recordings/:idx/play", web.WrapH(api.playRecording))
	group.GET("/:id/playback/commands", web.WrapH(api.findCommands))
	group.POST("/:id/playback/ready", web.WrapH(api.metadataReady))
	group.POST("/:id/playback/error", web.WrapH(api.mediaError))
	group.POST("/:id/playback/rejected", web.WrapH(api.playRejected))
}

// sessionErr 领域错误转换为接口错误
func sessionErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, viewer.ErrSessionNotFound):
		return reason.ErrNotFound.SetMsg(err.Error())
	case errors.Is(err, selection.ErrIndexOutOfRange),
		errors.Is(err, selection.ErrEmptyCameraID),
		errors.Is(err, selection.ErrNoCamera),
		errors.Is(err, selection.ErrEventNotSeekable):
		return reason.ErrBadRequest.SetMsg(err.Error())
	default:
		return reason.ErrServer.SetMsg(err.Error())
	}
}

func (a SessionAPI) session(c *gin.Context) (*viewer.Session, error) {
	s, err := a.viewers.Get(c.Param("id"))
	return s, sessionErr(err)
}

func paramIndex(c *gin.Context) (int, error) {
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		return 0, reason.ErrBadRequest.SetMsg("invalid index")
	}
	return idx, nil
}

func (a SessionAPI) createSession(_ *gin.Context, _ *struct{}) (viewer.View, error) {
	return a.viewers.Create().View(), nil
}

func (a SessionAPI) getSession(c *gin.Context, _ *struct{}) (*viewer.View, error) {
	s, err := a.session(c)
	if err != nil {
		return nil, err
	}
	v := s.View()
	return &v, nil
}

func (a SessionAPI) delSession(c *gin.Context, _ *struct{}) (gin.H, error) {
	id := c.Param("id")
	if err := a.viewers.Delete(id); err != nil {
		return nil, sessionErr(err)
	}
	return gin.H{"id": id}, nil
}

type selectCameraInput struct {
	CameraID string `json:"camera_id"`
}

type selectCameraOutput struct {
	Superseded bool        `json:"superseded"`
	ElapsedMs  int64       `json:"elapsed_ms"`
	View       viewer.View `json:"view"`
}

// selectCamera 切换通道，两个列表独立拉取，失败信息在 view 中返回
func (a SessionAPI) selectCamera(c *gin.Context, in *selectCameraInput) (*selectCameraOutput, error) {
	s, err := a.session(c)
	if err != nil {
		return nil, err
	}
	outcome, err := s.SelectCamera(c.Request.Context(), in.CameraID)
	if err != nil {
		return nil, sessionErr(err)
	}
	return &selectCameraOutput{
		Superseded: outcome.Superseded,
		ElapsedMs:  outcome.Elapsed.Milliseconds(),
		View:       s.View(),
	}, nil
}

type seekOutput struct {
	Found          bool                `json:"found"`
	Exact          bool                `json:"exact"`
	EventIndex     int                 `json:"event_index"`
	RecordingIndex int                 `json:"recording_index"`
	OffsetSeconds  float64             `json:"offset_seconds"`
	Cycle          uint64              `json:"cycle"`
	Recording      recording.Recording `json:"recording"`
	Notice         string              `json:"notice,omitempty"`
}

// seekToEvent 未找到录像时返回 notice，前端需弹窗提示
func (a SessionAPI) seekToEvent(c *gin.Context, _ *struct{}) (*seekOutput, error) {
	s, err := a.session(c)
	if err != nil {
		return nil, err
	}
	idx, err := paramIndex(c)
	if err != nil {
		return nil, err
	}
	out, err := s.SeekToEvent(idx)
	if err != nil {
		return nil, sessionErr(err)
	}
	return &seekOutput{
		Found:          out.Result.Found,
		Exact:          out.Result.Exact,
		EventIndex:     out.EventIndex,
		RecordingIndex: out.Result.RecordingIndex,
		OffsetSeconds:  out.Result.OffsetSeconds(),
		Cycle:          out.Cycle,
		Recording:      out.Recording,
		Notice:         out.Notice,
	}, nil
}

type playOutput struct {
	Recording recording.Recording `json:"recording"`
	Cycle     uint64              `json:"cycle"`
}

func (a SessionAPI) playRecording(c *gin.Context, _ *struct{}) (*playOutput, error) {
	s, err := a.session(c)
	if err != nil {
		return nil, err
	}
	idx, err := paramIndex(c)
	if err != nil {
		return nil, err
	}
	rec, cycle, err := s.PlayRecording(idx)
	if err != nil {
		return nil, sessionErr(err)
	}
	return &playOutput{Recording: rec, Cycle: cycle}, nil
}

type findCommandsInput struct {
	Wait bool `form:"wait"` // 没有指令时等待
}

type findCommandsOutput struct {
	Items    []playback.Command `json:"items"`
	Playback playback.Snapshot  `json:"playback"`
}

func (a SessionAPI) findCommands(c *gin.Context, in *findCommandsInput) (*findCommandsOutput, error) {
	s, err := a.session(c)
	if err != nil {
		return nil, err
	}
	var items []playback.Command
	if in.Wait {
		ctx, cancel := context.WithTimeout(c.Request.Context(), longPollTimeout)
		defer cancel()
		items = s.WaitCommands(ctx)
	} else {
		items = s.DrainCommands()
	}
	if items == nil {
		items = []playback.Command{}
	}
	return &findCommandsOutput{Items: items, Playback: s.View().Playback}, nil
}

type metadataReadyInput struct {
	Cycle    uint64  `json:"cycle"`
	Duration float64 `json:"duration"` // 秒，未知时传 0
}

type metadataReadyOutput struct {
	Seeked   bool    `json:"seeked"`
	Position float64 `json:"position"`
}

func (a SessionAPI) metadataReady(c *gin.Context, in *metadataReadyInput) (*metadataReadyOutput, error) {
	s, err := a.session(c)
	if err != nil {
		return nil, err
	}
	pos, seeked := s.MetadataReady(in.Cycle, in.Duration)
	return &metadataReadyOutput{Seeked: seeked, Position: pos}, nil
}

type playbackSignalInput struct {
	Cycle  uint64 `json:"cycle"`
	Reason string `json:"reason"`
}

type playbackSignalOutput struct {
	Accepted bool `json:"accepted"`
}

func (a SessionAPI) mediaError(c *gin.Context, in *playbackSignalInput) (*playbackSignalOutput, error) {
	s, err := a.session(c)
	if err != nil {
		return nil, err
	}
	return &playbackSignalOutput{Accepted: s.MediaError(in.Cycle, in.Reason)}, nil
}

func (a SessionAPI) playRejected(c *gin.Context, in *playbackSignalInput) (*playbackSignalOutput, error) {
	s, err := a.session(c)
	if err != nil {
		return nil, err
	}
	return &playbackSignalOutput{Accepted: s.PlayRejected(in.Cycle, in.Reason)}, nil
}
