package viewer

import (
	"github.com/gowvp/owlview/internal/core/event"
	"github.com/gowvp/owlview/internal/core/playback"
	"github.com/gowvp/owlview/internal/core/recording"
	"github.com/gowvp/owlview/internal/core/timex"
	"github.com/samber/lo"
)

// RecordingView 录像列表项
type RecordingView struct {
	Index     int    `json:"index"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	SizeBytes int64  `json:"size_bytes"`
	Source    string `json:"source,omitempty"`
	HasEvent  bool   `json:"has_event"`
	Playing   bool   `json:"playing"`
}

// EventView 事件列表项
type EventView struct {
	Index      int        `json:"index"`
	Type       event.Type `json:"type"`
	Time       string     `json:"time"`
	Confidence int        `json:"confidence"`
	Seekable   bool       `json:"seekable"`
	Active     bool       `json:"active"`
}

// View 渲染所需的全部数据
type View struct {
	SessionID             string                `json:"session_id"`
	CameraID              string                `json:"camera_id"`
	Generation            uint64                `json:"generation"`
	Loading               bool                  `json:"loading"`
	Connected             bool                  `json:"connected"`
	CheckedAt             string                `json:"checked_at"`
	Recordings            []RecordingView       `json:"recordings"`
	RecordingsError       string                `json:"recordings_error,omitempty"`
	Events                []EventView           `json:"events"`
	EventsError           string                `json:"events_error,omitempty"`
	Timeline              []recording.TimeRange `json:"timeline"`
	CurrentRecordingIndex int                   `json:"current_recording_index"`
	ActiveEventIndex      int                   `json:"active_event_index"`
	PendingSeek           *float64              `json:"pending_seek"`
	Playback              playback.Snapshot     `json:"playback"`
}

// View 当前会话的渲染快照，时间格式化失败时显示原始字符串
func (s *Session) View() View {
	snap := s.state.Snapshot()
	flags := snap.HasEvent()

	v := View{
		SessionID:             s.ID,
		CameraID:              snap.CameraID,
		Generation:            snap.Generation,
		Loading:               snap.Loading,
		Timeline:              snap.Timeline(),
		CurrentRecordingIndex: snap.CurrentRecordingIndex,
		ActiveEventIndex:      snap.ActiveEventIndex,
		PendingSeek:           snap.PendingSeek,
		Playback:              s.player.Snapshot(),
	}
	if s.health != nil {
		v.Connected = s.health.Connected()
		v.CheckedAt = timex.Format(s.health.CheckedAt())
	}
	if snap.RecordingsErr != nil {
		v.RecordingsError = snap.RecordingsErr.Error()
	}
	if snap.EventsErr != nil {
		v.EventsError = snap.EventsErr.Error()
	}

	v.Recordings = lo.Map(snap.Index.Items(), func(r recording.Recording, i int) RecordingView {
		return RecordingView{
			Index:     i,
			Filename:  r.Filename,
			URL:       r.URL,
			StartTime: timex.FormatPtr(r.StartTime),
			EndTime:   timex.FormatPtr(r.EndTime),
			SizeBytes: r.SizeBytes,
			Source:    r.Source,
			HasEvent:  flags[i],
			Playing:   i == snap.CurrentRecordingIndex,
		}
	})
	v.Events = lo.Map(snap.Events, func(e event.Event, i int) EventView {
		t := timex.FormatPtr(e.Timestamp)
		if t == "" {
			t = timex.FormatRaw(e.RawTime)
		}
		return EventView{
			Index:      i,
			Type:       e.Type,
			Time:       t,
			Confidence: e.Confidence,
			Seekable:   e.Seekable(),
			Active:     i == snap.ActiveEventIndex,
		}
	})
	return v
}
