package shinobi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gowvp/owlview/internal/core/event"
	"github.com/gowvp/owlview/internal/core/nvr"
)

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/key/monitor/grp", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"mid":"front","name":"前门"},{"mid":"back","name":""},{"mid":""}]`))
	})
	mux.HandleFunc("/key/videos/grp/front", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"videos":[
			{"mid":"front","filename":"2024-01-15T14-30-22.mp4","time":"2024-01-15T14:30:22","end":"2024-01-15T14:45:22","size":1024},
			{"mid":"front","filename":"2024-01-15T15-00-00.mp4","size":"2048"},
			{"mid":"front","filename":"clip.mp4","time":"2024-01-15T16:00:00","end":"2024-01-15T15:00:00"},
			{"mid":"front","filename":""}
		]}`))
	})
	mux.HandleFunc("/key/events/grp/front", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "2" {
			http.Error(w, "limit", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[
			{"mid":"front","time":"2024-01-15T14:35:00Z","details":{"name":"VideoMotion","reason":"zone1","confidence":0.9}},
			{"mid":"front","time":"garbage","details":{"plug":"human","confidence":"75"}},
			{"mid":"front","time":"2024-01-15T14:40:00Z","details":{"name":"car"}}
		]`))
	})
	mux.HandleFunc("/key/videos/grp/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cli := NewClient(Config{
		BaseURL:  srv.URL + "/",
		APIKey:   "key",
		GroupKey: "grp",
		Location: time.UTC,
	})
	return srv, cli
}

func TestListCameras(t *testing.T) {
	_, cli := newTestServer(t)
	cams, err := cli.ListCameras(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cams) != 2 {
		t.Fatalf("len = %d, want 2", len(cams))
	}
	if cams[0].Name != "前门" || cams[1].Name != "back" {
		t.Fatalf("cams = %+v", cams)
	}
}

func TestListRecordings(t *testing.T) {
	srv, cli := newTestServer(t)
	recs, err := cli.ListRecordings(context.Background(), "front")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}

	first := recs[0]
	if first.URL != srv.URL+"/key/videos/grp/front/2024-01-15T14-30-22.mp4" {
		t.Fatalf("url = %q", first.URL)
	}
	if d, ok := first.Duration(); !ok || d != 15*time.Minute {
		t.Fatalf("duration = %v %v", d, ok)
	}
	if first.SizeBytes != 1024 || first.Source != Source {
		t.Fatalf("first = %+v", first)
	}

	// 元数据没有时间，从文件名解析
	second := recs[1]
	want := time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)
	if second.StartTime == nil || !second.StartTime.Equal(want) || second.EndTime != nil {
		t.Fatalf("second = %+v", second)
	}
	if second.SizeBytes != 2048 {
		t.Fatalf("size = %d", second.SizeBytes)
	}

	if recs[2].EndTime != nil {
		t.Fatal("end before start should be dropped")
	}
}

func TestListEvents(t *testing.T) {
	_, cli := newTestServer(t)
	events, err := cli.ListEvents(context.Background(), "front", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Type != event.TypeMotion || events[0].Confidence != 90 || !events[0].Seekable() {
		t.Fatalf("events[0] = %+v", events[0])
	}
	if events[1].Type != event.TypePerson || events[1].Confidence != 75 || events[1].Seekable() {
		t.Fatalf("events[1] = %+v", events[1])
	}
	if events[1].RawTime != "garbage" {
		t.Fatalf("raw time = %q", events[1].RawTime)
	}
}

func TestFetchError(t *testing.T) {
	_, cli := newTestServer(t)
	_, err := cli.ListRecordings(context.Background(), "broken")
	if !errors.Is(err, nvr.ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}

func TestHealthCheck(t *testing.T) {
	srv, cli := newTestServer(t)
	if !cli.HealthCheck(context.Background()) {
		t.Fatal("expect healthy")
	}
	srv.Close()
	if cli.HealthCheck(context.Background()) {
		t.Fatal("expect unhealthy after close")
	}
}

func TestUnwrapList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "array", raw: `[{"mid":"a"}]`, want: 1},
		{name: "wrapped", raw: `{"monitors":[{"mid":"a"},{"mid":"b"}]}`, want: 2},
		{name: "null", raw: `null`, want: 0},
		{name: "missing key", raw: `{"ok":false}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unwrapList[monitor]([]byte(tt.raw), "monitors")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}
