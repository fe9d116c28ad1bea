package inspect

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	spinecomp "github.com/milk9111/spine/component"
	"github.com/milk9111/spine/prefabs"
	"gopkg.in/yaml.v3"
)

func newStickman(t *testing.T) *spinecomp.SkeletonAnimation {
	t.Helper()
	asset, err := prefabs.LoadSkeleton("stickman.yaml")
	if err != nil {
		t.Fatalf("load skeleton: %v", err)
	}
	inst, err := asset.NewInstance()
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	if _, err := inst.SetAnimation(0, "walk", true); err != nil {
		t.Fatal(err)
	}
	if _, err := inst.AddAnimation(0, "jump", false, 0); err != nil {
		t.Fatal(err)
	}
	inst.Update(0.25)
	return inst
}

func TestCapture(t *testing.T) {
	inst := newStickman(t)
	snap := Capture("walker", inst)

	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{"bones", func(t *testing.T) {
			if len(snap.Bones) != len(inst.Skeleton.Bones) {
				t.Fatalf("expected %d bones, got %d", len(inst.Skeleton.Bones), len(snap.Bones))
			}
			if snap.Bones[0].Parent != "" {
				t.Fatalf("expected root without parent, got %q", snap.Bones[0].Parent)
			}
			thigh := inst.Skeleton.FindBone("thigh")
			for _, b := range snap.Bones {
				if b.Name == "thigh" && b.Rotation != thigh.Rotation {
					t.Fatalf("expected thigh rotation %v, got %v", thigh.Rotation, b.Rotation)
				}
			}
		}},
		{"slots", func(t *testing.T) {
			if len(snap.Slots) != len(inst.Skeleton.Slots) {
				t.Fatalf("expected %d slots, got %d", len(inst.Skeleton.Slots), len(snap.Slots))
			}
			for _, s := range snap.Slots {
				if !strings.HasPrefix(s.Color, "#") || len(s.Color) != 9 {
					t.Fatalf("slot %s: unexpected color %q", s.Name, s.Color)
				}
			}
		}},
		{"tracks", func(t *testing.T) {
			if len(snap.Tracks) != 1 {
				t.Fatalf("expected one track, got %d", len(snap.Tracks))
			}
			tr := snap.Tracks[0]
			if tr.Animation != "walk" || !tr.Loop || tr.TrackTime != 0.25 {
				t.Fatalf("unexpected track\n%s", Dump(tr))
			}
			if len(tr.Queued) != 1 || tr.Queued[0] != "jump" {
				t.Fatalf("expected jump queued, got %v", tr.Queued)
			}
		}},
		{"copy_is_detached", func(t *testing.T) {
			before := snap.Bones[0].X
			inst.Skeleton.Bones[0].X += 10
			if snap.Bones[0].X != before {
				t.Fatalf("snapshot changed with the live skeleton")
			}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.check)
	}
}

func TestCaptureNil(t *testing.T) {
	snap := Capture("none", nil)
	if snap.Entity != "none" || snap.Bones != nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestYAML(t *testing.T) {
	snap := Capture("walker", newStickman(t))
	out, err := YAML(snap)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var back Snapshot
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Entity != "walker" || back.Skeleton != snap.Skeleton || len(back.Bones) != len(snap.Bones) {
		t.Fatalf("unexpected round trip %+v", back)
	}
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return resp.StatusCode, body
}

func TestServerRoutes(t *testing.T) {
	s := NewServer()
	s.Publish([]Snapshot{Capture("walker", newStickman(t))})
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	tests := []struct {
		name   string
		path   string
		status int
		check  func(t *testing.T, body []byte)
	}{
		{"entities", "/json/entities", http.StatusOK, func(t *testing.T, body []byte) {
			var names []string
			if err := json.Unmarshal(body, &names); err != nil || len(names) != 1 || names[0] != "walker" {
				t.Fatalf("unexpected entities %s (%v)", body, err)
			}
		}},
		{"bones", "/json/bones", http.StatusOK, func(t *testing.T, body []byte) {
			var bones map[string][]BoneSnapshot
			if err := json.Unmarshal(body, &bones); err != nil || len(bones["walker"]) != 10 {
				t.Fatalf("unexpected bones %s (%v)", body, err)
			}
		}},
		{"slots_by_entity", "/json/slots/walker", http.StatusOK, func(t *testing.T, body []byte) {
			var slots map[string][]SlotSnapshot
			if err := json.Unmarshal(body, &slots); err != nil || len(slots["walker"]) == 0 {
				t.Fatalf("unexpected slots %s (%v)", body, err)
			}
		}},
		{"tracks", "/json/tracks", http.StatusOK, func(t *testing.T, body []byte) {
			var tracks map[string][]TrackSnapshot
			if err := json.Unmarshal(body, &tracks); err != nil || tracks["walker"][0].Animation != "walk" {
				t.Fatalf("unexpected tracks %s (%v)", body, err)
			}
		}},
		{"unknown_entity", "/json/bones/ghost", http.StatusNotFound, func(t *testing.T, body []byte) {
			if !strings.Contains(string(body), "ghost") {
				t.Fatalf("expected error naming entity, got %s", body)
			}
		}},
		{"dump", "/dump/walker", http.StatusOK, func(t *testing.T, body []byte) {
			if !strings.Contains(string(body), "Entity: (string) (len=6) \"walker\"") {
				t.Fatalf("expected spew dump, got %s", body)
			}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, ts.URL+tc.path)
			if status != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, status, body)
			}
			tc.check(t, body)
		})
	}
}

func TestServerStreamsFrames(t *testing.T) {
	s := NewServer()
	s.Publish([]Snapshot{{Entity: "first"}})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() frameMessage {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg frameMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	if msg := read(); msg.Frame != 1 || msg.Snapshots[0].Entity != "first" {
		t.Fatalf("expected last frame on connect, got %+v", msg)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	s.Publish([]Snapshot{{Entity: "second"}})
	if msg := read(); msg.Frame != 2 || msg.Snapshots[0].Entity != "second" {
		t.Fatalf("expected published frame, got %+v", msg)
	}
}

func TestNilServerPublish(t *testing.T) {
	var s *Server
	s.Publish([]Snapshot{{Entity: "x"}})
}
