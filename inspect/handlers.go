package inspect

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// Dump renders v with the inspector's spew settings.
func Dump(v ...interface{}) string {
	return spewConfig.Sdump(v...)
}

func writeJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrapf(err, "Failed to marshal"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(res)
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Printf("[inspect] error: %v", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// selected returns the snapshots a request targets: all of them, or the one
// named by the {entity} route variable.
func (s *Server) selected(w http.ResponseWriter, r *http.Request) ([]Snapshot, bool) {
	entity, ok := mux.Vars(r)["entity"]
	if !ok {
		return s.Snapshots(), true
	}
	snap, found := s.find(entity)
	if !found {
		writeError(w, http.StatusNotFound, errors.Errorf("entity %q not published", entity))
		return nil, false
	}
	return []Snapshot{snap}, true
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	snaps := s.Snapshots()
	names := make([]string, 0, len(snaps))
	for _, snap := range snaps {
		names = append(names, snap.Entity)
	}
	writeJson(w, names)
}

func (s *Server) handleBones(w http.ResponseWriter, r *http.Request) {
	snaps, ok := s.selected(w, r)
	if !ok {
		return
	}
	out := make(map[string][]BoneSnapshot, len(snaps))
	for _, snap := range snaps {
		out[snap.Entity] = snap.Bones
	}
	writeJson(w, out)
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	snaps, ok := s.selected(w, r)
	if !ok {
		return
	}
	out := make(map[string][]SlotSnapshot, len(snaps))
	for _, snap := range snaps {
		out[snap.Entity] = snap.Slots
	}
	writeJson(w, out)
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	snaps, ok := s.selected(w, r)
	if !ok {
		return
	}
	out := make(map[string][]TrackSnapshot, len(snaps))
	for _, snap := range snaps {
		tracks := snap.Tracks
		if tracks == nil {
			tracks = []TrackSnapshot{}
		}
		out[snap.Entity] = tracks
	}
	writeJson(w, out)
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	snaps, ok := s.selected(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	spewConfig.Fdump(w, snaps)
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[inspect] ws upgrade: %v", err)
		return
	}
	s.serveClient(conn)
}
