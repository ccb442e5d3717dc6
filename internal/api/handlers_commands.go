package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/signalsfoundry/satti-simulator/model"
)

func isoUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// commandToStatus flattens a command into the status wire shape. The
// download link only appears while the artifact file is actually present.
func (s *Server) commandToStatus(cmd model.Command) commandStatusResponse {
	resp := commandStatusResponse{
		CommandID:       cmd.ID,
		SatelliteID:     cmd.SatelliteID,
		SatelliteType:   cmd.SatelliteType,
		MissionName:     cmd.Tasking.MissionName,
		AOIName:         cmd.Tasking.AOIName,
		Width:           cmd.Tasking.Width,
		Height:          cmd.Tasking.Height,
		CloudPercent:    cmd.Tasking.CloudPercent,
		FailProbability: cmd.Tasking.FailProbability,

		State:   cmd.State,
		Message: cmd.Message,

		CreatedAt: isoUTC(cmd.CreatedAt),
		UpdatedAt: isoUTC(cmd.UpdatedAt),

		RequestProfile:      cmd.Tasking.Profile,
		AcquisitionMetadata: cmd.Acquisition,
		ProductMetadata:     cmd.Product,
	}
	if gs := cmd.Tasking.Profile.GroundStation; gs != nil {
		resp.GroundStationID = &gs.ID
		resp.GroundStationName = &gs.Name
		resp.GroundStationType = &gs.Type
	}
	if cmd.State == model.StateDownlinkReady && cmd.ArtifactRef != "" && s.artifacts.Exists(cmd.ID) {
		url := "/downloads/" + cmd.ID
		resp.DownloadURL = &url
	}
	return resp
}

func (s *Server) handleUplink(w http.ResponseWriter, r *http.Request) {
	var req uplinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	submit, err := validateUplink(req)
	if err != nil {
		var ve *validationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusUnprocessableEntity, ve.detail)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	cmd, err := s.engine.Submit(r.Context(), submit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := uplinkResponse{
		CommandID:     cmd.ID,
		State:         cmd.State,
		SatelliteID:   cmd.SatelliteID,
		SatelliteType: cmd.SatelliteType,
		MissionName:   cmd.Tasking.MissionName,
		AOIName:       cmd.Tasking.AOIName,
		CreatedAt:     isoUTC(cmd.CreatedAt),
	}
	if gs := cmd.Tasking.Profile.GroundStation; gs != nil {
		resp.GroundStationID = &gs.ID
		resp.GroundStationName = &gs.Name
		resp.GroundStationType = &gs.Type
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	cmds := s.commands.List()
	out := make([]commandStatusResponse, 0, len(cmds))
	for _, cmd := range cmds {
		out = append(out, s.commandToStatus(cmd))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := s.commands.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.commandToStatus(cmd))
}

func (s *Server) handleRerunCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := s.engine.Rerun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.commandToStatus(cmd))
}

func (s *Server) handleCommandHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "Audit trail is not enabled")
		return
	}
	id := r.PathValue("id")
	if _, err := s.commands.Get(id); err != nil {
		writeDomainError(w, err)
		return
	}
	entries, err := s.history.History(r.Context(), id)
	if err != nil {
		s.log.Error(r.Context(), "audit history query failed",
			errField(err),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	out := make([]commandHistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, commandHistoryEntry{
			State:      e.State,
			Message:    e.Message,
			OccurredAt: e.OccurredAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	product, err := s.gate.Resolve(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	f, err := s.artifacts.Open(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Image file not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.FormatInt(product.SizeBytes, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".png"))
	_, _ = io.Copy(w, f)
}

func (s *Server) handleSaveLocal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	product, err := s.gate.Resolve(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resolved, err := filepath.Abs(product.Path)
	if err != nil {
		resolved = product.Path
	}
	writeJSON(w, http.StatusOK, saveLocalResponse{
		CommandID:     id,
		SavedPath:     resolved,
		FileSizeBytes: product.SizeBytes,
		Message:       "Image is saved in local data/images directory",
	})
}

func (s *Server) handleClearImages(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.artifacts.Clear()
	if err != nil {
		s.log.Error(r.Context(), "artifact clear failed", errField(err))
	}
	cleared := s.commands.ClearArtifacts("Image cleared by operator")
	writeJSON(w, http.StatusOK, clearImagesResponse{
		DeletedCount:        deleted,
		ClearedCommandCount: len(cleared),
		Message:             "All generated sample images were cleared",
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if s.preview == nil {
		writeError(w, http.StatusServiceUnavailable, "External map preview is not available")
		return
	}
	q := r.URL.Query()

	lat, err := parseFloatParam(q.Get("lat"), -90, 90)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "lat must be a number between -90 and 90")
		return
	}
	lon, err := parseFloatParam(q.Get("lon"), -180, 180)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "lon must be a number between -180 and 180")
		return
	}
	zoom, err := parseIntParam(q.Get("zoom"), defaultMapZoom, 1, 19)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "zoom must be between 1 and 19")
		return
	}
	width, err := parseIntParam(q.Get("width"), 768, minImageDim, maxImageDim)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "width must be between 128 and 4096")
		return
	}
	height, err := parseIntParam(q.Get("height"), 768, minImageDim, maxImageDim)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "height must be between 128 and 4096")
		return
	}
	if src := q.Get("source"); src != "" && !model.ExternalMapSource(src).Valid() {
		writeError(w, http.StatusUnprocessableEntity, "source must be OSM")
		return
	}

	data, err := s.preview.Map(r.Context(), lat, lon, zoom, width, height)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("External map preview failed: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, "Event stream is not enabled")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	ch, err := s.events.Subscribe(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range ch {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return
		}
		flusher.Flush()
	}
}

func parseFloatParam(raw string, lo, hi float64) (float64, error) {
	if raw == "" {
		return 0, errors.New("missing")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("out of range: %v", v)
	}
	return v, nil
}

func parseIntParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("out of range: %d", v)
	}
	return v, nil
}
