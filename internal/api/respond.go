package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/signalsfoundry/satti-simulator/internal/registry"
	"github.com/signalsfoundry/satti-simulator/internal/tasking"
)

// errorBody mirrors the wire format clients already parse: a single
// human-readable detail string.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeDomainError maps sentinel errors from the registry, store, engine and
// gate onto the HTTP status and detail text the API contract promises.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrSatelliteNotFound):
		writeError(w, http.StatusNotFound, "Satellite not found")
	case errors.Is(err, registry.ErrGroundStationNotFound):
		writeError(w, http.StatusNotFound, "Ground station not found")
	case errors.Is(err, tasking.ErrCommandNotFound):
		writeError(w, http.StatusNotFound, "Command not found")
	case errors.Is(err, tasking.ErrStationNotOperational):
		writeError(w, http.StatusConflict, "Ground station is not operational")
	case errors.Is(err, tasking.ErrCommandInProgress):
		writeError(w, http.StatusConflict, "Command is already in progress")
	case errors.Is(err, tasking.ErrRerunNotAllowed):
		writeError(w, http.StatusConflict, "Only FAILED commands can be rerun")
	case errors.Is(err, tasking.ErrProductNotReady):
		writeError(w, http.StatusConflict, "Image is not ready")
	case errors.Is(err, tasking.ErrArtifactMissing):
		writeError(w, http.StatusNotFound, "Image file not found")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeRegistryError distinguishes missing records from bad patch values.
func (s *Server) writeRegistryError(w http.ResponseWriter, err error) {
	if errors.Is(err, registry.ErrSatelliteNotFound) || errors.Is(err, registry.ErrGroundStationNotFound) {
		writeDomainError(w, err)
		return
	}
	writeError(w, http.StatusUnprocessableEntity, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
