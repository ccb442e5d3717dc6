package api

import (
	"net/http"

	"github.com/signalsfoundry/satti-simulator/internal/registry"
	"github.com/signalsfoundry/satti-simulator/model"
)

func satelliteToResponse(sat model.Satellite) satelliteResponse {
	return satelliteResponse{
		SatelliteID: sat.ID,
		Name:        sat.Name,
		Type:        sat.Type,
		Status:      sat.Status,
		Profile:     model.TypeProfiles[sat.Type],
	}
}

func stationToResponse(gs model.GroundStation) groundStationResponse {
	resp := groundStationResponse{
		GroundStationID: gs.ID,
		Name:            gs.Name,
		Type:            gs.Type,
		Status:          gs.Status,
	}
	if gs.Location != "" {
		resp.Location = &gs.Location
	}
	return resp
}

func (s *Server) handleCreateSatellite(w http.ResponseWriter, r *http.Request) {
	var req createSatelliteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if n := len(req.Name); n < 1 || n > 100 {
		writeError(w, http.StatusUnprocessableEntity, "name must be 1-100 characters")
		return
	}
	status := model.SatelliteAvailable
	if req.Status != nil {
		status = *req.Status
	}
	sat, err := s.registry.CreateSatellite(req.Name, req.Type, status)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"satellite_id": sat.ID})
}

func (s *Server) handleListSatellites(w http.ResponseWriter, r *http.Request) {
	sats := s.registry.ListSatellites()
	out := make([]satelliteResponse, 0, len(sats))
	for _, sat := range sats {
		out = append(out, satelliteToResponse(sat))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateSatellite(w http.ResponseWriter, r *http.Request) {
	var req updateSatelliteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != nil {
		if n := len(*req.Name); n < 1 || n > 100 {
			writeError(w, http.StatusUnprocessableEntity, "name must be 1-100 characters")
			return
		}
	}
	sat, err := s.registry.UpdateSatellite(r.PathValue("id"), registry.SatellitePatch{
		Name:   req.Name,
		Status: req.Status,
	})
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, satelliteToResponse(sat))
}

func (s *Server) handleDeleteSatellite(w http.ResponseWriter, r *http.Request) {
	sat, err := s.registry.DeleteSatellite(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"deleted_satellite_id": sat.ID,
		"deleted_name":         sat.Name,
	})
}

func (s *Server) handleSeedSatellites(w http.ResponseWriter, r *http.Request) {
	ids := s.registry.SeedSatellites()
	writeJSON(w, http.StatusOK, seedSatellitesResponse{SatelliteIDs: ids})
}

func (s *Server) handleSatelliteTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.TypeProfiles)
}

func (s *Server) handleCreateGroundStation(w http.ResponseWriter, r *http.Request) {
	var req createGroundStationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if n := len(req.Name); n < 1 || n > 120 {
		writeError(w, http.StatusUnprocessableEntity, "name must be 1-120 characters")
		return
	}
	status := model.StationOperational
	if req.Status != nil {
		status = *req.Status
	}
	location := ""
	if req.Location != nil {
		if len(*req.Location) > 120 {
			writeError(w, http.StatusUnprocessableEntity, "location must be at most 120 characters")
			return
		}
		location = *req.Location
	}
	gs, err := s.registry.CreateGroundStation(req.Name, req.Type, status, location)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ground_station_id": gs.ID})
}

func (s *Server) handleListGroundStations(w http.ResponseWriter, r *http.Request) {
	stations := s.registry.ListGroundStations()
	out := make([]groundStationResponse, 0, len(stations))
	for _, gs := range stations {
		out = append(out, stationToResponse(gs))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateGroundStation(w http.ResponseWriter, r *http.Request) {
	var req updateGroundStationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != nil {
		if n := len(*req.Name); n < 1 || n > 120 {
			writeError(w, http.StatusUnprocessableEntity, "name must be 1-120 characters")
			return
		}
	}
	if req.Location != nil && len(*req.Location) > 120 {
		writeError(w, http.StatusUnprocessableEntity, "location must be at most 120 characters")
		return
	}
	gs, err := s.registry.UpdateGroundStation(r.PathValue("id"), registry.GroundStationPatch{
		Name:     req.Name,
		Status:   req.Status,
		Location: req.Location,
	})
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stationToResponse(gs))
}

func (s *Server) handleDeleteGroundStation(w http.ResponseWriter, r *http.Request) {
	gs, err := s.registry.DeleteGroundStation(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"deleted_ground_station_id": gs.ID,
		"deleted_name":              gs.Name,
	})
}

func (s *Server) handleSeedGroundStations(w http.ResponseWriter, r *http.Request) {
	ids := s.registry.SeedGroundStations()
	writeJSON(w, http.StatusOK, seedGroundStationsResponse{GroundStationIDs: ids})
}
