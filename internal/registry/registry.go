// Package registry holds the in-memory stores for satellites and ground
// stations, including the idempotent seed presets.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/signalsfoundry/satti-simulator/model"
)

var (
	// ErrSatelliteNotFound indicates a requested satellite was not found.
	ErrSatelliteNotFound = errors.New("satellite not found")
	// ErrGroundStationNotFound indicates a requested ground station was not found.
	ErrGroundStationNotFound = errors.New("ground station not found")
)

// Registry is an in-memory, thread-safe store for satellites and ground
// stations. All reads return copies so callers cannot mutate stored
// records without going through the update methods.
type Registry struct {
	mu sync.RWMutex

	satellites map[string]*model.Satellite
	stations   map[string]*model.GroundStation
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		satellites: make(map[string]*model.Satellite),
		stations:   make(map[string]*model.GroundStation),
	}
}

// CreateSatellite stores a new satellite and returns its generated ID.
func (r *Registry) CreateSatellite(name string, satType model.SatelliteType, status model.SatelliteStatus) (model.Satellite, error) {
	if name == "" {
		return model.Satellite{}, errors.New("satellite name is required")
	}
	if !satType.Valid() {
		return model.Satellite{}, fmt.Errorf("unknown satellite type %q", satType)
	}
	if !status.Valid() {
		return model.Satellite{}, fmt.Errorf("unknown satellite status %q", status)
	}

	sat := &model.Satellite{
		ID:     newID("sat"),
		Name:   name,
		Type:   satType,
		Status: status,
	}

	r.mu.Lock()
	r.satellites[sat.ID] = sat
	r.mu.Unlock()
	return *sat, nil
}

// GetSatellite returns a copy of the satellite with the given ID.
func (r *Registry) GetSatellite(id string) (model.Satellite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sat, ok := r.satellites[id]
	if !ok {
		return model.Satellite{}, ErrSatelliteNotFound
	}
	return *sat, nil
}

// ListSatellites returns a snapshot slice of all satellites.
func (r *Registry) ListSatellites() []model.Satellite {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]model.Satellite, 0, len(r.satellites))
	for _, sat := range r.satellites {
		res = append(res, *sat)
	}
	return res
}

// SatellitePatch describes a partial satellite update; nil fields are left
// untouched.
type SatellitePatch struct {
	Name   *string
	Status *model.SatelliteStatus
}

// UpdateSatellite applies a partial update and returns the resulting record.
func (r *Registry) UpdateSatellite(id string, patch SatellitePatch) (model.Satellite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sat, ok := r.satellites[id]
	if !ok {
		return model.Satellite{}, ErrSatelliteNotFound
	}
	if patch.Name != nil {
		sat.Name = *patch.Name
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return model.Satellite{}, fmt.Errorf("unknown satellite status %q", *patch.Status)
		}
		sat.Status = *patch.Status
	}
	return *sat, nil
}

// DeleteSatellite removes a satellite and returns the deleted record.
func (r *Registry) DeleteSatellite(id string) (model.Satellite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sat, ok := r.satellites[id]
	if !ok {
		return model.Satellite{}, ErrSatelliteNotFound
	}
	delete(r.satellites, id)
	return *sat, nil
}

// CreateGroundStation stores a new ground station and returns it.
func (r *Registry) CreateGroundStation(name string, stationType model.GroundStationType, status model.GroundStationStatus, location string) (model.GroundStation, error) {
	if name == "" {
		return model.GroundStation{}, errors.New("ground station name is required")
	}
	if !stationType.Valid() {
		return model.GroundStation{}, fmt.Errorf("unknown ground station type %q", stationType)
	}
	if !status.Valid() {
		return model.GroundStation{}, fmt.Errorf("unknown ground station status %q", status)
	}

	station := &model.GroundStation{
		ID:       newID("gnd"),
		Name:     name,
		Type:     stationType,
		Status:   status,
		Location: location,
	}

	r.mu.Lock()
	r.stations[station.ID] = station
	r.mu.Unlock()
	return *station, nil
}

// GetGroundStation returns a copy of the station with the given ID.
func (r *Registry) GetGroundStation(id string) (model.GroundStation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	station, ok := r.stations[id]
	if !ok {
		return model.GroundStation{}, ErrGroundStationNotFound
	}
	return *station, nil
}

// ListGroundStations returns a snapshot slice of all ground stations.
func (r *Registry) ListGroundStations() []model.GroundStation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]model.GroundStation, 0, len(r.stations))
	for _, station := range r.stations {
		res = append(res, *station)
	}
	return res
}

// GroundStationPatch describes a partial ground station update; nil fields
// are left untouched.
type GroundStationPatch struct {
	Name     *string
	Status   *model.GroundStationStatus
	Location *string
}

// UpdateGroundStation applies a partial update and returns the result.
func (r *Registry) UpdateGroundStation(id string, patch GroundStationPatch) (model.GroundStation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	station, ok := r.stations[id]
	if !ok {
		return model.GroundStation{}, ErrGroundStationNotFound
	}
	if patch.Name != nil {
		station.Name = *patch.Name
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return model.GroundStation{}, fmt.Errorf("unknown ground station status %q", *patch.Status)
		}
		station.Status = *patch.Status
	}
	if patch.Location != nil {
		station.Location = *patch.Location
	}
	return *station, nil
}

// DeleteGroundStation removes a station and returns the deleted record.
func (r *Registry) DeleteGroundStation(id string) (model.GroundStation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	station, ok := r.stations[id]
	if !ok {
		return model.GroundStation{}, ErrGroundStationNotFound
	}
	delete(r.stations, id)
	return *station, nil
}

func newID(prefix string) string {
	u := uuid.New()
	return fmt.Sprintf("%s-%x", prefix, u[:4])
}
