package registry

import "github.com/signalsfoundry/satti-simulator/model"

var satellitePresets = []struct {
	name    string
	satType model.SatelliteType
}{
	{"KOMPSAT-3 (Arirang-3)", model.SatelliteTypeEOOptical},
	{"KOMPSAT-3A (Arirang-3A)", model.SatelliteTypeEOOptical},
	{"CAS500-1 (NextSat-1)", model.SatelliteTypeEOOptical},
	{"Cheollian-2B (GEO-KOMPSAT-2B)", model.SatelliteTypeEOOptical},
	{"KOMPSAT-5 (Arirang-5, SAR)", model.SatelliteTypeSAR},
	{"KOMPSAT-6 (Arirang-6, SAR)", model.SatelliteTypeSAR},
	{"KOMPSAT-Next-5 (C-band SAR)", model.SatelliteTypeSAR},
}

var stationPresets = []struct {
	name        string
	stationType model.GroundStationType
	location    string
}{
	{"Daejeon Mission Control Ground Station", model.StationFixed, "Daejeon"},
	{"Jeju Maritime Satellite Ground Station", model.StationMaritime, "Jeju"},
	{"Incheon Airborne Relay Ground Station", model.StationAirborne, "Incheon"},
}

// SeedSatellites inserts the preset satellite fleet, skipping any preset
// whose name is already present. It returns the IDs of newly created
// records, so repeated calls are idempotent.
func (r *Registry) SeedSatellites() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var seeded []string
	for _, preset := range satellitePresets {
		if r.satelliteNameExistsLocked(preset.name) {
			continue
		}
		sat := &model.Satellite{
			ID:     newID("sat"),
			Name:   preset.name,
			Type:   preset.satType,
			Status: model.SatelliteAvailable,
		}
		r.satellites[sat.ID] = sat
		seeded = append(seeded, sat.ID)
	}
	return seeded
}

// SeedGroundStations inserts the preset ground stations, skipping presets
// whose name is already present.
func (r *Registry) SeedGroundStations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var seeded []string
	for _, preset := range stationPresets {
		if r.stationNameExistsLocked(preset.name) {
			continue
		}
		station := &model.GroundStation{
			ID:       newID("gnd"),
			Name:     preset.name,
			Type:     preset.stationType,
			Status:   model.StationOperational,
			Location: preset.location,
		}
		r.stations[station.ID] = station
		seeded = append(seeded, station.ID)
	}
	return seeded
}

func (r *Registry) satelliteNameExistsLocked(name string) bool {
	for _, sat := range r.satellites {
		if sat.Name == name {
			return true
		}
	}
	return false
}

func (r *Registry) stationNameExistsLocked(name string) bool {
	for _, station := range r.stations {
		if station.Name == name {
			return true
		}
	}
	return false
}
