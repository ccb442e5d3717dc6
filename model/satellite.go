package model

// Satellite is a registered imaging asset. The tasking core treats it as
// read-only context for product generation.
type Satellite struct {
	ID     string          `json:"satellite_id"`
	Name   string          `json:"name"`
	Type   SatelliteType   `json:"type"`
	Status SatelliteStatus `json:"status"`
}

// GroundStation is a registered receive/relay site.
type GroundStation struct {
	ID       string              `json:"ground_station_id"`
	Name     string              `json:"name"`
	Type     GroundStationType   `json:"type"`
	Status   GroundStationStatus `json:"status"`
	Location string              `json:"location,omitempty"`
}

// TypeProfile carries the nominal platform characteristics for a satellite
// type. Values feed product metadata; they are descriptive, not orbital truth.
type TypeProfile struct {
	Platform           string        `json:"platform"`
	OrbitType          string        `json:"orbit_type"`
	NominalAltitudeKm  int           `json:"nominal_altitude_km"`
	NominalSwathKm     int           `json:"nominal_swath_km"`
	RevisitHours       int           `json:"revisit_hours"`
	SensorModes        []string      `json:"sensor_modes"`
	DefaultProductType string        `json:"default_product_type"`
	DefaultBands       []string      `json:"default_bands_or_polarization"`
}

// TypeProfiles maps each satellite type to its nominal profile.
var TypeProfiles = map[SatelliteType]TypeProfile{
	SatelliteTypeEOOptical: {
		Platform:           "Sun-synchronous LEO",
		OrbitType:          "SSO",
		NominalAltitudeKm:  500,
		NominalSwathKm:     24,
		RevisitHours:       24,
		SensorModes:        []string{"NADIR", "OFF_NADIR"},
		DefaultProductType: "L1B_ORTHOREADY",
		DefaultBands:       []string{"R", "G", "B", "NIR"},
	},
	SatelliteTypeSAR: {
		Platform:           "Low Earth Orbit radar",
		OrbitType:          "LEO",
		NominalAltitudeKm:  550,
		NominalSwathKm:     30,
		RevisitHours:       12,
		SensorModes:        []string{"SPOTLIGHT", "STRIPMAP"},
		DefaultProductType: "GRD",
		DefaultBands:       []string{"VV", "VH"},
	},
}
