package model

import "time"

// GeoPoint is a WGS84 latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is [min_lon, min_lat, max_lon, max_lat] in degrees.
type BoundingBox [4]float64

// Center returns the midpoint of the box.
func (b BoundingBox) Center() GeoPoint {
	return GeoPoint{
		Lat: (b[1] + b[3]) / 2.0,
		Lon: (b[0] + b[2]) / 2.0,
	}
}

// EOConstraints are the optical acquisition constraints of a request.
type EOConstraints struct {
	MaxCloudCoverPercent *int     `json:"max_cloud_cover_percent"`
	MaxOffNadirDeg       *float64 `json:"max_off_nadir_deg"`
	MinSunElevationDeg   *float64 `json:"min_sun_elevation_deg"`
}

// SARConstraints are the radar acquisition constraints of a request.
type SARConstraints struct {
	IncidenceMinDeg *float64      `json:"incidence_min_deg"`
	IncidenceMaxDeg *float64      `json:"incidence_max_deg"`
	LookSide        LookSide      `json:"look_side"`
	PassDirection   PassDirection `json:"pass_direction"`
	Polarization    *string       `json:"polarization"`
}

// Delivery describes how the product should be handed off.
type Delivery struct {
	Method DeliveryMethod `json:"method"`
	Path   *string        `json:"path"`
}

// Generation selects the product synthesis path for a command.
type Generation struct {
	Mode      GenerationMode    `json:"mode"`
	MapSource ExternalMapSource `json:"external_map_source"`
	MapZoom   int               `json:"external_map_zoom"`
}

// StationSnapshot freezes the ground station details at submission time so a
// later registry edit cannot change what a command reports.
type StationSnapshot struct {
	ID       string              `json:"ground_station_id"`
	Name     string              `json:"name"`
	Type     GroundStationType   `json:"type"`
	Status   GroundStationStatus `json:"status"`
	Location string              `json:"location,omitempty"`
}

// RequestProfile is the full tasking context captured at submission.
type RequestProfile struct {
	GroundStation  *StationSnapshot `json:"ground_station"`
	AOICenter      *GeoPoint        `json:"aoi_center"`
	AOIBBox        *BoundingBox     `json:"aoi_bbox"`
	WindowOpenUTC  *string          `json:"window_open_utc"`
	WindowCloseUTC *string          `json:"window_close_utc"`
	Priority       TaskPriority     `json:"priority"`
	EOConstraints  EOConstraints    `json:"eo_constraints"`
	SARConstraints SARConstraints   `json:"sar_constraints"`
	Delivery       Delivery         `json:"delivery"`
	Generation     Generation       `json:"generation"`
}

// TaskingParameters is everything the lifecycle engine needs to run one
// command. A rerun reuses these unchanged.
type TaskingParameters struct {
	SatelliteID     string         `json:"satellite_id"`
	MissionName     string         `json:"mission_name"`
	AOIName         string         `json:"aoi_name"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	CloudPercent    int            `json:"cloud_percent"`
	FailProbability float64        `json:"fail_probability"`
	Profile         RequestProfile `json:"request_profile"`
}

// AcquisitionMetadata describes how the image was (synthetically) captured.
// EO and SAR commands populate different subsets of the optional fields.
type AcquisitionMetadata struct {
	CapturedAt time.Time `json:"captured_at"`
	SensorMode string    `json:"sensor_mode"`

	// EO profile
	OffNadirDeg       *float64 `json:"off_nadir_deg,omitempty"`
	SunElevationDeg   *float64 `json:"sun_elevation_deg,omitempty"`
	CloudCoverPercent *int     `json:"cloud_cover_percent,omitempty"`
	GroundTrack       *string  `json:"ground_track,omitempty"`

	// SAR profile
	IncidenceAngleDeg *float64 `json:"incidence_angle_deg,omitempty"`
	LookSide          *string  `json:"look_side,omitempty"`
	PassDirection     *string  `json:"pass_direction,omitempty"`
	Polarization      *string  `json:"polarization,omitempty"`

	AOIName        string         `json:"aoi_name"`
	AOICenter      *GeoPoint      `json:"aoi_center"`
	AOIBBox        *BoundingBox   `json:"aoi_bbox"`
	GenerationMode GenerationMode `json:"generation_mode"`
}

// ProductMetadata describes the generated artifact.
type ProductMetadata struct {
	ProductType string `json:"product_type"`
	WidthPx     int    `json:"width_px"`
	HeightPx    int    `json:"height_px"`
	Format      string `json:"format"`

	// EO profile
	Bands    []string `json:"bands,omitempty"`
	GSDm     *float64 `json:"gsd_m,omitempty"`
	BitDepth *int     `json:"bit_depth,omitempty"`

	// SAR profile
	ResolutionM   *float64 `json:"resolution_m,omitempty"`
	SpeckleFilter *string  `json:"speckle_filter,omitempty"`

	Source Generation `json:"image_source"`
}

// Command is one uplink tasking command and its lifecycle outcome.
//
// Invariants maintained by the tasking store:
//   - Acquisition and Product are non-nil iff State == DOWNLINK_READY.
//   - FailureReason is non-empty iff State == FAILED.
//   - ArtifactRef is set when a product has been written; a bulk artifact
//     clear may remove it again without touching State.
type Command struct {
	ID            string            `json:"command_id"`
	SatelliteID   string            `json:"satellite_id"`
	SatelliteType SatelliteType     `json:"satellite_type"`
	Tasking       TaskingParameters `json:"-"`

	State         CommandState `json:"state"`
	Message       string       `json:"message,omitempty"`
	FailureReason string       `json:"failure_reason,omitempty"`

	ArtifactRef string               `json:"-"`
	Acquisition *AcquisitionMetadata `json:"acquisition_metadata"`
	Product     *ProductMetadata     `json:"product_metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
