package api

import (
	"time"

	"github.com/signalsfoundry/satti-simulator/model"
)

// Request bodies use pointers for every field with a server-side default so
// "absent" and "zero" stay distinguishable during validation.

type createSatelliteRequest struct {
	Name   string                 `json:"name"`
	Type   model.SatelliteType    `json:"type"`
	Status *model.SatelliteStatus `json:"status"`
}

type updateSatelliteRequest struct {
	Name   *string                `json:"name"`
	Status *model.SatelliteStatus `json:"status"`
}

type createGroundStationRequest struct {
	Name     string                     `json:"name"`
	Type     model.GroundStationType    `json:"type"`
	Status   *model.GroundStationStatus `json:"status"`
	Location *string                    `json:"location"`
}

type updateGroundStationRequest struct {
	Name     *string                    `json:"name"`
	Status   *model.GroundStationStatus `json:"status"`
	Location *string                    `json:"location"`
}

type uplinkRequest struct {
	SatelliteID     string  `json:"satellite_id"`
	GroundStationID *string `json:"ground_station_id"`
	MissionName     string  `json:"mission_name"`
	AOIName         *string `json:"aoi_name"`

	AOICenterLat *float64  `json:"aoi_center_lat"`
	AOICenterLon *float64  `json:"aoi_center_lon"`
	AOIBBox      []float64 `json:"aoi_bbox"`

	WindowOpenUTC  *string `json:"window_open_utc"`
	WindowCloseUTC *string `json:"window_close_utc"`

	Priority *model.TaskPriority `json:"priority"`

	Width        *int `json:"width"`
	Height       *int `json:"height"`
	CloudPercent *int `json:"cloud_percent"`

	MaxCloudCoverPercent *int     `json:"max_cloud_cover_percent"`
	MaxOffNadirDeg       *float64 `json:"max_off_nadir_deg"`
	MinSunElevationDeg   *float64 `json:"min_sun_elevation_deg"`

	IncidenceMinDeg *float64             `json:"incidence_min_deg"`
	IncidenceMaxDeg *float64             `json:"incidence_max_deg"`
	LookSide        *model.LookSide      `json:"look_side"`
	PassDirection   *model.PassDirection `json:"pass_direction"`
	Polarization    *string              `json:"polarization"`

	DeliveryMethod *model.DeliveryMethod `json:"delivery_method"`
	DeliveryPath   *string               `json:"delivery_path"`

	GenerationMode    *model.GenerationMode    `json:"generation_mode"`
	ExternalMapSource *model.ExternalMapSource `json:"external_map_source"`
	ExternalMapZoom   *int                     `json:"external_map_zoom"`

	FailProbability *float64 `json:"fail_probability"`
}

type satelliteResponse struct {
	SatelliteID string                `json:"satellite_id"`
	Name        string                `json:"name"`
	Type        model.SatelliteType   `json:"type"`
	Status      model.SatelliteStatus `json:"status"`
	Profile     model.TypeProfile     `json:"profile"`
}

type groundStationResponse struct {
	GroundStationID string                    `json:"ground_station_id"`
	Name            string                    `json:"name"`
	Type            model.GroundStationType   `json:"type"`
	Status          model.GroundStationStatus `json:"status"`
	Location        *string                   `json:"location"`
}

type seedSatellitesResponse struct {
	SatelliteIDs []string `json:"satellite_ids"`
}

type seedGroundStationsResponse struct {
	GroundStationIDs []string `json:"ground_station_ids"`
}

type uplinkResponse struct {
	CommandID         string                   `json:"command_id"`
	State             model.CommandState       `json:"state"`
	SatelliteID       string                   `json:"satellite_id"`
	SatelliteType     model.SatelliteType      `json:"satellite_type"`
	GroundStationID   *string                  `json:"ground_station_id"`
	GroundStationName *string                  `json:"ground_station_name"`
	GroundStationType *model.GroundStationType `json:"ground_station_type"`
	MissionName       string                   `json:"mission_name"`
	AOIName           string                   `json:"aoi_name"`
	CreatedAt         string                   `json:"created_at"`
}

type commandStatusResponse struct {
	CommandID         string                   `json:"command_id"`
	SatelliteID       string                   `json:"satellite_id"`
	SatelliteType     model.SatelliteType      `json:"satellite_type"`
	GroundStationID   *string                  `json:"ground_station_id"`
	GroundStationName *string                  `json:"ground_station_name"`
	GroundStationType *model.GroundStationType `json:"ground_station_type"`
	MissionName       string                   `json:"mission_name"`
	AOIName           string                   `json:"aoi_name"`
	Width             int                      `json:"width"`
	Height            int                      `json:"height"`
	CloudPercent      int                      `json:"cloud_percent"`
	FailProbability   float64                  `json:"fail_probability"`

	State   model.CommandState `json:"state"`
	Message string             `json:"message"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	DownloadURL *string `json:"download_url"`

	RequestProfile      model.RequestProfile       `json:"request_profile"`
	AcquisitionMetadata *model.AcquisitionMetadata `json:"acquisition_metadata"`
	ProductMetadata     *model.ProductMetadata     `json:"product_metadata"`
}

type commandHistoryEntry struct {
	State      model.CommandState `json:"state"`
	Message    string             `json:"message"`
	OccurredAt time.Time          `json:"occurred_at"`
}

type saveLocalResponse struct {
	CommandID     string `json:"command_id"`
	SavedPath     string `json:"saved_path"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	Message       string `json:"message"`
}

type clearImagesResponse struct {
	DeletedCount        int    `json:"deleted_count"`
	ClearedCommandCount int    `json:"cleared_command_count"`
	Message             string `json:"message"`
}
