package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/signalsfoundry/satti-simulator/internal/tasking"
	"github.com/signalsfoundry/satti-simulator/model"
)

const (
	minImageDim = 128
	maxImageDim = 4096

	defaultImageDim       = 1024
	defaultCloudPercent   = 20
	defaultMapZoom        = 19
	defaultFailProb       = 0.05
	defaultAOIName        = "unknown-aoi"
	defaultTaskPriority   = model.PriorityCommercial
	defaultDeliveryMethod = model.DeliveryDownload
	defaultGeneration     = model.GenerationInternal
	defaultMapSource      = model.MapSourceOSM
)

// validationError carries a client-facing detail string. Handlers turn it
// into a 422 response.
type validationError struct{ detail string }

func (e *validationError) Error() string { return e.detail }

func invalidf(format string, args ...any) error {
	return &validationError{detail: fmt.Sprintf(format, args...)}
}

// validateUplink applies the request defaults and cross-field rules, and
// converts the body into an engine submission.
func validateUplink(req uplinkRequest) (tasking.SubmitRequest, error) {
	var out tasking.SubmitRequest

	if req.SatelliteID == "" {
		return out, invalidf("satellite_id is required")
	}
	out.SatelliteID = req.SatelliteID

	if req.GroundStationID != nil {
		if n := len(*req.GroundStationID); n < 1 || n > 40 {
			return out, invalidf("ground_station_id must be 1-40 characters")
		}
		out.GroundStationID = *req.GroundStationID
	}

	if n := len(req.MissionName); n < 1 || n > 150 {
		return out, invalidf("mission_name must be 1-150 characters")
	}
	out.MissionName = req.MissionName

	out.AOIName = defaultAOIName
	if req.AOIName != nil {
		if n := len(*req.AOIName); n < 1 || n > 120 {
			return out, invalidf("aoi_name must be 1-120 characters")
		}
		out.AOIName = *req.AOIName
	}

	if (req.AOICenterLat == nil) != (req.AOICenterLon == nil) {
		return out, invalidf("aoi_center_lat and aoi_center_lon must be provided together")
	}
	if req.AOICenterLat != nil {
		lat, lon := *req.AOICenterLat, *req.AOICenterLon
		if lat < -90 || lat > 90 {
			return out, invalidf("aoi_center_lat must be between -90 and 90")
		}
		if lon < -180 || lon > 180 {
			return out, invalidf("aoi_center_lon must be between -180 and 180")
		}
		out.AOICenter = &model.GeoPoint{Lat: lat, Lon: lon}
	}

	if req.AOIBBox != nil {
		if len(req.AOIBBox) != 4 {
			return out, invalidf("aoi_bbox must have exactly 4 elements")
		}
		bbox := model.BoundingBox{req.AOIBBox[0], req.AOIBBox[1], req.AOIBBox[2], req.AOIBBox[3]}
		if bbox[0] >= bbox[2] || bbox[1] >= bbox[3] {
			return out, invalidf("aoi_bbox must be [min_lon, min_lat, max_lon, max_lat] with min < max")
		}
		out.AOIBBox = &bbox
	}

	if req.WindowOpenUTC != nil && req.WindowCloseUTC != nil {
		openAt, err := parseWindowTime(*req.WindowOpenUTC)
		if err != nil {
			return out, invalidf("window_open_utc/window_close_utc must be ISO8601")
		}
		closeAt, err := parseWindowTime(*req.WindowCloseUTC)
		if err != nil {
			return out, invalidf("window_open_utc/window_close_utc must be ISO8601")
		}
		if !openAt.Before(closeAt) {
			return out, invalidf("window_open_utc must be earlier than window_close_utc")
		}
	}
	out.WindowOpenUTC = req.WindowOpenUTC
	out.WindowCloseUTC = req.WindowCloseUTC

	out.Priority = defaultTaskPriority
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return out, invalidf("priority must be one of BACKGROUND, COMMERCIAL, URGENT")
		}
		out.Priority = *req.Priority
	}

	var err error
	if out.Width, err = boundedInt("width", req.Width, defaultImageDim, minImageDim, maxImageDim); err != nil {
		return out, err
	}
	if out.Height, err = boundedInt("height", req.Height, defaultImageDim, minImageDim, maxImageDim); err != nil {
		return out, err
	}
	if out.CloudPercent, err = boundedInt("cloud_percent", req.CloudPercent, defaultCloudPercent, 0, 100); err != nil {
		return out, err
	}

	if req.MaxCloudCoverPercent != nil {
		if v := *req.MaxCloudCoverPercent; v < 0 || v > 100 {
			return out, invalidf("max_cloud_cover_percent must be between 0 and 100")
		}
	}
	if req.MaxOffNadirDeg != nil {
		if v := *req.MaxOffNadirDeg; v < 0 || v > 45 {
			return out, invalidf("max_off_nadir_deg must be between 0 and 45")
		}
	}
	if req.MinSunElevationDeg != nil {
		if v := *req.MinSunElevationDeg; v < 0 || v > 90 {
			return out, invalidf("min_sun_elevation_deg must be between 0 and 90")
		}
	}
	out.EO = model.EOConstraints{
		MaxCloudCoverPercent: req.MaxCloudCoverPercent,
		MaxOffNadirDeg:       req.MaxOffNadirDeg,
		MinSunElevationDeg:   req.MinSunElevationDeg,
	}

	if req.IncidenceMinDeg != nil && (*req.IncidenceMinDeg < 0 || *req.IncidenceMinDeg > 90) {
		return out, invalidf("incidence_min_deg must be between 0 and 90")
	}
	if req.IncidenceMaxDeg != nil && (*req.IncidenceMaxDeg < 0 || *req.IncidenceMaxDeg > 90) {
		return out, invalidf("incidence_max_deg must be between 0 and 90")
	}
	if req.IncidenceMinDeg != nil && req.IncidenceMaxDeg != nil && *req.IncidenceMinDeg > *req.IncidenceMaxDeg {
		return out, invalidf("incidence_min_deg must be <= incidence_max_deg")
	}
	out.SAR = model.SARConstraints{
		IncidenceMinDeg: req.IncidenceMinDeg,
		IncidenceMaxDeg: req.IncidenceMaxDeg,
		LookSide:        model.LookAny,
		PassDirection:   model.PassAny,
	}
	if req.LookSide != nil {
		if !req.LookSide.Valid() {
			return out, invalidf("look_side must be one of ANY, LEFT, RIGHT")
		}
		out.SAR.LookSide = *req.LookSide
	}
	if req.PassDirection != nil {
		if !req.PassDirection.Valid() {
			return out, invalidf("pass_direction must be one of ANY, ASCENDING, DESCENDING")
		}
		out.SAR.PassDirection = *req.PassDirection
	}
	if req.Polarization != nil {
		if len(*req.Polarization) > 10 {
			return out, invalidf("polarization must be at most 10 characters")
		}
		out.SAR.Polarization = req.Polarization
	}

	out.Delivery = model.Delivery{Method: defaultDeliveryMethod}
	if req.DeliveryMethod != nil {
		if !req.DeliveryMethod.Valid() {
			return out, invalidf("delivery_method must be one of DOWNLOAD, S3, WEBHOOK")
		}
		out.Delivery.Method = *req.DeliveryMethod
	}
	if req.DeliveryPath != nil {
		if len(*req.DeliveryPath) > 500 {
			return out, invalidf("delivery_path must be at most 500 characters")
		}
		out.Delivery.Path = req.DeliveryPath
	}
	if (out.Delivery.Method == model.DeliveryS3 || out.Delivery.Method == model.DeliveryWebhook) &&
		(out.Delivery.Path == nil || *out.Delivery.Path == "") {
		return out, invalidf("delivery_path is required when delivery_method is S3 or WEBHOOK")
	}

	out.Generation = model.Generation{
		Mode:      defaultGeneration,
		MapSource: defaultMapSource,
		MapZoom:   defaultMapZoom,
	}
	if req.GenerationMode != nil {
		if !req.GenerationMode.Valid() {
			return out, invalidf("generation_mode must be INTERNAL or EXTERNAL")
		}
		out.Generation.Mode = *req.GenerationMode
	}
	if req.ExternalMapSource != nil {
		if !req.ExternalMapSource.Valid() {
			return out, invalidf("external_map_source must be OSM")
		}
		out.Generation.MapSource = *req.ExternalMapSource
	}
	if req.ExternalMapZoom != nil {
		if v := *req.ExternalMapZoom; v < 1 || v > 19 {
			return out, invalidf("external_map_zoom must be between 1 and 19")
		}
		out.Generation.MapZoom = *req.ExternalMapZoom
	}
	if out.Generation.Mode == model.GenerationExternal && out.AOICenter == nil && out.AOIBBox == nil {
		return out, invalidf("EXTERNAL generation requires aoi_center_lat/lon or aoi_bbox")
	}

	out.FailProbability = defaultFailProb
	if req.FailProbability != nil {
		if v := *req.FailProbability; v < 0 || v > 1 {
			return out, invalidf("fail_probability must be between 0.0 and 1.0")
		}
		out.FailProbability = *req.FailProbability
	}

	return out, nil
}

func boundedInt(name string, v *int, def, lo, hi int) (int, error) {
	if v == nil {
		return def, nil
	}
	if *v < lo || *v > hi {
		return 0, invalidf("%s must be between %d and %d", name, lo, hi)
	}
	return *v, nil
}

// parseWindowTime accepts RFC3339 timestamps and the common naive ISO8601
// form without a zone offset.
func parseWindowTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if !strings.ContainsAny(value, "Zz+") {
		if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse %q: not ISO8601", value)
}
