package model

// SatelliteType distinguishes the two sensor families the simulator models.
type SatelliteType string

const (
	SatelliteTypeEOOptical SatelliteType = "EO_OPTICAL"
	SatelliteTypeSAR       SatelliteType = "SAR"
)

// Valid reports whether t is a known satellite type.
func (t SatelliteType) Valid() bool {
	return t == SatelliteTypeEOOptical || t == SatelliteTypeSAR
}

// CommandState is the lifecycle state of an uplink command.
type CommandState string

const (
	StateQueued        CommandState = "QUEUED"
	StateAcked         CommandState = "ACKED"
	StateCapturing     CommandState = "CAPTURING"
	StateDownlinkReady CommandState = "DOWNLINK_READY"
	StateFailed        CommandState = "FAILED"
)

// Terminal reports whether the state ends a command's progression.
func (s CommandState) Terminal() bool {
	return s == StateDownlinkReady || s == StateFailed
}

// InProgress reports whether the command is still being worked by the engine.
func (s CommandState) InProgress() bool {
	return s == StateQueued || s == StateAcked || s == StateCapturing
}

// SatelliteStatus is the operational status of a satellite.
type SatelliteStatus string

const (
	SatelliteAvailable   SatelliteStatus = "AVAILABLE"
	SatelliteMaintenance SatelliteStatus = "MAINTENANCE"
)

func (s SatelliteStatus) Valid() bool {
	return s == SatelliteAvailable || s == SatelliteMaintenance
}

// GroundStationType describes the station platform class.
type GroundStationType string

const (
	StationFixed      GroundStationType = "FIXED"
	StationLandMobile GroundStationType = "LAND_MOBILE"
	StationMaritime   GroundStationType = "MARITIME"
	StationAirborne   GroundStationType = "AIRBORNE"
)

func (t GroundStationType) Valid() bool {
	switch t {
	case StationFixed, StationLandMobile, StationMaritime, StationAirborne:
		return true
	}
	return false
}

// GroundStationStatus is the operational status of a ground station.
type GroundStationStatus string

const (
	StationOperational GroundStationStatus = "OPERATIONAL"
	StationMaintenance GroundStationStatus = "MAINTENANCE"
)

func (s GroundStationStatus) Valid() bool {
	return s == StationOperational || s == StationMaintenance
}

// TaskPriority orders competing tasking requests.
type TaskPriority string

const (
	PriorityBackground TaskPriority = "BACKGROUND"
	PriorityCommercial TaskPriority = "COMMERCIAL"
	PriorityUrgent     TaskPriority = "URGENT"
)

func (p TaskPriority) Valid() bool {
	return p == PriorityBackground || p == PriorityCommercial || p == PriorityUrgent
}

// LookSide is the SAR antenna look-side constraint.
type LookSide string

const (
	LookAny   LookSide = "ANY"
	LookLeft  LookSide = "LEFT"
	LookRight LookSide = "RIGHT"
)

func (l LookSide) Valid() bool {
	return l == LookAny || l == LookLeft || l == LookRight
}

// PassDirection is the orbital pass-direction constraint.
type PassDirection string

const (
	PassAny        PassDirection = "ANY"
	PassAscending  PassDirection = "ASCENDING"
	PassDescending PassDirection = "DESCENDING"
)

func (p PassDirection) Valid() bool {
	return p == PassAny || p == PassAscending || p == PassDescending
}

// DeliveryMethod selects how a finished product is delivered.
type DeliveryMethod string

const (
	DeliveryDownload DeliveryMethod = "DOWNLOAD"
	DeliveryS3       DeliveryMethod = "S3"
	DeliveryWebhook  DeliveryMethod = "WEBHOOK"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryDownload || m == DeliveryS3 || m == DeliveryWebhook
}

// GenerationMode selects between synthesized rasters and external map imagery.
type GenerationMode string

const (
	GenerationInternal GenerationMode = "INTERNAL"
	GenerationExternal GenerationMode = "EXTERNAL"
)

func (m GenerationMode) Valid() bool {
	return m == GenerationInternal || m == GenerationExternal
}

// ExternalMapSource names the upstream tile provider for EXTERNAL mode.
type ExternalMapSource string

const (
	MapSourceOSM ExternalMapSource = "OSM"
)

func (s ExternalMapSource) Valid() bool {
	return s == MapSourceOSM
}
