package model

import "time"

// CommandEvent records one state transition of a command. It is the payload
// shared by the event bus, the audit trail, and the live event stream.
type CommandEvent struct {
	CommandID   string       `json:"command_id"`
	SatelliteID string       `json:"satellite_id"`
	State       CommandState `json:"state"`
	Message     string       `json:"message,omitempty"`
	At          time.Time    `json:"at"`
}
