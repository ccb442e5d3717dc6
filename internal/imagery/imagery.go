// Package imagery synthesizes PNG image products for completed commands.
// EO commands get a tri-color gradient with cloud speckle, SAR commands a
// grayscale speckled backscatter ramp, and EXTERNAL mode fetches real map
// tiles around the area of interest.
package imagery

import (
	"context"
	"errors"
	"fmt"

	"github.com/signalsfoundry/satti-simulator/model"
)

// ErrAOIRequired indicates an external request carried neither an AOI
// center nor a bounding box.
var ErrAOIRequired = errors.New("external generation requires AOI center or bbox")

// Request describes one product to synthesize.
type Request struct {
	SatelliteType model.SatelliteType
	Width         int
	Height        int
	CloudPercent  int
	Generation    model.Generation
	Center        *model.GeoPoint
	BBox          *model.BoundingBox
}

// CenterPoint resolves the AOI center, preferring an explicit center over
// the bounding box midpoint.
func (r Request) CenterPoint() (model.GeoPoint, error) {
	if r.Center != nil {
		return *r.Center, nil
	}
	if r.BBox != nil {
		return r.BBox.Center(), nil
	}
	return model.GeoPoint{}, ErrAOIRequired
}

// Generator produces an encoded PNG for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// Dispatcher routes requests to the matching generator: EXTERNAL mode wins
// over the sensor family, otherwise the satellite type decides.
type Dispatcher struct {
	optical  Generator
	sar      Generator
	external Generator
}

// NewDispatcher wires the three generator paths.
func NewDispatcher(optical, sar, external Generator) *Dispatcher {
	return &Dispatcher{optical: optical, sar: sar, external: external}
}

// Generate renders the product for req.
func (d *Dispatcher) Generate(ctx context.Context, req Request) ([]byte, error) {
	switch {
	case req.Generation.Mode == model.GenerationExternal:
		if d.external == nil {
			return nil, errors.New("external generation is not configured")
		}
		return d.external.Generate(ctx, req)
	case req.SatelliteType == model.SatelliteTypeEOOptical:
		return d.optical.Generate(ctx, req)
	case req.SatelliteType == model.SatelliteTypeSAR:
		return d.sar.Generate(ctx, req)
	default:
		return nil, fmt.Errorf("unknown satellite type %q", req.SatelliteType)
	}
}
