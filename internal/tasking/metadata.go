package tasking

import (
	"math"
	"time"

	"github.com/signalsfoundry/satti-simulator/model"
)

// synthesizeMetadata builds plausible acquisition and product metadata for a
// finished command. Angles and resolutions are drawn from the nominal ranges
// of each sensor family.
func synthesizeMetadata(sampler *Sampler, sat model.Satellite, cmd *model.Command, capturedAt time.Time) (*model.AcquisitionMetadata, *model.ProductMetadata) {
	profile := model.TypeProfiles[sat.Type]
	tasking := cmd.Tasking

	acq := &model.AcquisitionMetadata{
		CapturedAt:     capturedAt,
		SensorMode:     sampler.Choice(profile.SensorModes),
		AOIName:        tasking.AOIName,
		AOICenter:      tasking.Profile.AOICenter,
		AOIBBox:        tasking.Profile.AOIBBox,
		GenerationMode: tasking.Profile.Generation.Mode,
	}
	product := &model.ProductMetadata{
		ProductType: profile.DefaultProductType,
		WidthPx:     tasking.Width,
		HeightPx:    tasking.Height,
		Format:      "PNG",
		Source:      tasking.Profile.Generation,
	}

	if sat.Type == model.SatelliteTypeEOOptical {
		offNadir := round2(sampler.Float(2.0, 28.0))
		sunElev := round2(sampler.Float(20.0, 65.0))
		cloud := tasking.CloudPercent
		track := sampler.Choice([]string{"ASCENDING", "DESCENDING"})
		acq.OffNadirDeg = &offNadir
		acq.SunElevationDeg = &sunElev
		acq.CloudCoverPercent = &cloud
		acq.GroundTrack = &track

		gsd := round2(sampler.Float(0.5, 1.5))
		bitDepth := 8
		product.Bands = profile.DefaultBands
		product.GSDm = &gsd
		product.BitDepth = &bitDepth
		return acq, product
	}

	incidence := round2(sampler.Float(20.0, 45.0))
	lookSide := sampler.Choice([]string{"LEFT", "RIGHT"})
	passDir := sampler.Choice([]string{"ASCENDING", "DESCENDING"})
	polarization := sampler.Choice(profile.DefaultBands)
	acq.IncidenceAngleDeg = &incidence
	acq.LookSide = &lookSide
	acq.PassDirection = &passDir
	acq.Polarization = &polarization

	resolution := round2(sampler.Float(0.8, 3.0))
	speckleFilter := sampler.Choice([]string{"NONE", "LEE_3x3"})
	product.ResolutionM = &resolution
	product.SpeckleFilter = &speckleFilter
	return acq, product
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
