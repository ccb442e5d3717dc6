package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/signalsfoundry/satti-simulator/model"
)

func TestSatelliteCRUD(t *testing.T) {
	reg := New()

	sat, err := reg.CreateSatellite("TestSat-1", model.SatelliteTypeEOOptical, model.SatelliteAvailable)
	if err != nil {
		t.Fatalf("CreateSatellite: %v", err)
	}
	if !strings.HasPrefix(sat.ID, "sat-") {
		t.Errorf("satellite ID = %q, want sat- prefix", sat.ID)
	}

	got, err := reg.GetSatellite(sat.ID)
	if err != nil {
		t.Fatalf("GetSatellite: %v", err)
	}
	if got.Name != "TestSat-1" || got.Type != model.SatelliteTypeEOOptical {
		t.Errorf("got %+v, want name TestSat-1 type EO_OPTICAL", got)
	}

	newName := "TestSat-1b"
	status := model.SatelliteMaintenance
	updated, err := reg.UpdateSatellite(sat.ID, SatellitePatch{Name: &newName, Status: &status})
	if err != nil {
		t.Fatalf("UpdateSatellite: %v", err)
	}
	if updated.Name != newName || updated.Status != model.SatelliteMaintenance {
		t.Errorf("update result %+v, want name + status applied", updated)
	}

	deleted, err := reg.DeleteSatellite(sat.ID)
	if err != nil {
		t.Fatalf("DeleteSatellite: %v", err)
	}
	if deleted.Name != newName {
		t.Errorf("deleted name = %q, want %q", deleted.Name, newName)
	}
	if _, err := reg.GetSatellite(sat.ID); !errors.Is(err, ErrSatelliteNotFound) {
		t.Fatalf("GetSatellite after delete: err = %v, want ErrSatelliteNotFound", err)
	}
}

func TestSatelliteCreateValidation(t *testing.T) {
	reg := New()
	if _, err := reg.CreateSatellite("", model.SatelliteTypeSAR, model.SatelliteAvailable); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := reg.CreateSatellite("X", "THERMAL", model.SatelliteAvailable); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := reg.CreateSatellite("X", model.SatelliteTypeSAR, "SCRAPPED"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestGroundStationCRUD(t *testing.T) {
	reg := New()

	station, err := reg.CreateGroundStation("Pad-1", model.StationFixed, model.StationOperational, "Naro")
	if err != nil {
		t.Fatalf("CreateGroundStation: %v", err)
	}
	if !strings.HasPrefix(station.ID, "gnd-") {
		t.Errorf("ground station ID = %q, want gnd- prefix", station.ID)
	}

	loc := "Goheung"
	updated, err := reg.UpdateGroundStation(station.ID, GroundStationPatch{Location: &loc})
	if err != nil {
		t.Fatalf("UpdateGroundStation: %v", err)
	}
	if updated.Location != "Goheung" {
		t.Errorf("location = %q, want Goheung", updated.Location)
	}
	if updated.Name != "Pad-1" {
		t.Errorf("name changed unexpectedly: %q", updated.Name)
	}

	if _, err := reg.DeleteGroundStation(station.ID); err != nil {
		t.Fatalf("DeleteGroundStation: %v", err)
	}
	if _, err := reg.GetGroundStation(station.ID); !errors.Is(err, ErrGroundStationNotFound) {
		t.Fatalf("err = %v, want ErrGroundStationNotFound", err)
	}
}

func TestListReturnsCopies(t *testing.T) {
	reg := New()
	sat, err := reg.CreateSatellite("Immutable", model.SatelliteTypeEOOptical, model.SatelliteAvailable)
	if err != nil {
		t.Fatalf("CreateSatellite: %v", err)
	}

	listed := reg.ListSatellites()
	if len(listed) != 1 {
		t.Fatalf("list length = %d, want 1", len(listed))
	}
	listed[0].Name = "Mutated"

	got, err := reg.GetSatellite(sat.ID)
	if err != nil {
		t.Fatalf("GetSatellite: %v", err)
	}
	if got.Name != "Immutable" {
		t.Fatalf("stored record mutated through list copy: %q", got.Name)
	}
}

func TestSeedSatellitesIsIdempotent(t *testing.T) {
	reg := New()

	first := reg.SeedSatellites()
	if len(first) != len(satellitePresets) {
		t.Fatalf("first seed created %d satellites, want %d", len(first), len(satellitePresets))
	}
	second := reg.SeedSatellites()
	if len(second) != 0 {
		t.Fatalf("second seed created %d satellites, want 0", len(second))
	}
	if got := len(reg.ListSatellites()); got != len(satellitePresets) {
		t.Fatalf("registry holds %d satellites, want %d", got, len(satellitePresets))
	}
}

func TestSeedGroundStationsIsIdempotent(t *testing.T) {
	reg := New()

	first := reg.SeedGroundStations()
	if len(first) != len(stationPresets) {
		t.Fatalf("first seed created %d stations, want %d", len(first), len(stationPresets))
	}
	if got := reg.SeedGroundStations(); len(got) != 0 {
		t.Fatalf("second seed created %d stations, want 0", len(got))
	}

	// The presets cover three distinct station classes.
	types := map[model.GroundStationType]bool{}
	for _, station := range reg.ListGroundStations() {
		types[station.Type] = true
	}
	for _, want := range []model.GroundStationType{model.StationFixed, model.StationMaritime, model.StationAirborne} {
		if !types[want] {
			t.Errorf("seeded stations missing type %s", want)
		}
	}
}
