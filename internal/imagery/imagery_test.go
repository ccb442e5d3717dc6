package imagery

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/signalsfoundry/satti-simulator/model"
)

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode generated PNG: %v", err)
	}
	return img
}

func TestOpticalGeneratesExpectedDimensions(t *testing.T) {
	gen := NewOptical(rand.New(rand.NewSource(7)))
	data, err := gen.Generate(context.Background(), Request{
		SatelliteType: model.SatelliteTypeEOOptical,
		Width:         256,
		Height:        128,
		CloudPercent:  40,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	img := decodePNG(t, data)
	if img.Bounds().Dx() != 256 || img.Bounds().Dy() != 128 {
		t.Fatalf("image size = %v, want 256x128", img.Bounds())
	}
}

func TestOpticalCloudSpeckleScalesWithCloudPercent(t *testing.T) {
	gen := NewOptical(rand.New(rand.NewSource(1)))

	count := func(cloudPercent int) int {
		data, err := gen.Generate(context.Background(), Request{Width: 128, Height: 128, CloudPercent: cloudPercent})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		img := decodePNG(t, data)
		bright := 0
		for y := 0; y < 128; y++ {
			for x := 0; x < 128; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)
				if r8 == g8 && g8 == b8 && r8 >= 190 {
					bright++
				}
			}
		}
		return bright
	}

	clear := count(0)
	overcast := count(100)
	if overcast <= clear {
		t.Fatalf("cloud speckle did not grow with cloud percent: clear=%d overcast=%d", clear, overcast)
	}
}

func TestSARGeneratesGrayscaleRamp(t *testing.T) {
	gen := NewSAR(rand.New(rand.NewSource(3)))
	data, err := gen.Generate(context.Background(), Request{
		SatelliteType: model.SatelliteTypeSAR,
		Width:         64,
		Height:        200,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	img := decodePNG(t, data)
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 200 {
		t.Fatalf("image size = %v, want 64x200", img.Bounds())
	}

	// Averaged over a row, speckle cancels and the bottom of the ramp
	// should read brighter than the top.
	rowMean := func(y int) float64 {
		sum := 0.0
		for x := 0; x < 64; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			sum += float64(r >> 8)
		}
		return sum / 64
	}
	if top, bottom := rowMean(2), rowMean(197); bottom-top < 100 {
		t.Fatalf("ramp too flat: top=%.1f bottom=%.1f", top, bottom)
	}
}

func tileServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	tile := image.NewRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			tile.SetRGBA(x, y, color.RGBA{R: 10, G: 120, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, tile); err != nil {
		t.Fatalf("encode tile: %v", err)
	}
	encoded := buf.Bytes()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("tile request missing User-Agent header")
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(encoded)
	}))
}

func TestTileFetcherBuildsMosaic(t *testing.T) {
	var hits atomic.Int32
	srv := tileServer(t, &hits)
	defer srv.Close()

	fetcher := NewTileFetcher(srv.Client(), srv.URL+"/%d/%d/%d.png")
	center := model.GeoPoint{Lat: 37.5665, Lon: 126.978}
	data, err := fetcher.Generate(context.Background(), Request{
		Width:      300,
		Height:     180,
		Generation: model.Generation{Mode: model.GenerationExternal, MapSource: model.MapSourceOSM, MapZoom: 15},
		Center:     &center,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if got := hits.Load(); got != 9 {
		t.Fatalf("tile fetches = %d, want 9 (3x3 mosaic)", got)
	}
	img := decodePNG(t, data)
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 180 {
		t.Fatalf("image size = %v, want 300x180", img.Bounds())
	}
	r, g, b, _ := img.At(150, 90).RGBA()
	if uint8(r>>8) != 10 || uint8(g>>8) != 120 || uint8(b>>8) != 10 {
		t.Fatalf("center pixel = (%d,%d,%d), want tile color (10,120,10)", r>>8, g>>8, b>>8)
	}
}

func TestTileFetcherUsesBBoxCenter(t *testing.T) {
	srv := tileServer(t, nil)
	defer srv.Close()

	fetcher := NewTileFetcher(srv.Client(), srv.URL+"/%d/%d/%d.png")
	bbox := model.BoundingBox{126.9, 37.4, 127.1, 37.6}
	_, err := fetcher.Generate(context.Background(), Request{
		Width:      128,
		Height:     128,
		Generation: model.Generation{Mode: model.GenerationExternal, MapZoom: 12},
		BBox:       &bbox,
	})
	if err != nil {
		t.Fatalf("Generate with bbox: %v", err)
	}
}

func TestTileFetcherRequiresAOI(t *testing.T) {
	fetcher := NewTileFetcher(nil, "http://invalid/%d/%d/%d.png")
	_, err := fetcher.Generate(context.Background(), Request{
		Width:      128,
		Height:     128,
		Generation: model.Generation{Mode: model.GenerationExternal},
	})
	if !errors.Is(err, ErrAOIRequired) {
		t.Fatalf("err = %v, want ErrAOIRequired", err)
	}
}

func TestTileFetcherRejectsUnknownSource(t *testing.T) {
	fetcher := NewTileFetcher(nil, "http://invalid/%d/%d/%d.png")
	center := model.GeoPoint{Lat: 0, Lon: 0}
	_, err := fetcher.Generate(context.Background(), Request{
		Width:      128,
		Height:     128,
		Generation: model.Generation{Mode: model.GenerationExternal, MapSource: "GOOGLE"},
		Center:     &center,
	})
	if err == nil {
		t.Fatal("expected error for unsupported map source")
	}
}

func TestTileFetcherPropagatesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	fetcher := NewTileFetcher(srv.Client(), srv.URL+"/%d/%d/%d.png")
	center := model.GeoPoint{Lat: 35.0, Lon: 128.0}
	_, err := fetcher.Generate(context.Background(), Request{
		Width:      64,
		Height:     64,
		Generation: model.Generation{Mode: model.GenerationExternal, MapZoom: 10},
		Center:     &center,
	})
	if err == nil {
		t.Fatal("expected error when tile server fails")
	}
}

func TestLatLonToTileClampsLatitude(t *testing.T) {
	_, yTop := latLonToTile(89.9, 0, 10)
	_, yLimit := latLonToTile(maxLatitude, 0, 10)
	if math.Abs(yTop-yLimit) > 1e-9 {
		t.Fatalf("latitude beyond Mercator limit not clamped: %v vs %v", yTop, yLimit)
	}

	x, y := latLonToTile(0, 0, 1)
	if x != 1 || y != 1 {
		t.Fatalf("equator/prime meridian at zoom 1 = (%v,%v), want (1,1)", x, y)
	}
}

func TestDispatcherRoutes(t *testing.T) {
	optical := NewOptical(rand.New(rand.NewSource(1)))
	sar := NewSAR(rand.New(rand.NewSource(2)))
	srv := tileServer(t, nil)
	defer srv.Close()
	external := NewTileFetcher(srv.Client(), srv.URL+"/%d/%d/%d.png")

	d := NewDispatcher(optical, sar, external)

	rgbReq := Request{SatelliteType: model.SatelliteTypeEOOptical, Width: 32, Height: 32, Generation: model.Generation{Mode: model.GenerationInternal}}
	data, err := d.Generate(context.Background(), rgbReq)
	if err != nil {
		t.Fatalf("optical dispatch: %v", err)
	}
	if img := decodePNG(t, data); img.ColorModel() == color.GrayModel {
		t.Error("optical product should not be grayscale")
	}

	sarReq := Request{SatelliteType: model.SatelliteTypeSAR, Width: 32, Height: 32, Generation: model.Generation{Mode: model.GenerationInternal}}
	data, err = d.Generate(context.Background(), sarReq)
	if err != nil {
		t.Fatalf("sar dispatch: %v", err)
	}
	if img := decodePNG(t, data); img.ColorModel() != color.GrayModel {
		t.Error("sar product should be grayscale")
	}

	center := model.GeoPoint{Lat: 37.0, Lon: 127.0}
	extReq := Request{
		SatelliteType: model.SatelliteTypeSAR,
		Width:         32, Height: 32,
		Generation: model.Generation{Mode: model.GenerationExternal, MapZoom: 8},
		Center:     &center,
	}
	if _, err := d.Generate(context.Background(), extReq); err != nil {
		t.Fatalf("external dispatch: %v", err)
	}
}
