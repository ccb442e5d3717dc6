package imagery

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"net/http"

	_ "image/jpeg" // tile servers occasionally answer with JPEG

	"github.com/signalsfoundry/satti-simulator/model"
)

const tileSize = 256

const defaultZoom = 19

// Web Mercator latitude limit.
const maxLatitude = 85.05112878

// TileFetcher builds real-map products from slippy-map tiles. It fetches a
// 3x3 mosaic around the AOI center, crops one tile's worth of pixels around
// the fractional center, and resizes to the requested dimensions.
type TileFetcher struct {
	client      *http.Client
	urlTemplate string // three %d verbs: zoom, x, y
	userAgent   string
}

// NewTileFetcher constructs a fetcher. A nil client gets http.DefaultClient;
// callers normally pass one with a timeout.
func NewTileFetcher(client *http.Client, urlTemplate string) *TileFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &TileFetcher{
		client:      client,
		urlTemplate: urlTemplate,
		userAgent:   "satti-sim/0.2 (+https://localhost; contact: local-dev)",
	}
}

// Generate renders the external-map PNG for req.
func (f *TileFetcher) Generate(ctx context.Context, req Request) ([]byte, error) {
	if src := req.Generation.MapSource; src != "" && src != model.MapSourceOSM {
		return nil, fmt.Errorf("unsupported external map source %q", src)
	}
	center, err := req.CenterPoint()
	if err != nil {
		return nil, err
	}
	zoom := req.Generation.MapZoom
	if zoom == 0 {
		zoom = defaultZoom
	}
	return f.Map(ctx, center.Lat, center.Lon, zoom, req.Width, req.Height)
}

// Map fetches and assembles a map image centered on the given coordinate.
func (f *TileFetcher) Map(ctx context.Context, lat, lon float64, zoom, width, height int) ([]byte, error) {
	tileXf, tileYf := latLonToTile(lat, lon, zoom)
	tileX := int(math.Floor(tileXf))
	tileY := int(math.Floor(tileYf))

	mosaic := image.NewRGBA(image.Rect(0, 0, tileSize*3, tileSize*3))
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			tile, err := f.fetchTile(ctx, zoom, tileX+dx, tileY+dy)
			if err != nil {
				return nil, fmt.Errorf("external map tile fetch failed: %w", err)
			}
			target := image.Rect((dx+1)*tileSize, (dy+1)*tileSize, (dx+2)*tileSize, (dy+2)*tileSize)
			draw.Draw(mosaic, target, tile, tile.Bounds().Min, draw.Src)
		}
	}

	px := int((tileXf-float64(tileX))*tileSize) + tileSize
	py := int((tileYf-float64(tileY))*tileSize) + tileSize
	crop := image.Rect(
		max(0, px-tileSize),
		max(0, py-tileSize),
		min(mosaic.Bounds().Dx(), px+tileSize),
		min(mosaic.Bounds().Dy(), py+tileSize),
	)
	cropped := mosaic.SubImage(crop)
	final := resizeBilinear(cropped, width, height)

	var buf bytes.Buffer
	if err := png.Encode(&buf, final); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *TileFetcher) fetchTile(ctx context.Context, zoom, x, y int) (image.Image, error) {
	n := 1 << zoom
	wrappedX := ((x % n) + n) % n
	clampedY := max(0, min(n-1, y))

	url := fmt.Sprintf(f.urlTemplate, zoom, wrappedX, clampedY)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("tile server returned %s for %s", resp.Status, url)
	}

	tile, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile %s: %w", url, err)
	}
	return tile, nil
}

// latLonToTile converts WGS84 coordinates to fractional slippy-map tile
// coordinates, clamping latitude to the Web Mercator domain.
func latLonToTile(lat, lon float64, zoom int) (float64, float64) {
	lat = math.Max(-maxLatitude, math.Min(maxLatitude, lat))
	n := float64(int(1) << zoom)
	x := (lon + 180.0) / 360.0 * n
	latRad := lat * math.Pi / 180.0
	y := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n
	return x, y
}

// resizeBilinear scales src to width x height with bilinear sampling.
func resizeBilinear(src image.Image, width, height int) *image.RGBA {
	bounds := src.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	if srcW == 0 || srcH == 0 {
		return dst
	}

	for y := 0; y < height; y++ {
		srcY := (float64(y)+0.5)*float64(srcH)/float64(height) - 0.5
		y0 := int(math.Floor(srcY))
		fy := srcY - float64(y0)
		y1 := min(srcH-1, max(0, y0+1))
		y0 = min(srcH-1, max(0, y0))

		for x := 0; x < width; x++ {
			srcX := (float64(x)+0.5)*float64(srcW)/float64(width) - 0.5
			x0 := int(math.Floor(srcX))
			fx := srcX - float64(x0)
			x1 := min(srcW-1, max(0, x0+1))
			x0 = min(srcW-1, max(0, x0))

			c00 := rgbaAt(src, bounds.Min.X+x0, bounds.Min.Y+y0)
			c10 := rgbaAt(src, bounds.Min.X+x1, bounds.Min.Y+y0)
			c01 := rgbaAt(src, bounds.Min.X+x0, bounds.Min.Y+y1)
			c11 := rgbaAt(src, bounds.Min.X+x1, bounds.Min.Y+y1)

			var out [4]uint8
			for i := 0; i < 4; i++ {
				top := float64(c00[i])*(1-fx) + float64(c10[i])*fx
				bottom := float64(c01[i])*(1-fx) + float64(c11[i])*fx
				out[i] = uint8(math.Round(top*(1-fy) + bottom*fy))
			}
			idx := dst.PixOffset(x, y)
			dst.Pix[idx] = out[0]
			dst.Pix[idx+1] = out[1]
			dst.Pix[idx+2] = out[2]
			dst.Pix[idx+3] = out[3]
		}
	}
	return dst
}

func rgbaAt(img image.Image, x, y int) [4]uint8 {
	r, g, b, a := img.At(x, y).RGBA()
	return [4]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}
