package imagery

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"sync"
	"time"
)

// Optical renders a synthetic electro-optical scene: a blend of three
// random base colors with white speckle standing in for cloud cover.
type Optical struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewOptical constructs an optical generator. A nil rng gets a time-seeded
// source.
func NewOptical(rng *rand.Rand) *Optical {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Optical{rng: rng}
}

// Generate renders the PNG for req. CloudPercent scales how much of the
// frame is covered by bright speckle.
func (g *Optical) Generate(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	width, height := req.Width, req.Height
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	c1 := g.randomColor()
	c2 := g.randomColor()
	c3 := g.randomColor()

	for y := 0; y < height; y++ {
		t := float64(y) / float64(max(1, height-1))
		for x := 0; x < width; x++ {
			s := float64(x) / float64(max(1, width-1))
			r := int((1-t)*float64(c1[0])+t*float64(c2[0])*(0.6+0.4*s)) % 256
			gr := int((1-s)*float64(c2[1])+s*float64(c3[1])*(0.6+0.4*t)) % 256
			b := int((1-t)*float64(c3[2])+t*float64(c1[2])*(0.6+0.4*s)) % 256
			img.SetRGBA(x, y, color.RGBA{R: uint8(r), G: uint8(gr), B: uint8(b), A: 255})
		}
	}

	cloudSamples := int(float64(width*height) * (float64(req.CloudPercent) / 100.0) * 0.03)
	for i := 0; i < cloudSamples; i++ {
		x := g.rng.Intn(width)
		y := g.rng.Intn(height)
		cloud := uint8(190 + g.rng.Intn(66))
		img.SetRGBA(x, y, color.RGBA{R: cloud, G: cloud, B: cloud, A: 255})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Optical) randomColor() [3]uint8 {
	return [3]uint8{uint8(g.rng.Intn(256)), uint8(g.rng.Intn(256)), uint8(g.rng.Intn(256))}
}
