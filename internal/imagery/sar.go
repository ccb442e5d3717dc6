package imagery

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math/rand"
	"sync"
	"time"
)

// SAR renders a synthetic radar scene: a vertical backscatter ramp with
// uniform speckle noise.
type SAR struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSAR constructs a SAR generator. A nil rng gets a time-seeded source.
func NewSAR(rng *rand.Rand) *SAR {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SAR{rng: rng}
}

// Generate renders a grayscale PNG for req.
func (g *SAR) Generate(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	width, height := req.Width, req.Height
	img := image.NewGray(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		base := 70 + 185*y/max(1, height-1)
		row := img.Pix[y*img.Stride : y*img.Stride+width]
		for x := 0; x < width; x++ {
			speckle := g.rng.Intn(91) - 45
			v := base + speckle
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			row[x] = uint8(v)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
