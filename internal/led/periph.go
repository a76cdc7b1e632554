package led

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"
)

// RefreshRate is the WS2812-class strip refresh rate in kHz units.
const RefreshRate physic.Frequency = 800

// Periph drives an NRZ LED strip over SPI through periph.io, drawing a 1xN
// image per frame. When no SPI port is available it falls back to an ANSI
// console drawer so the daemon stays usable on a dev machine.
type Periph struct {
	drawer display.Drawer
	img    *image.NRGBA
	count  int
	order  [3]byte
}

// orderBytes maps a strip order string like "GRB" onto channel selectors.
// Anything other than three letters falls back to GRB, the usual
// WS2812 wire order.
func orderBytes(s string) [3]byte {
	o := [3]byte{'G', 'R', 'B'}
	if len(s) == 3 {
		o = [3]byte{s[0], s[1], s[2]}
	}
	return o
}

// NewPeriph opens the named SPI port (empty selects the first available) for
// count LEDs wired in the given channel order. Hardware failures degrade to
// the console drawer.
func NewPeriph(spiDev string, count int, colorOrder string) (*Periph, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	p := &Periph{
		img:   image.NewNRGBA(image.Rect(0, 0, count, 1)),
		count: count,
		order: orderBytes(colorOrder),
	}

	port, err := spireg.Open(spiDev)
	if err != nil {
		log.Warn().Err(err).Str("dev", spiDev).Msg("no SPI port; using console drawer")
		p.drawer = screen.New(count)
		return p, nil
	}

	opts := nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      ((RefreshRate * 3) + 100) * physic.KiloHertz,
	}
	d, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return nil, fmt.Errorf("nrzled init: %w", err)
	}
	d.Halt()
	p.drawer = d
	return p, nil
}

// NewPeriphDrawer wraps an existing drawer; used by tests to inject a
// playback SPI device.
func NewPeriphDrawer(d display.Drawer, count int, colorOrder string) *Periph {
	return &Periph{
		drawer: d,
		img:    image.NewNRGBA(image.Rect(0, 0, count, 1)),
		count:  count,
		order:  orderBytes(colorOrder),
	}
}

func (p *Periph) Write(rgb []byte) error {
	if len(rgb) != p.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), p.count)
	}
	for i := 0; i < p.count; i++ {
		r, g, b := rgb[i*3+0], rgb[i*3+1], rgb[i*3+2]
		var v [3]byte
		for k := range v {
			switch p.order[k] {
			case 'R':
				v[k] = r
			case 'B':
				v[k] = b
			default:
				v[k] = g
			}
		}
		p.img.SetNRGBA(i, 0, color.NRGBA{R: v[0], G: v[1], B: v[2], A: 255})
	}
	if err := p.drawer.Draw(p.drawer.Bounds(), p.img, image.Point{}); err != nil {
		return fmt.Errorf("drawer write: %w", err)
	}
	return nil
}

func (p *Periph) Close() error {
	return p.drawer.Halt()
}
