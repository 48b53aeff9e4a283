//go:build pi

package ledcontrol

import (
	"github.com/pkg/errors"
	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"
)

type wsEngine struct {
	dev *ws2811.WS2811
}

// NewEngine opens the ws281x strip on the given GPIO pin.
func NewEngine(pin, count, brightness int) (Engine, error) {
	opt := ws2811.DefaultOptions
	opt.Channels[0].GpioPin = pin
	opt.Channels[0].Brightness = brightness
	opt.Channels[0].LedCount = count

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return nil, errors.Wrap(err, "makeWS2811 failed")
	}
	return &wsEngine{dev: dev}, nil
}

func (e *wsEngine) Init() error               { return e.dev.Init() }
func (e *wsEngine) Render() error             { return e.dev.Render() }
func (e *wsEngine) Fini()                     { e.dev.Fini() }
func (e *wsEngine) Leds(channel int) []uint32 { return e.dev.Leds(channel) }
