//go:build !pi

package ledcontrol

import (
	"github.com/sirupsen/logrus"
)

type stubEngine struct {
	colors []uint32
}

// NewEngine returns a stub that keeps the pixel buffer in memory and logs
// renders at debug level. Build with -tags pi for the real strip.
func NewEngine(pin, count, brightness int) (Engine, error) {
	logrus.Infof("no hardware build: stubbing %d LEDs on GPIO %d", count, pin)
	return &stubEngine{colors: make([]uint32, count)}, nil
}

func (e *stubEngine) Init() error {
	return nil
}

func (e *stubEngine) Render() error {
	if len(e.colors) > 0 {
		logrus.Debugf("stub render: %06X", e.colors[0])
	}
	return nil
}

func (e *stubEngine) Fini() {
	logrus.Debug("stub fini")
}

func (e *stubEngine) Leds(_ int) []uint32 {
	return e.colors
}
