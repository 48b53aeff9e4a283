package ledcontrol

import (
	"math"
	"math/rand"
	"time"
)

const (
	backgroundAnimation = "rainbow"
	alertAnimation      = "sparkle"
)

// Animation renders one frame per Step into the pixel buffer. Animations
// keep their own phase, so re-activating one resumes where it left off.
type Animation interface {
	Name() string
	Step(leds []uint32)
}

func pulseName(c AlertColor) string { return c.String() + "_pulse" }

func newAnimations() map[string]Animation {
	anims := map[string]Animation{
		backgroundAnimation: &rainbowAnimation{},
		alertAnimation:      newSparkleAnimation(),
	}
	for _, c := range AllColors() {
		anims[c.String()] = &solidAnimation{name: c.String(), color: c.RGB()}
		anims[pulseName(c)] = &pulseAnimation{name: pulseName(c), color: c.RGB()}
	}
	return anims
}

// scaleColor dims a packed 0xRRGGBB color by f in [0..1].
func scaleColor(color uint32, f float64) uint32 {
	r := uint32(float64((color>>16)&0xFF) * f)
	g := uint32(float64((color>>8)&0xFF) * f)
	b := uint32(float64(color&0xFF) * f)
	return (r << 16) | (g << 8) | b
}

// wheel maps 0-255 onto the color wheel red -> green -> blue -> red.
func wheel(pos int) uint32 {
	pos &= 0xFF
	switch {
	case pos < 85:
		return uint32(255-pos*3)<<16 | uint32(pos*3)<<8
	case pos < 170:
		pos -= 85
		return uint32(255-pos*3)<<8 | uint32(pos*3)
	default:
		pos -= 170
		return uint32(pos*3)<<16 | uint32(255-pos*3)
	}
}

type rainbowAnimation struct {
	offset int
}

func (a *rainbowAnimation) Name() string { return backgroundAnimation }

func (a *rainbowAnimation) Step(leds []uint32) {
	if len(leds) == 0 {
		return
	}
	for i := range leds {
		leds[i] = wheel(i*256/len(leds) + a.offset)
	}
	a.offset = (a.offset + 1) % 256
}

type sparkleAnimation struct {
	base rainbowAnimation
	rand *rand.Rand
}

func newSparkleAnimation() *sparkleAnimation {
	return &sparkleAnimation{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (a *sparkleAnimation) Name() string { return alertAnimation }

// Step draws a dimmed rainbow and splashes random white sparkles on top,
// roughly one per ten pixels each frame.
func (a *sparkleAnimation) Step(leds []uint32) {
	if len(leds) == 0 {
		return
	}
	a.base.Step(leds)
	for i := range leds {
		leds[i] = scaleColor(leds[i], 0.5)
	}
	sparkles := len(leds)/10 + 1
	for n := 0; n < sparkles; n++ {
		leds[a.rand.Intn(len(leds))] = 0xFFFFFF
	}
}

type pulseAnimation struct {
	name  string
	color uint32
	t     float64
}

func (a *pulseAnimation) Name() string { return a.name }

// Step breathes the color with a sine wave, staying above 20% brightness
// so the strip never fully blanks mid-pulse. One full cycle per second at
// the default 10ms tick.
func (a *pulseAnimation) Step(leds []uint32) {
	a.t += 2 * math.Pi / 100
	phase := (math.Sin(a.t) + 1.0) / 2.0
	const min = 0.2
	color := scaleColor(a.color, phase*(1.0-min)+min)
	for i := range leds {
		leds[i] = color
	}
}

type solidAnimation struct {
	name  string
	color uint32
}

func (a *solidAnimation) Name() string { return a.name }

func (a *solidAnimation) Step(leds []uint32) {
	for i := range leds {
		leds[i] = a.color
	}
}
