package ledcontrol

// Engine is the slice of the ws281x driver the controller talks to. The
// real device only exists on a Raspberry Pi; everywhere else NewEngine
// returns a logging stub so the daemon and tests can run without hardware.
type Engine interface {
	Init() error
	Render() error
	Fini()
	Leds(channel int) []uint32
}
