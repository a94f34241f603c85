package domain

// PixelSink is the hardware side of the display. Write stages a complete
// frame; Show latches it onto the strip.
type PixelSink interface {
	Write(colors []Color) error
	Show() error
	Close() error
}
