// Package led abstracts the LED output sinks the engine can write frames to.
package led

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes a packed RGB frame to the device. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}
