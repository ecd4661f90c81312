//go:build !linux

package evdev

// Open is not available on this platform.
func Open(path string, km KeyMap, opts Options) (*Source, error) {
	return nil, ErrUnsupported
}

// Devices is not available on this platform.
func Devices() ([]Device, error) {
	return nil, ErrUnsupported
}
