package termio

// SinkFunc adapts a blocking single-byte writer, such as a UART transmit
// routine, to io.Writer.
type SinkFunc func(b byte)

// Write sends p one byte at a time. It never fails.
func (f SinkFunc) Write(p []byte) (int, error) {
	for _, b := range p {
		f(b)
	}
	return len(p), nil
}
