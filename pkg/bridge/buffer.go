package bridge

// bufferWindow is how much caller audio accumulates before one agent-socket
// write, as a fraction of a second.
const bufferWindowNum, bufferWindowDen = 2, 5 // 0.4s

// audioBuffer accumulates inbound carrier frames until a threshold of audio
// is held, trading a little latency for far fewer agent-socket writes.
// It is used from a single goroutine and needs no locking.
type audioBuffer struct {
	threshold int
	buf       []byte
}

// bufferThreshold returns the byte threshold for 0.4s of audio in the given
// encoding at the given rate.
func bufferThreshold(encoding string, sampleRate int) int {
	bytesPerSample := 1
	if encoding == "linear16" {
		bytesPerSample = 2
	}
	return sampleRate * bytesPerSample * bufferWindowNum / bufferWindowDen
}

func newAudioBuffer(threshold int) *audioBuffer {
	return &audioBuffer{threshold: threshold, buf: make([]byte, 0, threshold)}
}

// Add appends one frame. When the buffered audio reaches the threshold the
// whole accumulation is returned and the buffer resets; otherwise nil.
func (b *audioBuffer) Add(frame []byte) []byte {
	b.buf = append(b.buf, frame...)
	if len(b.buf) < b.threshold {
		return nil
	}
	out := b.buf
	b.buf = make([]byte, 0, b.threshold)
	return out
}

// Flush returns whatever is buffered, or nil when empty, and resets.
func (b *audioBuffer) Flush() []byte {
	if len(b.buf) == 0 {
		return nil
	}
	out := b.buf
	b.buf = make([]byte, 0, b.threshold)
	return out
}

// Len reports the currently buffered byte count.
func (b *audioBuffer) Len() int { return len(b.buf) }
