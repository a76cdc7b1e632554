package led

import "sync"

// Sim is an in-memory sink for headless runs and tests. It keeps the last
// written frame and a frame counter.
type Sim struct {
	mu     sync.Mutex
	last   []byte
	frames uint64
}

func NewSim() *Sim { return &Sim{} }

func (s *Sim) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cap(s.last) < len(rgb) {
		s.last = make([]byte, len(rgb))
	}
	s.last = s.last[:len(rgb)]
	copy(s.last, rgb)
	s.frames++
	return nil
}

func (s *Sim) Close() error { return nil }

// Last returns a copy of the most recent frame.
func (s *Sim) Last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.last))
	copy(out, s.last)
	return out
}

// Frames returns the number of frames written so far.
func (s *Sim) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
