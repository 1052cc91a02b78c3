package llm

import "sync"

// Stream is an explicit producer/consumer channel over a provider token
// stream, with a first-class cancellation handle. The producer goroutine
// pushes fragments with Emit and terminates with Finish; the consumer reads
// C() until it closes, then checks Err. Close cancels the underlying
// provider call and unblocks the producer.
type Stream struct {
	ch     chan string
	done   chan struct{}
	cancel func()

	closeOnce  sync.Once
	finishOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewStream creates a stream. cancel aborts the underlying provider call;
// it is invoked at most once, by Close.
func NewStream(cancel func()) *Stream {
	return &Stream{
		ch:     make(chan string),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// C returns the fragment channel. It is closed by Finish.
func (s *Stream) C() <-chan string { return s.ch }

// Err reports the terminal error, if any. Valid once C is closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Emit delivers one fragment to the consumer. It returns false when the
// consumer has closed the stream, signaling the producer to stop.
func (s *Stream) Emit(text string) bool {
	select {
	case s.ch <- text:
		return true
	case <-s.done:
		return false
	}
}

// Finish records the terminal error (nil for normal completion) and closes
// the fragment channel. Producer-side; idempotent.
func (s *Stream) Finish(err error) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.ch)
	})
}

// Close cancels the underlying provider call and releases the producer.
// Consumer-side; idempotent and safe to call after Finish.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.cancel != nil {
			s.cancel()
		}
	})
}
