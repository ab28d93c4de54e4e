package shell

import (
	"errors"
	"sync"
)

// Sink receives shell output, typically a connected console.
type Sink interface {
	Stdout(s string) error
}

// Output is the writer handed to command sessions. Every write is
// forwarded to all sinks.
type Output struct {
	mu    sync.Mutex
	sinks []Sink
}

func (o *Output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := string(p)
	var errs []error
	for _, sink := range o.sinks {
		if err := sink.Stdout(s); err != nil {
			errs = append(errs, err)
		}
	}
	return len(p), errors.Join(errs...)
}
