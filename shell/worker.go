package shell

import (
	"fmt"
	"io"
)

// request is one command line to run on the session goroutine.
type request struct {
	line string
	done chan result // nil for input typed on stdin
}

type result struct {
	value any
	err   error
}

// worker serializes all calls into a CommandSession through a single
// goroutine. Lines typed on stdin have their results printed to out.
type worker struct {
	session  CommandSession
	out      io.Writer
	requests chan request
	quit     chan struct{}
}

func newWorker(cs CommandSession, out io.Writer) *worker {
	w := &worker{
		session:  cs,
		out:      out,
		requests: make(chan request, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *worker) loop() {
	for {
		select {
		case req := <-w.requests:
			res := w.execute(req.line)
			if req.done != nil {
				req.done <- res
				continue
			}
			w.print(res)
		case <-w.quit:
			return
		}
	}
}

// execute runs one line, recovering from panics in the session.
func (w *worker) execute(line string) (res result) {
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("%v", r)
		}
	}()
	res.value, res.err = w.session.Execute(line)
	return res
}

func (w *worker) print(res result) {
	var err error
	switch {
	case res.err != nil:
		_, err = fmt.Fprintf(w.out, "error: %v\n", res.err)
	case res.value != nil:
		_, err = fmt.Fprintln(w.out, res.value)
	}
	if err != nil {
		log.Warningf("writing command output: %v", err)
	}
}

// submit queues a stdin line.
func (w *worker) submit(line string) {
	select {
	case w.requests <- request{line: line}:
	case <-w.quit:
	}
}

// do runs a line and waits for its result.
func (w *worker) do(line string) (any, error) {
	req := request{line: line, done: make(chan result, 1)}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, ErrNoSession
	}
	select {
	case res := <-req.done:
		return res.value, res.err
	case <-w.quit:
		return nil, ErrNoSession
	}
}

func (w *worker) stop() {
	close(w.quit)
}
