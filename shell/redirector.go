// Package shell redirects an agent's console to a command shell service.
//
// Command processors are tracked as they come and go. The first one gets a
// session whose output is forwarded to the agent's sinks; when it goes
// away the session moves to the next tracked processor. Processors from
// another module boundary, such as a Go plugin, are bridged to the local
// CommandProcessor and CommandSession contracts.
package shell

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/osgifx/console-agent/bridge"
)

var log = commonlog.GetLogger("agent.shell")

// ErrNoSession is returned when no command processor is available.
var ErrNoSession = errors.New("no command session open")

type service struct {
	foreign   any
	processor CommandProcessor
}

type session struct {
	id      uuid.UUID
	service *service
	cs      CommandSession
	worker  *worker
}

// Redirector connects stdin and stdout of the agent to a command session.
type Redirector struct {
	out *Output

	mu       sync.Mutex
	services []*service
	session  *session
	partial  strings.Builder
}

// New creates a redirector writing session output to sinks.
func New(sinks ...Sink) *Redirector {
	return &Redirector{out: &Output{sinks: sinks}}
}

// Adding tracks a command processor service. A session is opened on it
// when none is open yet.
func (r *Redirector) Adding(foreign any) (CommandProcessor, error) {
	cp, err := bridge.To[CommandProcessor](foreign)
	if err != nil {
		return nil, fmt.Errorf("adding command processor %T: %w", foreign, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	svc := &service{foreign: foreign, processor: cp}
	r.services = append(r.services, svc)
	if r.session == nil {
		r.openSession(svc)
	}
	return cp, nil
}

// Removed stops tracking a command processor service. When its session
// is the open one, the session moves to the next tracked processor.
func (r *Redirector) Removed(foreign any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed *service
	for i, svc := range r.services {
		if same(svc.foreign, foreign) {
			removed = svc
			r.services = append(r.services[:i], r.services[i+1:]...)
			break
		}
	}
	if removed == nil || r.session == nil || r.session.service != removed {
		return
	}
	r.closeSession()
	if len(r.services) > 0 {
		r.openSession(r.services[0])
	}
}

func (r *Redirector) openSession(svc *service) {
	cs := svc.processor.CreateSession(strings.NewReader(""), r.out, r.out)
	r.session = &session{
		id:      uuid.New(),
		service: svc,
		cs:      cs,
		worker:  newWorker(cs, r.out),
	}
	r.partial.Reset()
	log.Infof("opened command session %s on %T", r.session.id, svc.foreign)
}

func (r *Redirector) closeSession() {
	s := r.session
	if s == nil {
		return
	}
	r.session = nil
	s.worker.stop()
	commonlog.CallAndLogWarning(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("%v", rec)
			}
		}()
		s.cs.Close()
		return nil
	}, "closing command session "+s.id.String(), log)
	log.Infof("closed command session %s", s.id)
}

// Stdin feeds console input to the session. Complete lines are executed
// in order; a trailing partial line waits for more input.
func (r *Redirector) Stdin(s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return ErrNoSession
	}
	r.partial.WriteString(s)
	buffered := r.partial.String()
	lines := strings.Split(buffered, "\n")
	r.partial.Reset()
	r.partial.WriteString(lines[len(lines)-1])
	for _, line := range lines[:len(lines)-1] {
		r.session.worker.submit(strings.TrimSuffix(line, "\r"))
	}
	return nil
}

// Execute runs a command line on the session and returns its result. It is
// ordered after all stdin lines submitted before it.
func (r *Redirector) Execute(line string) (any, error) {
	r.mu.Lock()
	s := r.session
	r.mu.Unlock()
	if s == nil {
		return nil, ErrNoSession
	}
	return s.worker.do(line)
}

// SessionID returns the id of the open session.
func (r *Redirector) SessionID() (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return uuid.Nil, false
	}
	return r.session.id, true
}

// Out returns the writer forwarding to the sinks.
func (r *Redirector) Out() io.Writer { return r.out }

// Port is -1: the shell is not served on a network port of its own.
func (r *Redirector) Port() int { return -1 }

// Close closes the open session. Tracked processors are kept.
func (r *Redirector) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeSession()
	return nil
}

func same(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
