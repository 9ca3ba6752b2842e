package auction

import (
	"sync"

	"github.com/mcdev12/auctionroom/go/internal/auction/events"
)

// subscriber buffers events without bound so a slow reader never drops a
// transition and never stalls the engine.
type subscriber struct {
	mu       sync.Mutex
	queue    []events.Event
	finished bool

	notify chan struct{}
	abort  chan struct{}
	out    chan events.Event
	once   sync.Once
}

func newSubscriber() *subscriber {
	s := &subscriber{
		notify: make(chan struct{}, 1),
		abort:  make(chan struct{}),
		out:    make(chan events.Event),
	}
	go s.pump()
	return s
}

func (s *subscriber) push(evt events.Event) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, evt)
	s.mu.Unlock()
	s.wake()
}

func (s *subscriber) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// finish delivers what is queued and then closes the channel
func (s *subscriber) finish() {
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()
	s.wake()
}

// cancel closes the channel without delivering the backlog
func (s *subscriber) cancel() {
	s.once.Do(func() { close(s.abort) })
}

func (s *subscriber) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			finished := s.finished
			s.mu.Unlock()
			if finished {
				return
			}
			select {
			case <-s.notify:
				continue
			case <-s.abort:
				return
			}
		}
		evt := s.queue[0]
		s.queue[0] = events.Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- evt:
		case <-s.abort:
			return
		}
	}
}

// Subscribe returns every event emitted from now on, in order. The channel is
// closed after Close or after the returned cancel func is called.
func (e *Engine) Subscribe() (<-chan events.Event, func()) {
	_, ch, cancel := e.Watch()
	return ch, cancel
}

// Watch is Subscribe plus the state the subscription starts from. No event
// is both reflected in the state and delivered on the channel.
func (e *Engine) Watch() (State, <-chan events.Event, func()) {
	s := newSubscriber()

	e.mu.Lock()
	state := e.state.clone()
	if e.closed {
		e.mu.Unlock()
		s.finish()
		return state, s.out, func() {}
	}
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = s
	e.mu.Unlock()

	return state, s.out, func() {
		e.mu.Lock()
		delete(e.subscribers, id)
		e.mu.Unlock()
		s.cancel()
	}
}

func (e *Engine) publishLocked(evts ...events.Event) {
	for _, evt := range evts {
		for _, s := range e.subscribers {
			s.push(evt)
		}
	}
}
