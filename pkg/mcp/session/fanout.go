package session

import "log"

////////////////////////////////////////////////////////////////////////////
// TYPES

// fanoutKind distinguishes the consumer queues a notification can land on,
// so a slow tools consumer can never delay logging or progress delivery.
type fanoutKind int

const (
	fanoutTools fanoutKind = iota
	fanoutResources
	fanoutPrompts
	fanoutResourceUpdated
	fanoutLogging
	fanoutProgress
	fanoutRoots
	fanoutKindCount
)

var fanoutKindNames = [fanoutKindCount]string{
	fanoutTools:           "tools",
	fanoutResources:       "resources",
	fanoutPrompts:         "prompts",
	fanoutResourceUpdated: "resourceUpdated",
	fanoutLogging:         "logging",
	fanoutProgress:        "progress",
	fanoutRoots:           "roots",
}

// fanout runs one worker goroutine per notification kind so that consumer
// callbacks never run on the dispatcher's single inbound loop: a slow or
// blocking consumer only backs up its own queue, never request/response
// correlation. Each queue preserves the server's emission order for that
// kind, except when it overflows: submitKind never blocks, so a consumer
// that falls more than the queue's depth behind loses its oldest pending
// notification rather than stalling every other kind along with it.
type fanout struct {
	queues [fanoutKindCount]chan func()
	done   chan struct{}
	logger *log.Logger
}

////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func newFanout(s *Session) *fanout {
	f := &fanout{done: make(chan struct{}), logger: s.logger}
	for k := range f.queues {
		f.queues[k] = make(chan func(), 64)
		go f.run(f.queues[k])
	}
	return f
}

func (f *fanout) run(queue chan func()) {
	for {
		select {
		case job, ok := <-queue:
			if !ok {
				return
			}
			job()
		case <-f.done:
			return
		}
	}
}

// submitKind enqueues job on the named kind's queue without ever blocking
// the caller: it is invoked synchronously from the dispatcher's single
// inbound-read goroutine, and that goroutine also delivers every other
// inbound message, request/response correlation included. If the queue is
// full, the oldest pending job is dropped to make room and a warning is
// logged, rather than parking the one goroutine every other kind and every
// in-flight request depends on.
func (f *fanout) submitKind(kind fanoutKind, job func()) {
	select {
	case f.queues[kind] <- job:
		return
	case <-f.done:
		return
	default:
	}

	select {
	case <-f.queues[kind]:
		f.logger.Printf("mcp: session: %s notification queue full, dropping oldest pending notification", fanoutKindNames[kind])
	default:
	}

	select {
	case f.queues[kind] <- job:
	case <-f.done:
	default:
	}
}

// stop signals every worker goroutine to exit and returns without waiting
// for them. A worker finishes the job it is running and may still run some
// already-queued jobs before it sees the signal; the rest are dropped.
func (f *fanout) stop() {
	select {
	case <-f.done:
	default:
		close(f.done)
	}
}
