// Package cache implements the concurrent coordinators at the heart of the
// node: the account cache, the pending-transaction waiter registry, and the
// pending-blob settlement queue. Each coordinator is a single goroutine that
// exclusively owns its state and multiplexes inbound work with an unordered,
// dynamically-sized set of outstanding completion signals. Cross-coordinator
// effects happen only through typed messages to peer actors, never through
// shared memory.
package cache

import (
	stderrors "errors"
	"sync"
)

// ErrStopped is returned by inbound operations once a coordinator has been
// asked to stop.
var ErrStopped = stderrors.New("cache: coordinator stopped")

const defaultQueueDepth = 64

type options struct {
	queueDepth int
}

// Option adjusts coordinator construction.
type Option func(*options)

// WithQueueDepth sets the capacity of the coordinator's inbound and fan-in
// channels.
func WithQueueDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueDepth = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{queueDepth: defaultQueueDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// watch forwards the single resolution of rx into sink. Completion channels
// are single-use: a value is forwarded once, a close without a value means
// the producer dropped its end and nothing is forwarded. The forwarder
// abandons both waits when quit closes, so shutdown never hangs on a silent
// peer.
func watch[T any](wg *sync.WaitGroup, quit <-chan struct{}, rx <-chan T, sink chan<- T) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		var (
			v  T
			ok bool
		)
		select {
		case v, ok = <-rx:
			if !ok {
				return
			}
		case <-quit:
			return
		}
		select {
		case sink <- v:
		case <-quit:
		}
	}()
}
