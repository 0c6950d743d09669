// Package messaging receives the repository's notification events from a STOMP broker.
package messaging

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/helpers"

	"github.com/go-stomp/stomp/v3"
)

const eventBufferSize = 100

// Destination returns the STOMP destination for a queue or, if queue is empty, a topic.
func Destination(queue, topic string) string {
	if queue != "" {
		return "/queue/" + queue
	}
	return "/topic/" + topic
}

// Listener collects events from one broker destination.
type Listener struct {
	events chan Event
	closer func() error
	logger framework.Logger
	done   chan struct{}
	once   sync.Once
}

// Dial connects to a broker such as "tcp://localhost:61613" and subscribes to destination.
func Dial(brokerURL, destination string, logger framework.Logger) (*Listener, error) {
	u, err := url.Parse(brokerURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid broker URL %q", brokerURL)
	}
	conn, err := stomp.Dial("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("could not connect to broker at %s: %w", u.Host, err)
	}
	sub, err := conn.Subscribe(destination, stomp.AckAuto)
	if err != nil {
		_ = conn.Disconnect()
		return nil, fmt.Errorf("could not subscribe to %s: %w", destination, err)
	}
	return newListener(sub.C, func() error {
		return errors.Join(sub.Unsubscribe(), conn.Disconnect())
	}, logger), nil
}

func newListener(messages <-chan *stomp.Message, closer func() error, logger framework.Logger) *Listener {
	if logger == nil {
		logger = framework.NullLogger()
	}
	l := &Listener{
		events: make(chan Event, eventBufferSize),
		closer: closer,
		logger: logger,
		done:   make(chan struct{}),
	}
	go l.consume(messages)
	return l
}

func (l *Listener) consume(messages <-chan *stomp.Message) {
	for {
		select {
		case <-l.done:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if msg.Err != nil {
				l.logger.Printf("Broker error: %s", msg.Err)
				continue
			}
			e, err := ParseEvent(msg.Body)
			if err != nil {
				l.logger.Printf("Ignoring notification: %s", err)
				continue
			}
			l.logger.Printf("Received notification: %s", e)
			if !helpers.NonBlockingSend(l.events, e) {
				l.logger.Printf("Dropping notification, buffer full")
			}
		}
	}
}

// Await returns the first event matching the predicate, discarding others, or false if none
// arrives within the timeout.
func (l *Listener) Await(timeout time.Duration, match func(Event) bool) (Event, bool) {
	deadline := time.Now().Add(timeout)
	for {
		e := helpers.TryReceive(l.events, time.Until(deadline))
		if !e.IsDefined() {
			return Event{}, false
		}
		if match(e.Value()) {
			return e.Value(), true
		}
	}
}

// Close unsubscribes and disconnects.
func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)
		if l.closer != nil {
			err = l.closer()
		}
	})
	return err
}
