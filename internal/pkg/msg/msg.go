// Package msg is the channel pub/sub used to stream trial progress and
// completed results from batch runners to datastream sinks.
package msg

import (
	"sync"

	"github.com/google/uuid"
)

// Topic partitions the published message streams.
type Topic int

const (
	// Progress messages carry trial lifecycle notices.
	Progress Topic = iota
	// Result messages carry completed trial result payloads.
	Result
)

// Publisher is an interface for objects that allow subscription to
// their events.
type Publisher interface {
	Subscribe(uuid.UUID, Topic) <-chan Msg
	Unsubscribe(uuid.UUID)
}

// Msg carries one event from a publisher.
type Msg struct {
	sender  uuid.UUID
	topic   Topic
	payload interface{}
}

// New is the Msg factory function.
func New(sender uuid.UUID, topic Topic, payload interface{}) Msg {
	return Msg{sender, topic, payload}
}

// PID returns the sender's PID.
func (m Msg) PID() uuid.UUID {
	return m.sender
}

// Topic returns the message topic.
func (m Msg) Topic() Topic {
	return m.topic
}

// Payload returns the message data.
func (m Msg) Payload() interface{} {
	return m.payload
}

// PubSub fans published messages out to topic subscribers. Sends are
// non-blocking: a subscriber that is not draining its channel misses
// messages rather than stalling the publisher.
type PubSub struct {
	mux  *sync.Mutex
	pid  uuid.UUID
	subs map[Topic]map[uuid.UUID]chan Msg
}

// NewPublisher builds a PubSub owned by the component identified by pid.
func NewPublisher(pid uuid.UUID) *PubSub {
	return &PubSub{
		mux:  &sync.Mutex{},
		pid:  pid,
		subs: make(map[Topic]map[uuid.UUID]chan Msg),
	}
}

// Subscribe returns a read-only channel of messages on the topic.
func (p *PubSub) Subscribe(pid uuid.UUID, topic Topic) <-chan Msg {
	p.mux.Lock()
	defer p.mux.Unlock()
	if p.subs[topic] == nil {
		p.subs[topic] = make(map[uuid.UUID]chan Msg)
	}
	ch := make(chan Msg, 50)
	p.subs[topic][pid] = ch
	return ch
}

// Unsubscribe closes and removes all channels held for pid.
func (p *PubSub) Unsubscribe(pid uuid.UUID) {
	p.mux.Lock()
	defer p.mux.Unlock()
	for _, subs := range p.subs {
		if ch, ok := subs[pid]; ok {
			delete(subs, pid)
			close(ch)
		}
	}
}

// Publish sends payload to every subscriber of the topic.
func (p *PubSub) Publish(topic Topic, payload interface{}) {
	p.mux.Lock()
	defer p.mux.Unlock()
	for _, ch := range p.subs[topic] {
		select {
		case ch <- New(p.pid, topic, payload):
		default:
		}
	}
}

// Close closes every subscriber channel.
func (p *PubSub) Close() {
	p.mux.Lock()
	defer p.mux.Unlock()
	for topic, subs := range p.subs {
		for pid, ch := range subs {
			delete(subs, pid)
			close(ch)
		}
		delete(p.subs, topic)
	}
}
