package msgbus

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"perceptron/common"
)

type BusMessage struct {
	MsgType common.LocalMsgType
	RunID   string
	Msg     interface{}
}

type Subscriber interface {
	HandleMsgFromMsgBus(msg *BusMessage) error
}

type MessageBus interface {
	Register(topic common.LocalMsgType, sub Subscriber)
	UnRegister(topic common.LocalMsgType, sub Subscriber)
	Publish(runID string, t common.LocalMsgType, payload interface{}) error
	Reset()
}

type Topic interface {
	Register(sub Subscriber)
	UnRegister(sub Subscriber)
	Publish(msg *BusMessage) error
}

// topicImpl delivers on the publisher's goroutine, in registration order,
// so subscribers see epoch reports in the order they were produced.
type topicImpl struct {
	subs  atomic.Value //[]Subscriber
	mutex sync.Mutex
}

func newTopic() Topic {
	t := &topicImpl{}
	t.subs.Store([]Subscriber{})
	return t
}

func (t *topicImpl) Register(sub Subscriber) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	subs := t.subs.Load().([]Subscriber)
	for _, s := range subs {
		if s == sub {
			return
		}
	}
	newSubs := make([]Subscriber, len(subs), len(subs)+1)
	copy(newSubs, subs)
	t.subs.Store(append(newSubs, sub))
}

func (t *topicImpl) UnRegister(sub Subscriber) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	subs := t.subs.Load().([]Subscriber)
	for i, s := range subs {
		if s == sub {
			newSubs := make([]Subscriber, 0, len(subs)-1)
			newSubs = append(newSubs, subs[:i]...)
			t.subs.Store(append(newSubs, subs[i+1:]...))
			return
		}
	}
}

// Publish hands msg to every subscriber, even after one fails, and returns
// the first error.
func (t *topicImpl) Publish(msg *BusMessage) error {
	var first error
	for _, sub := range t.subs.Load().([]Subscriber) {
		if err := sub.HandleMsgFromMsgBus(msg); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type messageBusImpl struct {
	topics sync.Map //first class LocalMsgType -> Topic
	mutex  sync.Mutex
}

func NewMessageBus() MessageBus {
	return &messageBusImpl{}
}

func (mb *messageBusImpl) Register(topic common.LocalMsgType, sub Subscriber) {
	mb.mutex.Lock()
	defer mb.mutex.Unlock()

	firstClassTopic := topic.Type()
	if v, ok := mb.topics.Load(firstClassTopic); ok {
		v.(Topic).Register(sub)
		return
	}
	t := newTopic()
	t.Register(sub)
	mb.topics.Store(firstClassTopic, t)
}

func (mb *messageBusImpl) UnRegister(topic common.LocalMsgType, sub Subscriber) {
	v, ok := mb.topics.Load(topic.Type())
	if !ok {
		return
	}
	v.(Topic).UnRegister(sub)
}

// Publish with no subscribers on the topic is a no-op.
func (mb *messageBusImpl) Publish(runID string, topic common.LocalMsgType, msg interface{}) error {
	v, ok := mb.topics.Load(topic.Type())
	if !ok {
		return nil
	}
	busMsg := &BusMessage{MsgType: topic, RunID: runID, Msg: msg}
	if err := v.(Topic).Publish(busMsg); err != nil {
		return errors.WithMessagef(err, "publish msg type %#x", uint32(topic))
	}
	return nil
}

func (mb *messageBusImpl) Reset() {
	mb.mutex.Lock()
	defer mb.mutex.Unlock()

	mb.topics.Range(func(k, _ interface{}) bool {
		mb.topics.Delete(k)
		return true
	})
}
