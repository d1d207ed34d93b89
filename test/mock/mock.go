package mock

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"perceptron/core/msgbus"
)

// MockLog prints every entry to stdout and keeps nothing.
type MockLog struct {
	Name string
}

func (l *MockLog) Debug(args ...interface{}) {
	fmt.Println(args...)
}
func (l *MockLog) Debugf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func (l *MockLog) Info(args ...interface{}) {
	fmt.Println(args...)
}

func (l *MockLog) Infof(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func (l *MockLog) Warn(args ...interface{}) {
	fmt.Println(args...)
}

func (l *MockLog) Warnf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func (l *MockLog) Error(args ...interface{}) {
	fmt.Println(args...)
}

func (l *MockLog) Errorf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func GetMockLogger(name string) *MockLog {
	return &MockLog{name}
}

// MockSubscriber records bus messages and can be told to fail.
type MockSubscriber struct {
	Fail bool

	mutex sync.Mutex
	msgs  []*msgbus.BusMessage
}

func (s *MockSubscriber) HandleMsgFromMsgBus(msg *msgbus.BusMessage) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.msgs = append(s.msgs, msg)
	if s.Fail {
		return errors.Errorf("mock subscriber rejects msg type %#x", uint32(msg.MsgType))
	}
	return nil
}

func (s *MockSubscriber) Messages() []*msgbus.BusMessage {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]*msgbus.BusMessage, len(s.msgs))
	copy(out, s.msgs)
	return out
}
