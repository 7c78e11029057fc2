package safe_close

import (
	"os"
	"os/signal"
	"sync"
)

// SafeClose ties a group of goroutines together.
//
//  1. Every goroutine is started by Attach and must return once the close
//     signal is received.
//  2. The first goroutine that returns, or any SendCloseSignal call, sends
//     the close signal to all of them.
//  3. CloseWait sends the signal and blocks until every attached goroutine
//     returned. It must not be called from an attached goroutine.
type SafeClose struct {
	m           sync.Mutex
	wg          sync.WaitGroup
	closeSignal chan struct{}
	closeErr    error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// CloseWait sends a close signal and waits for all attached goroutines.
// It returns the first error passed to SendCloseSignal.
// It is concurrent safe and can be called multiple times.
func (s *SafeClose) CloseWait() error {
	s.SendCloseSignal(nil)
	s.wg.Wait()
	return s.Err()
}

// SendCloseSignal sends a close signal. Only the first call has an effect.
func (s *SafeClose) SendCloseSignal(err error) {
	s.m.Lock()
	defer s.m.Unlock()

	select {
	case <-s.closeSignal:
		return
	default:
		s.closeErr = err
		close(s.closeSignal)
	}
}

// Err returns the error of the first SendCloseSignal.
func (s *SafeClose) Err() error {
	s.m.Lock()
	defer s.m.Unlock()
	return s.closeErr
}

func (s *SafeClose) ReceiveCloseSignal() <-chan struct{} {
	return s.closeSignal
}

// Attach runs f in a new goroutine. When f returns, the close signal is sent
// with its error. If s was closed, f will not run.
func (s *SafeClose) Attach(f func(closeSignal <-chan struct{}) error) {
	s.m.Lock()
	select {
	case <-s.closeSignal:
		s.m.Unlock()
		return
	default:
		s.wg.Add(1)
	}
	s.m.Unlock()

	go func() {
		defer s.wg.Done()
		s.SendCloseSignal(f(s.closeSignal))
	}()
}

// NotifySignal sends a close signal when the process receives one of sigs.
func (s *SafeClose) NotifySignal(sigs ...os.Signal) {
	s.Attach(func(closeSignal <-chan struct{}) error {
		c := make(chan os.Signal, 1)
		signal.Notify(c, sigs...)
		defer signal.Stop(c)

		select {
		case <-c:
		case <-closeSignal:
		}
		return nil
	})
}
