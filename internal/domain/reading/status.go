package reading

import (
	"sync"
	"sync/atomic"
	"time"
)

// statusRotator cycles through progress messages while an interpretation is
// generated. It carries no reading state and never touches the controller lock.
type statusRotator struct {
	messages []string
	current  atomic.Int64
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

func newStatusRotator(messages []string, interval time.Duration) *statusRotator {
	r := &statusRotator{
		messages: messages,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if len(messages) < 2 || interval <= 0 {
		close(r.done)
		return r
	}
	go r.run(interval)
	return r
}

func (r *statusRotator) run(interval time.Duration) {
	defer close(r.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			next := (r.current.Load() + 1) % int64(len(r.messages))
			r.current.Store(next)
		}
	}
}

// Current returns the message to display right now.
func (r *statusRotator) Current() string {
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[r.current.Load()]
}

// Stop halts the ticker and waits for the goroutine to exit. Safe to call twice.
func (r *statusRotator) Stop() {
	r.once.Do(func() { close(r.stop) })
	<-r.done
}
