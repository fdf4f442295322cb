package cluster

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned Timer is stopped.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Timer
}

// Timer cancels a recurring job. Stop may be called more than once.
type Timer interface {
	Stop()
}

// TickerScheduler runs each job on its own goroutine driven by a
// time.Ticker, so the ticks of one job never overlap.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) Timer {
	t := &tickerTimer{stopChan: make(chan struct{})}
	go t.loop(interval, fn)
	return t
}

type tickerTimer struct {
	stopChan chan struct{}
	once     sync.Once
}

func (t *tickerTimer) loop(interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			select {
			case <-t.stopChan:
				return
			default:
			}
			fn()
		case <-t.stopChan:
			return
		}
	}
}

// Stop does not wait for a tick that is already running.
func (t *tickerTimer) Stop() {
	t.once.Do(func() { close(t.stopChan) })
}
