package pipeline

import (
	"replisync/internal/model"
	"time"
)

// Debounce collapses bursts of notices into a single signal sent once no
// notice has arrived for delay. A signal is dropped if the previous one has
// not been consumed yet. The output closes when inCh closes.
func Debounce(inCh <-chan model.ChangeNotice, delay time.Duration) <-chan struct{} {
	outCh := make(chan struct{}, 1)

	go func() {
		defer close(outCh)

		var (
			timer   *time.Timer
			timerCh <-chan time.Time
		)

		for {
			select {
			case _, ok := <-inCh:
				if !ok {
					if timer != nil {
						timer.Stop()
						signal(outCh)
					}
					return
				}

				if timer == nil {
					timer = time.NewTimer(delay)
				} else {
					timer.Reset(delay)
				}
				timerCh = timer.C

			case <-timerCh:
				timer, timerCh = nil, nil
				signal(outCh)
			}
		}
	}()

	return outCh
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
