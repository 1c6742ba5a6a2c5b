package semaphore

import (
	"context"
	"fmt"
	"time"

	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

type Semaphore struct {
	semaCh chan struct{}
}

func New(maxInFlight uint64) *Semaphore {
	return &Semaphore{
		semaCh: make(chan struct{}, maxInFlight),
	}
}

// AcquireWithTimeout waits for a free slot no longer than timeout or until
// ctx is done.
func (s *Semaphore) AcquireWithTimeout(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("semaphore acquire aborted: %w", ctx.Err())
	case <-timer.C:
		return serviceerrs.ErrSemaphoreTimeoutExceeded
	case s.semaCh <- struct{}{}:
		return nil
	}
}

func (s *Semaphore) Release() {
	<-s.semaCh
}

// InFlight returns the number of held slots.
func (s *Semaphore) InFlight() int {
	return len(s.semaCh)
}
