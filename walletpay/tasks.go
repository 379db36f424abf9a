package walletpay

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/walletpay/walletpay-go/observability"
	"github.com/walletpay/walletpay-go/observability/logctx"
)

// taskPurpose names a background task slot. At most one task per purpose is
// logically in flight; starting a purpose interrupts any live task holding it.
type taskPurpose string

const (
	purposeRefreshAuthToken      taskPurpose = "refresh_auth_token"
	purposeDeferredAuthorization taskPurpose = "deferred_authorization"
	purposePollTransactionStatus taskPurpose = "poll_transaction_status"
)

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type taskRegistry struct {
	mu    sync.Mutex
	tasks map[taskPurpose]*task
	log   observability.Logger
}

func newTaskRegistry(log observability.Logger) *taskRegistry {
	return &taskRegistry{
		tasks: make(map[taskPurpose]*task),
		log:   log,
	}
}

// start launches fn on a fresh goroutine under the given purpose, cancelling
// any prior task of the same purpose first. Cancellation is cooperative: fn
// must check its context at every suspension point.
func (r *taskRegistry) start(purpose taskPurpose, fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	prev := r.tasks[purpose]
	r.tasks[purpose] = t
	r.mu.Unlock()

	if prev != nil {
		prev.cancel()
	}

	logger := r.log.With(observability.F("task", string(purpose)))
	ctx = logctx.With(ctx, logger)

	go func() {
		defer close(t.done)
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("task_panic",
					observability.F("panic", rec),
					observability.F("stack", string(debug.Stack())),
				)
			}
			// Release the purpose slot unless a newer task took it over.
			r.mu.Lock()
			if r.tasks[purpose] == t {
				delete(r.tasks, purpose)
			}
			r.mu.Unlock()
		}()
		logger.Debug("task_started")
		fn(ctx)
		logger.Debug("task_finished")
	}()
}

// interrupt cancels the live task for a purpose. Safe on stopped or never
// started tasks.
func (r *taskRegistry) interrupt(purpose taskPurpose) {
	r.mu.Lock()
	t := r.tasks[purpose]
	delete(r.tasks, purpose)
	r.mu.Unlock()

	if t != nil {
		t.cancel()
	}
}

// interruptAll cancels every live task. Idempotent.
func (r *taskRegistry) interruptAll() {
	r.mu.Lock()
	cancelled := make([]*task, 0, len(r.tasks))
	for purpose, t := range r.tasks {
		cancelled = append(cancelled, t)
		delete(r.tasks, purpose)
	}
	r.mu.Unlock()

	for _, t := range cancelled {
		t.cancel()
	}
}

// running reports whether a task currently holds the purpose slot.
func (r *taskRegistry) running(purpose taskPurpose) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[purpose]
	return ok
}
