package worker

import (
	"context"
	"sync"

	"screw-inspection/domain/services"
	"screw-inspection/pkg/logger"
)

// InvalidationListener blocks delivering remote invalidations until ctx ends
type InvalidationListener interface {
	Listen(ctx context.Context, handlers map[services.InvalidationTopic]func())
}

// InvalidationWorker keeps a listener running in the background and routes
// remote invalidations to the local caches.
type InvalidationWorker struct {
	listener InvalidationListener
	handlers map[services.InvalidationTopic]func()

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.Mutex
}

func NewInvalidationWorker(listener InvalidationListener, handle services.DetectorHandle, resolver services.ConfigResolver) *InvalidationWorker {
	return &InvalidationWorker{
		listener: listener,
		handlers: map[services.InvalidationTopic]func(){
			services.TopicEngine: handle.Invalidate,
			services.TopicConfig: resolver.Invalidate,
		},
	}
}

func (w *InvalidationWorker) Start() {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = true
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.listener.Listen(w.ctx, w.handlers)
	}()

	logger.Startup("invalidation_worker_started", "Invalidation worker started", nil)
}

func (w *InvalidationWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
	logger.Startup("invalidation_worker_stopped", "Invalidation worker stopped", nil)
}

func (w *InvalidationWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}
