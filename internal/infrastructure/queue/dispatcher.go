package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mineralchain/roles-admin/internal/api/metrics"
	"github.com/mineralchain/roles-admin/internal/core/domain"
	"github.com/mineralchain/roles-admin/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 10 * time.Second
)

// Dispatcher persists role operation records off the request path. Records
// are sharded by role so each role's history is written in order.
type Dispatcher struct {
	workers []chan domain.RoleOperation
	repo    ports.OperationRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.OperationRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.RoleOperation, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.RoleOperation, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers run until Stop has closed and
// drained their queues; ctx only supplies values to the inserts, its
// cancellation does not abort pending records.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Stop closes the queues and waits for pending records to be written.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Record queues op for persistence. It never blocks: a record that does not
// fit in its worker's buffer is dropped and counted as an audit error.
func (d *Dispatcher) Record(op domain.RoleOperation) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.AuditErrorsTotal.Inc()
		return
	}

	idx := d.shardIndex(string(op.Role))
	select {
	case d.workers[idx] <- op:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditErrorsTotal.Inc()
		d.log.Error().Str("op_id", op.ID).Int("worker_id", idx).Msg("audit queue full, record dropped")
	}
}

// shardIndex maps a role deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.RoleOperation) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for op := range ch {
		metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		d.persist(ctx, id, op)
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, op domain.RoleOperation) {
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), insertTimeout)
	defer cancel()

	if err := d.repo.Insert(insertCtx, &op); err != nil {
		metrics.AuditErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("op_id", op.ID).
			Str("role", string(op.Role)).
			Int("worker_id", id).
			Msg("audit record persistence failed")
	}
}
