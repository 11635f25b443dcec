package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sezna/lasr/actors"
	"github.com/sezna/lasr/core/types"
	"github.com/sezna/lasr/da"
	"github.com/sezna/lasr/observability"
)

type blobSubmission struct {
	address  types.Address
	response da.BlobResponse
}

// PendingBlobs coordinates the two-phase handshake between submitting data
// to the DA layer and settling it with the execution layer. Submissions are
// keyed by account address, last-write-wins. Validation is one-shot per
// address: once a proof lands the entry is removed and a second proof for
// the same address triggers nothing.
type PendingBlobs struct {
	log     *slog.Logger
	eo      *actors.EoHandle
	da      *actors.DaHandle
	metrics *observability.BlobMetrics

	queue map[types.Address]da.BlobResponse

	submissions chan blobSubmission
	validated   chan da.ProofEvent

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPendingBlobs builds a settlement queue that validates through daHandle
// and settles through eo.
func NewPendingBlobs(eo *actors.EoHandle, daHandle *actors.DaHandle, log *slog.Logger, opts ...Option) *PendingBlobs {
	o := buildOptions(opts)
	if log == nil {
		log = slog.Default()
	}
	return &PendingBlobs{
		log:         log.With(slog.String("actor", actors.KindBlobCache.String())),
		eo:          eo,
		da:          daHandle,
		metrics:     observability.Blobs(),
		queue:       make(map[types.Address]da.BlobResponse),
		submissions: make(chan blobSubmission, o.queueDepth),
		validated:   make(chan da.ProofEvent, o.queueDepth),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Run drives the queue until Stop is called.
func (q *PendingBlobs) Run() {
	defer close(q.done)
	defer q.wg.Wait()
	for {
		select {
		case <-q.quit:
			return
		default:
		}
		select {
		case <-q.quit:
			return
		case s := <-q.submissions:
			q.handleSubmit(s)
		case ev := <-q.validated:
			q.handleValidated(ev)
		}
	}
}

// Stop asks the loop to exit. Safe to call more than once.
func (q *PendingBlobs) Stop() {
	q.stopOnce.Do(func() { close(q.quit) })
}

// Done is closed once the loop has exited.
func (q *PendingBlobs) Done() <-chan struct{} {
	return q.done
}

// Submit queues the DA submission response for address and asks the DA
// client to validate it.
func (q *PendingBlobs) Submit(ctx context.Context, address types.Address, response da.BlobResponse) error {
	select {
	case q.submissions <- blobSubmission{address: address, response: response}:
		return nil
	case <-q.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *PendingBlobs) handleSubmit(s blobSubmission) {
	q.log.Info("queueing blob response for validation",
		slog.String("address", s.address.Hex()),
		slog.String("request_id", s.response.RequestID))
	q.queue[s.address] = s.response
	q.metrics.Submitted.Inc()

	completion := make(chan da.ProofEvent, 1)
	watch(&q.wg, q.quit, completion, q.validated)
	if err := q.da.Cast(actors.ValidateBlob{
		RequestID:  s.response.RequestID,
		Address:    s.address,
		Completion: completion,
	}); err != nil {
		q.metrics.CastFailures.Inc()
		q.log.Error("failed to ask da client to validate blob",
			slog.String("address", s.address.Hex()), slog.Any("error", err))
	}
}

func (q *PendingBlobs) handleValidated(ev da.ProofEvent) {
	if _, ok := q.queue[ev.Address]; !ok {
		q.metrics.DuplicateProofs.Inc()
		return
	}
	delete(q.queue, ev.Address)

	batchHeaderHash := ev.Proof.BatchHeaderHash()
	blobIndex := ev.Proof.BlobIndex

	// Settlement and retrieval proceed independently once validation
	// succeeds; neither failure rolls back the removal.
	if err := q.eo.Cast(actors.Settle{
		Address:         ev.Address,
		BatchHeaderHash: batchHeaderHash,
		BlobIndex:       blobIndex,
	}); err != nil {
		q.metrics.CastFailures.Inc()
		q.log.Error("failed to inform eo that blob is ready for settlement",
			slog.String("address", ev.Address.Hex()), slog.Any("error", err))
	}
	q.metrics.Settled.Inc()

	if err := q.da.Cast(actors.RetrieveBlob{
		BatchHeaderHash: batchHeaderHash,
		BlobIndex:       blobIndex,
	}); err != nil {
		q.metrics.CastFailures.Inc()
		q.log.Error("failed to ask da client to retrieve blob",
			slog.String("batch_header_hash", batchHeaderHash),
			slog.Uint64("blob_index", blobIndex), slog.Any("error", err))
	}
}
