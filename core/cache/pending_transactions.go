package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sezna/lasr/actors"
	"github.com/sezna/lasr/core/types"
	"github.com/sezna/lasr/observability"
)

// Confirmation is delivered to a waiter when the pending operation it
// registered for is confirmed.
type Confirmation struct {
	Address   types.Address
	ProgramID types.Address
}

// ConfirmedTransaction is the resolution of a pending-operation completion:
// the account address and the token whose pending operation confirmed.
type ConfirmedTransaction struct {
	Address types.Address
	Token   *types.Token
}

type waiterRegistration struct {
	address types.Address
	token   *types.Token
	reply   chan<- Confirmation
}

// pendingTokens is the per-address waiter table: program id to the FIFO list
// of single-use reply channels awaiting confirmation.
type pendingTokens struct {
	waiters map[types.Address][]chan<- Confirmation
}

func newPendingTokens() *pendingTokens {
	return &pendingTokens{waiters: make(map[types.Address][]chan<- Confirmation)}
}

func (p *pendingTokens) add(programID types.Address, reply chan<- Confirmation) {
	p.waiters[programID] = append(p.waiters[programID], reply)
}

// pop removes and returns the earliest-registered waiter for programID,
// dropping the per-program entry once its list empties.
func (p *pendingTokens) pop(programID types.Address) (chan<- Confirmation, bool) {
	list, ok := p.waiters[programID]
	if !ok || len(list) == 0 {
		return nil, false
	}
	head := list[0]
	if len(list) == 1 {
		delete(p.waiters, programID)
	} else {
		p.waiters[programID] = list[1:]
	}
	return head, true
}

func (p *pendingTokens) empty() bool {
	return len(p.waiters) == 0
}

// PendingTransactions lets many independent callers wait for confirmation of
// a specific (address, program) pending operation. Confirmations resolve
// waiters strictly FIFO per key, one waiter per confirmation event. A
// confirmation with no registered waiter is a no-op: confirmations may race
// ahead of registration, and no waiter means no one is owed a notification.
type PendingTransactions struct {
	log     *slog.Logger
	metrics *observability.WaiterMetrics

	pending map[types.Address]*pendingTokens

	registrations chan waiterRegistration
	confirmations chan ConfirmedTransaction
	sizes         chan chan<- int

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPendingTransactions builds an empty waiter registry.
func NewPendingTransactions(log *slog.Logger, opts ...Option) *PendingTransactions {
	o := buildOptions(opts)
	if log == nil {
		log = slog.Default()
	}
	return &PendingTransactions{
		log:           log.With(slog.String("actor", actors.KindPendingTransactions.String())),
		metrics:       observability.Waiters(),
		pending:       make(map[types.Address]*pendingTokens),
		registrations: make(chan waiterRegistration, o.queueDepth),
		confirmations: make(chan ConfirmedTransaction, o.queueDepth),
		sizes:         make(chan chan<- int, 1),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Run drives the registry until Stop is called.
func (p *PendingTransactions) Run() {
	defer close(p.done)
	defer p.wg.Wait()
	for {
		select {
		case <-p.quit:
			return
		default:
		}
		select {
		case <-p.quit:
			return
		case reg := <-p.registrations:
			p.handleRegister(reg)
		case ev := <-p.confirmations:
			p.handleConfirmed(ev)
		case reply := <-p.sizes:
			reply <- p.waiting()
		}
	}
}

// Stop asks the loop to exit. Safe to call more than once.
func (p *PendingTransactions) Stop() {
	p.stopOnce.Do(func() { close(p.quit) })
}

// Done is closed once the loop has exited.
func (p *PendingTransactions) Done() <-chan struct{} {
	return p.done
}

// RegisterWaiter queues reply behind any waiters already registered for
// (address, token.ProgramID). reply must have capacity for one value; it is
// resolved at most once.
func (p *PendingTransactions) RegisterWaiter(ctx context.Context, address types.Address, token *types.Token, reply chan<- Confirmation) error {
	select {
	case p.registrations <- waiterRegistration{address: address, token: token, reply: reply}:
		return nil
	case <-p.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Waiting reports the number of registered waiters across all keys.
func (p *PendingTransactions) Waiting(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	select {
	case p.sizes <- reply:
	case <-p.quit:
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case n := <-reply:
		return n, nil
	case <-p.quit:
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (p *PendingTransactions) waiting() int {
	total := 0
	for _, entry := range p.pending {
		for _, list := range entry.waiters {
			total += len(list)
		}
	}
	return total
}

// Observe adds a pending confirmation source to the registry's unordered
// fan-in set. rx must deliver at most one event; closing it without a value
// abandons the confirmation. Sources added after Stop are ignored.
func (p *PendingTransactions) Observe(rx <-chan ConfirmedTransaction) {
	select {
	case <-p.quit:
		return
	default:
	}
	watch(&p.wg, p.quit, rx, p.confirmations)
}

func (p *PendingTransactions) handleRegister(reg waiterRegistration) {
	entry, ok := p.pending[reg.address]
	if !ok {
		// First registration for this address: the fresh table must be
		// retained so the waiter survives until its confirmation lands.
		entry = newPendingTokens()
		p.pending[reg.address] = entry
	}
	entry.add(reg.token.ProgramID, reg.reply)
	p.metrics.Registered.Inc()
}

func (p *PendingTransactions) handleConfirmed(ev ConfirmedTransaction) {
	programID := ev.Token.ProgramID
	entry, ok := p.pending[ev.Address]
	if !ok {
		p.metrics.Orphaned.Inc()
		return
	}
	reply, ok := entry.pop(programID)
	if !ok {
		p.metrics.Orphaned.Inc()
		return
	}
	select {
	case reply <- Confirmation{Address: ev.Address, ProgramID: programID}:
		p.metrics.Confirmed.Inc()
	default:
		p.log.Error("waiter reply channel not ready, confirmation dropped",
			slog.String("address", ev.Address.Hex()),
			slog.String("program_id", programID.Hex()))
	}
	if entry.empty() {
		delete(p.pending, ev.Address)
	}
}
