package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sezna/lasr/actors"
	"github.com/sezna/lasr/core/types"
	"github.com/sezna/lasr/observability"
)

type lookupRequest struct {
	address types.Address
	reply   chan<- *types.Account
}

// AccountCache is the in-process view of recently-touched accounts. Entries
// enter through Write and leave only when the EO actor resolves the removal
// signal handed to it at write time: the cache never ages entries out by
// itself. An EO actor that disappears without signaling simply leaves the
// entry resident.
type AccountCache struct {
	log     *slog.Logger
	eo      *actors.EoHandle
	metrics *observability.CacheMetrics

	accounts map[types.Address]*types.Account

	writes    chan *types.Account
	lookups   chan lookupRequest
	sizes     chan chan<- int
	evictions chan types.Address

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAccountCache builds a cache that reports resident addresses to eo.
func NewAccountCache(eo *actors.EoHandle, log *slog.Logger, opts ...Option) *AccountCache {
	o := buildOptions(opts)
	if log == nil {
		log = slog.Default()
	}
	return &AccountCache{
		log:       log.With(slog.String("actor", actors.KindAccountCache.String())),
		eo:        eo,
		metrics:   observability.Cache(),
		accounts:  make(map[types.Address]*types.Account),
		writes:    make(chan *types.Account, o.queueDepth),
		lookups:   make(chan lookupRequest, o.queueDepth),
		sizes:     make(chan chan<- int, 1),
		evictions: make(chan types.Address, o.queueDepth),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run drives the cache until Stop is called. All state mutation happens on
// this goroutine.
func (c *AccountCache) Run() {
	defer close(c.done)
	defer c.wg.Wait()
	for {
		select {
		case <-c.quit:
			return
		default:
		}
		select {
		case <-c.quit:
			return
		case account := <-c.writes:
			c.handleWrite(account)
		case req := <-c.lookups:
			c.handleLookup(req)
		case reply := <-c.sizes:
			reply <- len(c.accounts)
		case addr := <-c.evictions:
			c.handleEviction(addr)
		}
	}
}

// Stop asks the loop to exit. It is safe to call more than once.
func (c *AccountCache) Stop() {
	c.stopOnce.Do(func() { close(c.quit) })
}

// Done is closed once the loop has exited and all completion forwarders are
// drained.
func (c *AccountCache) Done() <-chan struct{} {
	return c.done
}

// Write upserts account, keyed by its address. The cache takes ownership of
// the value; callers must not mutate it afterwards.
func (c *AccountCache) Write(ctx context.Context, account *types.Account) error {
	select {
	case c.writes <- account:
		return nil
	case <-c.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Read looks up the account for addr. A miss returns (nil, nil): absence
// from the cache says nothing about ledger truth upstream.
func (c *AccountCache) Read(ctx context.Context, addr types.Address) (*types.Account, error) {
	reply := make(chan *types.Account, 1)
	select {
	case c.lookups <- lookupRequest{address: addr, reply: reply}:
	case <-c.quit:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case account := <-reply:
		return account, nil
	case <-c.quit:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size reports the number of resident entries.
func (c *AccountCache) Size(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	select {
	case c.sizes <- reply:
	case <-c.quit:
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case n := <-reply:
		return n, nil
	case <-c.quit:
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (c *AccountCache) handleWrite(account *types.Account) {
	addr := account.Address
	c.accounts[addr] = account
	c.metrics.Writes.Inc()

	// Every write hands the EO actor a fresh single-use removal signal,
	// whether or not the address was already resident.
	removal := make(chan types.Address, 1)
	watch(&c.wg, c.quit, removal, c.evictions)
	if err := c.eo.Cast(actors.AccountCached{Address: addr, Removal: removal}); err != nil {
		c.log.Error("failed to notify eo of cached account",
			slog.String("address", addr.Hex()), slog.Any("error", err))
	}
}

func (c *AccountCache) handleLookup(req lookupRequest) {
	account, ok := c.accounts[req.address]
	if !ok {
		c.metrics.Misses.Inc()
		req.reply <- nil
		return
	}
	c.metrics.Hits.Inc()
	req.reply <- account.Clone()
}

func (c *AccountCache) handleEviction(addr types.Address) {
	if _, ok := c.accounts[addr]; !ok {
		return
	}
	delete(c.accounts, addr)
	c.metrics.Evictions.Inc()
}
