// Package core assembles the cache coordinators into a running node. The
// Node is the supervising owner: it constructs the channel endpoints at
// startup, hands out capability handles, and tears the loops down in order.
package core

import (
	"log/slog"

	"github.com/sezna/lasr/actors"
	"github.com/sezna/lasr/config"
	"github.com/sezna/lasr/core/cache"
)

// Node owns the three coordinator loops for the lifetime of the process.
type Node struct {
	log *slog.Logger

	accounts *cache.AccountCache
	waiters  *cache.PendingTransactions
	blobs    *cache.PendingBlobs
}

// NewNode wires the coordinators to their peer handles. The EO and DA
// mailboxes are injected by the caller; the node never reaches for ambient
// global channels.
func NewNode(cfg *config.Config, log *slog.Logger, eo *actors.EoHandle, daHandle *actors.DaHandle) *Node {
	depth := cache.WithQueueDepth(cfg.QueueDepth)
	return &Node{
		log:      log,
		accounts: cache.NewAccountCache(eo, log, depth),
		waiters:  cache.NewPendingTransactions(log, depth),
		blobs:    cache.NewPendingBlobs(eo, daHandle, log, depth),
	}
}

// Start launches one goroutine per coordinator.
func (n *Node) Start() {
	go n.accounts.Run()
	go n.waiters.Run()
	go n.blobs.Run()
	n.log.Info("cache coordinators started")
}

// Stop signals every coordinator and waits for the loops to exit.
func (n *Node) Stop() {
	n.accounts.Stop()
	n.waiters.Stop()
	n.blobs.Stop()
	<-n.accounts.Done()
	<-n.waiters.Done()
	<-n.blobs.Done()
	n.log.Info("cache coordinators stopped")
}

// Accounts returns the account cache coordinator.
func (n *Node) Accounts() *cache.AccountCache {
	return n.accounts
}

// PendingTransactions returns the waiter registry coordinator.
func (n *Node) PendingTransactions() *cache.PendingTransactions {
	return n.waiters
}

// PendingBlobs returns the settlement queue coordinator.
func (n *Node) PendingBlobs() *cache.PendingBlobs {
	return n.blobs
}
