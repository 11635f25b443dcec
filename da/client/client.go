// Package client provides an in-process DA client honoring the DA message
// contract: it accepts blob submissions, resolves validation completions
// with verification proofs, and serves retrieval requests from a local blob
// store. Network transport to a real DA provider is a separate concern and
// lives behind the same mailbox.
package client

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/sezna/lasr/actors"
	"github.com/sezna/lasr/da"
	"github.com/sezna/lasr/storage"
)

const defaultMailboxDepth = 64

// Client consumes DaClientMessage from its mailbox on a single goroutine.
type Client struct {
	log   *slog.Logger
	store storage.Database

	inbox      chan actors.DaClientMessage
	retrievals chan da.RetrievedBlob

	mu        sync.Mutex
	pending   map[string][]byte
	nextIndex uint64

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New builds a client persisting blob payloads into store.
func New(store storage.Database, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		log:        log.With(slog.String("actor", actors.KindDaClient.String())),
		store:      store,
		inbox:      make(chan actors.DaClientMessage, defaultMailboxDepth),
		retrievals: make(chan da.RetrievedBlob, defaultMailboxDepth),
		pending:    make(map[string][]byte),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Handle returns the capability other actors use to message this client.
func (c *Client) Handle() *actors.DaHandle {
	return actors.NewDaHandle(c.inbox)
}

// Retrievals delivers blobs fetched back after settlement was triggered.
func (c *Client) Retrievals() <-chan da.RetrievedBlob {
	return c.retrievals
}

// SubmitBlob accepts a blob payload for dispersal and returns the response
// callers feed into the settlement queue. The payload is held until the
// matching ValidateBlob request arrives.
func (c *Client) SubmitBlob(data []byte) da.BlobResponse {
	requestID := uuid.NewString()
	c.mu.Lock()
	c.pending[requestID] = append([]byte(nil), data...)
	c.mu.Unlock()
	return da.BlobResponse{RequestID: requestID}
}

// Run drives the mailbox until Stop is called.
func (c *Client) Run() {
	defer close(c.done)
	for {
		select {
		case <-c.quit:
			return
		default:
		}
		select {
		case <-c.quit:
			return
		case msg := <-c.inbox:
			switch m := msg.(type) {
			case actors.ValidateBlob:
				c.handleValidate(m)
			case actors.RetrieveBlob:
				c.handleRetrieve(m)
			default:
				c.log.Error("unhandled da client message", slog.String("type", fmt.Sprintf("%T", msg)))
			}
		}
	}
}

// Stop asks the loop to exit. Safe to call more than once.
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.quit) })
}

// Done is closed once the loop has exited.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) handleValidate(msg actors.ValidateBlob) {
	c.mu.Lock()
	data, ok := c.pending[msg.RequestID]
	var index uint64
	if ok {
		delete(c.pending, msg.RequestID)
		index = c.nextIndex
		c.nextIndex++
	}
	c.mu.Unlock()

	if !ok {
		// Unknown request: drop the completion so the submitter sees an
		// abandoned validation rather than a fabricated proof.
		c.log.Error("validate request for unknown request id",
			slog.String("request_id", msg.RequestID),
			slog.String("address", msg.Address.Hex()))
		close(msg.Completion)
		return
	}

	sum := sha3.Sum256(data)
	batchHeaderHash := "0x" + hex.EncodeToString(sum[:])
	if err := c.store.Put(blobKey(batchHeaderHash, index), data); err != nil {
		c.log.Error("failed to persist blob",
			slog.String("batch_header_hash", batchHeaderHash), slog.Any("error", err))
		close(msg.Completion)
		return
	}

	msg.Completion <- da.ProofEvent{
		Address: msg.Address,
		Proof: da.BlobVerificationProof{
			BatchMetadata: da.BatchMetadata{BatchHeaderHash: batchHeaderHash},
			BlobIndex:     index,
		},
	}
}

func (c *Client) handleRetrieve(msg actors.RetrieveBlob) {
	data, err := c.store.Get(blobKey(msg.BatchHeaderHash, msg.BlobIndex))
	if err != nil {
		c.log.Error("failed to retrieve blob",
			slog.String("batch_header_hash", msg.BatchHeaderHash),
			slog.Uint64("blob_index", msg.BlobIndex), slog.Any("error", err))
		return
	}
	blob := da.RetrievedBlob{
		BatchHeaderHash: msg.BatchHeaderHash,
		BlobIndex:       msg.BlobIndex,
		Data:            data,
	}
	select {
	case c.retrievals <- blob:
	default:
		c.log.Error("retrieval channel full, dropping blob",
			slog.String("batch_header_hash", msg.BatchHeaderHash),
			slog.Uint64("blob_index", msg.BlobIndex))
	}
}

func blobKey(batchHeaderHash string, blobIndex uint64) []byte {
	return []byte(fmt.Sprintf("blob/%s/%d", batchHeaderHash, blobIndex))
}
