package client

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/sezna/lasr/actors"
	"github.com/sezna/lasr/core/types"
	"github.com/sezna/lasr/da"
	"github.com/sezna/lasr/storage"
)

const recvTimeout = 2 * time.Second

func startClient(t *testing.T) *Client {
	t.Helper()
	c := New(storage.NewMemDB(), nil)
	go c.Run()
	t.Cleanup(func() {
		c.Stop()
		<-c.Done()
	})
	return c
}

func TestClientValidateAndRetrieve(t *testing.T) {
	c := startClient(t)
	data := []byte("blob payload")
	var addr types.Address
	addr[0] = 0x01

	resp := c.SubmitBlob(data)
	require.NotEmpty(t, resp.RequestID)

	completion := make(chan da.ProofEvent, 1)
	require.NoError(t, c.Handle().Cast(actors.ValidateBlob{
		RequestID:  resp.RequestID,
		Address:    addr,
		Completion: completion,
	}))

	var ev da.ProofEvent
	select {
	case ev = <-completion:
	case <-time.After(recvTimeout):
		t.Fatalf("timed out waiting for proof")
	}
	require.Equal(t, addr, ev.Address)

	sum := sha3.Sum256(data)
	require.Equal(t, "0x"+hex.EncodeToString(sum[:]), ev.Proof.BatchHeaderHash())

	require.NoError(t, c.Handle().Cast(actors.RetrieveBlob{
		BatchHeaderHash: ev.Proof.BatchHeaderHash(),
		BlobIndex:       ev.Proof.BlobIndex,
	}))

	select {
	case blob := <-c.Retrievals():
		require.Equal(t, data, blob.Data)
		require.Equal(t, ev.Proof.BatchHeaderHash(), blob.BatchHeaderHash)
	case <-time.After(recvTimeout):
		t.Fatalf("timed out waiting for retrieved blob")
	}
}

func TestClientAssignsDistinctBlobIndexes(t *testing.T) {
	c := startClient(t)
	var addr types.Address

	seen := make(map[uint64]bool)
	for i := 0; i < 3; i++ {
		resp := c.SubmitBlob([]byte{byte(i)})
		completion := make(chan da.ProofEvent, 1)
		require.NoError(t, c.Handle().Cast(actors.ValidateBlob{
			RequestID:  resp.RequestID,
			Address:    addr,
			Completion: completion,
		}))
		select {
		case ev := <-completion:
			require.False(t, seen[ev.Proof.BlobIndex], "blob index %d reused", ev.Proof.BlobIndex)
			seen[ev.Proof.BlobIndex] = true
		case <-time.After(recvTimeout):
			t.Fatalf("timed out waiting for proof %d", i)
		}
	}
}

func TestClientUnknownRequestDropsCompletion(t *testing.T) {
	c := startClient(t)
	var addr types.Address

	completion := make(chan da.ProofEvent, 1)
	require.NoError(t, c.Handle().Cast(actors.ValidateBlob{
		RequestID:  "no-such-request",
		Address:    addr,
		Completion: completion,
	}))

	select {
	case _, ok := <-completion:
		require.False(t, ok, "expected completion to be closed without a value")
	case <-time.After(recvTimeout):
		t.Fatalf("timed out waiting for dropped completion")
	}
}
