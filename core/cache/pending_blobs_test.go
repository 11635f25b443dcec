package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/sezna/lasr/actors"
	"github.com/sezna/lasr/da"
)

func startBlobQueue(t *testing.T) (*PendingBlobs, chan actors.EoMessage, chan actors.DaClientMessage) {
	t.Helper()
	eoInbox := make(chan actors.EoMessage, 16)
	daInbox := make(chan actors.DaClientMessage, 16)
	q := NewPendingBlobs(actors.NewEoHandle(eoInbox), actors.NewDaHandle(daInbox), nil, WithQueueDepth(16))
	go q.Run()
	t.Cleanup(func() {
		q.Stop()
		<-q.Done()
	})
	return q, eoInbox, daInbox
}

func recvValidate(t *testing.T, daInbox <-chan actors.DaClientMessage) actors.ValidateBlob {
	t.Helper()
	msg := recvMsg(t, daInbox, "ValidateBlob request")
	validate, ok := msg.(actors.ValidateBlob)
	if !ok {
		t.Fatalf("unexpected da message type %T", msg)
	}
	return validate
}

func testProof(hash string, index uint64) da.BlobVerificationProof {
	return da.BlobVerificationProof{
		BatchMetadata: da.BatchMetadata{BatchHeaderHash: hash},
		BlobIndex:     index,
	}
}

func TestBlobSubmitValidateSettleRetrieve(t *testing.T) {
	q, eoInbox, daInbox := startBlobQueue(t)
	ctx := testContext(t)
	addr := testAddr(0x01)

	if err := q.Submit(ctx, addr, da.BlobResponse{RequestID: "req-1"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	validate := recvValidate(t, daInbox)
	if validate.RequestID != "req-1" || validate.Address != addr {
		t.Fatalf("validate request mismatch: %+v", validate)
	}

	validate.Completion <- da.ProofEvent{Address: addr, Proof: testProof("0xbatch", 7)}

	settleMsg := recvEo(t, eoInbox, "Settle notification")
	settle, ok := settleMsg.(actors.Settle)
	if !ok {
		t.Fatalf("unexpected eo message type %T", settleMsg)
	}
	if settle.Address != addr || settle.BatchHeaderHash != "0xbatch" || settle.BlobIndex != 7 {
		t.Fatalf("settle fields mismatch: %+v", settle)
	}

	retrieveMsg := recvMsg(t, daInbox, "RetrieveBlob request")
	retrieve, ok := retrieveMsg.(actors.RetrieveBlob)
	if !ok {
		t.Fatalf("unexpected da message type %T", retrieveMsg)
	}
	if retrieve.BatchHeaderHash != "0xbatch" || retrieve.BlobIndex != 7 {
		t.Fatalf("retrieve fields mismatch: %+v", retrieve)
	}
}

func TestBlobDuplicateProofDoesNotResettle(t *testing.T) {
	q, eoInbox, daInbox := startBlobQueue(t)
	ctx := testContext(t)
	addr := testAddr(0x02)

	if err := q.Submit(ctx, addr, da.BlobResponse{RequestID: "req-2"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	validate := recvValidate(t, daInbox)
	validate.Completion <- da.ProofEvent{Address: addr, Proof: testProof("0xbatch", 1)}

	recvEo(t, eoInbox, "Settle notification")
	recvMsg(t, daInbox, "RetrieveBlob request")

	// A second proof for an address already settled and removed.
	q.validated <- da.ProofEvent{Address: addr, Proof: testProof("0xbatch", 1)}

	expectQuiet(t, eoInbox, "second settle for the same address")
	expectQuiet(t, daInbox, "second retrieve for the same address")
}

func TestBlobResubmitReplacesResponse(t *testing.T) {
	q, eoInbox, daInbox := startBlobQueue(t)
	ctx := testContext(t)
	addr := testAddr(0x03)

	if err := q.Submit(ctx, addr, da.BlobResponse{RequestID: "req-old"}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	first := recvValidate(t, daInbox)
	if err := q.Submit(ctx, addr, da.BlobResponse{RequestID: "req-new"}); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	second := recvValidate(t, daInbox)
	if second.RequestID != "req-new" {
		t.Fatalf("second validate request id: %s", second.RequestID)
	}

	// Whichever validation resolves first settles the address once.
	second.Completion <- da.ProofEvent{Address: addr, Proof: testProof("0xnew", 2)}
	recvEo(t, eoInbox, "Settle notification")
	recvMsg(t, daInbox, "RetrieveBlob request")

	// The stale validation resolving afterwards is a duplicate.
	first.Completion <- da.ProofEvent{Address: addr, Proof: testProof("0xold", 1)}
	expectQuiet(t, eoInbox, "settle from stale validation")
	expectQuiet(t, daInbox, "retrieve from stale validation")
}

func TestBlobSettleFailureStillRequestsRetrieval(t *testing.T) {
	daInbox := make(chan actors.DaClientMessage, 16)
	// EO handle with no mailbox: every settle cast fails.
	q := NewPendingBlobs(actors.NewEoHandle(nil), actors.NewDaHandle(daInbox), nil, WithQueueDepth(16))
	go q.Run()
	t.Cleanup(func() {
		q.Stop()
		<-q.Done()
	})

	ctx := testContext(t)
	addr := testAddr(0x04)
	if err := q.Submit(ctx, addr, da.BlobResponse{RequestID: "req-4"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	validate := recvValidate(t, daInbox)
	validate.Completion <- da.ProofEvent{Address: addr, Proof: testProof("0xbatch", 3)}

	// Settlement notification is best-effort; retrieval proceeds anyway.
	retrieveMsg := recvMsg(t, daInbox, "RetrieveBlob request")
	if _, ok := retrieveMsg.(actors.RetrieveBlob); !ok {
		t.Fatalf("unexpected da message type %T", retrieveMsg)
	}
}

func TestBlobQueueShutdown(t *testing.T) {
	q := NewPendingBlobs(actors.NewEoHandle(nil), actors.NewDaHandle(nil), nil)
	go q.Run()

	q.Stop()
	select {
	case <-q.Done():
	case <-time.After(recvTimeout):
		t.Fatalf("loop did not exit after stop")
	}

	err := q.Submit(testContext(t), testAddr(0x05), da.BlobResponse{RequestID: "req-5"})
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}
