package actors

import (
	"github.com/sezna/lasr/core/types"
	"github.com/sezna/lasr/da"
)

// EoMessage is a message addressed to the execution/output-layer actor.
type EoMessage interface {
	eoMessage()
}

// AccountCached tells the EO actor that Address is now resident in the
// account cache. The EO actor owns the entry's lifetime: sending the address
// back on Removal evicts it, closing Removal without sending leaves it
// resident. Removal is single-use.
type AccountCached struct {
	Address types.Address
	Removal chan<- types.Address
}

func (AccountCached) eoMessage() {}

// Settle tells the EO actor that the blob submitted for Address has been
// verified and settlement may proceed.
type Settle struct {
	Address         types.Address
	BatchHeaderHash string
	BlobIndex       uint64
}

func (Settle) eoMessage() {}

// DaClientMessage is a message addressed to the DA-client actor.
type DaClientMessage interface {
	daClientMessage()
}

// ValidateBlob asks the DA client to validate the submission identified by
// RequestID. The client must eventually deliver exactly one ProofEvent on
// Completion, or close it to signal it will never resolve.
type ValidateBlob struct {
	RequestID  string
	Address    types.Address
	Completion chan<- da.ProofEvent
}

func (ValidateBlob) daClientMessage() {}

// RetrieveBlob asks the DA client to fetch the full blob identified by the
// batch header hash and blob index from a verification proof.
type RetrieveBlob struct {
	BatchHeaderHash string
	BlobIndex       uint64
}

func (RetrieveBlob) daClientMessage() {}
