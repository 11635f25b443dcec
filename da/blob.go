// Package da defines the data contract exchanged with the external
// data-availability network: submission responses, verification proofs, and
// the events that deliver proofs back to the settlement queue.
package da

import "github.com/sezna/lasr/core/types"

// BlobResponse is the DA network's acknowledgment of a blob submission. It
// carries the request id the submitter must quote when asking for the blob
// to be validated.
type BlobResponse struct {
	RequestID string `json:"requestId"`
}

// BatchMetadata identifies the DA batch a verified blob was included in.
type BatchMetadata struct {
	BatchHeaderHash string `json:"batchHeaderHash"`
}

// BlobVerificationProof attests that a submitted blob was included and
// verified by the DA network. The batch header hash and blob index together
// identify the blob for settlement and retrieval.
type BlobVerificationProof struct {
	BatchMetadata BatchMetadata `json:"batchMetadata"`
	BlobIndex     uint64        `json:"blobIndex"`
}

// BatchHeaderHash returns the header hash of the containing batch.
func (p BlobVerificationProof) BatchHeaderHash() string {
	return p.BatchMetadata.BatchHeaderHash
}

// ProofEvent is the resolution of a blob validation request: the address the
// submission was keyed by, plus its verification proof. Each validation
// completion channel delivers exactly one ProofEvent or is closed unresolved.
type ProofEvent struct {
	Address types.Address
	Proof   BlobVerificationProof
}

// RetrievedBlob is a blob fetched back from the DA network after settlement
// was triggered.
type RetrievedBlob struct {
	BatchHeaderHash string
	BlobIndex       uint64
	Data            []byte
}
