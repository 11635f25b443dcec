package types

import (
	"crypto/ecdsa"
	"encoding/binary"
	"encoding/hex"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// TxKind enumerates the intents a transaction can carry.
type TxKind uint8

const (
	TxBridgeIn TxKind = iota
	TxSend
	TxCall
	TxBridgeOut
	TxDeploy
)

// TransactionType is a tagged variant: the kind of the transaction plus the
// value associated with that kind.
type TransactionType struct {
	Kind  TxKind
	Value *uint256.Int
}

func BridgeIn(v *uint256.Int) TransactionType  { return TransactionType{Kind: TxBridgeIn, Value: v} }
func Send(v *uint256.Int) TransactionType      { return TransactionType{Kind: TxSend, Value: v} }
func Call(v *uint256.Int) TransactionType      { return TransactionType{Kind: TxCall, Value: v} }
func BridgeOut(v *uint256.Int) TransactionType { return TransactionType{Kind: TxBridgeOut, Value: v} }
func Deploy(v *uint256.Int) TransactionType    { return TransactionType{Kind: TxDeploy, Value: v} }

func (t TransactionType) IsBridgeIn() bool  { return t.Kind == TxBridgeIn }
func (t TransactionType) IsSend() bool      { return t.Kind == TxSend }
func (t TransactionType) IsCall() bool      { return t.Kind == TxCall }
func (t TransactionType) IsBridgeOut() bool { return t.Kind == TxBridgeOut }
func (t TransactionType) IsDeploy() bool    { return t.Kind == TxDeploy }

// String renders the canonical wire form of the type tag. BridgeIn, Send and
// Call append the decimal value; BridgeOut and Deploy do not. This form is
// part of the signed pre-image, so it must never change.
func (t TransactionType) String() string {
	value := t.Value
	if value == nil {
		value = uint256.NewInt(0)
	}
	switch t.Kind {
	case TxBridgeIn:
		return "bridgeIn" + value.Dec()
	case TxSend:
		return "send" + value.Dec()
	case TxCall:
		return "call" + value.Dec()
	case TxBridgeOut:
		return "bridgeOut"
	case TxDeploy:
		return "deploy"
	default:
		return "unknown"
	}
}

// Payload is an unsigned instruction: the fields a caller commits to before
// producing a recoverable signature over their canonical encoding.
type Payload struct {
	Type      TransactionType `json:"transactionType"`
	From      Address         `json:"from"`
	To        Address         `json:"to"`
	ProgramID Address         `json:"programId"`
	Inputs    string          `json:"inputs"`
	Value     *uint256.Int    `json:"value"`
}

// Bytes returns the canonical encoding of the payload: the stringified type
// tag, the three 20-byte addresses, the UTF-8 inputs, and the little-endian
// limbs of the value, concatenated in that order. This encoding is the
// pre-image for both the content hash and the signature message; any change
// to field order or encoding is a breaking protocol change.
func (p *Payload) Bytes() []byte {
	return canonicalBytes(p.Type, p.From, p.To, p.ProgramID, p.Inputs, p.Value)
}

// Hash returns the SHA3-256 content hash of the canonical encoding.
func (p *Payload) Hash() []byte {
	sum := sha3.Sum256(p.Bytes())
	return sum[:]
}

// HashString renders the content hash as a 0x-prefixed hex string.
func (p *Payload) HashString() string {
	return "0x" + hex.EncodeToString(p.Hash())
}

// Transaction is a signed instruction: a Payload plus the recoverable
// secp256k1 signature (r, s, v) over its canonical encoding.
type Transaction struct {
	Type      TransactionType `json:"transactionType"`
	From      Address         `json:"from"`
	To        Address         `json:"to"`
	ProgramID Address         `json:"programId"`
	Inputs    string          `json:"inputs"`
	Value     *uint256.Int    `json:"value"`
	V         int32           `json:"v"`
	R         [32]byte        `json:"r"`
	S         [32]byte        `json:"s"`
}

// NewTransaction binds payload to an already-produced signature.
func NewTransaction(payload *Payload, v int32, r, s [32]byte) *Transaction {
	return &Transaction{
		Type:      payload.Type,
		From:      payload.From,
		To:        payload.To,
		ProgramID: payload.ProgramID,
		Inputs:    payload.Inputs,
		Value:     payload.Value,
		V:         v,
		R:         r,
		S:         s,
	}
}

// Payload strips the signature, returning the unsigned instruction.
func (tx *Transaction) Payload() *Payload {
	return &Payload{
		Type:      tx.Type,
		From:      tx.From,
		To:        tx.To,
		ProgramID: tx.ProgramID,
		Inputs:    tx.Inputs,
		Value:     tx.Value,
	}
}

// Bytes returns the canonical encoding of the transaction fields. The
// signature is not part of the encoding: it is computed over these bytes.
func (tx *Transaction) Bytes() []byte {
	return canonicalBytes(tx.Type, tx.From, tx.To, tx.ProgramID, tx.Inputs, tx.Value)
}

// Hash returns the SHA3-256 content hash of the canonical encoding.
func (tx *Transaction) Hash() []byte {
	sum := sha3.Sum256(tx.Bytes())
	return sum[:]
}

// HashString renders the content hash as a 0x-prefixed hex string.
func (tx *Transaction) HashString() string {
	return "0x" + hex.EncodeToString(tx.Hash())
}

// Message renders the canonical encoding as lowercase hex.
func (tx *Transaction) Message() string {
	return hex.EncodeToString(tx.Bytes())
}

// Sign computes the recoverable signature over the content hash and stores
// it in (R, S, V). V holds the raw recovery id (0 or 1).
func (tx *Transaction) Sign(priv *ecdsa.PrivateKey) error {
	sig, err := ethcrypto.Sign(tx.Hash(), priv)
	if err != nil {
		return err
	}
	copy(tx.R[:], sig[:32])
	copy(tx.S[:], sig[32:64])
	tx.V = int32(sig[64])
	return nil
}

// Recover returns the public key that produced the transaction signature.
func (tx *Transaction) Recover() (*ecdsa.PublicKey, error) {
	sig := make([]byte, 65)
	copy(sig[:32], tx.R[:])
	copy(sig[32:64], tx.S[:])
	sig[64] = byte(tx.V)
	return ethcrypto.SigToPub(tx.Hash(), sig)
}

// VerifySignature checks that the signature recovers to the declared sender
// address.
func (tx *Transaction) VerifySignature() error {
	pub, err := tx.Recover()
	if err != nil {
		return err
	}
	if AddressFromPubKey(pub) != tx.From {
		return ErrInvalidSignature
	}
	return nil
}

// canonicalBytes builds the shared pre-image layout used by Payload and
// Transaction.
func canonicalBytes(txType TransactionType, from, to, programID Address, inputs string, value *uint256.Int) []byte {
	if value == nil {
		value = uint256.NewInt(0)
	}
	tag := txType.String()
	out := make([]byte, 0, len(tag)+3*AddressLength+len(inputs)+32)
	out = append(out, tag...)
	out = append(out, from[:]...)
	out = append(out, to[:]...)
	out = append(out, programID[:]...)
	out = append(out, inputs...)
	// 256-bit value as four little-endian 64-bit limbs, lowest limb first.
	var limb [8]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(limb[:], value[i])
		out = append(out, limb[:]...)
	}
	return out
}
