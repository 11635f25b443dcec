package types

import (
	"sort"

	"github.com/holiman/uint256"
)

// Status marks whether a token entry may currently be spent.
type Status uint8

const (
	StatusFree Status = iota
	StatusLocked
)

func (s Status) String() string {
	switch s {
	case StatusFree:
		return "free"
	case StatusLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Metadata holds opaque token metadata supplied by the owning program.
type Metadata []byte

// ArbitraryData holds unstructured per-token program state.
type ArbitraryData []byte

// Token is the per-program balance record held inside an Account. One entry
// exists per program the account has interacted with.
type Token struct {
	ProgramID Address                  `json:"programId"`
	OwnerID   Address                  `json:"ownerId"`
	Balance   *uint256.Int             `json:"balance"`
	Metadata  Metadata                 `json:"metadata,omitempty"`
	TokenIDs  []*uint256.Int           `json:"tokenIds,omitempty"`
	Allowance map[Address]*uint256.Int `json:"allowance,omitempty"`
	Approvals map[Address]*uint256.Int `json:"approvals,omitempty"`
	Data      ArbitraryData            `json:"data,omitempty"`
	Status    Status                   `json:"status"`
}

// NewToken constructs a zero-balance token entry owned by owner under program.
func NewToken(programID, ownerID Address) *Token {
	return &Token{
		ProgramID: programID,
		OwnerID:   ownerID,
		Balance:   uint256.NewInt(0),
		Allowance: make(map[Address]*uint256.Int),
		Approvals: make(map[Address]*uint256.Int),
		Status:    StatusFree,
	}
}

func ensureBalance(t *Token) {
	if t.Balance == nil {
		t.Balance = uint256.NewInt(0)
	}
}

// UpdateBalance applies a credit/debit pair atomically. The debit is checked
// against the post-credit balance so the entry can never go negative; on
// ErrInsufficientBalance the balance is left untouched.
func (t *Token) UpdateBalance(receive, send *uint256.Int) error {
	ensureBalance(t)
	if receive == nil {
		receive = uint256.NewInt(0)
	}
	if send == nil {
		send = uint256.NewInt(0)
	}
	credited := new(uint256.Int).Add(t.Balance, receive)
	if credited.Lt(send) {
		return ErrInsufficientBalance
	}
	t.Balance = credited.Sub(credited, send)
	return nil
}

// Clone returns a deep copy of the token entry.
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}
	out := &Token{
		ProgramID: t.ProgramID,
		OwnerID:   t.OwnerID,
		Status:    t.Status,
	}
	if t.Balance != nil {
		out.Balance = new(uint256.Int).Set(t.Balance)
	}
	if t.Metadata != nil {
		out.Metadata = append(Metadata(nil), t.Metadata...)
	}
	if t.Data != nil {
		out.Data = append(ArbitraryData(nil), t.Data...)
	}
	if t.TokenIDs != nil {
		out.TokenIDs = make([]*uint256.Int, len(t.TokenIDs))
		for i, id := range t.TokenIDs {
			out.TokenIDs[i] = new(uint256.Int).Set(id)
		}
	}
	out.Allowance = cloneAmounts(t.Allowance)
	out.Approvals = cloneAmounts(t.Approvals)
	return out
}

func cloneAmounts(m map[Address]*uint256.Int) map[Address]*uint256.Int {
	if m == nil {
		return nil
	}
	out := make(map[Address]*uint256.Int, len(m))
	for addr, amount := range m {
		out[addr] = new(uint256.Int).Set(amount)
	}
	return out
}

// sortedAddresses returns the keys of m in canonical byte order.
func sortedAddresses[V any](m map[Address]V) []Address {
	keys := make([]Address, 0, len(m))
	for addr := range m {
		keys = append(keys, addr)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })
	return keys
}

// TokenDelta pairs a token with the credit/debit to apply to it. It is the
// only unit of balance mutation applied to an Account.
type TokenDelta struct {
	Token   *Token
	Send    *uint256.Int
	Receive *uint256.Int
}

// NewTokenDelta builds a delta for token with the given debit and credit.
func NewTokenDelta(token *Token, send, receive *uint256.Int) *TokenDelta {
	return &TokenDelta{Token: token, Send: send, Receive: receive}
}

// ProgramID returns the program the delta applies to.
func (d *TokenDelta) ProgramID() Address {
	if d == nil || d.Token == nil {
		return Address{}
	}
	return d.Token.ProgramID
}
