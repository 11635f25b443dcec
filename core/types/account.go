package types

import (
	"github.com/holiman/uint256"
)

// Account is the ledger-side view of a single address: one token entry per
// program the address has interacted with, plus a monotonically advancing
// nonce. Accounts are created on first deposit and never implicitly
// destroyed; absence from a cache is eviction, not deletion of ledger truth.
type Account struct {
	Address  Address            `json:"address"`
	Programs map[Address]*Token `json:"programs"`
	Nonce    *uint256.Int       `json:"nonce"`
}

// NewAccount constructs an empty account for addr.
func NewAccount(addr Address) *Account {
	return &Account{
		Address:  addr,
		Programs: make(map[Address]*Token),
		Nonce:    uint256.NewInt(0),
	}
}

func (a *Account) ensurePrograms() {
	if a.Programs == nil {
		a.Programs = make(map[Address]*Token)
	}
}

// Balance returns the balance held under programID, or zero when the account
// has no entry for that program.
func (a *Account) Balance(programID Address) *uint256.Int {
	if entry, ok := a.Programs[programID]; ok && entry.Balance != nil {
		return new(uint256.Int).Set(entry.Balance)
	}
	return uint256.NewInt(0)
}

// ProgramIDs returns the program ids with resident token entries, in
// canonical address order.
func (a *Account) ProgramIDs() []Address {
	return sortedAddresses(a.Programs)
}

// UpdatePrograms applies delta to the resident token entry for programID. If
// the program is new to the account, the delta's token is inserted after the
// delta is applied to it. The account is unchanged when the delta fails
// balance validation.
func (a *Account) UpdatePrograms(programID Address, delta *TokenDelta) error {
	a.ensurePrograms()
	if entry, ok := a.Programs[delta.ProgramID()]; ok {
		return entry.UpdateBalance(delta.Receive, delta.Send)
	}
	token := delta.Token.Clone()
	if err := token.UpdateBalance(delta.Receive, delta.Send); err != nil {
		return err
	}
	a.Programs[programID] = token
	return nil
}

// InsertProgram installs token as the entry for programID, replacing any
// existing entry.
func (a *Account) InsertProgram(programID Address, token *Token) {
	a.ensurePrograms()
	a.Programs[programID] = token
}

// ValidateProgramID checks that the account holds an entry for programID.
func (a *Account) ValidateProgramID(programID Address) error {
	if _, ok := a.Programs[programID]; !ok {
		return ErrUnknownProgram
	}
	return nil
}

// ValidateBalance checks that the entry for programID can cover amount.
func (a *Account) ValidateBalance(programID Address, amount *uint256.Int) error {
	entry, ok := a.Programs[programID]
	if !ok {
		return ErrUnknownProgram
	}
	if entry.Balance == nil || entry.Balance.Lt(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplySendTransaction debits the sender-side effect of a Send transaction
// from this account. The transaction must be of type Send, reference a
// program the account holds, and be covered by the available balance;
// otherwise a typed error is returned and the account is unchanged.
func (a *Account) ApplySendTransaction(tx *Transaction) error {
	if !tx.Type.IsSend() {
		return ErrWrongTransactionType
	}
	programID := tx.ProgramID
	if err := a.ValidateProgramID(programID); err != nil {
		return err
	}
	if err := a.ValidateBalance(programID, tx.Value); err != nil {
		return err
	}
	return a.Programs[programID].UpdateBalance(nil, tx.Value)
}

// BumpNonce advances the account nonce by one.
func (a *Account) BumpNonce() {
	if a.Nonce == nil {
		a.Nonce = uint256.NewInt(0)
	}
	a.Nonce = new(uint256.Int).AddUint64(a.Nonce, 1)
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	out := &Account{Address: a.Address}
	if a.Nonce != nil {
		out.Nonce = new(uint256.Int).Set(a.Nonce)
	}
	if a.Programs != nil {
		out.Programs = make(map[Address]*Token, len(a.Programs))
		for id, token := range a.Programs {
			out.Programs[id] = token.Clone()
		}
	}
	return out
}
