package cache

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"

	"github.com/sezna/lasr/actors"
	"github.com/sezna/lasr/core/types"
)

const (
	recvTimeout  = 2 * time.Second
	settleWindow = 100 * time.Millisecond
)

func testAddr(b byte) types.Address {
	var addr types.Address
	for i := range addr {
		addr[i] = b
	}
	return addr
}

func testAccount(addr types.Address, programID types.Address, balance uint64) *types.Account {
	account := types.NewAccount(addr)
	token := types.NewToken(programID, addr)
	token.Balance = uint256.NewInt(balance)
	account.InsertProgram(programID, token)
	return account
}

func recvMsg[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(recvTimeout):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

// expectQuiet fails if a value arrives on ch within the settle window.
func expectQuiet[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected %s", what)
	case <-time.After(settleWindow):
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), recvTimeout)
	t.Cleanup(cancel)
	return ctx
}

func recvEo(t *testing.T, ch <-chan actors.EoMessage, what string) actors.EoMessage {
	t.Helper()
	return recvMsg(t, ch, what)
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(recvTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
