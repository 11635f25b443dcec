package actors

import stderrors "errors"

var (
	// ErrNoMailbox is returned by Cast when the handle was never attached
	// to a mailbox.
	ErrNoMailbox = stderrors.New("actors: no mailbox attached")
	// ErrMailboxFull is returned by Cast when the peer's mailbox cannot
	// accept the message without blocking.
	ErrMailboxFull = stderrors.New("actors: mailbox full")
)

// EoHandle is the capability to send messages to the EO actor.
type EoHandle struct {
	mailbox chan<- EoMessage
}

// NewEoHandle wraps the send-end of an EO mailbox.
func NewEoHandle(mailbox chan<- EoMessage) *EoHandle {
	return &EoHandle{mailbox: mailbox}
}

// Cast delivers msg without blocking. Delivery is best-effort: a full or
// missing mailbox is reported as an error and the message is dropped.
func (h *EoHandle) Cast(msg EoMessage) error {
	if h == nil || h.mailbox == nil {
		return ErrNoMailbox
	}
	select {
	case h.mailbox <- msg:
		return nil
	default:
		return ErrMailboxFull
	}
}

// DaHandle is the capability to send messages to the DA-client actor.
type DaHandle struct {
	mailbox chan<- DaClientMessage
}

// NewDaHandle wraps the send-end of a DA-client mailbox.
func NewDaHandle(mailbox chan<- DaClientMessage) *DaHandle {
	return &DaHandle{mailbox: mailbox}
}

// Cast delivers msg without blocking, mirroring EoHandle.Cast.
func (h *DaHandle) Cast(msg DaClientMessage) error {
	if h == nil || h.mailbox == nil {
		return ErrNoMailbox
	}
	select {
	case h.mailbox <- msg:
		return nil
	default:
		return ErrMailboxFull
	}
}
