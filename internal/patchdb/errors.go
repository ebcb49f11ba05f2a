package patchdb

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Data-carrying kinds below wrap one of these via
// Unwrap so callers can test with errors.Is without a type assertion.
var (
	ErrBadHash          = errors.New("patchdb: malformed hash (expected 32 bytes)")
	ErrBadAddress       = errors.New("patchdb: malformed address (expected 20 bytes)")
	ErrInvalidIndex     = errors.New("patchdb: invalid output index")
	ErrAlreadyBound     = errors.New("patchdb: group id already bound")
	ErrGroupNotSet      = errors.New("patchdb: no group id bound")
	ErrDoubleSpend      = errors.New("patchdb: double spend detected on merge")
	ErrContractGroup    = errors.New("patchdb: contract bound to different groups on merge")
	ErrReceiptCollision = errors.New("patchdb: conflicting receipts for the same transaction")
	ErrStaleSpend       = errors.New("patchdb: spend of an output already removed from the stable baseline")
)

// DoubleSpendError reports that merge found two distinct spending
// transactions for the same (tx_hash, index) output.
type DoubleSpendError struct {
	TxHash Hash256
	Index  uint32
}

func (e *DoubleSpendError) Error() string {
	return fmt.Sprintf("patchdb: double spend of %s:%d", Hex256(e.TxHash), e.Index)
}

func (e *DoubleSpendError) Unwrap() error { return ErrDoubleSpend }

// ContractGroupMismatchError reports that merge found a contract at the same
// address bound to different witness groups on the two sides.
type ContractGroupMismatchError struct {
	Address Address
}

func (e *ContractGroupMismatchError) Error() string {
	return fmt.Sprintf("patchdb: contract %s bound to different groups on merge", AddressHex(e.Address))
}

func (e *ContractGroupMismatchError) Unwrap() error { return ErrContractGroup }

// ReceiptCollisionError reports that merge found two structurally unequal
// receipts for the same transaction hash.
type ReceiptCollisionError struct {
	TxHash Hash256
}

func (e *ReceiptCollisionError) Error() string {
	return fmt.Sprintf("patchdb: receipt collision for %s", Hex256(e.TxHash))
}

func (e *ReceiptCollisionError) Unwrap() error { return ErrReceiptCollision }

// StaleSpendError reports that ValidateAgainstStable found a spend of an
// index that the stable baseline no longer carries live.
type StaleSpendError struct {
	TxHash Hash256
	Index  uint32
}

func (e *StaleSpendError) Error() string {
	return fmt.Sprintf("patchdb: stale spend of %s:%d against stable baseline", Hex256(e.TxHash), e.Index)
}

func (e *StaleSpendError) Unwrap() error { return ErrStaleSpend }
