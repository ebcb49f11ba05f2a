// Package patchdb implements the in-memory, mergeable, speculative state-delta
// layer that sits between block execution and durable storage: a Patch. A
// patch captures spent outputs, newly created outputs, contract state
// transitions and transaction receipts against a stable on-disk baseline,
// without mutating that baseline.
package patchdb

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ethereum/go-ethereum/common"
)

// Hash256 is a 32-byte transaction hash. It is an alias of chainhash.Hash
// (btcd represents tx hashes the same way). Hex256 and NewHash256FromHex
// never byte-reverse: their form is plain lowercase hex of the raw bytes.
// The String method inherited from chainhash.Hash still prints the
// byte-reversed form.
type Hash256 = chainhash.Hash

// NewHash256 builds a Hash256 from raw bytes, failing if the length is wrong.
func NewHash256(b []byte) (Hash256, error) {
	var h Hash256
	if len(b) != len(h) {
		return h, ErrBadHash
	}
	copy(h[:], b)
	return h, nil
}

// NewHash256FromHex parses a hex string (with or without 0x prefix) into a
// Hash256, accepting either case.
func NewHash256FromHex(s string) (Hash256, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Hash256{}, ErrBadHash
	}
	return NewHash256(b)
}

// Hex256 returns the canonical lowercase-hex form of h.
func Hex256(h Hash256) string {
	return hex.EncodeToString(h[:])
}

// Address is a contract address, reusing go-ethereum's 20-byte common.Address.
type Address = common.Address

// NewAddress builds an Address from raw bytes, failing if the length is wrong.
func NewAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != len(a) {
		return a, ErrBadAddress
	}
	copy(a[:], b)
	return a, nil
}

// NewAddressFromHex parses a hex string (with or without 0x prefix) into an
// Address.
func NewAddressFromHex(s string) (Address, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Address{}, ErrBadAddress
	}
	return NewAddress(b)
}

// AddressHex returns the canonical lowercase-hex form of a.
func AddressHex(a Address) string {
	return hex.EncodeToString(a[:])
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return hex.DecodeString(s)
}

// Coins is the opaque per-output value: a coin amount plus its lock script.
// Two Coins are equal iff both the value and script bytes match exactly.
type Coins struct {
	Value  btcutil.Amount
	Script []byte
}

// Clone returns a deep copy of c.
func (c Coins) Clone() Coins {
	script := make([]byte, len(c.Script))
	copy(script, c.Script)
	return Coins{Value: c.Value, Script: script}
}

// Equals reports whether c and other represent the same coin value and
// lock script.
func (c Coins) Equals(other Coins) bool {
	if c.Value != other.Value {
		return false
	}
	if len(c.Script) != len(other.Script) {
		return false
	}
	for i := range c.Script {
		if c.Script[i] != other.Script[i] {
			return false
		}
	}
	return true
}

// TxReceipt is an opaque, structurally-comparable execution receipt.
type TxReceipt struct {
	Payload []byte
}

// Clone returns a deep copy of r.
func (r TxReceipt) Clone() TxReceipt {
	payload := make([]byte, len(r.Payload))
	copy(payload, r.Payload)
	return TxReceipt{Payload: payload}
}

// Equals reports whether r and other carry byte-identical payloads.
func (r TxReceipt) Equals(other TxReceipt) bool {
	if len(r.Payload) != len(other.Payload) {
		return false
	}
	for i := range r.Payload {
		if r.Payload[i] != other.Payload[i] {
			return false
		}
	}
	return true
}
