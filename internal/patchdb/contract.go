package patchdb

import "github.com/ethereum/go-ethereum/crypto"

// Contract is the external record type carrying a contract's stored address,
// witness-group id, and mutable state payload.
type Contract struct {
	address    Address
	groupID    uint64
	dataBuffer []byte
}

// NewContract constructs a Contract from its encoded payload and stored
// address, decoding it against the same address it was stored under.
func NewContract(encoded []byte, address Address, groupID uint64) Contract {
	data := make([]byte, len(encoded))
	copy(data, encoded)
	return Contract{address: address, groupID: groupID, dataBuffer: data}
}

// Address returns the contract's stored address.
func (c Contract) Address() Address { return c.address }

// GroupID returns the witness-group id this contract is bound to.
func (c Contract) GroupID() uint64 { return c.groupID }

// DataBuffer returns the contract's current state payload.
func (c Contract) DataBuffer() []byte { return c.dataBuffer }

// Encode serializes the contract's state payload.
func (c Contract) Encode() []byte {
	out := make([]byte, len(c.dataBuffer))
	copy(out, c.dataBuffer)
	return out
}

// UpdateData replaces the contract's state payload with newData.
func (c *Contract) UpdateData(newData []byte) {
	data := make([]byte, len(newData))
	copy(data, newData)
	c.dataBuffer = data
}

// Clone returns a deep copy of c, re-decoding its encoded form against the
// same address it was constructed with.
func (c Contract) Clone() Contract {
	return NewContract(c.Encode(), c.address, c.groupID)
}

// DataDigest returns the Keccak256 hash of the contract's state payload.
// Used by the patch manager for logging and stabilized-event summaries only;
// merge and purge compare DataBuffer bytes directly, never this digest.
func (c Contract) DataDigest() [32]byte {
	return crypto.Keccak256Hash(c.dataBuffer)
}
