package patchdb

// Patch is an in-memory delta describing the effect of executing one or more
// blocks against a stable baseline, without mutating that baseline. A patch
// is single-writer: there is no internal locking, and callers that need to
// share a patch across goroutines must provide their own synchronization
// (see internal/patchmgr for a concrete multi-executor coordinator).
type Patch struct {
	groupID *uint64
	levels  map[uint64]uint64

	coinStore   map[Hash256]UTXO
	spentOutput map[Hash256]map[uint32]Hash256
	contracts   map[Address]Contract
	receipts    map[Hash256]TxReceipt
}

// New constructs an empty patch, optionally bound to groupID. Passing no
// argument leaves the patch unbound, matching new(group_id?) in the spec.
func New(groupID ...uint64) *Patch {
	p := &Patch{
		levels:      make(map[uint64]uint64),
		coinStore:   make(map[Hash256]UTXO),
		spentOutput: make(map[Hash256]map[uint32]Hash256),
		contracts:   make(map[Address]Contract),
		receipts:    make(map[Hash256]TxReceipt),
	}
	if len(groupID) > 0 {
		// New patches always succeed in binding; see SetGroupID.
		_ = p.SetGroupID(groupID[0])
	}
	return p
}

// GroupID returns the bound group id, if any.
func (p *Patch) GroupID() (uint64, bool) {
	if p.groupID == nil {
		return 0, false
	}
	return *p.groupID, true
}

// SetGroupID binds the patch to groupID. It may be called exactly once per
// patch; a second call fails with ErrAlreadyBound. Binding increments
// group_level[groupID] starting from whatever level the patch already
// carries for that group (0 if none) — this matters for a patch produced by
// Merge, which carries the union of its inputs' levels but no bound group
// id: the first SetGroupID on such a patch bumps from the unioned max, not
// from zero.
func (p *Patch) SetGroupID(groupID uint64) error {
	if p.groupID != nil {
		return ErrAlreadyBound
	}
	g := groupID
	p.groupID = &g
	p.levels[groupID] = p.levels[groupID] + 1
	return nil
}

// GetLevel returns the level for group, or for the currently bound group if
// group is omitted. It fails with ErrGroupNotSet if called with no argument
// on a patch with no bound group id.
func (p *Patch) GetLevel(group ...uint64) (uint64, error) {
	var g uint64
	if len(group) > 0 {
		g = group[0]
	} else {
		if p.groupID == nil {
			return 0, ErrGroupNotSet
		}
		g = *p.groupID
	}
	return p.levels[g], nil
}

// levelsClone returns a copy of this patch's group-level map.
func (p *Patch) levelsClone() map[uint64]uint64 {
	out := make(map[uint64]uint64, len(p.levels))
	for g, l := range p.levels {
		out[g] = l
	}
	return out
}

// SpendCoins records the consumption of utxoSnapshot's output at index by
// spendingTxHash. utxoSnapshot is the UTXO as it appears before this spend,
// from a preceding patch layer or the stable baseline. If this patch already
// has a local record for the transaction, that record is mutated in place;
// otherwise a clone of utxoSnapshot is installed first. Fails with
// ErrInvalidIndex if index is not currently live (this also covers spending
// the same index twice within one patch, since the first spend removes it
// from the live set).
func (p *Patch) SpendCoins(utxoSnapshot UTXO, index uint32, spendingTxHash Hash256) error {
	txHash := utxoSnapshot.TxHash()

	u, ok := p.coinStore[txHash]
	if !ok {
		u = utxoSnapshot.Clone()
	}
	if err := u.Spend(index); err != nil {
		return err
	}
	p.coinStore[txHash] = u

	if p.spentOutput[txHash] == nil {
		p.spentOutput[txHash] = make(map[uint32]Hash256)
	}
	p.spentOutput[txHash][index] = spendingTxHash
	return nil
}

// CreateCoins records a newly created output. If this patch already has a
// local UTXO record for txHash, coins is inserted at index (failing with
// ErrInvalidIndex if index is already present in this patch's record);
// otherwise a fresh UTXO is created.
func (p *Patch) CreateCoins(txHash Hash256, index uint32, coins Coins) error {
	u, ok := p.coinStore[txHash]
	if !ok {
		u = NewUTXO(txHash)
	}
	if err := u.Add(index, coins); err != nil {
		return err
	}
	p.coinStore[txHash] = u
	return nil
}

// GetUTXO returns a clone of the in-patch UTXO for txHash, or ok=false if
// this patch has no record for it.
func (p *Patch) GetUTXO(txHash Hash256) (UTXO, bool) {
	u, ok := p.coinStore[txHash]
	if !ok {
		return UTXO{}, false
	}
	return u.Clone(), true
}

// GetCoins returns a clone of every (tx_hash, UTXO) pair tracked by this
// patch. Iteration order over the result is unspecified.
func (p *Patch) GetCoins() map[Hash256]UTXO {
	out := make(map[Hash256]UTXO, len(p.coinStore))
	for h, u := range p.coinStore {
		out[h] = u.Clone()
	}
	return out
}

// SetUTXO installs a cloned copy of utxo, keyed by its own transaction hash.
// Used during block-load to seed a patch directly from known state.
func (p *Patch) SetUTXO(utxo UTXO) {
	p.coinStore[utxo.TxHash()] = utxo.Clone()
}

// SetContract installs a cloned copy of contract, keyed by its address.
func (p *Patch) SetContract(contract Contract) {
	p.contracts[contract.Address()] = contract.Clone()
}

// GetContract returns a clone of the contract at addr, or ok=false if this
// patch has no record for it.
func (p *Patch) GetContract(addr Address) (Contract, bool) {
	c, ok := p.contracts[addr]
	if !ok {
		return Contract{}, false
	}
	return c.Clone(), true
}

// GetContracts returns a clone of every (address, Contract) pair tracked by
// this patch.
func (p *Patch) GetContracts() map[Address]Contract {
	out := make(map[Address]Contract, len(p.contracts))
	for a, c := range p.contracts {
		out[a] = c.Clone()
	}
	return out
}

// SetReceipt installs a cloned copy of receipt for txHash.
func (p *Patch) SetReceipt(txHash Hash256, receipt TxReceipt) {
	p.receipts[txHash] = receipt.Clone()
}

// GetReceipt returns a clone of the receipt for txHash, or ok=false if this
// patch has no record for it.
func (p *Patch) GetReceipt(txHash Hash256) (TxReceipt, bool) {
	r, ok := p.receipts[txHash]
	if !ok {
		return TxReceipt{}, false
	}
	return r.Clone(), true
}

// GetReceipts returns a clone of every (tx_hash, TxReceipt) pair tracked by
// this patch.
func (p *Patch) GetReceipts() map[Hash256]TxReceipt {
	out := make(map[Hash256]TxReceipt, len(p.receipts))
	for h, r := range p.receipts {
		out[h] = r.Clone()
	}
	return out
}

// Complexity returns the total count of spent outputs across all
// transactions in this patch: Σ_h |spent_output[h]|. Used by the
// block-selection layer (out of scope here) as a secondary tie-breaker.
func (p *Patch) Complexity() int {
	total := 0
	for _, spends := range p.spentOutput {
		total += len(spends)
	}
	return total
}
