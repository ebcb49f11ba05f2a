package patchdb

// StableView is the narrow read-only interface a durable baseline exposes to
// PatchDB. internal/stablestore.Store is the reference implementation; any
// other type exposing these three methods satisfies it structurally, no
// explicit declaration required.
type StableView interface {
	UTXO(h Hash256) (UTXO, bool)
	Contract(a Address) (Contract, bool)
	Receipt(h Hash256) (TxReceipt, bool)
}

// SnapshotFromStable builds a throwaway Patch populated from view, covering
// exactly the transaction hashes, contract addresses, and receipt hashes p
// itself references. The result is a valid "stable" argument to
// ValidateAgainstStable or Purge without materializing the whole baseline
// in memory.
func SnapshotFromStable(view StableView, p *Patch) *Patch {
	snap := New()
	for h := range p.coinStore {
		if u, ok := view.UTXO(h); ok {
			snap.SetUTXO(u)
		}
	}
	for a := range p.contracts {
		if c, ok := view.Contract(a); ok {
			snap.SetContract(c)
		}
	}
	for h := range p.receipts {
		if r, ok := view.Receipt(h); ok {
			snap.SetReceipt(h, r)
		}
	}
	return snap
}
