package patchdb

import "testing"

// fakeStableView is a minimal in-memory StableView used only to exercise
// SnapshotFromStable without pulling in the SQLite-backed implementation.
type fakeStableView struct {
	utxos     map[Hash256]UTXO
	contracts map[Address]Contract
	receipts  map[Hash256]TxReceipt
}

func (f *fakeStableView) UTXO(h Hash256) (UTXO, bool) {
	u, ok := f.utxos[h]
	return u, ok
}

func (f *fakeStableView) Contract(a Address) (Contract, bool) {
	c, ok := f.contracts[a]
	return c, ok
}

func (f *fakeStableView) Receipt(h Hash256) (TxReceipt, bool) {
	r, ok := f.receipts[h]
	return r, ok
}

func TestSnapshotFromStableOnlyCoversReferencedEntities(t *testing.T) {
	h := hashFromByte(0x01)
	unrelatedHash := hashFromByte(0x02)
	addr := addrFromByte(0x80)

	stableUTXO := NewUTXO(h)
	if err := stableUTXO.Add(0, coinsOf(10)); err != nil {
		t.Fatal(err)
	}

	view := &fakeStableView{
		utxos: map[Hash256]UTXO{
			h:             stableUTXO,
			unrelatedHash: NewUTXO(unrelatedHash),
		},
		contracts: map[Address]Contract{
			addr: NewContract([]byte("state"), addr, 1),
		},
		receipts: map[Hash256]TxReceipt{},
	}

	p := New()
	mustCreate(t, p, h, 1, 5)
	p.SetContract(NewContract([]byte("local"), addr, 1))

	snap := SnapshotFromStable(view, p)

	if _, ok := snap.GetUTXO(unrelatedHash); ok {
		t.Error("snapshot should not include hashes p never referenced")
	}
	su, ok := snap.GetUTXO(h)
	if !ok {
		t.Fatal("snapshot missing referenced UTXO")
	}
	if _, live := su.CoinsAt(0); !live {
		t.Error("snapshot UTXO should carry the stable view's live index")
	}
	if _, ok := snap.GetContract(addr); !ok {
		t.Error("snapshot missing referenced contract")
	}
}

func TestValidateAgainstStableViewSnapshotDetectsStaleSpend(t *testing.T) {
	h := hashFromByte(0x03)
	spender := hashFromByte(0x04)

	view := &fakeStableView{
		utxos: map[Hash256]UTXO{
			h: NewUTXO(h), // index 0 already retired in the baseline
		},
		contracts: map[Address]Contract{},
		receipts:  map[Hash256]TxReceipt{},
	}

	p := New()
	p.coinStore[h] = NewUTXO(h)
	p.spentOutput[h] = map[uint32]Hash256{0: spender}

	snap := SnapshotFromStable(view, p)
	if err := p.ValidateAgainstStable(snap); err == nil {
		t.Fatal("expected ValidateAgainstStable to reject a spend of an index the stable view no longer carries live")
	}
}
