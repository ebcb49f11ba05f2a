package patchdb

import "testing"

// TestPurgeRemovesUnchanged checks that a branch identical to the now-stable
// baseline drops its tracked entries entirely once purged.
func TestPurgeRemovesUnchanged(t *testing.T) {
	h := hashFromByte(0x01)
	spender := hashFromByte(0x02)

	stable := New()
	mustCreate(t, stable, h, 0, 10)
	mustCreate(t, stable, h, 1, 20)
	su, _ := stable.GetUTXO(h)
	if err := stable.SpendCoins(su, 0, spender); err != nil {
		t.Fatal(err)
	}

	p := New()
	p.SetUTXO(su)
	pu, _ := p.GetUTXO(h)
	if err := p.SpendCoins(pu, 0, spender); err != nil {
		t.Fatal(err)
	}

	p.Purge(stable)

	if _, ok := p.GetUTXO(h); ok {
		t.Fatal("expected identical entry to be purged")
	}
	if _, ok := p.spentOutput[h]; ok {
		t.Fatal("expected spent-output entry to be purged alongside the UTXO")
	}
}

// TestPurgeKeepsDivergedEntries ensures entries differing from stable in
// either the UTXO or the spent-output sub-map are left untouched.
func TestPurgeKeepsDivergedEntries(t *testing.T) {
	h := hashFromByte(0x03)

	stable := New()
	mustCreate(t, stable, h, 0, 10)
	mustCreate(t, stable, h, 1, 20)
	su, _ := stable.GetUTXO(h)
	if err := stable.SpendCoins(su, 0, hashFromByte(0x04)); err != nil {
		t.Fatal(err)
	}

	p := New()
	p.SetUTXO(su)
	pu, _ := p.GetUTXO(h)
	// Spend a *different* output than stable did: this patch has diverged.
	if err := p.SpendCoins(pu, 1, hashFromByte(0x05)); err != nil {
		t.Fatal(err)
	}

	p.Purge(stable)

	if _, ok := p.GetUTXO(h); !ok {
		t.Fatal("diverged entry must survive purge")
	}
}

func TestPurgeContractsByDataEquality(t *testing.T) {
	addr := addrFromByte(0x10)

	stable := New()
	stable.SetContract(NewContract([]byte("same"), addr, 1))

	p := New()
	p.SetContract(NewContract([]byte("same"), addr, 1))
	p.Purge(stable)
	if _, ok := p.GetContract(addr); ok {
		t.Fatal("identical contract data should be purged")
	}

	p2 := New()
	p2.SetContract(NewContract([]byte("different"), addr, 1))
	p2.Purge(stable)
	if _, ok := p2.GetContract(addr); !ok {
		t.Fatal("contract with different data must survive purge")
	}
}

func TestPurgeReceiptsUnconditional(t *testing.T) {
	h := hashFromByte(0x20)

	stable := New()
	stable.SetReceipt(h, TxReceipt{Payload: []byte("anything")})

	p := New()
	p.SetReceipt(h, TxReceipt{Payload: []byte("something-else-entirely")})
	p.Purge(stable)

	if _, ok := p.GetReceipt(h); ok {
		t.Fatal("a receipt present in stable must be purged unconditionally once the hash matches")
	}
}

func TestPurgeSkipsHashesNotLocallyTracked(t *testing.T) {
	h := hashFromByte(0x30)
	stable := New()
	mustCreate(t, stable, h, 0, 1)

	p := New() // has no entry for h at all
	p.Purge(stable)

	if _, ok := p.GetUTXO(h); ok {
		t.Fatal("purge must not introduce entries that were never in p")
	}
}
