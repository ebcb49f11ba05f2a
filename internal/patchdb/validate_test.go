package patchdb

import (
	"errors"
	"testing"
)

// TestValidateAgainstStableStaleSpend checks that validating a patch which
// spends an index the stable baseline never had live is rejected.
func TestValidateAgainstStableStaleSpend(t *testing.T) {
	h := hashFromByte(0x01)

	stable := New()
	mustCreate(t, stable, h, 0, 1)
	mustCreate(t, stable, h, 1, 1)

	p := New()
	su, _ := stable.GetUTXO(h)
	p.SetUTXO(su)
	// Record a spend of index 2, which stable never had live.
	p.spentOutput[h] = map[uint32]Hash256{2: hashFromByte(0x02)}

	err := p.ValidateAgainstStable(stable)
	var stale *StaleSpendError
	if !errors.As(err, &stale) {
		t.Fatalf("ValidateAgainstStable() error = %v, want *StaleSpendError", err)
	}
	if stale.TxHash != h || stale.Index != 2 {
		t.Fatalf("StaleSpendError = %+v, want {TxHash: %x, Index: 2}", stale, h)
	}
}

// TestValidateAgainstStableRoundTrip checks that a patch built entirely
// from reads of the stable baseline validates successfully.
func TestValidateAgainstStableRoundTrip(t *testing.T) {
	h := hashFromByte(0x03)
	spender := hashFromByte(0x04)

	stable := New()
	mustCreate(t, stable, h, 0, 1)
	mustCreate(t, stable, h, 1, 1)

	p := New()
	su, _ := stable.GetUTXO(h)
	p.SetUTXO(su)
	pu, _ := p.GetUTXO(h)
	if err := p.SpendCoins(pu, 0, spender); err != nil {
		t.Fatal(err)
	}

	if err := p.ValidateAgainstStable(stable); err != nil {
		t.Fatalf("ValidateAgainstStable() = %v, want nil", err)
	}
}

func TestValidateAgainstStableSkipsPendingHashes(t *testing.T) {
	h := hashFromByte(0x05)

	stable := New() // knows nothing about h

	p := New()
	mustCreate(t, p, h, 0, 1)
	pu, _ := p.GetUTXO(h)
	if err := p.SpendCoins(pu, 0, hashFromByte(0x06)); err != nil {
		t.Fatal(err)
	}

	if err := p.ValidateAgainstStable(stable); err != nil {
		t.Fatalf("ValidateAgainstStable() = %v, want nil (hash still pending in an ancestor)", err)
	}
}
