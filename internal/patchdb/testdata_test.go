package patchdb

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
)

// hashFromByte builds a Hash256 whose every byte equals b, giving short,
// readable fixture hashes like hashFromByte(0xaa) for "aa..aa".
func hashFromByte(b byte) Hash256 {
	var h Hash256
	for i := range h {
		h[i] = b
	}
	return h
}

// addrFromByte builds an Address whose every byte equals b.
func addrFromByte(b byte) Address {
	var a Address
	for i := range a {
		a[i] = b
	}
	return a
}

func coinsOf(value int64) Coins {
	return Coins{Value: btcutil.Amount(value)}
}

func mustCreate(t *testing.T, p *Patch, txHash Hash256, idx uint32, value int64) {
	t.Helper()
	if err := p.CreateCoins(txHash, idx, coinsOf(value)); err != nil {
		t.Fatalf("CreateCoins(%x, %d) failed: %v", txHash[:4], idx, err)
	}
}
