package patchdb

// ValidateAgainstStable cross-checks p against the read-only stable baseline
// stable. For every transaction hash h tracked in p's coin store: if stable
// has no UTXO for h, h is still pending in an ancestor patch and is skipped
// here (it will be validated later, once that ancestor is itself checked
// against its own stable baseline). Otherwise, every index p recorded as
// spent for h must still be live in stable's UTXO — a spend of an index the
// stable baseline has already removed is a double-spend against durably
// committed history, reported as StaleSpendError. This never mutates either
// patch.
func (p *Patch) ValidateAgainstStable(stable *Patch) error {
	for h := range p.coinStore {
		stableUTXO, ok := stable.coinStore[h]
		if !ok {
			continue
		}
		for idx := range p.spentOutput[h] {
			if _, live := stableUTXO.CoinsAt(idx); !live {
				return &StaleSpendError{TxHash: h, Index: idx}
			}
		}
	}
	return nil
}
