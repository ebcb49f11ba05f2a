package patchdb

// Equals reports whether p and other carry structurally identical group
// levels, coin store, spent-output index, contract states, and receipts.
// The bound group id itself is deliberately excluded from this comparison:
// Merge always produces a patch with no bound group id regardless of its
// inputs, so laws like merge(L, empty).equals(L) are properties of a
// patch's data, not of which group it happens to be currently bound to.
func (p *Patch) Equals(other *Patch) bool {
	if !levelsEqual(p.levels, other.levels) {
		return false
	}
	if !coinStoresEqual(p, other) {
		return false
	}
	if !spentOutputsAllEqual(p, other) {
		return false
	}
	if !contractsEqual(p, other) {
		return false
	}
	if !receiptsEqual(p, other) {
		return false
	}
	return true
}

func levelsEqual(a, b map[uint64]uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for g, lvl := range a {
		if b[g] != lvl {
			return false
		}
	}
	return true
}

func coinStoresEqual(p, other *Patch) bool {
	if len(p.coinStore) != len(other.coinStore) {
		return false
	}
	for h, u := range p.coinStore {
		ou, ok := other.coinStore[h]
		if !ok || !u.Equals(ou) {
			return false
		}
	}
	return true
}

func spentOutputsAllEqual(p, other *Patch) bool {
	if len(p.spentOutput) != len(other.spentOutput) {
		return false
	}
	for h := range p.spentOutput {
		if _, ok := other.spentOutput[h]; !ok {
			return false
		}
		if !spentOutputsEqual(p, other, h) {
			return false
		}
	}
	return true
}

func contractsEqual(p, other *Patch) bool {
	if len(p.contracts) != len(other.contracts) {
		return false
	}
	for a, c := range p.contracts {
		oc, ok := other.contracts[a]
		if !ok || c.GroupID() != oc.GroupID() {
			return false
		}
		if len(c.DataBuffer()) != len(oc.DataBuffer()) {
			return false
		}
		for i := range c.DataBuffer() {
			if c.DataBuffer()[i] != oc.DataBuffer()[i] {
				return false
			}
		}
	}
	return true
}

func receiptsEqual(p, other *Patch) bool {
	if len(p.receipts) != len(other.receipts) {
		return false
	}
	for h, r := range p.receipts {
		or, ok := other.receipts[h]
		if !ok || !r.Equals(or) {
			return false
		}
	}
	return true
}
