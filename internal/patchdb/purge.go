package patchdb

import "github.com/klingon-exchange/klingon-v2/pkg/helpers"

// Purge removes from p any entity that is identical in both p and stable
// (the now-stable reference layer), bounding the memory a derived patch
// retains once its ancestor has been applied to durable storage. Entities
// that differ between p and stable are left untouched: they represent this
// patch's genuine, still-speculative delta.
func (p *Patch) Purge(stable *Patch) {
	for h, su := range stable.coinStore {
		pu, ok := p.coinStore[h]
		if !ok {
			continue
		}
		if pu.Equals(su) && spentOutputsEqual(p, stable, h) {
			delete(p.coinStore, h)
			delete(p.spentOutput, h)
		}
	}

	for a, sc := range stable.contracts {
		pc, ok := p.contracts[a]
		if !ok {
			continue
		}
		if helpers.BytesEqual(pc.DataBuffer(), sc.DataBuffer()) {
			delete(p.contracts, a)
		}
	}

	for h := range stable.receipts {
		if _, ok := p.receipts[h]; ok {
			delete(p.receipts, h)
		}
	}
}

// spentOutputsEqual reports whether p and s carry identical spent-output
// key sets and spending-tx-hash values for transaction hash h.
func spentOutputsEqual(p, s *Patch, h Hash256) bool {
	pm := p.spentOutput[h]
	sm := s.spentOutput[h]
	if len(pm) != len(sm) {
		return false
	}
	for idx, spender := range pm {
		sSpender, ok := sm[idx]
		if !ok || sSpender != spender {
			return false
		}
	}
	return true
}
