package patchdb

// Merge combines p (L) and other (R) into a newly-allocated patch M. M has
// no bound group id. Four independent sections are computed: group levels
// (per-group max of both inputs), coin store + spent-output index (with
// double-spend detection), contract states (group-level tie-break), and
// receipts (structural-equality collision detection). Merge never mutates p
// or other.
func (p *Patch) Merge(other *Patch) (*Patch, error) {
	m := New()
	m.levels = mergeLevels(p.levelsClone(), other.levelsClone())

	if err := mergeCoinsAndSpends(m, p, other); err != nil {
		return nil, err
	}
	if err := mergeContracts(m, p, other); err != nil {
		return nil, err
	}
	if err := mergeReceipts(m, p, other); err != nil {
		return nil, err
	}
	return m, nil
}

func mergeLevels(l, r map[uint64]uint64) map[uint64]uint64 {
	out := make(map[uint64]uint64, len(l)+len(r))
	for g, lvl := range l {
		out[g] = lvl
	}
	for g, lvl := range r {
		if existing, ok := out[g]; !ok || lvl > existing {
			out[g] = lvl
		}
	}
	return out
}

func mergeCoinsAndSpends(m, l, r *Patch) error {
	txHashes := make(map[Hash256]struct{})
	for h := range l.coinStore {
		txHashes[h] = struct{}{}
	}
	for h := range r.coinStore {
		txHashes[h] = struct{}{}
	}
	for h := range l.spentOutput {
		txHashes[h] = struct{}{}
	}
	for h := range r.spentOutput {
		txHashes[h] = struct{}{}
	}

	for h := range txHashes {
		lu, lok := l.coinStore[h]
		ru, rok := r.coinStore[h]

		switch {
		case lok && !rok:
			m.coinStore[h] = lu.Clone()
		case !lok && rok:
			m.coinStore[h] = ru.Clone()
		case lok && rok:
			inter := NewUTXO(h)
			for idx := range lu.Indexes() {
				if c, ok := ru.CoinsAt(idx); ok {
					// idx is live on both sides: carries into M unchanged.
					_ = inter.Add(idx, c)
				}
			}
			m.coinStore[h] = inter
		}

		merged, err := mergeSpentMap(h, l.spentOutput[h], r.spentOutput[h])
		if err != nil {
			return err
		}
		if len(merged) > 0 {
			m.spentOutput[h] = merged
		}
	}
	return nil
}

func mergeSpentMap(h Hash256, l, r map[uint32]Hash256) (map[uint32]Hash256, error) {
	merged := make(map[uint32]Hash256, len(l)+len(r))
	for idx, s := range l {
		merged[idx] = s
	}
	for idx, s := range r {
		if existing, ok := merged[idx]; ok {
			if existing != s {
				return nil, &DoubleSpendError{TxHash: h, Index: idx}
			}
			continue
		}
		merged[idx] = s
	}
	return merged, nil
}

func mergeContracts(m, l, r *Patch) error {
	addrs := make(map[Address]struct{})
	for a := range l.contracts {
		addrs[a] = struct{}{}
	}
	for a := range r.contracts {
		addrs[a] = struct{}{}
	}

	for a := range addrs {
		lc, lok := l.contracts[a]
		rc, rok := r.contracts[a]

		switch {
		case lok && !rok:
			m.contracts[a] = lc.Clone()
		case !lok && rok:
			m.contracts[a] = rc.Clone()
		case lok && rok:
			if lc.GroupID() != rc.GroupID() {
				return &ContractGroupMismatchError{Address: a}
			}
			lLevel, _ := l.GetLevel(lc.GroupID())
			rLevel, _ := r.GetLevel(rc.GroupID())
			winner := lc
			if rLevel > lLevel {
				winner = rc
			}
			m.contracts[a] = winner.Clone()
		}
	}
	return nil
}

func mergeReceipts(m, l, r *Patch) error {
	txHashes := make(map[Hash256]struct{})
	for h := range l.receipts {
		txHashes[h] = struct{}{}
	}
	for h := range r.receipts {
		txHashes[h] = struct{}{}
	}

	for h := range txHashes {
		lr, lok := l.receipts[h]
		rr, rok := r.receipts[h]

		switch {
		case lok && !rok:
			m.receipts[h] = lr.Clone()
		case !lok && rok:
			m.receipts[h] = rr.Clone()
		case lok && rok:
			if !lr.Equals(rr) {
				return &ReceiptCollisionError{TxHash: h}
			}
			m.receipts[h] = lr.Clone()
		}
	}
	return nil
}
