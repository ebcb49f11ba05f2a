package stablestore

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/klingon-exchange/klingon-v2/internal/patchdb"
)

// UTXO implements patchdb.StableView. It assembles the live coin set for h
// from the stable_utxo rows still on disk; spent outputs leave no row.
func (s *Store) UTXO(h patchdb.Hash256) (patchdb.UTXO, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT idx, value, script FROM stable_utxo WHERE tx_hash = ?`, patchdb.Hex256(h))
	if err != nil {
		return patchdb.UTXO{}, false
	}
	defer rows.Close()

	u := patchdb.NewUTXO(h)
	found := false
	for rows.Next() {
		var idx uint32
		var value int64
		var script []byte
		if err := rows.Scan(&idx, &value, &script); err != nil {
			return patchdb.UTXO{}, false
		}
		if err := u.Add(idx, patchdb.Coins{Value: btcutil.Amount(value), Script: script}); err != nil {
			return patchdb.UTXO{}, false
		}
		found = true
	}
	if !found {
		return patchdb.UTXO{}, false
	}
	return u, true
}

// Contract implements patchdb.StableView.
func (s *Store) Contract(a patchdb.Address) (patchdb.Contract, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groupID uint64
	var data []byte
	row := s.db.QueryRow(`SELECT group_id, data_buffer FROM stable_contract WHERE address = ?`, patchdb.AddressHex(a))
	if err := row.Scan(&groupID, &data); err != nil {
		return patchdb.Contract{}, false
	}
	return patchdb.NewContract(data, a, groupID), true
}

// Receipt implements patchdb.StableView.
func (s *Store) Receipt(h patchdb.Hash256) (patchdb.TxReceipt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload []byte
	row := s.db.QueryRow(`SELECT payload FROM stable_receipt WHERE tx_hash = ?`, patchdb.Hex256(h))
	if err := row.Scan(&payload); err != nil {
		return patchdb.TxReceipt{}, false
	}
	return patchdb.TxReceipt{Payload: payload}, true
}

// ApplyPatch commits a stabilized patch's tracked state to disk. For each
// transaction hash the patch touched, the patch's own live index set
// replaces whatever rows were on disk: indexes the patch spent simply have
// no surviving row to reinsert.
func (s *Store) ApplyPatch(p *patchdb.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for h, u := range p.GetCoins() {
		if _, err := tx.Exec(`DELETE FROM stable_utxo WHERE tx_hash = ?`, patchdb.Hex256(h)); err != nil {
			return fmt.Errorf("failed to clear stale utxo rows for %x: %w", h, err)
		}
		for idx := range u.Indexes() {
			c, ok := u.CoinsAt(idx)
			if !ok {
				continue
			}
			if _, err := tx.Exec(
				`INSERT INTO stable_utxo (tx_hash, idx, value, script) VALUES (?, ?, ?, ?)`,
				patchdb.Hex256(h), idx, int64(c.Value), c.Script,
			); err != nil {
				return fmt.Errorf("failed to insert utxo %x:%d: %w", h, idx, err)
			}
		}
	}

	for a, c := range p.GetContracts() {
		if _, err := tx.Exec(
			`INSERT INTO stable_contract (address, group_id, data_buffer) VALUES (?, ?, ?)
			 ON CONFLICT(address) DO UPDATE SET group_id = excluded.group_id, data_buffer = excluded.data_buffer`,
			patchdb.AddressHex(a), c.GroupID(), c.DataBuffer(),
		); err != nil {
			return fmt.Errorf("failed to upsert contract %x: %w", a, err)
		}
	}

	for h, r := range p.GetReceipts() {
		if _, err := tx.Exec(
			`INSERT INTO stable_receipt (tx_hash, payload) VALUES (?, ?)
			 ON CONFLICT(tx_hash) DO UPDATE SET payload = excluded.payload`,
			patchdb.Hex256(h), r.Payload,
		); err != nil {
			return fmt.Errorf("failed to upsert receipt %x: %w", h, err)
		}
	}

	return tx.Commit()
}
