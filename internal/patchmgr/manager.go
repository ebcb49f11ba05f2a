package patchmgr

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/klingon-exchange/klingon-v2/internal/patchdb"
	"github.com/klingon-exchange/klingon-v2/internal/stablestore"
	"github.com/klingon-exchange/klingon-v2/pkg/logging"
)

// Manager tracks every in-flight speculative Patch branch a node is
// currently holding, merges siblings on request, and purges the survivors
// against the stable store once one branch is committed.
type Manager struct {
	store   *stablestore.Store
	metrics *Metrics
	events  *EventBroadcaster
	gossip  *Gossip

	cfg *Config

	branchMu sync.RWMutex
	branches map[uuid.UUID]*patchdb.Patch

	logger *logging.Logger
}

// ManagerConfig bundles the dependencies a Manager needs.
type ManagerConfig struct {
	Config  *Config
	Store   *stablestore.Store
	Metrics *Metrics
	Events  *EventBroadcaster
	Gossip  *Gossip
	Logger  *logging.Logger
}

// NewManager creates a new patch manager.
func NewManager(cfg *ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetDefault().Component("patchmgr")
	}

	c := cfg.Config
	if c == nil {
		c = DefaultConfig()
	}

	return &Manager{
		store:    cfg.Store,
		metrics:  cfg.Metrics,
		events:   cfg.Events,
		gossip:   cfg.Gossip,
		cfg:      c,
		branches: make(map[uuid.UUID]*patchdb.Patch),
		logger:   logger,
	}
}

// validateAgainstStable cross-checks p against a stable-store snapshot
// covering only the hashes/addresses p itself references, per the
// validate-before-extension step a node runs on every derived branch before
// accepting it. A nil store (degenerate test wiring only) skips the check.
func (m *Manager) validateAgainstStable(p *patchdb.Patch) error {
	if m.store == nil {
		return nil
	}
	stable := patchdb.SnapshotFromStable(m.store, p)
	return p.ValidateAgainstStable(stable)
}

// Track registers a new speculative branch and returns its handle. Before
// accepting p, it is cross-checked against the stable baseline via
// ValidateAgainstStable; a branch that spends an output the baseline has
// already retired is rejected rather than tracked. The manager takes no
// ownership of p's group binding; callers are expected to have already
// called SetGroupID if the branch belongs to a contested group.
func (m *Manager) Track(p *patchdb.Patch) (uuid.UUID, error) {
	if err := m.validateAgainstStable(p); err != nil {
		return uuid.Nil, fmt.Errorf("patchmgr: branch rejected by validation against stable baseline: %w", err)
	}

	m.branchMu.Lock()
	defer m.branchMu.Unlock()

	if m.cfg.RetentionLimit > 0 && len(m.branches) >= m.cfg.RetentionLimit {
		return uuid.Nil, fmt.Errorf("patchmgr: retention limit of %d branches reached", m.cfg.RetentionLimit)
	}

	handle := uuid.New()
	m.branches[handle] = p

	if m.metrics != nil {
		m.metrics.ObserveComplexity(p.Complexity())
		m.metrics.SetBranchCount(len(m.branches))
	}

	m.logger.Debug("tracking new branch", "handle", handle, "complexity", p.Complexity())
	return handle, nil
}

// Get returns the patch tracked under handle.
func (m *Manager) Get(handle uuid.UUID) (*patchdb.Patch, bool) {
	m.branchMu.RLock()
	defer m.branchMu.RUnlock()
	p, ok := m.branches[handle]
	return p, ok
}

// Merge merges the patches tracked under a and b, replacing both entries
// with a single new branch under a fresh handle. The originals remain
// untouched on error.
func (m *Manager) Merge(a, b uuid.UUID) (uuid.UUID, error) {
	m.branchMu.Lock()
	defer m.branchMu.Unlock()

	pa, ok := m.branches[a]
	if !ok {
		return uuid.Nil, fmt.Errorf("patchmgr: unknown branch %s", a)
	}
	pb, ok := m.branches[b]
	if !ok {
		return uuid.Nil, fmt.Errorf("patchmgr: unknown branch %s", b)
	}

	var timer *prometheus.Timer
	if m.metrics != nil {
		timer = m.metrics.mergeTimer()
	}
	merged, err := pa.Merge(pb)
	if timer != nil {
		timer.ObserveDuration()
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("patchmgr: merge failed: %w", err)
	}

	if err := m.validateAgainstStable(merged); err != nil {
		return uuid.Nil, fmt.Errorf("patchmgr: merged branch rejected by validation against stable baseline: %w", err)
	}

	delete(m.branches, a)
	delete(m.branches, b)
	handle := uuid.New()
	m.branches[handle] = merged

	if m.metrics != nil {
		m.metrics.ObserveComplexity(merged.Complexity())
		m.metrics.SetBranchCount(len(m.branches))
	}

	m.logger.Info("merged branches", "a", a, "b", b, "result", handle, "complexity", merged.Complexity())
	return handle, nil
}

// Stabilize commits the patch tracked under handle to the stable store and,
// when PurgeOnStabilize is set, purges every remaining in-flight branch
// against the committed patch. The committed branch is removed from
// tracking.
func (m *Manager) Stabilize(handle uuid.UUID) error {
	m.branchMu.Lock()
	defer m.branchMu.Unlock()

	p, ok := m.branches[handle]
	if !ok {
		return fmt.Errorf("patchmgr: unknown branch %s", handle)
	}

	if err := m.store.ApplyPatch(p); err != nil {
		return fmt.Errorf("patchmgr: failed to apply patch to stable store: %w", err)
	}
	delete(m.branches, handle)

	for addr, c := range p.GetContracts() {
		digest := c.DataDigest()
		m.logger.Debug("contract stabilized", "address", addr, "digest", hex.EncodeToString(digest[:]))
	}

	if m.cfg.PurgeOnStabilize {
		var timer *prometheus.Timer
		if m.metrics != nil {
			timer = m.metrics.purgeTimer()
		}
		for _, other := range m.branches {
			other.Purge(p)
		}
		if timer != nil {
			timer.ObserveDuration()
		}
	}

	if m.metrics != nil {
		m.metrics.SetBranchCount(len(m.branches))
	}

	if m.events != nil {
		m.events.BroadcastStabilized(p)
	}
	if m.gossip != nil {
		m.gossip.AnnounceStable(p)
	}

	m.logger.Info("stabilized branch", "handle", handle, "remaining_branches", len(m.branches))
	return nil
}
