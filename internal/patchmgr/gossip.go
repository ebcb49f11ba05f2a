package patchmgr

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/multiformats/go-multiaddr"

	"github.com/klingon-exchange/klingon-v2/internal/patchdb"
	"github.com/klingon-exchange/klingon-v2/pkg/logging"
)

// StableAnnouncement is gossiped to peers when a branch stabilizes on this
// node. It carries only a summary, never a patch's UTXO, contract, or
// receipt maps: peers still validate and merge their own branches locally.
type StableAnnouncement struct {
	Complexity int `json:"complexity"`
}

// Gossip announces stabilized branches to peers over a libp2p pubsub topic.
type Gossip struct {
	host  host.Host
	topic *pubsub.Topic

	ctx    context.Context
	cancel context.CancelFunc

	logger *logging.Logger
}

// NewGossip creates a libp2p host listening on cfg.ListenAddrs, joins
// cfg.Topic, and returns a Gossip ready to announce stabilizations.
func NewGossip(ctx context.Context, cfg GossipConfig, logger *logging.Logger) (*Gossip, error) {
	if logger == nil {
		logger = logging.GetDefault().Component("patchmgr-gossip")
	}

	ctx, cancel := context.WithCancel(ctx)

	listenAddrs := make([]multiaddr.Multiaddr, 0, len(cfg.ListenAddrs))
	for _, addr := range cfg.ListenAddrs {
		ma, err := multiaddr.NewMultiaddr(addr)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("patchmgr: invalid gossip listen address %s: %w", addr, err)
		}
		listenAddrs = append(listenAddrs, ma)
	}

	h, err := libp2p.New(libp2p.ListenAddrs(listenAddrs...))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("patchmgr: failed to create libp2p host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		cancel()
		return nil, fmt.Errorf("patchmgr: failed to create pubsub: %w", err)
	}

	topic, err := ps.Join(cfg.Topic)
	if err != nil {
		h.Close()
		cancel()
		return nil, fmt.Errorf("patchmgr: failed to join topic %s: %w", cfg.Topic, err)
	}

	return &Gossip{
		host:   h,
		topic:  topic,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}, nil
}

// AnnounceStable publishes a StableAnnouncement summarizing p.
func (g *Gossip) AnnounceStable(p *patchdb.Patch) {
	ann := StableAnnouncement{Complexity: p.Complexity()}
	payload, err := json.Marshal(ann)
	if err != nil {
		g.logger.Warn("failed to marshal stable announcement", "error", err)
		return
	}
	if err := g.topic.Publish(g.ctx, payload); err != nil {
		g.logger.Warn("failed to publish stable announcement", "error", err)
	}
}

// Close tears down the pubsub topic and the underlying libp2p host.
func (g *Gossip) Close() error {
	g.cancel()
	if err := g.topic.Close(); err != nil {
		g.logger.Warn("failed to close gossip topic", "error", err)
	}
	return g.host.Close()
}
