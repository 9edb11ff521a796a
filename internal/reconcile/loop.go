package reconcile

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reycn/agent-box/internal/collector"
	"github.com/reycn/agent-box/internal/config"
	"github.com/reycn/agent-box/internal/history"
	"github.com/reycn/agent-box/internal/model"
	"github.com/reycn/agent-box/internal/peersync"
)

// remoteEntry is one cached remote session plus the local receive time of the
// pull that last confirmed it.
type remoteEntry struct {
	record       model.SessionRecord
	lastSeenAtMs int64
}

// RenderFunc turns a combined snapshot into one frame of terminal output.
type RenderFunc func(records []model.SessionRecord, frame uint64) string

// Options carries the per-run wiring that does not come from config.
type Options struct {
	// HostLabel identifies this host in outgoing envelopes. Peers whose
	// address equals it are never pulled.
	HostLabel string
	SharedKey string
	// JoinPeer is the host named on the command line, retried every tick
	// even when its health goes down.
	JoinPeer string
	Protocol peersync.TransportProtocol
	Server   *peersync.Server
	Journal  *history.Journal
	// NowMs overrides the clock in tests.
	NowMs func() int64
}

// Loop owns all mirroring state and advances it one Tick at a time:
// collect local sessions, answer queued peer pulls, pull every known peer,
// age out silent remotes, and render the merged view. Nothing in it is
// goroutine safe; one goroutine calls Tick.
type Loop struct {
	cfg       config.Config
	collector collector.Collector
	render    RenderFunc
	log       *logrus.Entry

	server  *peersync.Server
	client  *peersync.Client
	journal *history.Journal

	hostLabel string
	sharedKey string
	joinPeer  string
	protocol  peersync.TransportProtocol

	combined    *model.StateStore
	remoteCache map[string]remoteEntry
	knownPeers  map[string]struct{}
	peerHealth  map[string]HealthState
	lastStatus  map[string]model.SessionStatus
	frame       uint64

	nowMs func() int64
}

func NewLoop(cfg config.Config, col collector.Collector, render RenderFunc, log *logrus.Entry, opts Options) *Loop {
	l := &Loop{
		cfg:       cfg,
		collector: col,
		render:    render,
		log:       log,
		server:    opts.Server,
		journal:   opts.Journal,
		hostLabel: opts.HostLabel,
		sharedKey: opts.SharedKey,
		joinPeer:  opts.JoinPeer,
		protocol:  opts.Protocol,

		combined:    model.NewStateStore(),
		remoteCache: map[string]remoteEntry{},
		knownPeers:  map[string]struct{}{},
		peerHealth:  map[string]HealthState{},
		lastStatus:  map[string]model.SessionStatus{},

		nowMs: opts.NowMs,
	}
	if opts.SharedKey != "" {
		l.client = peersync.NewClient(opts.SharedKey)
	}
	if l.nowMs == nil {
		l.nowMs = func() int64 { return time.Now().UnixMilli() }
	}
	return l
}

// Tick runs one reconciliation pass and returns the rendered frame.
func (l *Loop) Tick(ctx context.Context) string {
	nowMs := l.nowMs()
	local := l.collector.Collect()

	l.serveOnce(local, nowMs)
	l.pullPeers(nowMs)
	l.pruneCache(nowMs)
	l.rebuildCombined(local)
	l.journalTransitions(ctx, nowMs)

	out := l.render(l.combined.All(), l.frame)
	l.frame++
	return out
}

// Snapshot returns the records shown by the most recent Tick, sorted by id.
func (l *Loop) Snapshot() []model.SessionRecord {
	return l.combined.All()
}

// KnownPeers lists the hosts currently pulled each tick, sorted.
func (l *Loop) KnownPeers() []string {
	out := make([]string, 0, len(l.knownPeers))
	for peer := range l.knownPeers {
		out = append(out, peer)
	}
	sort.Strings(out)
	return out
}

func (l *Loop) serveOnce(local []model.SessionRecord, nowMs int64) {
	if l.server == nil {
		return
	}
	served, err := l.server.ServeOnce(local, l.hostLabel, uint64(nowMs), l.protocol)
	if err != nil {
		l.log.WithError(err).Warn("serve pass failed")
	}
	if served > 0 {
		l.log.WithField("served", served).Debug("answered peer pulls")
	}
	for _, peer := range l.server.Peers() {
		l.learnPeer(peer)
	}
}

func (l *Loop) pullPeers(nowMs int64) {
	if l.client == nil {
		return
	}
	now := time.UnixMilli(nowMs)
	for _, peer := range l.pullTargets() {
		env, err := l.client.PullOnce(peer, l.cfg.Port, l.sharedKey, l.cfg.PullTimeout)
		state := NextHealth(l.cfg, l.peerHealth[peer], err == nil, now)
		l.peerHealth[peer] = state
		if err != nil {
			l.log.WithError(err).WithField("peer", peer).Debug("pull failed")
			if state.Current == PeerHealthDown && peer != l.joinPeer {
				delete(l.knownPeers, peer)
				delete(l.peerHealth, peer)
				l.log.WithField("peer", peer).Info("dropping unresponsive peer")
			}
			continue
		}
		l.ingestEnvelope(env, peer, nowMs)
	}
}

// pullTargets is the join peer plus every learned peer, minus this host.
func (l *Loop) pullTargets() []string {
	targets := make(map[string]struct{}, len(l.knownPeers)+1)
	if l.joinPeer != "" {
		targets[l.joinPeer] = struct{}{}
	}
	for peer := range l.knownPeers {
		targets[peer] = struct{}{}
	}
	out := make([]string, 0, len(targets))
	for peer := range targets {
		if l.isSelf(peer) {
			continue
		}
		out = append(out, peer)
	}
	sort.Strings(out)
	return out
}

func (l *Loop) isSelf(peer string) bool {
	return peer == l.hostLabel || peer == l.cfg.BindIP
}

func (l *Loop) learnPeer(peer string) {
	if peer == "" || l.isSelf(peer) {
		return
	}
	l.knownPeers[peer] = struct{}{}
}

// ingestEnvelope caches every session a peer reported, namespaced under the
// peer's name and restamped with the local receive time so TTL aging uses
// this host's clock.
func (l *Loop) ingestEnvelope(env peersync.SyncEnvelope, dialedPeer string, nowMs int64) {
	peer := env.Peer
	if peer == "" {
		peer = dialedPeer
	}
	l.learnPeer(peer)
	for _, rec := range env.Payload {
		rec.ID = remoteID(peer, rec.ID)
		rec.User = rec.User + "@" + peer
		rec.UpdatedAtMs = nowMs
		l.remoteCache[rec.ID] = remoteEntry{record: rec, lastSeenAtMs: nowMs}
	}
}

// remoteID namespaces a peer's session id so pids on two hosts cannot collide.
func remoteID(peer, id string) string {
	return "remote:" + peer + ":" + id
}

func (l *Loop) pruneCache(nowMs int64) {
	ttlMs := l.cfg.RemoteTTL().Milliseconds()
	for id, entry := range l.remoteCache {
		if nowMs-entry.lastSeenAtMs > ttlMs {
			delete(l.remoteCache, id)
			l.log.WithField("session", id).Debug("expired remote session")
		}
	}
}

// rebuildCombined rebuilds the merged view from scratch each tick so departed
// local sessions vanish immediately. Local records are applied first and win
// any id collision under the store's ordering guard.
func (l *Loop) rebuildCombined(local []model.SessionRecord) {
	l.combined.Clear()
	for _, rec := range local {
		l.combined.Upsert(rec)
	}
	for _, entry := range l.remoteCache {
		l.combined.Upsert(entry.record)
	}
}

func (l *Loop) journalTransitions(ctx context.Context, nowMs int64) {
	if l.journal == nil {
		return
	}
	seen := make(map[string]struct{}, l.combined.Len())
	for _, rec := range l.combined.All() {
		seen[rec.ID] = struct{}{}
		prev, ok := l.lastStatus[rec.ID]
		if ok && prev == rec.Status {
			continue
		}
		l.lastStatus[rec.ID] = rec.Status
		tr := history.Transition{
			SessionID:    rec.ID,
			Agent:        rec.Agent,
			FromStatus:   prev,
			ToStatus:     rec.Status,
			ObservedAtMs: nowMs,
		}
		if err := l.journal.Append(ctx, tr); err != nil {
			l.log.WithError(err).Warn("journal append failed")
		}
	}
	// Forget sessions that left the view so a reappearance journals again.
	for id := range l.lastStatus {
		if _, ok := seen[id]; !ok {
			delete(l.lastStatus, id)
		}
	}
}
