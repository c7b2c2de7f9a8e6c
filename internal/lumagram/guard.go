// Package lumagram coordinates concurrent UI actions.
//
// This file implements the in-flight guard that deduplicates repeated
// actions against the same target, and the generation counter used to
// discard stale async responses.
package lumagram

import (
	"sync"
	"sync/atomic"
)

// GuardOp identifies a deduplicated operation kind.
type GuardOp string

// Operation kinds tracked by the guard.
const (
	GuardLike    GuardOp = "like"
	GuardComment GuardOp = "comment"
	GuardFollow  GuardOp = "follow"
	GuardSend    GuardOp = "send"
	GuardPage    GuardOp = "page"
	GuardPublish GuardOp = "publish"
)

type guardKey struct {
	op     GuardOp
	target int64
}

// InflightGuard suppresses duplicate submissions of the same action while
// an earlier one is still running. An action is keyed by its kind and
// target id, and stays claimed until End releases it.
type InflightGuard struct {
	mu       sync.Mutex
	inflight map[guardKey]struct{}
}

// NewInflightGuard returns an empty guard.
func NewInflightGuard() *InflightGuard {
	return &InflightGuard{inflight: make(map[guardKey]struct{})}
}

// Begin claims the (op, target) slot. It returns false if the same action
// is already running, in which case the caller must not proceed and must
// not call End.
func (g *InflightGuard) Begin(op GuardOp, target int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := guardKey{op: op, target: target}
	if _, busy := g.inflight[key]; busy {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

// End releases the slot claimed by Begin, whether the action succeeded
// or failed.
func (g *InflightGuard) End(op GuardOp, target int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, guardKey{op: op, target: target})
}

// Inflight reports whether the action is currently claimed.
func (g *InflightGuard) Inflight(op GuardOp, target int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inflight[guardKey{op: op, target: target}]
	return busy
}

// Generation tags async loads of a resource so that responses arriving
// after a newer load started can be discarded. Bump when starting a load,
// keep the returned value, and check Current against it when the response
// lands.
type Generation struct {
	n atomic.Uint64
}

// Bump starts a new generation and returns its value.
func (g *Generation) Bump() uint64 {
	return g.n.Add(1)
}

// Current returns the latest generation value.
func (g *Generation) Current() uint64 {
	return g.n.Load()
}

// IsCurrent reports whether gen is still the latest generation.
func (g *Generation) IsCurrent(gen uint64) bool {
	return g.n.Load() == gen
}
