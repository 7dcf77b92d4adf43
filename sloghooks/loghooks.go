// Package sloghooks reports engine and run store hook events through log/slog.
// One Hooks value serves both optwire.Options.Hooks and
// runstore.Options.Hooks.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/optwire"
	"github.com/unkn0wn-root/optwire/runstore"
)

type Options struct {
	// Sampling to avoid floods; 0 or 1 logs every event.
	DecodeFailedEvery    uint64
	RequiredMissingEvery uint64
	SelfHealEvery        uint64
	// Optional storage key redactor. Defaults to a SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	decodeFailedCtr    atomic.Uint64
	requiredMissingCtr atomic.Uint64
	selfHealCtr        atomic.Uint64
}

var (
	_ optwire.Hooks  = (*Hooks)(nil)
	_ runstore.Hooks = (*Hooks)(nil)
)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n <= 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) DecodeFailed(shape string, kind optwire.ErrorKind, path string) {
	if h.l == nil || !sample(h.opts.DecodeFailedEvery, &h.decodeFailedCtr) {
		return
	}
	h.l.Info("optwire.decode_failed",
		"shape", shape,
		"kind", kind.String(),
		"path", path)
}

func (h *Hooks) LeapSecondClamped(path string) {
	if h.l == nil {
		return
	}
	h.l.Warn("optwire.leap_second_clamped", "path", path)
}

func (h *Hooks) RequiredFieldMissing(record, key string) {
	if h.l == nil || !sample(h.opts.RequiredMissingEvery, &h.requiredMissingCtr) {
		return
	}
	h.l.Debug("optwire.required_field_missing",
		"record", record,
		"key", key)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("runstore.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("runstore.provider_set_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) GenSnapshotError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("runstore.gen_snapshot_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) GenBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("runstore.gen_bump_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) InvalidateOutage(id string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("runstore.invalidate_outage",
		"run", id,
		"bump_err", bumpErr,
		"del_err", delErr)
}
