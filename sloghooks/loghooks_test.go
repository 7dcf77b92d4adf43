package sloghooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/optwire"
)

func newTestHooks(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestEngineEvents(t *testing.T) {
	h, buf := newTestHooks(Options{})
	h.DecodeFailed("Vcellopt", optwire.UnknownEnumValue, "status")
	h.LeapSecondClamped("optResultSet.finishedAt")
	h.RequiredFieldMissing("Vcellopt", "statusMessage")

	recs := records(t, buf)
	require.Len(t, recs, 3)
	assert.Equal(t, "optwire.decode_failed", recs[0]["msg"])
	assert.Equal(t, "unknown enum value", recs[0]["kind"])
	assert.Equal(t, "status", recs[0]["path"])
	assert.Equal(t, "WARN", recs[1]["level"])
	assert.Equal(t, "statusMessage", recs[2]["key"])
}

func TestStoreEventsRedactKeys(t *testing.T) {
	h, buf := newTestHooks(Options{})
	h.SelfHeal("run:jobs:secret-run", "gen_mismatch")
	h.InvalidateOutage("secret-run", errors.New("bump"), errors.New("del"))

	recs := records(t, buf)
	require.Len(t, recs, 2)
	key := recs[0]["key"].(string)
	assert.Len(t, key, 16)
	assert.NotContains(t, buf.String(), "run:jobs:secret-run")
	assert.Equal(t, "ERROR", recs[1]["level"])
	assert.Equal(t, "bump", recs[1]["bump_err"])

	custom, buf2 := newTestHooks(Options{Redact: func(string) string { return "<run>" }})
	custom.ProviderSetRejected("run:jobs:x")
	assert.Equal(t, "<run>", records(t, buf2)[0]["key"])
}

func TestSampling(t *testing.T) {
	h, buf := newTestHooks(Options{SelfHealEvery: 5})
	for i := 0; i < 20; i++ {
		h.SelfHeal("k", "corrupt")
	}
	assert.Len(t, records(t, buf), 4)
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{})
	assert.NotPanics(t, func() {
		h.DecodeFailed("int", optwire.TypeMismatch, "$")
		h.GenBumpError("k", errors.New("x"))
	})
}
