package stream

import (
	"bufio"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/sortviz/internal/array"
	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/sorting"
	"github.com/thruflo/sortviz/internal/tone"
)

func TestSnapshotMessage(t *testing.T) {
	t.Parallel()

	m := SnapshotMessage(array.Update{Version: 7, Values: array.Snapshot{3, 1, 2}})
	assert.Equal(t, MessageTypeSnapshot, m.Type)
	assert.JSONEq(t, `{"version":7,"values":[3,1,2]}`, string(m.Data))

	data, err := m.SnapshotData()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), data.Version)
	assert.Equal(t, []int{3, 1, 2}, data.Values)
}

func TestSnapshotMessage_EmptyValues(t *testing.T) {
	t.Parallel()

	m := SnapshotMessage(array.Update{})
	assert.JSONEq(t, `{"version":0,"values":[]}`, string(m.Data))
}

func TestToneMessage(t *testing.T) {
	t.Parallel()

	m := ToneMessage(tone.DefaultParams().For(40))
	assert.Equal(t, MessageTypeTone, m.Type)

	data, err := m.ToneData()
	require.NoError(t, err)
	assert.InDelta(t, 400.0, data.Frequency, 1e-9)
	assert.Equal(t, int64(100), data.DurationMS)
	assert.InDelta(t, 0.1, data.Gain, 1e-9)
	assert.InDelta(t, 0.001, data.ReleaseGain, 1e-9)
}

func TestStatusMessage(t *testing.T) {
	t.Parallel()

	info := run.Info{
		ID:        "run-1",
		Algorithm: sorting.Mergesort,
		Status:    run.StatusRunning,
		Steps:     4,
		StartedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	m := StatusMessage(info)

	assert.Contains(t, string(m.Data), `"status":"running"`)
	assert.NotContains(t, string(m.Data), "ended_at")

	got, err := m.StatusData()
	require.NoError(t, err)
	assert.Equal(t, info, *got)
}

func TestTypedAccessors_WrongType(t *testing.T) {
	t.Parallel()

	m := ToneMessage(tone.DefaultParams().For(1))

	_, err := m.SnapshotData()
	assert.Error(t, err)
	_, err = m.StatusData()
	assert.Error(t, err)

	s := SnapshotMessage(array.Update{Version: 1})
	_, err = s.ToneData()
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	m := SnapshotMessage(array.Update{Version: 2, Values: array.Snapshot{5}})
	m.Seq = 12

	b, err := m.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalMessage(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), got.Seq)
	assert.Equal(t, MessageTypeSnapshot, got.Type)
	assert.True(t, m.Timestamp.Equal(got.Timestamp))
	assert.JSONEq(t, string(m.Data), string(got.Data))
}

func TestUnmarshalMessage_Invalid(t *testing.T) {
	t.Parallel()

	_, err := UnmarshalMessage([]byte("{not json"))
	assert.Error(t, err)
}

func TestSequencer(t *testing.T) {
	t.Parallel()

	var s Sequencer
	a := s.Stamp(ToneMessage(tone.Tone{}))
	b := s.Stamp(ToneMessage(tone.Tone{}))
	assert.Equal(t, uint64(1), a.Seq)
	assert.Equal(t, uint64(2), b.Seq)
}

func TestEncoder_WritesJSONLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	require.NoError(t, enc.Encode(StatusMessage(run.Info{Status: run.StatusIdle})))
	require.NoError(t, enc.Encode(SnapshotMessage(array.Update{Version: 1, Values: array.Snapshot{1, 2}})))

	scanner := bufio.NewScanner(&buf)
	var seqs []uint64
	var types []MessageType
	for scanner.Scan() {
		m, err := UnmarshalMessage(scanner.Bytes())
		require.NoError(t, err)
		seqs = append(seqs, m.Seq)
		types = append(types, m.Type)
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []uint64{1, 2}, seqs)
	assert.Equal(t, []MessageType{MessageTypeStatus, MessageTypeSnapshot}, types)
}
