// Package stream defines the messages shared by the websocket and headless
// surfaces: an envelope carrying a snapshot, a tone or a run status.
package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thruflo/sortviz/internal/array"
	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/tone"
)

// MessageType identifies the payload of a message.
type MessageType string

const (
	// MessageTypeSnapshot carries the displayed array.
	MessageTypeSnapshot MessageType = "snapshot"
	// MessageTypeTone carries a tone to play.
	MessageTypeTone MessageType = "tone"
	// MessageTypeStatus carries run status.
	MessageTypeStatus MessageType = "status"
)

// Message is one entry in a stream.
type Message struct {
	// Seq is assigned by a Sequencer. Zero for unsequenced messages.
	Seq       uint64          `json:"seq,omitempty"`
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// SnapshotData is the payload of a snapshot message.
type SnapshotData struct {
	Version uint64 `json:"version"`
	Values  []int  `json:"values"`
}

// ToneData is the payload of a tone message.
type ToneData struct {
	Frequency   float64 `json:"frequency"`
	DurationMS  int64   `json:"duration_ms"`
	Gain        float64 `json:"gain"`
	ReleaseGain float64 `json:"release_gain"`
}

// NewMessage creates a Message with the given type and data.
func NewMessage(msgType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message data: %w", err)
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Data:      dataBytes,
	}, nil
}

// SnapshotMessage wraps a store update.
func SnapshotMessage(u array.Update) *Message {
	values := u.Values
	if values == nil {
		values = array.Snapshot{}
	}
	return mustNewMessage(MessageTypeSnapshot, SnapshotData{Version: u.Version, Values: values})
}

// ToneMessage wraps a tone.
func ToneMessage(t tone.Tone) *Message {
	return mustNewMessage(MessageTypeTone, ToneData{
		Frequency:   t.Frequency,
		DurationMS:  t.Duration.Milliseconds(),
		Gain:        t.Gain,
		ReleaseGain: t.ReleaseGain,
	})
}

// StatusMessage wraps run info.
func StatusMessage(info run.Info) *Message {
	return mustNewMessage(MessageTypeStatus, info)
}

// mustNewMessage is only used with payloads that always marshal.
func mustNewMessage(msgType MessageType, data any) *Message {
	m, err := NewMessage(msgType, data)
	if err != nil {
		panic(err)
	}
	return m
}

// Marshal serializes the message to JSON bytes.
func (m *Message) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalMessage deserializes a Message from JSON bytes.
func UnmarshalMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return &m, nil
}

// SnapshotData returns the payload of a snapshot message.
func (m *Message) SnapshotData() (*SnapshotData, error) {
	if m.Type != MessageTypeSnapshot {
		return nil, fmt.Errorf("message is not a snapshot: %s", m.Type)
	}
	var data SnapshotData
	if err := json.Unmarshal(m.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot data: %w", err)
	}
	return &data, nil
}

// ToneData returns the payload of a tone message.
func (m *Message) ToneData() (*ToneData, error) {
	if m.Type != MessageTypeTone {
		return nil, fmt.Errorf("message is not a tone: %s", m.Type)
	}
	var data ToneData
	if err := json.Unmarshal(m.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tone data: %w", err)
	}
	return &data, nil
}

// StatusData returns the payload of a status message.
func (m *Message) StatusData() (*run.Info, error) {
	if m.Type != MessageTypeStatus {
		return nil, fmt.Errorf("message is not a status: %s", m.Type)
	}
	var data run.Info
	if err := json.Unmarshal(m.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status data: %w", err)
	}
	return &data, nil
}

// Sequencer assigns increasing sequence numbers, starting at 1.
type Sequencer struct {
	last atomic.Uint64
}

// Stamp sets m.Seq to the next sequence number and returns m.
func (s *Sequencer) Stamp(m *Message) *Message {
	m.Seq = s.last.Add(1)
	return m
}

// Encoder writes sequenced messages as JSON lines. It is safe for
// concurrent use.
type Encoder struct {
	mu  sync.Mutex
	seq Sequencer
	enc *json.Encoder
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

// Encode stamps m and writes it on its own line.
func (e *Encoder) Encode(m *Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(e.seq.Stamp(m))
}
