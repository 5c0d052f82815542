package feed

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	OpAdded   = "added"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// Message announces one committed change to the transaction set. It carries
// only the id and operation; consumers that need the full row fetch it from
// the store.
type Message struct {
	Op        string    `json:"op"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessage(op string, id int64) *Message {
	return &Message{
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *Message) Validate() error {
	switch m.Op {
	case OpAdded, OpUpdated, OpDeleted:
	default:
		return fmt.Errorf("unknown feed operation: %q", m.Op)
	}
	if m.ID <= 0 {
		return fmt.Errorf("invalid transaction id: %d", m.ID)
	}
	return nil
}

// ToJSON converts the message to JSON bytes.
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON parses and validates a message from JSON bytes.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
