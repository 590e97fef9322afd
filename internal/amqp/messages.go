package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Op names the ledger mutation an event reports.
type Op string

const (
	OpAppend  Op = "append"
	OpDelete  Op = "delete"
	OpClear   Op = "clear"
	OpReplace Op = "replace"
)

func (o Op) Valid() bool {
	switch o {
	case OpAppend, OpDelete, OpClear, OpReplace:
		return true
	}
	return false
}

// LedgerEvent is published after every ledger mutation. RecordID is set for
// append and delete; Count is the number of records affected.
type LedgerEvent struct {
	Op        Op        `json:"op"`
	RecordID  int64     `json:"record_id,omitempty"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time
func NewLedgerEvent(op Op, recordID int64, count int) *LedgerEvent {
	return &LedgerEvent{
		Op:        op,
		RecordID:  recordID,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and rejects unknown ops.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if !ev.Op.Valid() {
		return nil, fmt.Errorf("unknown ledger op %q", ev.Op)
	}
	return &ev, nil
}
