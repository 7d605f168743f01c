// Package invalidation defines the record-change events that drive cache
// and index invalidation.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

// Event is one record-change notification from the document side. RowIDs
// name the affected records within Table; Seq is a per-feed monotonically
// increasing sequence used to drop replayed or reordered deliveries.
type Event struct {
	Version int       `json:"version"`
	Op      string    `json:"op"`
	Table   string    `json:"table"`
	RowIDs  []string  `json:"row_ids"`
	Seq     uint64    `json:"seq"`
	TS      time.Time `json:"ts"`
	Source  string    `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case "insert", "update", "delete":
	default:
		return fmt.Errorf("op must be insert|update|delete")
	}
	if strings.TrimSpace(e.Table) == "" {
		return fmt.Errorf("table is required")
	}
	if len(e.RowIDs) == 0 {
		return fmt.Errorf("row_ids is required")
	}
	for i, id := range e.RowIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("row_ids[%d] is empty", i)
		}
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}
