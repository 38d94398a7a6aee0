package storage

import (
	"context"
	"fmt"
)

type Direction byte

const (
	Forward Direction = iota
	Backward
)

var (
	DirectionToString = map[Direction]string{
		Forward:  "forward",
		Backward: "backward",
	}
	DirectionFromString = map[string]Direction{
		"forward":  Forward,
		"backward": Backward,
	}
)

func (d Direction) String() string {
	if s, ok := DirectionToString[d]; ok {
		return s
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// tables
const (
	// location samples reported by a terminal
	Tracks = "tracks"
	// raw messages received from a terminal
	Messages = "messages"
)

// SingleVersion is the only version count the history tables are read with.
const SingleVersion = 1

type PrimaryKeyColumn struct {
	Name  string
	Value interface{}
}

// PrimaryKey is an ordered composite key. A nil or empty key returned as a
// continuation cursor means the range is exhausted.
type PrimaryKey []PrimaryKeyColumn

func (pk PrimaryKey) Empty() bool {
	return len(pk) == 0
}

// Value returns the value of the i-th key column, nil when out of range.
func (pk PrimaryKey) Value(i int) interface{} {
	if i < 0 || i >= len(pk) {
		return nil
	}
	return pk[i].Value
}

type Column struct {
	Name      string
	Value     interface{}
	Timestamp int64
}

type Row struct {
	PrimaryKey PrimaryKey
	Columns    []Column
}

// ColumnValue returns the value of the i-th attribute column, nil when the
// row is shorter than i+1 columns.
func (r *Row) ColumnValue(i int) interface{} {
	if r == nil || i < 0 || i >= len(r.Columns) {
		return nil
	}
	return r.Columns[i].Value
}

type RangeRequest struct {
	Table string
	// inclusive
	StartKey PrimaryKey
	// exclusive
	EndKey      PrimaryKey
	Direction   Direction
	Limit       int32
	MaxVersions int32
}

type RangeResult struct {
	Rows         []*Row
	NextStartKey PrimaryKey
}

// RangeScanner reads one page of a time ordered range from a wide-column store.
type RangeScanner interface {
	ScanRange(ctx context.Context, req *RangeRequest) (*RangeResult, error)
}

// CursorError reports a continuation cursor that does not move the scan
// forward.
type CursorError struct {
	Table string
	Key   PrimaryKey
}

func (e *CursorError) Error() string {
	return fmt.Sprintf("range on %s returned a cursor that did not advance: %v", e.Table, e.Key)
}
