package tsp

import (
	"context"
	"k8s.io/klog/v2"
	"reflect"
	"time"
	"tspgateway/pkg/storage"
)

type RangeQuery struct {
	// storage.Tracks or storage.Messages
	Table     string
	DeviceID  string
	Start     time.Time
	End       time.Time
	Direction storage.Direction
	// rows per page, 0 leaves the page size to the store
	PageLimit int
}

// RangeScan is a lazy, restartable scan over one device's rows in
// [Start, End). Nothing is read until an iterator is advanced.
type RangeScan struct {
	client *Client
	query  RangeQuery
}

func (c *Client) RangeScan(q RangeQuery) *RangeScan {
	return &RangeScan{client: c, query: q}
}

// Iterator starts a new pass over the range.
func (s *RangeScan) Iterator() *RangeIterator {
	return &RangeIterator{scan: s}
}

// Collect reads every page of the range.
func (s *RangeScan) Collect(ctx context.Context) ([]*storage.Row, error) {
	var rows []*storage.Row
	it := s.Iterator()
	for it.Next(ctx) {
		rows = append(rows, it.Row())
	}
	return rows, it.Err()
}

// RangeIterator walks a RangeScan one row at a time, fetching pages
// sequentially.
type RangeIterator struct {
	scan  *RangeScan
	req   *storage.RangeRequest
	page  []*storage.Row
	pos   int
	row   *storage.Row
	pages int
	done  bool
	err   error
}

func (it *RangeIterator) Next(ctx context.Context) bool {
	for {
		if it.err != nil {
			return false
		}
		if it.pos < len(it.page) {
			it.row = it.page[it.pos]
			it.pos++
			return true
		}
		if it.done {
			it.row = nil
			return false
		}
		it.fetch(ctx)
	}
}

func (it *RangeIterator) Row() *storage.Row {
	return it.row
}

func (it *RangeIterator) Err() error {
	return it.err
}

// Pages returns how many pages have been read so far.
func (it *RangeIterator) Pages() int {
	return it.pages
}

func (it *RangeIterator) fetch(ctx context.Context) {
	c := it.scan.client
	if it.req == nil {
		req, err := c.rangeRequest(&it.scan.query)
		if err != nil {
			it.err = err
			return
		}
		if req == nil {
			it.done = true
			return
		}
		it.req = req
	}

	result, err := c.store.ScanRange(ctx, it.req)
	if err != nil {
		klog.V(2).InfoS("Failed to scan range", "table", it.req.Table, "page", it.pages, "err", err)
		it.err = err
		return
	}
	it.pages++
	c.metrics.observePage(it.scan.query.Table, len(result.Rows))

	it.page, it.pos = result.Rows, 0
	switch {
	case result.NextStartKey.Empty():
		it.done = true
	case reflect.DeepEqual(result.NextStartKey, it.req.StartKey):
		it.err = &storage.CursorError{Table: it.req.Table, Key: result.NextStartKey}
	default:
		next := *it.req
		next.StartKey = result.NextStartKey
		it.req = &next
	}
}

// rangeRequest builds the first page request, or returns nil for an empty
// range.
func (c *Client) rangeRequest(q *RangeQuery) (*storage.RangeRequest, error) {
	if c.store == nil {
		return nil, &ConfigurationError{Field: "store", Reason: "is required for history scans"}
	}
	if q.Table != storage.Tracks && q.Table != storage.Messages {
		return nil, &ValidationError{Field: "table", Reason: "must be tracks or messages, got " + q.Table}
	}
	if len(q.DeviceID) == 0 {
		return nil, &ValidationError{Field: "deviceId", Reason: "is required"}
	}
	if q.End.Before(q.Start) {
		return nil, &ValidationError{Field: "end", Reason: "must not be before start"}
	}
	if q.PageLimit < 0 {
		return nil, &ValidationError{Field: "pageLimit", Reason: "must not be negative"}
	}
	if !q.Start.Before(q.End) {
		return nil, nil
	}

	pkName, skName := c.storeConfig.keyNames()
	hash := c.hasher(q.DeviceID)
	lower := storage.PrimaryKey{{Name: pkName, Value: hash}, {Name: skName, Value: q.Start.Unix()}}
	upper := storage.PrimaryKey{{Name: pkName, Value: hash}, {Name: skName, Value: q.End.Unix()}}

	req := &storage.RangeRequest{
		Table:       c.storeConfig.table(q.Table),
		StartKey:    lower,
		EndKey:      upper,
		Direction:   q.Direction,
		Limit:       int32(q.PageLimit),
		MaxVersions: storage.SingleVersion,
	}
	if q.Direction == storage.Backward {
		req.StartKey, req.EndKey = upper, lower
	}
	return req, nil
}
