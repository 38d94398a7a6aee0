package tsp

import (
	"context"
	"fmt"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"math"
	"strconv"
	"time"
	"tspgateway/pkg/storage"
)

const (
	DefaultTrackPageLimit   = 20
	DefaultMessagePageLimit = 0

	MessageTimeLayout = "2006-01-02 15:04:05"
)

// trackColumns is the positional layout of a tracks row; empty names are
// columns the client does not read.
var trackColumns = []string{
	"direction", "latitude", "longitude", "", "locate_type",
	"locate_time", "", "", "", "speed",
}

type TrackPoint struct {
	Direction  float64 `json:"direction"`
	Speed      float64 `json:"speed"`
	Longitude  float64 `json:"longitude"`
	Latitude   float64 `json:"latitude"`
	LocateType int     `json:"locate_type"`
	LocateTime int64   `json:"locate_time"`
}

type MessagePoint struct {
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type HistoryOptions struct {
	Direction storage.Direction
	// 0 selects the per table default
	PageLimit int
}

// GetTracks returns the location samples a device reported in [start, end).
func (c *Client) GetTracks(ctx context.Context, imei string, start, end time.Time, opts *HistoryOptions) ([]TrackPoint, error) {
	rows, err := c.history(ctx, storage.Tracks, imei, start, end, opts, DefaultTrackPageLimit)
	if err != nil {
		return nil, err
	}
	points := make([]TrackPoint, 0, len(rows))
	for i, row := range rows {
		p, err := toTrackPoint(row)
		if err != nil {
			return nil, errors.Wrapf(err, "track row %d", i)
		}
		points = append(points, p)
	}
	return points, nil
}

// GetMessages returns the raw messages a device sent in [start, end).
func (c *Client) GetMessages(ctx context.Context, imei string, start, end time.Time, opts *HistoryOptions) ([]MessagePoint, error) {
	rows, err := c.history(ctx, storage.Messages, imei, start, end, opts, DefaultMessagePageLimit)
	if err != nil {
		return nil, err
	}
	points := make([]MessagePoint, 0, len(rows))
	for i, row := range rows {
		p, err := toMessagePoint(row, c.location)
		if err != nil {
			return nil, errors.Wrapf(err, "message row %d", i)
		}
		points = append(points, p)
	}
	return points, nil
}

func (c *Client) history(ctx context.Context, table, imei string, start, end time.Time, opts *HistoryOptions, pageLimit int) ([]*storage.Row, error) {
	q := RangeQuery{
		Table:     table,
		DeviceID:  imei,
		Start:     start,
		End:       end,
		PageLimit: pageLimit,
	}
	if opts != nil {
		q.Direction = opts.Direction
		if opts.PageLimit != 0 {
			q.PageLimit = opts.PageLimit
		}
	}
	return c.RangeScan(q).Collect(ctx)
}

func toTrackPoint(row *storage.Row) (TrackPoint, error) {
	fields := make(map[string]interface{}, len(trackColumns))
	for i, name := range trackColumns {
		if len(name) == 0 {
			continue
		}
		if v := row.ColumnValue(i); v != nil {
			fields[name] = v
		}
	}

	var p TrackPoint
	err := weakDecode(fields, &p)
	return p, err
}

func toMessagePoint(row *storage.Row, loc *time.Location) (MessagePoint, error) {
	var p MessagePoint
	if v := row.ColumnValue(0); v != nil {
		if err := weakDecode(map[string]interface{}{"message": v}, &p); err != nil {
			return p, err
		}
	}
	ts, err := unixSeconds(row.PrimaryKey.Value(1))
	if err != nil {
		return p, err
	}
	p.CreatedAt = time.Unix(ts, 0).In(loc).Format(MessageTimeLayout)
	return p, nil
}

func weakDecode(in map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(in)
}

func unixSeconds(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("timestamp %d out of range", t)
		}
		return int64(t), nil
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	case nil:
		return 0, errors.New("row has no timestamp key")
	default:
		return 0, fmt.Errorf("unsupported timestamp type %T", v)
	}
}
