// Package tablestore reads history ranges from Aliyun Tablestore (OTS).
package tablestore

import (
	"context"
	"github.com/aliyun/aliyun-tablestore-go-sdk/tablestore"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"tspgateway/pkg/storage"
)

type Config struct {
	Endpoint     string
	InstanceName string
	AccessKey    string
	AccessSecret string
}

type rangeGetter interface {
	GetRange(request *tablestore.GetRangeRequest) (*tablestore.GetRangeResponse, error)
}

type Store struct {
	client rangeGetter
}

var _ storage.RangeScanner = (*Store)(nil)

func NewStore(c Config) (*Store, error) {
	if len(c.Endpoint) == 0 || len(c.InstanceName) == 0 {
		return nil, errors.New("tablestore endpoint and instance name are required")
	}
	if len(c.AccessKey) == 0 || len(c.AccessSecret) == 0 {
		return nil, errors.New("tablestore access key and secret are required")
	}
	client := tablestore.NewClient(c.Endpoint, c.InstanceName, c.AccessKey, c.AccessSecret)
	return &Store{client: client}, nil
}

func (s *Store) ScanRange(ctx context.Context, req *storage.RangeRequest) (*storage.RangeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	criteria := &tablestore.RangeRowQueryCriteria{
		TableName:       req.Table,
		StartPrimaryKey: toPrimaryKey(req.StartKey),
		EndPrimaryKey:   toPrimaryKey(req.EndKey),
		Direction:       toDirection(req.Direction),
		MaxVersion:      req.MaxVersions,
	}
	if criteria.MaxVersion <= 0 {
		criteria.MaxVersion = storage.SingleVersion
	}
	if req.Limit > 0 {
		criteria.Limit = req.Limit
	}

	resp, err := s.client.GetRange(&tablestore.GetRangeRequest{RangeRowQueryCriteria: criteria})
	if err != nil {
		klog.V(2).InfoS("Failed to get range", "table", req.Table, "err", err)
		return nil, errors.Wrapf(err, "get range on %s", req.Table)
	}

	result := &storage.RangeResult{
		Rows:         make([]*storage.Row, 0, len(resp.Rows)),
		NextStartKey: fromPrimaryKey(resp.NextStartPrimaryKey),
	}
	for _, row := range resp.Rows {
		if row == nil {
			continue
		}
		r := &storage.Row{
			PrimaryKey: fromPrimaryKey(row.PrimaryKey),
			Columns:    make([]storage.Column, 0, len(row.Columns)),
		}
		for _, c := range row.Columns {
			r.Columns = append(r.Columns, storage.Column{
				Name:      c.ColumnName,
				Value:     c.Value,
				Timestamp: c.Timestamp,
			})
		}
		result.Rows = append(result.Rows, r)
	}
	klog.V(5).InfoS("Got range", "table", req.Table, "rows", len(result.Rows), "more", !result.NextStartKey.Empty())
	return result, nil
}

func toDirection(d storage.Direction) tablestore.Direction {
	if d == storage.Backward {
		return tablestore.BACKWARD
	}
	return tablestore.FORWARD
}

func toPrimaryKey(pk storage.PrimaryKey) *tablestore.PrimaryKey {
	out := new(tablestore.PrimaryKey)
	for _, c := range pk {
		out.AddPrimaryKeyColumn(c.Name, c.Value)
	}
	return out
}

func fromPrimaryKey(pk *tablestore.PrimaryKey) storage.PrimaryKey {
	if pk == nil || len(pk.PrimaryKeys) == 0 {
		return nil
	}
	out := make(storage.PrimaryKey, 0, len(pk.PrimaryKeys))
	for _, c := range pk.PrimaryKeys {
		out = append(out, storage.PrimaryKeyColumn{Name: c.ColumnName, Value: c.Value})
	}
	return out
}
