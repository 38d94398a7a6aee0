// Package dynamo reads history ranges from Amazon DynamoDB tables keyed by
// (device hash, unix seconds).
package dynamo

import (
	"context"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"math"
	"strconv"
	"tspgateway/pkg/storage"
)

type Config struct {
	Region       string
	Endpoint     string
	AccessKey    string
	AccessSecret string
	// Columns lists, per physical table name, the attribute names in the
	// positional order callers read them back with. Tables missing from it
	// cannot be scanned. Nil means DefaultColumns.
	Columns map[string][]string
}

// DefaultColumns is the attribute layout of the tracks and messages tables.
var DefaultColumns = map[string][]string{
	storage.Tracks: {
		"direction", "latitude", "longitude", "reserved_3", "locate_type",
		"locate_time", "reserved_6", "reserved_7", "reserved_8", "speed",
	},
	storage.Messages: {"message"},
}

type queryAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

type Store struct {
	client  queryAPI
	columns map[string][]string
}

var _ storage.RangeScanner = (*Store)(nil)

func NewStore(ctx context.Context, c Config) (*Store, error) {
	var opts []func(*config.LoadOptions) error
	if len(c.Region) > 0 {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if len(c.AccessKey) > 0 && len(c.AccessSecret) > 0 {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.AccessSecret, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if len(c.Endpoint) > 0 {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	})
	return newStore(client, c.Columns), nil
}

func newStore(client queryAPI, columns map[string][]string) *Store {
	if columns == nil {
		columns = DefaultColumns
	}
	return &Store{client: client, columns: columns}
}

func (s *Store) ScanRange(ctx context.Context, req *storage.RangeRequest) (*storage.RangeResult, error) {
	if len(req.StartKey) != 2 || len(req.EndKey) != 2 {
		return nil, errors.Errorf("range on %s needs (partition, sort) keys", req.Table)
	}
	if _, ok := s.columns[req.Table]; !ok {
		return nil, errors.Errorf("no column layout configured for table %s", req.Table)
	}
	pkName, skName := req.StartKey[0].Name, req.StartKey[1].Name
	hash := fmt.Sprint(req.StartKey.Value(0))

	start, err := toInt64(req.StartKey.Value(1))
	if err != nil {
		return nil, errors.Wrap(err, "start key")
	}
	end, err := toInt64(req.EndKey.Value(1))
	if err != nil {
		return nil, errors.Wrap(err, "end key")
	}

	// start is inclusive and end exclusive in the walking direction
	lo, hi := start, end-1
	if req.Direction == storage.Backward {
		lo, hi = end+1, start
	}
	if lo > hi {
		return &storage.RangeResult{}, nil
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(req.Table),
		KeyConditionExpression: aws.String("#pk = :pk AND #sk BETWEEN :lo AND :hi"),
		ExpressionAttributeNames: map[string]string{
			"#pk": pkName,
			"#sk": skName,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: hash},
			":lo": &types.AttributeValueMemberN{Value: strconv.FormatInt(lo, 10)},
			":hi": &types.AttributeValueMemberN{Value: strconv.FormatInt(hi, 10)},
		},
		ScanIndexForward: aws.Bool(req.Direction != storage.Backward),
	}
	if req.Limit > 0 {
		input.Limit = aws.Int32(req.Limit)
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		klog.V(2).InfoS("Failed to query range", "table", req.Table, "err", err)
		return nil, errors.Wrapf(err, "query range on %s", req.Table)
	}

	result := &storage.RangeResult{Rows: make([]*storage.Row, 0, len(out.Items))}
	for _, item := range out.Items {
		row, err := s.toRow(req.Table, pkName, skName, item)
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
	}

	if len(out.LastEvaluatedKey) > 0 {
		var last int64
		if err := attributevalue.Unmarshal(out.LastEvaluatedKey[skName], &last); err != nil {
			return nil, errors.Wrap(err, "decode last evaluated key")
		}
		next := last + 1
		if req.Direction == storage.Backward {
			next = last - 1
		}
		result.NextStartKey = storage.PrimaryKey{
			{Name: pkName, Value: hash},
			{Name: skName, Value: next},
		}
	}
	return result, nil
}

func (s *Store) toRow(table, pkName, skName string, item map[string]types.AttributeValue) (*storage.Row, error) {
	var hash string
	if err := attributevalue.Unmarshal(item[pkName], &hash); err != nil {
		return nil, errors.Wrapf(err, "decode %s", pkName)
	}
	var ts int64
	if err := attributevalue.Unmarshal(item[skName], &ts); err != nil {
		return nil, errors.Wrapf(err, "decode %s", skName)
	}

	row := &storage.Row{
		PrimaryKey: storage.PrimaryKey{{Name: pkName, Value: hash}, {Name: skName, Value: ts}},
	}
	for _, name := range s.columns[table] {
		var v interface{}
		if av, ok := item[name]; ok {
			if err := attributevalue.Unmarshal(av, &v); err != nil {
				return nil, errors.Wrapf(err, "decode %s", name)
			}
		}
		row.Columns = append(row.Columns, storage.Column{Name: name, Value: v})
	}
	return row, nil
}

func toInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, errors.Errorf("non integral key %v", t)
		}
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.Errorf("unsupported key type %T", v)
	}
}
