package dynamo

import (
	"context"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"tspgateway/pkg/storage"
)

type fakeQuery struct {
	inputs []*dynamodb.QueryInput
	out    *dynamodb.QueryOutput
}

func (f *fakeQuery) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.inputs = append(f.inputs, params)
	return f.out, nil
}

func keys(hash string, start, end int64) (storage.PrimaryKey, storage.PrimaryKey) {
	return storage.PrimaryKey{{Name: "device_hash", Value: hash}, {Name: "timestamp", Value: start}},
		storage.PrimaryKey{{Name: "device_hash", Value: hash}, {Name: "timestamp", Value: end}}
}

func n(v string) *types.AttributeValueMemberN { return &types.AttributeValueMemberN{Value: v} }
func s(v string) *types.AttributeValueMemberS { return &types.AttributeValueMemberS{Value: v} }

func TestScanRangeForward(t *testing.T) {
	q := &fakeQuery{out: &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{
			{"device_hash": s("h"), "timestamp": n("100"), "message": s("first")},
			{"device_hash": s("h"), "timestamp": n("130"), "message": s("second")},
		},
		LastEvaluatedKey: map[string]types.AttributeValue{"device_hash": s("h"), "timestamp": n("130")},
	}}
	st := newStore(q, nil)
	start, end := keys("h", 100, 200)

	result, err := st.ScanRange(context.Background(), &storage.RangeRequest{
		Table: storage.Messages, StartKey: start, EndKey: end, Direction: storage.Forward, Limit: 2,
	})
	require.NoError(t, err)

	require.Len(t, q.inputs, 1)
	in := q.inputs[0]
	assert.Equal(t, "messages", aws.ToString(in.TableName))
	assert.True(t, aws.ToBool(in.ScanIndexForward))
	assert.EqualValues(t, 2, aws.ToInt32(in.Limit))
	assert.Equal(t, "100", in.ExpressionAttributeValues[":lo"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "199", in.ExpressionAttributeValues[":hi"].(*types.AttributeValueMemberN).Value)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "second", result.Rows[1].ColumnValue(0))
	assert.Equal(t, int64(130), result.Rows[1].PrimaryKey.Value(1))
	assert.Equal(t, int64(131), result.NextStartKey.Value(1))
}

func TestScanRangeBackward(t *testing.T) {
	q := &fakeQuery{out: &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{
			{"device_hash": s("h"), "timestamp": n("200"), "message": s("latest")},
		},
		LastEvaluatedKey: map[string]types.AttributeValue{"device_hash": s("h"), "timestamp": n("200")},
	}}
	st := newStore(q, nil)
	// backward scans start at the upper bound
	start, end := keys("h", 200, 100)

	result, err := st.ScanRange(context.Background(), &storage.RangeRequest{
		Table: storage.Messages, StartKey: start, EndKey: end, Direction: storage.Backward,
	})
	require.NoError(t, err)

	in := q.inputs[0]
	assert.False(t, aws.ToBool(in.ScanIndexForward))
	assert.Nil(t, in.Limit)
	assert.Equal(t, "101", in.ExpressionAttributeValues[":lo"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "200", in.ExpressionAttributeValues[":hi"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, int64(199), result.NextStartKey.Value(1))
}

func TestScanRangeExhausted(t *testing.T) {
	q := &fakeQuery{out: &dynamodb.QueryOutput{}}
	st := newStore(q, nil)
	start, end := keys("h", 100, 200)

	result, err := st.ScanRange(context.Background(), &storage.RangeRequest{
		Table: storage.Tracks, StartKey: start, EndKey: end,
	})
	require.NoError(t, err)
	assert.True(t, result.NextStartKey.Empty())
}

func TestScanRangeEmptyWindowSkipsQuery(t *testing.T) {
	q := &fakeQuery{out: &dynamodb.QueryOutput{}}
	st := newStore(q, nil)
	start, end := keys("h", 200, 200)

	result, err := st.ScanRange(context.Background(), &storage.RangeRequest{
		Table: storage.Tracks, StartKey: start, EndKey: end,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Empty(t, q.inputs)
}

func TestScanRangeTrackColumnsKeepPositions(t *testing.T) {
	q := &fakeQuery{out: &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{{
			"device_hash": s("h"), "timestamp": n("100"),
			"direction": n("90"), "latitude": n("22.5"), "longitude": n("113.9"), "speed": n("12"),
		}},
	}}
	st := newStore(q, nil)
	start, end := keys("h", 100, 200)

	result, err := st.ScanRange(context.Background(), &storage.RangeRequest{
		Table: storage.Tracks, StartKey: start, EndKey: end,
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	row := result.Rows[0]
	require.Len(t, row.Columns, 10)
	assert.EqualValues(t, 90, row.ColumnValue(0))
	assert.EqualValues(t, 22.5, row.ColumnValue(1))
	assert.Nil(t, row.ColumnValue(3))
	assert.EqualValues(t, 12, row.ColumnValue(9))
}

func TestScanRangeRejectsSingleColumnKeys(t *testing.T) {
	st := newStore(&fakeQuery{}, nil)
	_, err := st.ScanRange(context.Background(), &storage.RangeRequest{
		Table:    storage.Tracks,
		StartKey: storage.PrimaryKey{{Name: "device_hash", Value: "h"}},
		EndKey:   storage.PrimaryKey{{Name: "device_hash", Value: "h"}},
	})
	assert.Error(t, err)
}

func TestScanRangeRejectsTableWithoutColumns(t *testing.T) {
	q := &fakeQuery{out: &dynamodb.QueryOutput{}}
	start, end := keys("h", 100, 200)

	_, err := newStore(q, nil).ScanRange(context.Background(), &storage.RangeRequest{
		Table: "fleet_tracks", StartKey: start, EndKey: end,
	})
	assert.ErrorContains(t, err, "fleet_tracks")
	assert.Empty(t, q.inputs)

	st := newStore(q, map[string][]string{"fleet_tracks": DefaultColumns[storage.Tracks]})
	_, err = st.ScanRange(context.Background(), &storage.RangeRequest{
		Table: "fleet_tracks", StartKey: start, EndKey: end,
	})
	require.NoError(t, err)
	require.Len(t, q.inputs, 1)
	assert.Equal(t, "fleet_tracks", aws.ToString(q.inputs[0].TableName))
}
