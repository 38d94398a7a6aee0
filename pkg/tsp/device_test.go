package tsp

import (
	"context"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"testing"
)

const testImei = "860000000000001"

func TestSetContactsRejectEmptyList(t *testing.T) {
	g := newFakeGateway(t, http.StatusOK, `{"status":200}`)
	c := newTestClient(t, g.URL)

	for _, set := range []func(context.Context, string, []Contact) (*ActionResponse, error){c.SetSos, c.SetFamilies} {
		for _, contacts := range [][]Contact{nil, {}} {
			resp, err := set(context.Background(), testImei, contacts)
			assert.Nil(t, resp)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "tsp: contacts must not be empty", err.Error())
		}
	}
	assert.Zero(t, g.calls.Load())
}

func TestSetSosSendsFamilies(t *testing.T) {
	g := newFakeGateway(t, http.StatusOK, `{"status":200}`)
	c := newTestClient(t, g.URL)

	resp, err := c.SetSos(context.Background(), testImei, []Contact{{Relation: "mother", Mobile: "13800000000"}})
	require.NoError(t, err)
	assert.True(t, resp.OK())

	rec := g.last(t)
	assert.Equal(t, "setSos", rec.body["action"])
	data := rec.body["data"].(map[string]interface{})
	assert.Equal(t, testImei, data["imei_sn"])
	assert.Equal(t, []interface{}{map[string]interface{}{"relation": "mother", "mobile": "13800000000"}}, data["families"])
}

func dndPeriods(n int) []DndPeriod {
	periods := make([]DndPeriod, 0, n)
	for i := 0; i < n; i++ {
		periods = append(periods, DndPeriod{Start: fmt.Sprintf("%d:00", 8+i), End: fmt.Sprintf("%d:30", 8+i), Days: "12345"})
	}
	return periods
}

func TestSetDndRejectsMoreThanFivePeriods(t *testing.T) {
	g := newFakeGateway(t, http.StatusOK, `{"status":200}`)
	c := newTestClient(t, g.URL)

	resp, err := c.SetDnd(context.Background(), testImei, dndPeriods(6))
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, resp.Status)
	assert.Equal(t, "do-not-disturb allows at most 5 periods", resp.Message)
	assert.Zero(t, g.calls.Load())

	resp, err = c.SetDnd(context.Background(), testImei, dndPeriods(5))
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.EqualValues(t, 1, g.calls.Load())

	rec := g.last(t)
	data := rec.body["data"].(map[string]interface{})
	assert.Equal(t, "8:00-8:30|12345;9:00-9:30|12345;10:00-10:30|12345;11:00-11:30|12345;12:00-12:30|12345", data["param"])
}

func TestParseDndSchedule(t *testing.T) {
	periods, err := ParseDndSchedule("8:00-11:30|123456; 14:00-17:30|12345")
	require.NoError(t, err)
	assert.Equal(t, []DndPeriod{
		{Start: "8:00", End: "11:30", Days: "123456"},
		{Start: "14:00", End: "17:30", Days: "12345"},
	}, periods)
	assert.Equal(t, "8:00-11:30|123456;14:00-17:30|12345", formatDndSchedule(periods))

	periods, err = ParseDndSchedule("")
	require.NoError(t, err)
	assert.Empty(t, periods)

	for _, bad := range []string{"8:00-11:30", "|12345", "8:00|12345"} {
		_, err = ParseDndSchedule(bad)
		assert.Error(t, err, bad)
	}
}

func TestIsOnline(t *testing.T) {
	cases := map[string]struct {
		body   string
		online bool
	}{
		"online":            {body: `{"status":200,"data":{"is_online":true}}`, online: true},
		"online as number":  {body: `{"status":200,"data":{"is_online":1}}`, online: true},
		"offline":           {body: `{"status":200,"data":{"is_online":false}}`},
		"error status":      {body: `{"status":500,"data":{"is_online":true}}`},
		"missing data":      {body: `{"status":200}`},
		"malformed":         {body: `not json`},
		"unexpected status": {body: `{"status":404,"message":"device not found"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			g := newFakeGateway(t, http.StatusOK, tc.body)
			c := newTestClient(t, g.URL)

			assert.Equal(t, tc.online, c.IsOnline(context.Background(), testImei))

			rec := g.last(t)
			assert.Equal(t, http.MethodGet, rec.method)
			assert.Equal(t, testImei, rec.query.Get("data[imei_sn]"))
		})
	}
}

func TestIsOnlineFalseOnTransportFailure(t *testing.T) {
	c := newTestClient(t, "http://gw.local", WithTransport(failingTransport(fmt.Errorf("connection reset"))))
	assert.False(t, c.IsOnline(context.Background(), testImei))
}

func TestGetOnlineCount(t *testing.T) {
	g := newFakeGateway(t, http.StatusOK, `{"status":200,"data":{"count":"42"}}`)
	c := newTestClient(t, g.URL)

	count, resp := c.GetOnlineCount(context.Background(), 7)
	assert.Equal(t, 42, count)
	assert.True(t, resp.OK())
	assert.Equal(t, "7", g.last(t).query.Get("data[partner_id]"))

	g = newFakeGateway(t, http.StatusOK, `{"status":403,"message":"forbidden"}`)
	c = newTestClient(t, g.URL)
	count, resp = c.GetOnlineCount(context.Background(), 7)
	assert.Zero(t, count)
	assert.Equal(t, 403, resp.Status)
}

func TestSetHostRoundTrip(t *testing.T) {
	g := newFakeGateway(t, http.StatusOK, `{"status":200,"message":"success","data":{"host":"gw.example.com","port":2232}}`)
	c := newTestClient(t, g.URL)

	resp, err := c.SetHost(context.Background(), testImei, "gw.example.com", DefaultHostPort)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "success", resp.Message)
	assert.Equal(t, map[string]interface{}{"host": "gw.example.com", "port": float64(2232)}, resp.Data)

	rec := g.last(t)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "setHost", rec.body["action"])
	assert.Equal(t, map[string]interface{}{"imei_sn": testImei, "host": "gw.example.com", "port": float64(2232)}, rec.body["data"])
}

func TestCommandParams(t *testing.T) {
	g := newFakeGateway(t, http.StatusOK, `{"status":200}`)
	c := newTestClient(t, g.URL)
	ctx := context.Background()

	cases := []struct {
		call   func() (*ActionResponse, error)
		action Action
		data   map[string]interface{}
	}{
		{
			call:   func() (*ActionResponse, error) { return c.SetSimLock(ctx, testImei, true) },
			action: ActionSetSimLock,
			data:   map[string]interface{}{"imei_sn": testImei, "status": float64(1)},
		},
		{
			call:   func() (*ActionResponse, error) { return c.SetSimLock(ctx, testImei, false) },
			action: ActionSetSimLock,
			data:   map[string]interface{}{"imei_sn": testImei, "status": float64(0)},
		},
		{
			call:   func() (*ActionResponse, error) { return c.SetUpload(ctx, testImei, DefaultUploadInterval) },
			action: ActionSetUpload,
			data:   map[string]interface{}{"imei_sn": testImei, "second": float64(60)},
		},
		{
			call: func() (*ActionResponse, error) {
				return c.SetHrsetal(ctx, testImei, true, DefaultHeartRateMin, DefaultHeartRateMax)
			},
			action: ActionSetHrsetal,
			data:   map[string]interface{}{"imei_sn": testImei, "status": float64(1), "min": float64(0), "max": float64(255)},
		},
		{
			call:   func() (*ActionResponse, error) { return c.SetHrtstart(ctx, testImei, DefaultHeartRateInterval) },
			action: ActionSetHrtstart,
			data:   map[string]interface{}{"imei_sn": testImei, "second": float64(600)},
		},
		{
			call:   func() (*ActionResponse, error) { return c.SetUdtime(ctx, testImei, "21:00", "07:00") },
			action: ActionSetUdtime,
			data:   map[string]interface{}{"imei_sn": testImei, "start": "21:00", "end": "07:00"},
		},
		{
			call:   func() (*ActionResponse, error) { return c.SetMonitor(ctx, testImei, "13800000000") },
			action: ActionSetMonitor,
			data:   map[string]interface{}{"imei_sn": testImei, "mobile": "13800000000"},
		},
		{
			call:   func() (*ActionResponse, error) { return c.SetMessage(ctx, testImei, "hello") },
			action: ActionSetMessage,
			data:   map[string]interface{}{"imei_sn": testImei, "message": "hello"},
		},
		{
			call:   func() (*ActionResponse, error) { return c.SetText(ctx, testImei, "hi") },
			action: ActionSetText,
			data:   map[string]interface{}{"imei_sn": testImei, "text": "hi"},
		},
		{
			call: func() (*ActionResponse, error) {
				return c.SetOptions(ctx, testImei, Params{"lang": "en", "imei_sn": "spoofed"})
			},
			action: ActionSetOptions,
			data:   map[string]interface{}{"imei_sn": testImei, "lang": "en"},
		},
		{
			call:   func() (*ActionResponse, error) { return c.SetClear(ctx, testImei) },
			action: ActionSetClear,
			data:   map[string]interface{}{"imei_sn": testImei},
		},
	}
	for _, tc := range cases {
		resp, err := tc.call()
		require.NoError(t, err, tc.action)
		assert.True(t, resp.OK(), tc.action)

		rec := g.last(t)
		assert.Equal(t, string(tc.action), rec.body["action"])
		assert.Equal(t, tc.data, rec.body["data"], tc.action)
	}
}
