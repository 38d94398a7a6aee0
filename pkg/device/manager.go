package device

import (
	"context"
	"errors"
	"fmt"
	"k8s.io/klog/v2"
	"strconv"
	"time"
	"tspgateway/pkg/storage"
	"tspgateway/pkg/tsp"
	"tspgateway/pkg/utils/timeutil"
)

var errUnknownAction = errors.New("unknown action")

// HistoryQuery is a history request as received, before parsing.
type HistoryQuery struct {
	Start     string
	End       string
	Direction string
	Limit     string
}

type OnlineStatus struct {
	Imei   string `json:"imei"`
	Online bool   `json:"online"`
}

type OnlineCount struct {
	PartnerID int `json:"partnerId"`
	Count     int `json:"count"`
}

// Manager turns REST parameters into gateway calls.
type Manager struct {
	gateway  Gateway
	location *time.Location
}

func NewManager(gateway Gateway, loc *time.Location) *Manager {
	if loc == nil {
		loc = time.Local
	}
	return &Manager{gateway: gateway, location: loc}
}

func (m *Manager) Online(ctx context.Context, imei string) *OnlineStatus {
	return &OnlineStatus{Imei: imei, Online: m.gateway.IsOnline(ctx, imei)}
}

func (m *Manager) OnlineCount(ctx context.Context, partner string) (*OnlineCount, *tsp.ActionResponse, error) {
	id, err := parsePartner(partner)
	if err != nil {
		return nil, nil, err
	}
	count, resp := m.gateway.GetOnlineCount(ctx, id)
	return &OnlineCount{PartnerID: id, Count: count}, resp, nil
}

func (m *Manager) OnlineDevices(ctx context.Context, partner string) (*tsp.ActionResponse, error) {
	id, err := parsePartner(partner)
	if err != nil {
		return nil, err
	}
	return m.gateway.GetOnlineDevices(ctx, id)
}

func (m *Manager) Device(ctx context.Context, imei string) (*tsp.ActionResponse, error) {
	return m.gateway.GetImei(ctx, imei)
}

// Perform sends a command to one terminal. Partner wide queries are not
// addressable per device and are refused as unknown.
func (m *Manager) Perform(ctx context.Context, imei, action string, params tsp.Params) (*tsp.ActionResponse, error) {
	a := tsp.Action(action)
	if !a.Remote() || a == tsp.ActionGetOnlineCount || a == tsp.ActionGetOnlineDevices {
		return nil, errUnknownAction
	}
	klog.V(4).InfoS("Performing device action", "imei", imei, "action", action)
	return m.gateway.Perform(ctx, a, imei, params)
}

func (m *Manager) Tracks(ctx context.Context, imei string, q HistoryQuery) ([]tsp.TrackPoint, error) {
	start, end, opts, err := m.parseHistory(q)
	if err != nil {
		return nil, err
	}
	return m.gateway.GetTracks(ctx, imei, start, end, opts)
}

func (m *Manager) Messages(ctx context.Context, imei string, q HistoryQuery) ([]tsp.MessagePoint, error) {
	start, end, opts, err := m.parseHistory(q)
	if err != nil {
		return nil, err
	}
	return m.gateway.GetMessages(ctx, imei, start, end, opts)
}

func (m *Manager) parseHistory(q HistoryQuery) (time.Time, time.Time, *tsp.HistoryOptions, error) {
	var zero time.Time
	start, err := timeutil.Parse(q.Start, m.location)
	if err != nil {
		return zero, zero, nil, &tsp.ValidationError{Field: "start", Reason: err.Error()}
	}
	end, err := timeutil.Parse(q.End, m.location)
	if err != nil {
		return zero, zero, nil, &tsp.ValidationError{Field: "end", Reason: err.Error()}
	}
	if end.Sub(start) > maxHistoryWindow {
		return zero, zero, nil, &tsp.ValidationError{Field: "end", Reason: fmt.Sprintf("window exceeds %s", maxHistoryWindow)}
	}

	opts := &tsp.HistoryOptions{Direction: storage.Forward}
	if len(q.Direction) > 0 {
		d, ok := directions[q.Direction]
		if !ok {
			return zero, zero, nil, &tsp.ValidationError{Field: "direction", Reason: "must be forward or backward"}
		}
		opts.Direction = d
	}
	if len(q.Limit) > 0 {
		limit, err := strconv.Atoi(q.Limit)
		if err != nil || limit < 0 || limit > maxPageLimit {
			return zero, zero, nil, &tsp.ValidationError{Field: "limit", Reason: fmt.Sprintf("must be an integer in [0, %d]", maxPageLimit)}
		}
		opts.PageLimit = limit
	}
	return start, end, opts, nil
}

func parsePartner(partner string) (int, error) {
	id, err := strconv.Atoi(partner)
	if err != nil || id < 0 {
		return 0, &tsp.ValidationError{Field: "partner", Reason: "must be a non-negative integer"}
	}
	return id, nil
}
