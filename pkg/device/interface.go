package device

import (
	"context"
	"time"
	"tspgateway/pkg/tsp"
)

// Gateway is the part of the TSP client served over REST.
type Gateway interface {
	IsOnline(ctx context.Context, imei string) bool
	GetOnlineCount(ctx context.Context, partnerID int) (int, *tsp.ActionResponse)
	GetOnlineDevices(ctx context.Context, partnerID int) (*tsp.ActionResponse, error)
	GetImei(ctx context.Context, imei string) (*tsp.ActionResponse, error)
	Perform(ctx context.Context, action tsp.Action, imei string, params tsp.Params) (*tsp.ActionResponse, error)
	GetTracks(ctx context.Context, imei string, start, end time.Time, opts *tsp.HistoryOptions) ([]tsp.TrackPoint, error)
	GetMessages(ctx context.Context, imei string, start, end time.Time, opts *tsp.HistoryOptions) ([]tsp.MessagePoint, error)
}

var _ Gateway = (*tsp.Client)(nil)
