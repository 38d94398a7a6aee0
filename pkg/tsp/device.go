package tsp

import (
	"context"
	"fmt"
	"strings"
)

const (
	DefaultUploadInterval    = 60
	DefaultHostPort          = 2232
	DefaultHeartRateMin      = 0
	DefaultHeartRateMax      = 255
	DefaultHeartRateInterval = 600
	MaxDndPeriods            = 5
)

const (
	paramImei    = "imei_sn"
	paramPartner = "partner_id"

	dndPeriodSeparator = ";"
	dndDaysSeparator   = "|"

	errMsgEmptyContacts     = "contacts must not be empty"
	errMsgTooManyDndPeriods = "do-not-disturb allows at most 5 periods"
)

// Contact is a family or emergency number stored on a terminal.
type Contact struct {
	Relation string `json:"relation"`
	Mobile   string `json:"mobile"`
}

// DndPeriod is one do-not-disturb window, e.g. 8:00-11:30 on days "12345"
// where 1 is Monday.
type DndPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  string `json:"days"`
}

func (p DndPeriod) String() string {
	return p.Start + "-" + p.End + dndDaysSeparator + p.Days
}

// ParseDndSchedule parses the wire form of a schedule,
// "8:00-11:30|123456;14:00-17:30|12345".
func ParseDndSchedule(s string) ([]DndPeriod, error) {
	if len(strings.TrimSpace(s)) == 0 {
		return nil, nil
	}
	var periods []DndPeriod
	for _, part := range strings.Split(s, dndPeriodSeparator) {
		window, days, ok := strings.Cut(strings.TrimSpace(part), dndDaysSeparator)
		if !ok {
			return nil, &ValidationError{Field: "dnd", Reason: fmt.Sprintf("period %q has no days", part)}
		}
		start, end, ok := strings.Cut(window, "-")
		if !ok || len(start) == 0 || len(end) == 0 {
			return nil, &ValidationError{Field: "dnd", Reason: fmt.Sprintf("period %q has no time window", part)}
		}
		periods = append(periods, DndPeriod{Start: start, End: end, Days: days})
	}
	return periods, nil
}

func formatDndSchedule(periods []DndPeriod) string {
	parts := make([]string, 0, len(periods))
	for _, p := range periods {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, dndPeriodSeparator)
}

type onlineData struct {
	IsOnline bool `json:"is_online"`
}

type countData struct {
	Count int `json:"count"`
}

// IsOnline reports whether the terminal holds a connection to the gateway.
// Any failure, including a non-OK status, reads as offline.
func (c *Client) IsOnline(ctx context.Context, imei string) bool {
	resp, err := c.Call(ctx, ActionIsOnline, Params{paramImei: imei})
	if err != nil || !resp.OK() {
		return false
	}
	var data onlineData
	if err := resp.DecodeData(&data); err != nil {
		return false
	}
	return data.IsOnline
}

// GetOnlineCount returns the number of online terminals of a partner, 0 when
// the gateway did not answer OK. The response is returned for inspection.
func (c *Client) GetOnlineCount(ctx context.Context, partnerID int) (int, *ActionResponse) {
	resp, err := c.Call(ctx, ActionGetOnlineCount, Params{paramPartner: partnerID})
	if err != nil {
		return 0, &ActionResponse{Status: StatusRejected, Message: err.Error(), Err: err}
	}
	if !resp.OK() {
		return 0, resp
	}
	var data countData
	if err := resp.DecodeData(&data); err != nil {
		return 0, decodeFailure(resp.Raw, err)
	}
	return data.Count, resp
}

func (c *Client) GetOnlineDevices(ctx context.Context, partnerID int) (*ActionResponse, error) {
	return c.Call(ctx, ActionGetOnlineDevices, Params{paramPartner: partnerID})
}

func (c *Client) GetImei(ctx context.Context, imei string) (*ActionResponse, error) {
	return c.Call(ctx, ActionGetImei, Params{paramImei: imei})
}

// SetLocate asks the terminal for an immediate position report.
func (c *Client) SetLocate(ctx context.Context, imei string) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetLocate, Params{paramImei: imei})
}

// SetMonitor makes the terminal silently call back mobile.
func (c *Client) SetMonitor(ctx context.Context, imei, mobile string) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetMonitor, Params{paramImei: imei, "mobile": mobile})
}

func (c *Client) SetSos(ctx context.Context, imei string, contacts []Contact) (*ActionResponse, error) {
	return c.setContacts(ctx, ActionSetSos, imei, contacts)
}

func (c *Client) SetFamilies(ctx context.Context, imei string, contacts []Contact) (*ActionResponse, error) {
	return c.setContacts(ctx, ActionSetFamilies, imei, contacts)
}

func (c *Client) setContacts(ctx context.Context, action Action, imei string, contacts []Contact) (*ActionResponse, error) {
	if len(contacts) == 0 {
		return nil, &ValidationError{Reason: errMsgEmptyContacts}
	}
	return c.Call(ctx, action, Params{paramImei: imei, "families": contacts})
}

// SetUpload sets the position report interval in seconds.
func (c *Client) SetUpload(ctx context.Context, imei string, seconds int) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetUpload, Params{paramImei: imei, "second": seconds})
}

// SetHost points the terminal at another gateway.
func (c *Client) SetHost(ctx context.Context, imei, host string, port int) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetHost, Params{paramImei: imei, "host": host, "port": port})
}

func (c *Client) SetPowerOff(ctx context.Context, imei string) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetPowerOff, Params{paramImei: imei})
}

func (c *Client) SetRestart(ctx context.Context, imei string) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetRestart, Params{paramImei: imei})
}

// SetFind makes the terminal ring.
func (c *Client) SetFind(ctx context.Context, imei string) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetFind, Params{paramImei: imei})
}

// SetClear restores factory settings.
func (c *Client) SetClear(ctx context.Context, imei string) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetClear, Params{paramImei: imei})
}

// SetDnd replaces the do-not-disturb schedule. More than MaxDndPeriods
// periods are refused locally with a StatusRejected response.
func (c *Client) SetDnd(ctx context.Context, imei string, periods []DndPeriod) (*ActionResponse, error) {
	if len(periods) > MaxDndPeriods {
		return rejected(&ValidationError{Field: "periods", Reason: errMsgTooManyDndPeriods}, errMsgTooManyDndPeriods), nil
	}
	return c.Call(ctx, ActionSetDnd, Params{paramImei: imei, "param": formatDndSchedule(periods)})
}

func (c *Client) SetSimLock(ctx context.Context, imei string, locked bool) (*ActionResponse, error) {
	status := 0
	if locked {
		status = 1
	}
	return c.Call(ctx, ActionSetSimLock, Params{paramImei: imei, "status": status})
}

// SetUdtime limits position reports to the daily window start-end, both in
// HH:MM form.
func (c *Client) SetUdtime(ctx context.Context, imei, start, end string) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetUdtime, Params{paramImei: imei, "start": start, "end": end})
}

// SetHrsetal toggles the heart rate alarm for readings outside [min, max].
func (c *Client) SetHrsetal(ctx context.Context, imei string, enabled bool, min, max int) (*ActionResponse, error) {
	status := 0
	if enabled {
		status = 1
	}
	return c.Call(ctx, ActionSetHrsetal, Params{paramImei: imei, "status": status, "min": min, "max": max})
}

// SetHrtstart sets the heart rate report interval in seconds.
func (c *Client) SetHrtstart(ctx context.Context, imei string, seconds int) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetHrtstart, Params{paramImei: imei, "second": seconds})
}

func (c *Client) SetMessage(ctx context.Context, imei, message string) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetMessage, Params{paramImei: imei, "message": message})
}

func (c *Client) SetText(ctx context.Context, imei, text string) (*ActionResponse, error) {
	return c.Call(ctx, ActionSetText, Params{paramImei: imei, "text": text})
}

// SetOptions sends free form terminal options. imei_sn in options is
// overwritten by imei.
func (c *Client) SetOptions(ctx context.Context, imei string, options Params) (*ActionResponse, error) {
	params := make(Params, len(options)+1)
	for k, v := range options {
		params[k] = v
	}
	params[paramImei] = imei
	return c.Call(ctx, ActionSetOptions, params)
}
