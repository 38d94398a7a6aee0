package tsp

import (
	"context"
	"fmt"
)

// Perform invokes action on one terminal from an untyped parameter bag, as
// received by the CLI and the REST facade. Actions with local validation go
// through their typed method so the same rules apply.
func (c *Client) Perform(ctx context.Context, action Action, imei string, params Params) (*ActionResponse, error) {
	if len(imei) == 0 {
		return nil, &ValidationError{Field: paramImei, Reason: "is required"}
	}

	switch action {
	case ActionSetSos, ActionSetFamilies:
		var in struct {
			Families []Contact `json:"families"`
		}
		if err := weakDecode(map[string]interface{}{"families": params["families"]}, &in); err != nil {
			return nil, &ValidationError{Field: "families", Reason: err.Error()}
		}
		return c.setContacts(ctx, action, imei, in.Families)
	case ActionSetDnd:
		var periods []DndPeriod
		switch v := params["param"].(type) {
		case nil:
		case string:
			parsed, err := ParseDndSchedule(v)
			if err != nil {
				return nil, err
			}
			periods = parsed
		default:
			return nil, &ValidationError{Field: "param", Reason: fmt.Sprintf("must be a schedule string, got %T", v)}
		}
		return c.SetDnd(ctx, imei, periods)
	}

	merged := make(Params, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	merged[paramImei] = imei
	return c.Call(ctx, action, merged)
}
