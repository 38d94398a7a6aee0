package tsp

import (
	"k8s.io/apimachinery/pkg/util/sets"
	"net/http"
)

// Action is the name of a remote operation exposed by the gateway.
type Action string

const (
	ActionIsOnline         Action = "isOnline"
	ActionGetOnlineCount   Action = "getOnlineCount"
	ActionGetOnlineDevices Action = "getOnlineDevices"
	ActionGetImei          Action = "getImei"
	ActionSetLocate        Action = "setLocate"
	ActionSetMonitor       Action = "setMonitor"
	ActionSetSos           Action = "setSos"
	ActionSetFamilies      Action = "setFamilies"
	ActionSetUpload        Action = "setUpload"
	ActionSetHost          Action = "setHost"
	ActionSetPowerOff      Action = "setPowerOff"
	ActionSetRestart       Action = "setRestart"
	ActionSetFind          Action = "setFind"
	ActionSetDnd           Action = "setDnd"
	ActionSetSimLock       Action = "setSimLock"
	ActionSetUdtime        Action = "setUdtime"
	ActionSetHrsetal       Action = "setHrsetal"
	ActionSetHrtstart      Action = "setHrtstart"
	ActionSetClear         Action = "setClear"
	ActionSetMessage       Action = "setMessage"
	ActionSetText          Action = "setText"
	ActionSetOptions       Action = "setOptions"

	// served from the history store, never sent to the gateway
	ActionGetTracks   Action = "getTracks"
	ActionGetMessages Action = "getMessages"
)

var queryActions = sets.NewString(
	string(ActionIsOnline),
	string(ActionGetOnlineCount),
	string(ActionGetOnlineDevices),
	string(ActionGetImei),
)

var commandActions = sets.NewString(
	string(ActionSetLocate),
	string(ActionSetMonitor),
	string(ActionSetSos),
	string(ActionSetFamilies),
	string(ActionSetUpload),
	string(ActionSetHost),
	string(ActionSetPowerOff),
	string(ActionSetRestart),
	string(ActionSetFind),
	string(ActionSetDnd),
	string(ActionSetSimLock),
	string(ActionSetUdtime),
	string(ActionSetHrsetal),
	string(ActionSetHrtstart),
	string(ActionSetClear),
	string(ActionSetMessage),
	string(ActionSetText),
	string(ActionSetOptions),
)

// Method returns the HTTP method the gateway expects for the action, or an
// empty string for actions it does not serve.
func (a Action) Method() string {
	switch {
	case queryActions.Has(string(a)):
		return http.MethodGet
	case commandActions.Has(string(a)):
		return http.MethodPost
	default:
		return ""
	}
}

func (a Action) Remote() bool {
	return len(a.Method()) > 0
}

// RemoteActions lists every action sent to the gateway, sorted by name.
func RemoteActions() []Action {
	names := queryActions.Union(commandActions).List()
	actions := make([]Action, 0, len(names))
	for _, name := range names {
		actions = append(actions, Action(name))
	}
	return actions
}

// Params is the parameter bag of one action.
type Params map[string]interface{}

type ActionRequest struct {
	Action Action `json:"action"`
	Params Params `json:"data"`
}
