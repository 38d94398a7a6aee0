package tsp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// envelope is the body shape of every gateway request.
type envelope struct {
	Action Action `json:"action"`
	Data   Params `json:"data"`
}

func encodeBody(action Action, params Params) ([]byte, error) {
	if params == nil {
		params = Params{}
	}
	return json.Marshal(&envelope{Action: action, Data: params})
}

// encodeQuery renders the envelope as a query string in bracket notation,
// e.g. action=setSos&data[families][0][mobile]=138...
func encodeQuery(action Action, params Params) (string, error) {
	values := url.Values{}
	values.Set("action", string(action))
	if len(params) > 0 {
		generic, err := normalize(params)
		if err != nil {
			return "", err
		}
		flatten(values, "data", generic)
	}
	return values.Encode(), nil
}

// normalize turns typed parameter values (structs, typed slices) into the
// generic maps and slices produced by encoding/json.
func normalize(params Params) (interface{}, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var out interface{}
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(values url.Values, prefix string, v interface{}) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, vv := range t {
			flatten(values, prefix+"["+k+"]", vv)
		}
	case []interface{}:
		for i, vv := range t {
			flatten(values, prefix+"["+strconv.Itoa(i)+"]", vv)
		}
	case nil:
		values.Add(prefix, "")
	case bool:
		if t {
			values.Add(prefix, "1")
		} else {
			values.Add(prefix, "0")
		}
	case json.Number:
		values.Add(prefix, t.String())
	case string:
		values.Add(prefix, t)
	default:
		values.Add(prefix, fmt.Sprint(t))
	}
}
