package api

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// decodeConnectionTest accepts both reply shapes of the connection probe: a bare boolean
// and a {success, message, details} object.
func decodeConnectionTest(payload json.RawMessage) (*ConnectionTestResult, error) {
	if len(payload) == 0 {
		return &ConnectionTestResult{}, nil
	}

	v := gjson.ParseBytes(payload)
	switch v.Type {
	case gjson.True, gjson.False:
		res := &ConnectionTestResult{Success: v.Bool(), Message: "connection failed"}
		if res.Success {
			res.Message = "connection succeeded"
		}

		return res, nil
	case gjson.JSON:
		res := &ConnectionTestResult{}
		err := json.Unmarshal(payload, res)
		if err != nil {
			return nil, fmt.Errorf("Failed to decode connection test result: %w", err)
		}

		return res, nil
	case gjson.Null:
		return &ConnectionTestResult{}, nil
	}

	return nil, fmt.Errorf("Unexpected connection test result %s", v.Raw)
}
