package roborock

import (
	"encoding/json"
	"fmt"
)

type requestMessage struct {
	ID     int    `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

type rpcResponse struct {
	ID     int             `json:"id"`
	Result any             `json:"result"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// DeviceError is an error reply from the device firmware.
type DeviceError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error %d: %s", e.Code, e.Message)
}

func decodeResponse(payload []byte) (rpcResponse, error) {
	var resp rpcResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return rpcResponse{}, fmt.Errorf("decode reply: %w", err)
	}
	return resp, nil
}

// deviceError returns nil for a missing or null error member.
func (r rpcResponse) deviceError() error {
	if len(r.Error) == 0 || string(r.Error) == "null" {
		return nil
	}
	var devErr DeviceError
	if err := json.Unmarshal(r.Error, &devErr); err != nil || devErr.Message == "" {
		return &DeviceError{Code: -1, Message: string(r.Error)}
	}
	return &devErr
}
