package httpapi

import "encoding/json"

// A response is the json envelope every endpoint responds with.
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// received is the client side of the envelope, with the payload kept raw
// until the caller picks a type.
type received struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}
