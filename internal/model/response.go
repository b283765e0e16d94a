package model

// Response is the JSON envelope of every API answer. Error is set only on failure.
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Error   *string     `json:"error,omitempty"`
	Message string      `json:"message"`
}
