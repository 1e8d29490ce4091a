package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNoForm marks a program with no custom registration form. Callers
// treat it as a defined branch of the flow, not a failure.
var ErrNoForm = errors.New("program has no registration form")

// StatusError is a non-2xx response reduced to a displayable message.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string { return e.Message }

// errorEnvelope is the backend's error payload shape. Either field may
// carry the message.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorFromResponse turns a non-2xx response into a StatusError. The
// payload's error or message field wins; anything undecodable falls back
// to "HTTP <status>: <statusText>".
func errorFromResponse(resp *http.Response) error {
	msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(body) > 0 {
		var envelope errorEnvelope
		if json.Unmarshal(body, &envelope) == nil {
			if envelope.Error != "" {
				msg = envelope.Error
			} else if envelope.Message != "" {
				msg = envelope.Message
			}
		}
	}

	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}
