package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload marks webhook bodies that are not valid JSON or are
// missing the fields the pipeline needs.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// Payload is the provider's webhook delivery shape. Only the event type and
// the charge id are used; the rest of the event data is opaque here.
type Payload struct {
	Event struct {
		Type string `json:"type"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	} `json:"event"`
}

// ParsePayload decodes a raw webhook body. Parsing happens strictly after
// signature verification, on the same bytes that were verified.
func ParsePayload(body []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err)
	}

	// Only the type is required up front: non-charge events carry arbitrary
	// data and are classified as ignorable before the charge id is needed.
	if payload.Event.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedPayload)
	}

	return &payload, nil
}
