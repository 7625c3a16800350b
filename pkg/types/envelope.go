// Package types holds the JSON envelopes shared by the REST API and the
// storefront SDK.
package types

import "encoding/json"

// Envelope wraps every successful response body as {"data": ...}.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// RawEnvelope defers decoding of data until the caller knows its type.
type RawEnvelope = Envelope[json.RawMessage]

// ErrorBody is the payload of a failed response. Details is only set for
// codes that allow it, e.g. field errors of a validation failure.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}
