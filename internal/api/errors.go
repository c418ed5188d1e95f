// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Kind buckets an API failure for user-facing handling.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindUnauthorized
	KindForbidden
	KindValidation
	KindNotFound
	KindConflict
	KindServer
)

// Error is the single error type surfaced by this package, covering both
// HTTP-level failures and transport failures.
type Error struct {
	StatusCode int
	// Code is the machine-readable error code from the server, if any.
	Code    string
	Message string
	// Fields holds field-level validation messages from 400/422 responses.
	Fields    map[string]string
	RequestID string

	kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		if e.Code != "" {
			return fmt.Sprintf("api: %s (%d %s)", e.Message, e.StatusCode, e.Code)
		}
		return fmt.Sprintf("api: %s (%d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Kind classifies the error into the client-perceived taxonomy.
func (e *Error) Kind() Kind {
	if e.kind != KindUnknown {
		return e.kind
	}
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return KindUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return KindForbidden
	case e.StatusCode == http.StatusNotFound:
		return KindNotFound
	case e.StatusCode == http.StatusConflict:
		return KindConflict
	case e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity:
		return KindValidation
	case e.StatusCode >= 500:
		return KindServer
	}
	return KindUnknown
}

// errorEnvelope is the wire shape of server-side error responses.
type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

// decodeAPIError turns a non-2xx response into an *Error. Bodies that are
// not the JSON envelope (proxies, HTML error pages) degrade to the status text.
func decodeAPIError(resp *http.Response) *Error {
	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil {
		if env.Message != "" {
			apiErr.Message = env.Message
		} else if env.Error != "" {
			apiErr.Message = env.Error
		}
		apiErr.Code = env.Code
		apiErr.Fields = env.Fields
	}
	return apiErr
}

// IsKind reports whether err is an API error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind() == kind
}

// IsUnauthorized reports whether err is a 401.
func IsUnauthorized(err error) bool { return IsKind(err, KindUnauthorized) }

// IsForbidden reports whether err is a 403.
func IsForbidden(err error) bool { return IsKind(err, KindForbidden) }

// IsConflict reports whether err is a 409, e.g. a duplicate name.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// IsValidation reports whether err carries field-level validation failures.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }
