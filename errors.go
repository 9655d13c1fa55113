package sentiment

import (
	"bytes"
	"errors"
)

// Error kinds returned by the client. Context is layered on with fmt.Errorf
// and %w, so callers match with errors.Is.
var (
	// ErrInvalidArgument means the caller supplied malformed or out-of-range
	// input, or the API rejected the request parameters. Argument validation
	// runs before any network request is issued.
	ErrInvalidArgument = errors.New("sentiment: invalid argument")

	// ErrTransport means the network call failed or the server returned an
	// unexpected HTTP status.
	ErrTransport = errors.New("sentiment: transport failure")

	// ErrResponseFormat means the server payload could not be parsed into
	// the expected shape.
	ErrResponseFormat = errors.New("sentiment: malformed response")

	// ErrAuthentication means the token/key pair was rejected.
	ErrAuthentication = errors.New("sentiment: authentication rejected")
)

// errorClass categorizes Sentiment Investor error responses for targeted handling.
type errorClass int

const (
	errNone         errorClass = iota
	errIncorrectKey            // plain-text "incorrect_key" body
	errBadParameter            // plain-text "invalid_parameter" body
)

// classifyBody inspects a response body for the API's plain-text error
// sentinels. The v4 API signals credential and parameter rejection with a
// bare string instead of a JSON envelope.
func classifyBody(body []byte) errorClass {
	switch string(bytes.TrimSpace(body)) {
	case "incorrect_key":
		return errIncorrectKey
	case "invalid_parameter":
		return errBadParameter
	}
	return errNone
}
