package provider

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openai/openai-go/v3"
)

// ErrNoChoices is returned when the remote service answers with an empty
// choices list.
var ErrNoChoices = errors.New("openai returned no choices")

// Kind groups completion failures by where they originated.
type Kind string

const (
	// KindTransport covers network, DNS, connection and deadline failures.
	KindTransport Kind = "transport"
	// KindAuth covers missing or rejected credentials.
	KindAuth Kind = "auth"
	// KindRemote covers error statuses and unusable response bodies.
	KindRemote Kind = "remote"
)

// Classify maps an error returned by a Provider to its Kind. API errors are
// auth or remote by status; empty choices and undecodable bodies are remote;
// everything else is transport.
func Classify(err error) Kind {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindAuth
		default:
			return KindRemote
		}
	}

	if errors.Is(err, ErrNoChoices) {
		return KindRemote
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return KindRemote
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return KindRemote
	}

	return KindTransport
}
