package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed backend call the way the screens report it.
type Kind string

const (
	// KindNetwork: no response reached the backend at all.
	KindNetwork Kind = "network"
	// KindBackend: the backend answered with a structured failure.
	KindBackend Kind = "backend"
	// KindAuthorization: the backend rejected our credentials (401).
	KindAuthorization Kind = "authorization"
	// KindMalformed: a success response that could not be decoded.
	KindMalformed Kind = "malformed"
)

const networkMessage = "Network error. Please check your connection."

type Error struct {
	Kind     Kind
	Status   int
	Message  string
	Messages []string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("backend: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %s: %s", e.Kind, e.Message)
}

// AsError unwraps err into a backend Error when it is one.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IsUnauthorized(err error) bool {
	be, ok := AsError(err)
	return ok && be.Kind == KindAuthorization
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: networkMessage, Messages: []string{networkMessage}}
}

func malformedError(err error) *Error {
	msg := "Unexpected response from the server."
	return &Error{Kind: KindMalformed, Message: msg, Messages: []string{msg}}
}

// failureBody is the union of failure payload shapes the backend emits:
// a bare string, {message}, {errors:[{message}|string]}, {messages:[]}.
type failureBody struct {
	Message  string            `json:"message"`
	Errors   []json.RawMessage `json:"errors"`
	Messages []string          `json:"messages"`
}

// fromResponse reduces a non-2xx response to an Error. The first
// extracted message becomes the primary one; all are retained.
func fromResponse(status int, body []byte, fallback string) *Error {
	kind := KindBackend
	if status == http.StatusUnauthorized {
		kind = KindAuthorization
	}

	messages := extractMessages(body, fallback)
	return &Error{
		Kind:     kind,
		Status:   status,
		Message:  messages[0],
		Messages: messages,
	}
}

func extractMessages(body []byte, fallback string) []string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return []string{fallback}
	}

	var payload failureBody
	if err := json.Unmarshal(body, &payload); err != nil {
		// Not JSON: the backend sometimes answers with a plain string.
		return []string{trimmed}
	}

	if payload.Message != "" {
		return []string{payload.Message}
	}

	if msgs := drainRawMessages(payload.Errors); len(msgs) > 0 {
		return msgs
	}

	var msgs []string
	for _, m := range payload.Messages {
		if m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) > 0 {
		return msgs
	}

	// A JSON string body decodes to neither shape above.
	var asString string
	if err := json.Unmarshal(body, &asString); err == nil && strings.TrimSpace(asString) != "" {
		return []string{asString}
	}

	return []string{fallback}
}

// drainRawMessages accepts both {"message": "..."} entries and bare
// strings inside an errors array.
func drainRawMessages(raw []json.RawMessage) []string {
	var msgs []string
	for _, entry := range raw {
		var withMessage struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(entry, &withMessage); err == nil && withMessage.Message != "" {
			msgs = append(msgs, withMessage.Message)
			continue
		}
		var asString string
		if err := json.Unmarshal(entry, &asString); err == nil && asString != "" {
			msgs = append(msgs, asString)
		}
	}
	return msgs
}
