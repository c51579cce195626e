package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Error struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Messages []string `json:"messages,omitempty"`
	Fields   any      `json:"fields,omitempty"`
}

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
	// Redirect carries gate signals (login, unauthorized) the front end
	// must navigate to.
	Redirect  string `json:"redirect,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

// FailWithMessages keeps every backend message; the first is primary.
func FailWithMessages(w http.ResponseWriter, status int, code string, messages []string, requestID string) {
	message := ""
	if len(messages) > 0 {
		message = messages[0]
	}
	WriteJSON(w, status, Envelope{
		Success:   false,
		Error:     &Error{Code: code, Message: message, Messages: messages},
		RequestID: requestID,
	})
}

// FailRedirect is a failure that also tells the front end where to go.
func FailRedirect(w http.ResponseWriter, status int, code, message, redirect, requestID string) {
	WriteJSON(w, status, Envelope{
		Success:   false,
		Error:     &Error{Code: code, Message: message},
		Redirect:  redirect,
		RequestID: requestID,
	})
}

func FailValidation(w http.ResponseWriter, fields any, requestID string) {
	WriteJSON(w, http.StatusBadRequest, Envelope{
		Success:   false,
		Error:     &Error{Code: "validation_error", Message: "payload validation failed", Fields: fields},
		RequestID: requestID,
	})
}
