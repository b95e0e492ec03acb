package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the closed failure taxonomy for gateway operations.
type ErrorKind string

const (
	// ErrSafety: content policy block. The input must change; retrying
	// as-is cannot succeed.
	ErrSafety ErrorKind = "safety"
	// ErrAPI: authentication, configuration, or model availability
	// problem. Not fixable by retrying.
	ErrAPI ErrorKind = "api"
	// ErrNetwork: transport failure. Retryable.
	ErrNetwork ErrorKind = "network"
	// ErrParse: a success response whose body could not be decoded.
	// Retryable; may indicate schema drift.
	ErrParse ErrorKind = "parse"
	// ErrUnknown: anything else. Retryable with no stronger guarantee.
	ErrUnknown ErrorKind = "unknown"
)

// ServiceError is the classified outcome of exactly one failed gateway
// operation. Never mutated after creation and never retried
// automatically.
type ServiceError struct {
	Kind    ErrorKind `json:"type"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// classifyRule pairs a message predicate with the kind it implies.
// Rules are evaluated in order; the first match wins.
type classifyRule struct {
	match func(string) bool
	kind  ErrorKind
	msg   string
}

func containsAny(substrs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range substrs {
			if strings.Contains(s, strings.ToLower(sub)) {
				return true
			}
		}
		return false
	}
}

// classifyRules is the ordered predicate chain. Priority matters: an
// auth failure often mentions the network layer too, so api is checked
// before network, and safety before both generic buckets.
var classifyRules = []classifyRule{
	{
		match: containsAny("requested entity was not found", "api key", "api_key", "permission denied", "unauthenticated", "quota"),
		kind:  ErrAPI,
		msg:   "API configuration or model availability problem",
	},
	{
		match: containsAny("safety", "blocked", "content policy", "prohibited"),
		kind:  ErrSafety,
		msg:   "Request blocked by safety filters",
	},
	{
		match: containsAny("connection refused", "connection reset", "no such host", "timeout", "deadline exceeded", "network", "eof", "broken pipe"),
		kind:  ErrNetwork,
		msg:   "Network failure while calling the gateway",
	},
}

// Classify maps an arbitrary gateway failure onto the taxonomy. It is a
// pure function of the error's message text; a nil error returns nil.
// Already-classified errors pass through unchanged.
func Classify(err error) *ServiceError {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	text := strings.ToLower(err.Error())
	for _, rule := range classifyRules {
		if rule.match(text) {
			return &ServiceError{Kind: rule.kind, Message: rule.msg, Details: err.Error()}
		}
	}
	return &ServiceError{Kind: ErrUnknown, Message: "Unexpected gateway failure", Details: err.Error()}
}

// SafetyBlock builds a safety-kind error for an explicit SAFETY finish
// signal, which arrives without an error message to classify.
func SafetyBlock(msg string) *ServiceError {
	return &ServiceError{Kind: ErrSafety, Message: msg}
}

// ParseFailure builds a parse-kind error directly, bypassing the
// predicate chain: a malformed body carries no reliable message content.
func ParseFailure(msg, details string) *ServiceError {
	return &ServiceError{Kind: ErrParse, Message: msg, Details: details}
}
