package domain

import (
	"fmt"
	"time"
)

// FlowState is a stage of the location-to-weather flow
type FlowState int

const (
	StateAwaitingPermission FlowState = iota
	StateAwaitingLocationFix
	StateAwaitingWeatherResponse
	StateRendered
	StateFailed
)

func (s FlowState) String() string {
	switch s {
	case StateAwaitingPermission:
		return "awaiting_permission"
	case StateAwaitingLocationFix:
		return "awaiting_location_fix"
	case StateAwaitingWeatherResponse:
		return "awaiting_weather_response"
	case StateRendered:
		return "rendered"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("flow_state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible
func (s FlowState) Terminal() bool {
	return s == StateRendered || s == StateFailed
}

// ErrorKind classifies why a flow failed
type ErrorKind int

const (
	KindLocationServiceDisabled ErrorKind = iota + 1
	KindPermissionDenied
	KindLocationUnavailable
	KindNoNetwork
	KindHTTPFailure
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindLocationServiceDisabled:
		return "location_service_disabled"
	case KindPermissionDenied:
		return "permission_denied"
	case KindLocationUnavailable:
		return "location_unavailable"
	case KindNoNetwork:
		return "no_network"
	case KindHTTPFailure:
		return "http_failure"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// FlowError is the terminal failure of one flow
type FlowError struct {
	Kind ErrorKind
	// Notice is the text shown to the user in the transient notification
	Notice string
	Err    error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// FixPriority is the accuracy hint passed to a location provider
type FixPriority int

const (
	PriorityHighAccuracy FixPriority = iota
	PriorityBalanced
	PriorityLowPower
)

// FixRequest describes a single location fix request
type FixRequest struct {
	Priority FixPriority
	Interval time.Duration
}

// DefaultFixRequest asks for one high-accuracy fix with a 10 second interval
func DefaultFixRequest() FixRequest {
	return FixRequest{Priority: PriorityHighAccuracy, Interval: 10 * time.Second}
}
