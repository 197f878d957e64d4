package entity

import "errors"

// ErrorKind classifies a ServiceError. The HTTP layer maps kinds to status codes.
type ErrorKind string

const (
	KindMissingField       ErrorKind = "MissingField"
	KindInvalidNetwork     ErrorKind = "InvalidNetwork"
	KindInvalidRequest     ErrorKind = "InvalidRequest"
	KindAddressNotFound    ErrorKind = "AddressNotFound"
	KindNoDatastoreFound   ErrorKind = "NoDatastoreFound"
	KindKeyNotFound        ErrorKind = "KeyNotFound"
	KindTransportError     ErrorKind = "TransportError"
	KindRpcError           ErrorKind = "RpcError"
	KindInvalidResponse    ErrorKind = "InvalidResponse"
	KindCourseNotFound     ErrorKind = "CourseNotFound"
	KindCourseLookupFailed ErrorKind = "CourseLookupFailed"
	KindNoGoalsEndpoint    ErrorKind = "NoGoalsEndpoint"
	KindWebhookError       ErrorKind = "WebhookError"
	KindInternalError      ErrorKind = "InternalError"
)

// ServiceError is the single failure type returned by the lookup, datastore
// and relay services. Message is safe to show to callers; Err keeps the cause
// for logs.
type ServiceError struct {
	Kind           ErrorKind
	Message        string
	Network        NetworkSelector
	Method         string
	UpstreamStatus int
	AvailableKeys  []string
	Err            error
}

func (e *ServiceError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// NewServiceError builds a ServiceError without an underlying cause.
func NewServiceError(kind ErrorKind, message string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message}
}

// WrapServiceError builds a ServiceError around cause.
func WrapServiceError(kind ErrorKind, message string, cause error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: cause}
}

// KindOf reports the kind of the first ServiceError in err's chain,
// KindInternalError when there is none.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternalError
}
