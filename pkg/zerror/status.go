package zerror

// Status is a transport-agnostic classification of a ZError.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusBadRequest
	StatusValidationFailed
	StatusNotFound
	StatusConflict
	StatusUnprocessableEntity
	StatusInternalServerError
	StatusBadGateway
	StatusServiceUnavailable
)

var statusNames = [...]string{
	StatusUnknown:             "UNKNOWN",
	StatusBadRequest:          "BAD_REQUEST",
	StatusValidationFailed:    "VALIDATION_FAILED",
	StatusNotFound:            "NOT_FOUND",
	StatusConflict:            "CONFLICT",
	StatusUnprocessableEntity: "UNPROCESSABLE_ENTITY",
	StatusInternalServerError: "INTERNAL_SERVER_ERROR",
	StatusBadGateway:          "BAD_GATEWAY",
	StatusServiceUnavailable:  "SERVICE_UNAVAILABLE",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return statusNames[StatusUnknown]
}

// Client reports whether the status blames the caller rather than the
// service or one of its upstreams.
func (s Status) Client() bool {
	switch s {
	case StatusBadRequest, StatusValidationFailed, StatusNotFound, StatusConflict, StatusUnprocessableEntity:
		return true
	default:
		return false
	}
}
