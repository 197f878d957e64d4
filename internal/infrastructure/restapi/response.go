package restapi

import (
	"errors"
	"net/http"

	"massa_gateway/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type successEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

type messageEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// keyNotFoundEnvelope always carries availableKeys, even when empty.
type keyNotFoundEnvelope struct {
	Status        string   `json:"status"`
	Message       string   `json:"message"`
	AvailableKeys []string `json:"availableKeys"`
}

// StatusForKind maps a ServiceError kind to its HTTP status.
func StatusForKind(kind entity.ErrorKind) int {
	switch kind {
	case entity.KindMissingField, entity.KindInvalidNetwork, entity.KindInvalidRequest,
		entity.KindAddressNotFound, entity.KindRpcError, entity.KindCourseLookupFailed,
		entity.KindNoGoalsEndpoint:
		return http.StatusBadRequest
	case entity.KindNoDatastoreFound, entity.KindKeyNotFound, entity.KindCourseNotFound:
		return http.StatusNotFound
	case entity.KindTransportError, entity.KindInvalidResponse, entity.KindWebhookError:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, successEnvelope{Status: statusSuccess, Message: message, Data: data})
}

func writeMessage(c *gin.Context, status int, message string) {
	c.JSON(status, messageEnvelope{Status: statusSuccess, Message: message})
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, messageEnvelope{Status: statusError, Message: message})
}

// writeServiceError renders err with the status of its kind. Errors that are
// not ServiceErrors become a generic 500.
func writeServiceError(c *gin.Context, err error) {
	_ = c.Error(err)

	var se *entity.ServiceError
	if !errors.As(err, &se) {
		writeError(c, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	status := StatusForKind(se.Kind)
	if se.Kind == entity.KindKeyNotFound {
		keys := se.AvailableKeys
		if keys == nil {
			keys = []string{}
		}
		c.AbortWithStatusJSON(status, keyNotFoundEnvelope{Status: statusError, Message: se.Message, AvailableKeys: keys})
		return
	}
	message := se.Message
	if message == "" {
		message = http.StatusText(status)
	}
	writeError(c, status, message)
}
