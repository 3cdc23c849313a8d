package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shieldloop/sentryloop/pkg/domain"
	"github.com/shieldloop/sentryloop/pkg/experiment"
)

// errorBody is the {code, message} structure the control API returns for
// configuration and state errors.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps a domain/experiment error to the appropriate status code
// and {code, message} body, and aborts the gin context.
func writeError(c *gin.Context, err error) {
	var transitionErr *experiment.TransitionError

	switch {
	case errors.Is(err, experiment.ErrExperimentNotFound):
		c.JSON(http.StatusNotFound, errorBody{Code: "not_found", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, errorBody{Code: "invalid_config", Message: err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, errorBody{Code: "invalid_transition", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorBody{Code: "internal_error", Message: err.Error()})
	}
}
