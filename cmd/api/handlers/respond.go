package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/softserv/softserv/common/apperr"
)

// errorBody is the single error envelope used across endpoints
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

var statusByCode = map[apperr.Code]int{
	apperr.CodeValidation:        http.StatusBadRequest,
	apperr.CodeUnauthorized:      http.StatusUnauthorized,
	apperr.CodeForbidden:         http.StatusForbidden,
	apperr.CodeNotFound:          http.StatusNotFound,
	apperr.CodeConflict:          http.StatusConflict,
	apperr.CodeIllegalTransition: http.StatusUnprocessableEntity,
}

// respondErr maps a service error to its HTTP status. Unknown errors
// collapse to 500 with an opaque message.
func respondErr(c echo.Context, err error) error {
	code := apperr.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, errorBody{Error: errorDetail{Code: code, Message: apperr.MessageOf(err)}})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorBody{
		Error: errorDetail{Code: apperr.CodeValidation, Message: message},
	})
}
