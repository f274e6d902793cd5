package handlers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/middleware"
)

// SuccessResponse returns a 200 OK with data
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// CreatedResponse returns a 201 Created with data
func CreatedResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, data)
}

// BadRequest returns a 400 Bad Request error
func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}

// InvalidFilterError returns a 400 tagged with the INVALID_FILTER code
func InvalidFilterError(message string) error {
	err := httperror.NewHTTPError(http.StatusBadRequest, message)
	err.AddMetaValue(middleware.MetaCodeKey, "INVALID_FILTER")
	return err
}

// DatabaseError returns a 500 tagged with the DATABASE_ERROR code
func DatabaseError(message string) error {
	err := httperror.NewHTTPError(http.StatusInternalServerError, message)
	err.AddMetaValue(middleware.MetaCodeKey, "DATABASE_ERROR")
	return err
}
