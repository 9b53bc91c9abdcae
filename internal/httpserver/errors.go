package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("id must be a positive integer")
	}
	return uint(id), nil
}

// internalError keeps the underlying error text in the body next to the message.
func internalError(msg string, err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{
		"message": msg,
		"error":   err.Error(),
	})
}
