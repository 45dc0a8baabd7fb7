// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tavolo/internal/modules/batching"
	"tavolo/internal/modules/dispatch"
	"tavolo/internal/modules/order"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeDispatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound), errors.Is(err, batching.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrInvalidState), errors.Is(err, dispatch.ErrNotDispatchable):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, dispatch.ErrNoCandidate):
		// An explicit "no candidate" result, not a server fault.
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// queryPoint parses pickup_lat/pickup_lng query parameters.
func queryPoint(c *gin.Context) (lat, lng float64, ok bool) {
	var err error
	lat, err = strconv.ParseFloat(c.Query("pickup_lat"), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(c.Query("pickup_lng"), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
