package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/storefront"
	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/warehouse"
	"github.com/omishoninjp-sys/helpshipping/internal/interfaces/http/dto"
)

// respondOK answers 200 with success true merged into the payload
func respondOK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// respondFail answers a business or validation failure. The frontend
// reads the flat {success, error} contract off a 200 response.
func respondFail(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.Status{Success: false, Error: message})
}

// respondError maps service errors to responses: unreachable upstreams
// become a 502, everything else stays a business failure on 200
func respondError(c *gin.Context, err error) {
	if errors.Is(err, warehouse.ErrUnavailable) || errors.Is(err, storefront.ErrUnavailable) {
		c.JSON(http.StatusBadGateway, dto.Status{Success: false, Error: err.Error()})
		return
	}
	respondFail(c, err.Error())
}
