package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quantsim/internal/services"
)

// respondError maps service failures onto the HTTP surface: ownership
// mismatches abort with 403, everything else is a structured 400.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
