package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK sends a 200 response with a success flag merged into the payload.
func OK(c *gin.Context, payload map[string]any) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Created sends a 201 response with a success flag merged into the payload.
func Created(c *gin.Context, payload map[string]any) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusCreated, body)
}
