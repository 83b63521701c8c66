package httpx

import "github.com/gin-gonic/gin"

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: report unavailable
	Error string `json:"error"`
}

// Abort stops the chain and writes {"error": msg}.
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, HTTPError{Error: msg})
}
