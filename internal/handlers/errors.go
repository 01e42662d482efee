package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"devhub/internal/apperror"
)

// respondError maps a service error onto its status and a {"message"} body.
// Unclassified errors are logged and reported with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	status := apperror.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: method=%s path=%s request_id=%s err=%v", c.Request.Method, c.FullPath(), requestIDFromContext(c), err)
	}
	c.JSON(status, gin.H{"message": apperror.Message(err, fallback)})
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
// resource names the thing the id refers to in the error message.
func pathID(c *gin.Context, name, resource string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("Invalid %s id", resource)})
		return 0, false
	}
	return id, true
}
