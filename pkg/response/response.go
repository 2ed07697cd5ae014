package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
	"github.com/noah-isme/glider-ops-api/pkg/middleware/requestid"
)

// Envelope is the body shape of every JSON response.
type Envelope struct {
	Data  interface{}      `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
	Meta  *Meta            `json:"meta,omitempty"`
}

// Meta carries request correlation and list sizes.
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Count     *int   `json:"count,omitempty"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}) {
	write(c, status, Envelope{Data: data, Meta: meta(c, nil)})
}

// List sends a 200 response for a collection, reporting its size in meta.count.
func List(c *gin.Context, data interface{}, count int) {
	write(c, http.StatusOK, Envelope{Data: data, Meta: meta(c, &count)})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error converts err to the common error structure and uses its HTTP status.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	write(c, appErr.Status, Envelope{Error: appErr, Meta: meta(c, nil)})
}

// Attachment streams a rendered file download.
func Attachment(c *gin.Context, contentType, filename string, payload []byte) {
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

func write(c *gin.Context, status int, envelope Envelope) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, envelope)
}

func meta(c *gin.Context, count *int) *Meta {
	reqID := requestid.Value(c)
	if reqID == "" && count == nil {
		return nil
	}
	return &Meta{RequestID: reqID, Count: count}
}
