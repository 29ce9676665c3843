package utils

import (
	"errors"
	"net/http"

	"atomichabits/model"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope every API handler writes.
type Response struct {
	Status  int         `json:"-"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, r *Response) {
	c.JSON(r.Status, r)
}

func fail(c *gin.Context, status int, message string) {
	respond(c, &Response{Status: status, Error: message})
}

func Success(c *gin.Context, data interface{}) {
	respond(c, &Response{Status: http.StatusOK, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	respond(c, &Response{Status: http.StatusCreated, Message: "Resource created successfully", Data: data})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func BadRequest(c *gin.Context, message string)    { fail(c, http.StatusBadRequest, message) }
func Unauthorized(c *gin.Context, message string)  { fail(c, http.StatusUnauthorized, message) }
func NotFound(c *gin.Context, message string)      { fail(c, http.StatusNotFound, message) }
func Conflict(c *gin.Context, message string)      { fail(c, http.StatusConflict, message) }
func InternalError(c *gin.Context, message string) { fail(c, http.StatusInternalServerError, message) }

// TooManyRequests optionally carries retry details in data.
func TooManyRequests(c *gin.Context, message string, data ...interface{}) {
	r := &Response{Status: http.StatusTooManyRequests, Error: message}
	if len(data) > 0 {
		r.Data = data[0]
	}
	respond(c, r)
}

// HandleError maps domain errors onto their status codes. Anything
// unrecognised is logged and reported as a 500 with a generic message.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, model.ErrInvalidState):
		Conflict(c, err.Error())
	case errors.Is(err, model.ErrInvalidInput):
		BadRequest(c, err.Error())
	default:
		TrackError("internal", "unhandled")
		log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		InternalError(c, "Internal server error")
	}
}
