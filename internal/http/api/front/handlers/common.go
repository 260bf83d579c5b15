package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/brainpace/brainpace/internal/logging"
	"github.com/brainpace/brainpace/internal/store"
	"github.com/brainpace/brainpace/internal/usererr"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var errUnauthenticated = errors.New("no authenticated user")

// getUserID returns the authenticated local user id, or 0.
func getUserID(c *gin.Context) uint64 {
	value, ok := c.Get(logging.UserIDKey)
	if !ok {
		return 0
	}
	id, _ := value.(uint64)
	return id
}

// requireUser returns the user id or writes a 401 and returns false.
func requireUser(c *gin.Context) (uint64, bool) {
	userID := getUserID(c)
	if userID == 0 {
		respondError(c, usererr.New(usererr.KindUnauthorized, errUnauthenticated))
		return 0, false
	}
	return userID, true
}

// respondError renders err as a gentle error body. Internal failures are logged, never echoed.
func respondError(c *gin.Context, err error) {
	err = classifyStoreErr(err)
	status, body := usererr.Render(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"request_id": c.GetString(logging.RequestIDKey),
			"path":       c.Request.URL.Path,
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

// classifyStoreErr maps storage sentinels that reach a handler onto user-facing kinds.
func classifyStoreErr(err error) error {
	var classified *usererr.Error
	if errors.As(err, &classified) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return usererr.New(usererr.KindNotFound, err)
	case errors.Is(err, store.ErrAlreadyExists):
		return usererr.New(usererr.KindConflict, err)
	default:
		return err
	}
}

// parseIDParam reads a positive numeric path parameter. Malformed ids are reported as not found.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if errParse != nil || id == 0 {
		respondError(c, usererr.New(usererr.KindNotFound, errParse))
		return 0, false
	}
	return id, true
}

func invalidBody(err error) error {
	return &usererr.Error{
		Kind:    usererr.KindValidation,
		Field:   "body",
		Message: "We couldn't read that request. Please check the fields and try again.",
		Err:     err,
	}
}
