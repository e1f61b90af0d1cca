// Package controllers translates HTTP requests into service calls and
// service results into the JSON envelope.
package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/pkg/ctx"
	"github.com/shashiranjanraj/feria/pkg/logger"
)

// maxImageSize caps image uploads at 5 MiB.
const maxImageSize = 5 << 20

// fail maps a service error onto the HTTP envelope. Unexpected errors are
// logged and masked as a plain 500.
func fail(c *ctx.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "path", c.Path(), "error", err)
		c.Error(status, "Internal server error")
		return
	}
	c.Error(status, errMessage(err))
}

// errMessage strips the sentinel prefix, leaving the human part.
func errMessage(err error) string {
	for _, sentinel := range []error{
		apperr.ErrNotFound, apperr.ErrConflict, apperr.ErrInvalid,
		apperr.ErrForbidden, apperr.ErrUnauthorized,
	} {
		if errors.Is(err, sentinel) {
			msg := err.Error()
			prefix := sentinel.Error() + ": "
			if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
				return msg[len(prefix):]
			}
			return msg
		}
	}
	return err.Error()
}

// pageParams reads page/limit query parameters with defaults.
func pageParams(c *ctx.Context, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

// imageFile pulls the "image" part out of a multipart upload. On failure
// it writes the error response and reports ok=false. The caller closes
// the file.
func imageFile(c *ctx.Context) (f multipart.File, filename string, ok bool) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxImageSize)
	if err := c.R.ParseMultipartForm(maxImageSize); err != nil {
		c.Error(http.StatusBadRequest, "Expected a multipart form with an image file")
		return nil, "", false
	}
	f, header, err := c.R.FormFile("image")
	if err != nil {
		c.Error(http.StatusBadRequest, "Missing image file")
		return nil, "", false
	}
	return f, header.Filename, true
}

// activeParam reads the three-valued active filter ("", "true", "false").
func activeParam(c *ctx.Context) *bool {
	switch c.Query("active") {
	case "true", "1":
		t := true
		return &t
	case "false", "0":
		f := false
		return &f
	}
	return nil
}
