package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"
	"dashboard/internal/middleware"
	"dashboard/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 20 << 20

// respondError writes err with the status of its kind. Infrastructure details
// stay in the logs.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := apperror.HTTPStatus(err)
	kind := apperror.KindOf(err)
	msg := err.Error()
	if kind == apperror.KindInfrastructure {
		msg = "internal server error"
	}
	c.JSON(status, response.ErrorKind(status, kind.String(), msg))
}

// currentIdentity aborts with 401 when the request carries no identity.
func currentIdentity(c *gin.Context) (authz.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		respondError(c, apperror.Unauthenticated("not logged in"))
		return authz.Identity{}, false
	}
	return id, true
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, apperror.Validation("invalid %s %q", name, c.Param(name))
	}
	return uint(n), nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadBytes {
		return nil, apperror.Validation("file exceeds %d bytes", maxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Validation("cannot read uploaded file: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, apperror.Validation("cannot read uploaded file: %v", err)
	}
	if len(data) > maxUploadBytes {
		return nil, apperror.Validation("file exceeds %d bytes", maxUploadBytes)
	}
	return data, nil
}

// optionalFile returns nil data when field was not sent.
func optionalFile(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Validation("invalid %s upload: %v", field, err)
	}
	return readUpload(fh)
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
