package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/safar/go-sql-shop/internal/apperr"
	"github.com/safar/go-sql-shop/internal/database"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

var notFoundErrors = []error{
	database.ErrUserNotFound,
	database.ErrItemNotFound,
	database.ErrCategoryNotFound,
	database.ErrWishlistNotFound,
	database.ErrCartNotFound,
	database.ErrOrderNotFound,
}

// classify maps err to a kind and a client-safe message.
func classify(err error) (apperr.Kind, string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Kind, appErr.Message
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return apperr.KindNotFound, err.Error()
		}
	}

	switch {
	case errors.Is(err, database.ErrInsufficientStock):
		return apperr.KindValidation, err.Error()
	case errors.Is(err, database.ErrOptimisticLockFailed):
		return apperr.KindConflict, "the record was modified concurrently, retry the request"
	case database.IsRetryable(err):
		return apperr.KindConflict, "the request conflicted with a concurrent update, retry the request"
	}

	switch database.ClassifyError(err) {
	case database.ErrorClassForeignKeyViolation:
		return apperr.KindValidation, "referenced record does not exist"
	case database.ErrorClassUniqueViolation:
		return apperr.KindConflict, "record already exists"
	}

	return apperr.KindInternal, "internal server error"
}

func abortWithError(c *gin.Context, logger *zap.Logger, err error) {
	kind, message := classify(err)
	if kind == apperr.KindInternal {
		logger.Error("request failed",
			zap.String("request_id", requestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)

	c.AbortWithStatusJSON(kind.HTTPStatus(), errorResponse{
		Error: message,
		Code:  kind.String(),
		Field: apperr.FieldOf(err),
	})
}

// bindError turns a ShouldBind failure into a request error naming the
// offending JSON field where there is one.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fieldPath(fe.Namespace())
		if fe.Tag() == "required" {
			return apperr.Validation(field, "this field is required")
		}
		return apperr.Validationf(field, "failed on the %q rule", fe.Tag())
	}
	return apperr.BadRequest("", fmt.Sprintf("malformed request body: %v", err))
}

// fieldPath drops the request struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{
		Error: "not found",
		Code:  apperr.KindNotFound.String(),
	})
}
