package api

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/report"
	"alcyxob/gym-manager/internal/service"
)

var bindingNamesOnce sync.Once

// useJSONFieldNames makes gin's binding validator report JSON field names.
func useJSONFieldNames() {
	bindingNamesOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(domain.JSONFieldName)
		}
	})
}

// bindJSON decodes the request body into dst and runs its binding rules.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindError(err)
	}
	return nil
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return domain.FieldErrors(verrs)
	}
	if errors.Is(err, io.EOF) {
		return apperr.Validation("Request body is required")
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Validation("", apperr.FieldError{Field: typeErr.Field, Message: "has the wrong type"})
	}
	return apperr.Validation("Invalid request body")
}

// jsonPatch returns a patch that overlays the raw request body on a loaded record.
// Fields absent from the body keep their stored values.
func jsonPatch[T any](c *gin.Context) (service.Patch[T], error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, apperr.Validation("Invalid request body")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, apperr.Validation("Request body is required")
	}
	return func(dst *T) error {
		if err := json.Unmarshal(body, dst); err != nil {
			return bindError(err)
		}
		return nil
	}, nil
}

// pathID parses the named path parameter as an ObjectID.
func pathID(c *gin.Context, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("", apperr.FieldError{Field: name, Message: "must be a valid id"})
	}
	return id, nil
}

func pageRequest(c *gin.Context, defaultSort string) (query.PageRequest, error) {
	return query.ParsePageRequest(c.Request.URL.Query(), defaultSort)
}

func listQuery(c *gin.Context, keys []string) service.ListQuery {
	return service.ListQuery{
		Params: query.ParamsFromQuery(c.Request.URL.Query(), keys...),
		Search: strings.TrimSpace(c.Query("search")),
	}
}

// reportWindow reads dateFrom/dateTo, defaulting to fallback.
func reportWindow(c *gin.Context, fallback report.Window) (report.Window, error) {
	return report.ResolveWindow(c.Query("dateFrom"), c.Query("dateTo"), fallback)
}

// intQuery reads an integer query parameter, def when absent or malformed.
func intQuery(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return n
}
