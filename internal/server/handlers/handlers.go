// Package handlers wires the HTTP surface onto the domain services.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"studentportal/internal/server/util"
)

var validate = validator.New()

// decodeAndValidate parses a JSON body into dst and runs struct validation.
// It writes the error response itself; callers just return on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			util.WriteJSONError(w, http.StatusBadRequest, "Request body is empty")
			return false
		}
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			util.WriteJSONError(w, http.StatusBadRequest,
				fmt.Sprintf("Validation failed: %s", strings.Join(fields, ", ")))
			return false
		}
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// pageParams reads page/limit query parameters with sane defaults.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
