package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salon-api/internal/presentation/http/middleware"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/pagination"
	"github.com/sangkips/salon-api/pkg/utils"
)

const dateLayout = "2006-01-02"

// principal returns the authenticated staff member, writing a 401 when absent
func principal(c *gin.Context) (entity.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
	}
	return p, ok
}

// uuidParam parses a path parameter, writing a 400 when it is not a UUID
func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page and per_page from the query string
func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return &pagination.PaginationParams{Page: page, PerPage: perPage}
}

// dateRange reads start_date and end_date as whole days in loc.
// The end bound is the last instant of end_date.
func dateRange(c *gin.Context, loc *time.Location) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if s := c.Query("start_date"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return nil, nil, apperror.NewBadRequestError("start_date must be YYYY-MM-DD")
		}
		start = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return nil, nil, apperror.NewBadRequestError("end_date must be YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &t
	}
	return start, end, nil
}

// optionalUUIDQuery parses an optional UUID query parameter
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	id, err := utils.ParseOptionalUUID(c.Query(name))
	if err != nil {
		return nil, apperror.NewBadRequestError("Invalid " + name)
	}
	return id, nil
}

func boolQuery(c *gin.Context, name string, def bool) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(name, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}
