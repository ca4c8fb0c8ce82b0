package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/internal/logger"
)

// OwnerKey is the gin context key holding the acting user id.
const OwnerKey = "user_id"

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func ownerID(c *gin.Context) int {
	return c.GetInt(OwnerKey)
}

func pathID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, badRequest("invalid date %q", s)
	}
	return t, nil
}

// respondError maps err onto a status code. Unexpected errors are logged
// and hidden from the client.
func respondError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(verrs)})
	case errors.Is(err, errBadRequest), errors.Is(err, ledger.ErrInvalidDeleteMode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ledger.ErrCategoryInUse):
		c.JSON(http.StatusConflict, gin.H{"error": "category has transactions"})
	default:
		log := logger.FromContext(c.Request.Context())
		log.Error().Err(err).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bind decodes the JSON body into req; malformed JSON is a bad request.
func bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return err
		}
		return badRequest("malformed body: %v", err)
	}
	return nil
}

func bindQuery(c *gin.Context, req any) error {
	if err := c.ShouldBindQuery(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return err
		}
		return badRequest("malformed query: %v", err)
	}
	return nil
}

type page[T any] struct {
	Items    []T  `json:"items"`
	NextPage *int `json:"next_page"`
}

func newPage[T any](items []T, current int, more bool) page[T] {
	if items == nil {
		items = []T{}
	}
	p := page[T]{Items: items}
	if more {
		if current < 1 {
			current = 1
		}
		next := current + 1
		p.NextPage = &next
	}
	return p
}
