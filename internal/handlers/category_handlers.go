package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

type categoryRequest struct {
	Title string `json:"title" binding:"required,max=100"`
	Type  string `json:"type" binding:"required,oneof=income expense"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

func ownedCategory(c *gin.Context, l *ledger.Ledger, id int) (*models.Category, error) {
	category, err := l.Categories.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if category.UserID != ownerID(c) {
		return nil, fmt.Errorf("category %d: %w", id, ledger.ErrNotFound)
	}
	return category, nil
}

func categoryFromPath(c *gin.Context, l *ledger.Ledger) (*models.Category, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}
	return ownedCategory(c, l, id)
}

func CreateCategoryHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req categoryRequest
		if err := bind(c, &req); err != nil {
			respondError(c, err)
			return
		}
		category := &models.Category{
			UserID: ownerID(c),
			Title:  req.Title,
			Type:   models.CategoryType(req.Type),
			Color:  req.Color,
		}
		if err := l.Categories.Create(c.Request.Context(), category); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func ListCategoriesHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := l.Categories.List(c.Request.Context(), ownerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newPage(categories, 1, false))
	}
}

// UpdateCategoryHandler rewrites a category. Changing its type rebooks every
// transaction under it.
func UpdateCategoryHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := categoryFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		var req categoryRequest
		if err := bind(c, &req); err != nil {
			respondError(c, err)
			return
		}
		updated, err := l.Categories.Update(c.Request.Context(), existing, req.Title, models.CategoryType(req.Type), req.Color)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteCategoryHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := categoryFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := l.Categories.Delete(c.Request.Context(), existing); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func ListCurrenciesHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		currencies, err := l.Store().ListCurrencies(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newPage(currencies, 1, false))
	}
}
