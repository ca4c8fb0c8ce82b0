package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

type transactionRequest struct {
	Date        string          `json:"date" binding:"required,datetime=2006-01-02"`
	Amount      decimal.Decimal `json:"amount" binding:"dgt0"`
	Currency    string          `json:"currency" binding:"required,iso4217"`
	CategoryID  int             `json:"category_id" binding:"required,gt=0"`
	AccountID   int             `json:"account_id" binding:"required,gt=0"`
	Description string          `json:"description" binding:"max=255"`
}

type transactionQuery struct {
	Page       int    `form:"page" binding:"omitempty,gte=1"`
	PerPage    int    `form:"per_page" binding:"omitempty,gte=1,lte=100"`
	Type       string `form:"type" binding:"omitempty,oneof=income expense"`
	CategoryID int    `form:"category_id" binding:"omitempty,gt=0"`
	AccountID  int    `form:"account_id" binding:"omitempty,gt=0"`
	From       string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

func (q transactionQuery) filter(userID int) (models.TransactionFilter, error) {
	f := models.TransactionFilter{
		UserID:     userID,
		Type:       models.CategoryType(q.Type),
		CategoryID: q.CategoryID,
		AccountID:  q.AccountID,
	}
	if q.From != "" {
		from, err := parseDate(q.From)
		if err != nil {
			return f, err
		}
		f.DateFrom = &from
	}
	if q.To != "" {
		to, err := parseDate(q.To)
		if err != nil {
			return f, err
		}
		f.DateTo = &to
	}
	return f, nil
}

// transactionDTO checks that the referenced account and category belong to
// the acting user before anything is booked. existing is the row being
// updated, nil on create.
func transactionDTO(c *gin.Context, l *ledger.Ledger, req transactionRequest, existing *models.Transaction) (models.TransactionDTO, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return models.TransactionDTO{}, err
	}
	var current []int
	if existing != nil {
		current = append(current, existing.AccountID)
	}
	if _, err := ownedAccount(c, l, req.AccountID, current...); err != nil {
		return models.TransactionDTO{}, err
	}
	if _, err := ownedCategory(c, l, req.CategoryID); err != nil {
		return models.TransactionDTO{}, err
	}
	return models.TransactionDTO{
		Date:        date,
		Amount:      req.Amount,
		Currency:    req.Currency,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		UserID:      ownerID(c),
		Description: req.Description,
	}, nil
}

func transactionFromPath(c *gin.Context, l *ledger.Ledger) (*models.Transaction, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}
	tr, err := l.Transactions.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if tr.UserID != ownerID(c) {
		return nil, fmt.Errorf("transaction %d: %w", id, ledger.ErrNotFound)
	}
	return tr, nil
}

func CreateTransactionHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transactionRequest
		if err := bind(c, &req); err != nil {
			respondError(c, err)
			return
		}
		dto, err := transactionDTO(c, l, req, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		tr, err := l.Transactions.Create(c.Request.Context(), dto)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, tr)
	}
}

func GetTransactionHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tr, err := transactionFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tr)
	}
}

func UpdateTransactionHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := transactionFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		var req transactionRequest
		if err := bind(c, &req); err != nil {
			respondError(c, err)
			return
		}
		dto, err := transactionDTO(c, l, req, existing)
		if err != nil {
			respondError(c, err)
			return
		}
		updated, err := l.Transactions.Update(c.Request.Context(), existing, dto)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteTransactionHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := transactionFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := l.Transactions.Delete(c.Request.Context(), existing); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func ListTransactionsHandler(l *ledger.Ledger, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q transactionQuery
		if err := bindQuery(c, &q); err != nil {
			respondError(c, err)
			return
		}
		f, err := q.filter(ownerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		if q.PerPage == 0 {
			q.PerPage = pageSize
		}
		items, more, err := l.Transactions.List(c.Request.Context(), f, q.Page, q.PerPage)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newPage(items, q.Page, more))
	}
}

func TransactionSummaryHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q transactionQuery
		if err := bindQuery(c, &q); err != nil {
			respondError(c, err)
			return
		}
		f, err := q.filter(ownerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		sum, err := l.Transactions.Summary(c.Request.Context(), f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}
