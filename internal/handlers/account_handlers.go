package handlers

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

type accountRequest struct {
	Title    string          `json:"title" binding:"required,max=100"`
	Currency string          `json:"currency" binding:"required,iso4217"`
	Color    string          `json:"color" binding:"omitempty,hexcolor"`
	Balance  decimal.Decimal `json:"balance"`
}

func (r accountRequest) dto(userID int) models.AccountDTO {
	return models.AccountDTO{
		UserID:   userID,
		Title:    r.Title,
		Currency: r.Currency,
		Color:    r.Color,
		Balance:  r.Balance,
	}
}

type deleteAccountQuery struct {
	Mode string `form:"mode" binding:"required,oneof=delete_all delete_account"`
}

// ownedAccount loads an account belonging to the acting user. Soft-deleted
// accounts are only accepted when listed in current, the accounts the
// edited row already points at; they can never become a new target.
func ownedAccount(c *gin.Context, l *ledger.Ledger, id int, current ...int) (*models.Account, error) {
	account, err := l.Accounts.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if account.UserID != ownerID(c) {
		return nil, fmt.Errorf("account %d: %w", id, ledger.ErrNotFound)
	}
	if account.Deleted() && !slices.Contains(current, id) {
		return nil, fmt.Errorf("account %d: %w", id, ledger.ErrNotFound)
	}
	return account, nil
}

func accountFromPath(c *gin.Context, l *ledger.Ledger) (*models.Account, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}
	return ownedAccount(c, l, id)
}

func CreateAccountHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req accountRequest
		if err := bind(c, &req); err != nil {
			respondError(c, err)
			return
		}
		account, err := l.Accounts.Create(c.Request.Context(), req.dto(ownerID(c)))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, account)
	}
}

func ListAccountsHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := l.Accounts.List(c.Request.Context(), ownerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newPage(accounts, 1, false))
	}
}

func GetAccountHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := accountFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// UpdateAccountHandler changes title, color and currency. A balance in the
// body is ignored.
func UpdateAccountHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := accountFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		var req accountRequest
		if err := bind(c, &req); err != nil {
			respondError(c, err)
			return
		}
		updated, err := l.Accounts.Update(c.Request.Context(), account, req.dto(account.UserID))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func ToggleAccountHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := accountFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		updated, err := l.Accounts.Toggle(c.Request.Context(), account)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteAccountHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := accountFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		var q deleteAccountQuery
		if err := bindQuery(c, &q); err != nil {
			respondError(c, err)
			return
		}
		if err := l.Accounts.Delete(c.Request.Context(), account, ledger.DeleteMode(q.Mode)); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
