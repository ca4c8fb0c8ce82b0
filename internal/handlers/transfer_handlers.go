package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

type transferRequest struct {
	AccountFromID   int              `json:"account_from_id" binding:"required,gt=0"`
	AccountToID     int              `json:"account_to_id" binding:"required,gt=0,nefield=AccountFromID"`
	Amount          decimal.Decimal  `json:"amount" binding:"dgt0"`
	ConvertedAmount *decimal.Decimal `json:"converted_amount" binding:"omitempty,dgt0"`
	Date            string           `json:"date" binding:"required,datetime=2006-01-02"`
	Description     string           `json:"description" binding:"max=255"`
}

type transferQuery struct {
	Page      int `form:"page" binding:"omitempty,gte=1"`
	PerPage   int `form:"per_page" binding:"omitempty,gte=1,lte=100"`
	AccountID int `form:"account_id" binding:"omitempty,gt=0"`
}

// transferDTO resolves both accounts for the acting user and settles the
// converted amount: it is required when the currencies differ and equals
// the amount otherwise. existing is the transfer being updated, nil on create.
func transferDTO(c *gin.Context, l *ledger.Ledger, req transferRequest, existing *models.AccountTransfer) (models.AccountTransferDTO, *models.Account, *models.Account, error) {
	var dto models.AccountTransferDTO
	date, err := parseDate(req.Date)
	if err != nil {
		return dto, nil, nil, err
	}
	var current []int
	if existing != nil {
		current = append(current, existing.AccountFromID, existing.AccountToID)
	}
	from, err := ownedAccount(c, l, req.AccountFromID, current...)
	if err != nil {
		return dto, nil, nil, err
	}
	to, err := ownedAccount(c, l, req.AccountToID, current...)
	if err != nil {
		return dto, nil, nil, err
	}

	converted := req.Amount
	if !from.SameCurrency(to) {
		if req.ConvertedAmount == nil {
			return dto, nil, nil, badRequest("converted_amount is required for accounts in %s and %s", from.CurrencyCode, to.CurrencyCode)
		}
		converted = *req.ConvertedAmount
	}

	dto = models.AccountTransferDTO{
		AccountFromID:   from.ID,
		AccountToID:     to.ID,
		Amount:          req.Amount,
		ConvertedAmount: converted,
		Date:            date,
		Description:     req.Description,
	}
	return dto, from, to, nil
}

func transferFromPath(c *gin.Context, l *ledger.Ledger) (*models.AccountTransfer, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}
	t, err := l.Transfers.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if t.UserID != ownerID(c) {
		return nil, fmt.Errorf("transfer %d: %w", id, ledger.ErrNotFound)
	}
	return t, nil
}

func CreateTransferHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transferRequest
		if err := bind(c, &req); err != nil {
			respondError(c, err)
			return
		}
		dto, from, to, err := transferDTO(c, l, req, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		transfer, err := l.Transfers.Create(c.Request.Context(), from, to, &models.AccountTransfer{
			UserID:          ownerID(c),
			Amount:          dto.Amount,
			ConvertedAmount: dto.ConvertedAmount,
			Date:            dto.Date,
			Description:     dto.Description,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, transfer)
	}
}

func GetTransferHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := transferFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

func UpdateTransferHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := transferFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		var req transferRequest
		if err := bind(c, &req); err != nil {
			respondError(c, err)
			return
		}
		dto, _, _, err := transferDTO(c, l, req, existing)
		if err != nil {
			respondError(c, err)
			return
		}
		updated, err := l.Transfers.Update(c.Request.Context(), existing, dto)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteTransferHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := transferFromPath(c, l)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := l.Transfers.Delete(c.Request.Context(), existing); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func ListTransfersHandler(l *ledger.Ledger, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q transferQuery
		if err := bindQuery(c, &q); err != nil {
			respondError(c, err)
			return
		}
		if q.PerPage == 0 {
			q.PerPage = pageSize
		}
		f := models.TransferFilter{UserID: ownerID(c), AccountID: q.AccountID}
		items, more, err := l.Transfers.List(c.Request.Context(), f, q.Page, q.PerPage)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newPage(items, q.Page, more))
	}
}
