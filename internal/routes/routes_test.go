package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/internal/logger"
	"github.com/valeriaulyamaeva/finance-ledger/internal/memstore"
	"github.com/valeriaulyamaeva/finance-ledger/internal/routes"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

type api struct {
	t      *testing.T
	router *gin.Engine
	store  *memstore.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memstore.New()
	r, err := routes.SetupRouter(ledger.New(store), zerolog.Nop(), 2)
	require.NoError(t, err)
	return &api{t: t, router: r, store: store}
}

func (a *api) do(method, path string, user int, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != 0 {
		req.Header.Set("X-User-ID", fmt.Sprint(user))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (a *api) account(user int, currency, balance string) models.Account {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/accounts", user, gin.H{
		"title": currency + " card", "currency": currency, "balance": balance,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Account](a.t, w)
}

func (a *api) category(user int, typ string) models.Category {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/categories", user, gin.H{"title": typ, "type": typ})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Category](a.t, w)
}

func (a *api) requireBalance(id int, want string) {
	a.t.Helper()
	acc, err := a.store.GetAccount(context.Background(), id)
	require.NoError(a.t, err)
	require.Truef(a.t, acc.Balance.Equal(decimal.RequireFromString(want)), "account %d balance = %s, want %s", id, acc.Balance, want)
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestOwnerHeaderRequired(t *testing.T) {
	a := newAPI(t)
	for _, user := range []int{0, -3} {
		w := a.do(http.MethodGet, "/api/accounts", user, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestTransactionFlow(t *testing.T) {
	a := newAPI(t)
	acc := a.account(1, "USD", "2000")
	income := a.category(1, "income")
	expense := a.category(1, "expense")

	w := a.do(http.MethodPost, "/api/transactions", 1, gin.H{
		"date": "2024-01-15", "amount": "1000", "currency": "USD",
		"category_id": income.ID, "account_id": acc.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tr := decode[models.Transaction](t, w)
	a.requireBalance(acc.ID, "3000")

	w = a.do(http.MethodPost, "/api/transactions", 1, gin.H{
		"date": "2024-01-16", "amount": 2000, "currency": "USD",
		"category_id": expense.ID, "account_id": acc.ID, "description": "rent",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a.requireBalance(acc.ID, "1000")

	w = a.do(http.MethodPut, fmt.Sprintf("/api/transactions/%d", tr.ID), 1, gin.H{
		"date": "2024-01-15", "amount": "1500", "currency": "USD",
		"category_id": income.ID, "account_id": acc.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	a.requireBalance(acc.ID, "1500")

	w = a.do(http.MethodGet, "/api/transactions/summary?from=2024-01-01&to=2024-01-31", 1, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sum := decode[models.Summary](t, w)
	assert.True(t, sum.Income.Equal(decimal.NewFromInt(1500)))
	assert.True(t, sum.Expense.Equal(decimal.NewFromInt(2000)))

	w = a.do(http.MethodDelete, fmt.Sprintf("/api/transactions/%d", tr.ID), 1, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	a.requireBalance(acc.ID, "0")

	w = a.do(http.MethodGet, fmt.Sprintf("/api/transactions/%d", tr.ID), 1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactionValidation(t *testing.T) {
	a := newAPI(t)
	acc := a.account(1, "USD", "0")
	income := a.category(1, "income")

	tests := []struct {
		name string
		body gin.H
		want string
	}{
		{"zero amount", gin.H{"date": "2024-01-15", "amount": "0", "currency": "USD", "category_id": income.ID, "account_id": acc.ID}, "amount"},
		{"negative amount", gin.H{"date": "2024-01-15", "amount": "-5", "currency": "USD", "category_id": income.ID, "account_id": acc.ID}, "amount"},
		{"bad currency", gin.H{"date": "2024-01-15", "amount": "5", "currency": "XXQ", "category_id": income.ID, "account_id": acc.ID}, "currency"},
		{"bad date", gin.H{"date": "15.01.2024", "amount": "5", "currency": "USD", "category_id": income.ID, "account_id": acc.ID}, "date"},
		{"missing category", gin.H{"date": "2024-01-15", "amount": "5", "currency": "USD", "account_id": acc.ID}, "category_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodPost, "/api/transactions", 1, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
	a.requireBalance(acc.ID, "0")
}

func TestTransactionForeignOwnerIsNotFound(t *testing.T) {
	a := newAPI(t)
	mine := a.account(1, "USD", "100")
	theirs := a.account(2, "USD", "100")
	myCategory := a.category(1, "expense")
	theirCategory := a.category(2, "expense")

	w := a.do(http.MethodPost, "/api/transactions", 1, gin.H{
		"date": "2024-01-15", "amount": "5", "currency": "USD",
		"category_id": myCategory.ID, "account_id": theirs.ID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/api/transactions", 1, gin.H{
		"date": "2024-01-15", "amount": "5", "currency": "USD",
		"category_id": theirCategory.ID, "account_id": mine.ID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, fmt.Sprintf("/api/accounts/%d", theirs.ID), 1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	a.requireBalance(mine.ID, "100")
	a.requireBalance(theirs.ID, "100")
}

func TestTransactionPagination(t *testing.T) {
	a := newAPI(t)
	acc := a.account(1, "EUR", "0")
	income := a.category(1, "income")
	for i := 1; i <= 3; i++ {
		w := a.do(http.MethodPost, "/api/transactions", 1, gin.H{
			"date": fmt.Sprintf("2024-03-0%d", i), "amount": fmt.Sprint(i), "currency": "EUR",
			"category_id": income.ID, "account_id": acc.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	type listResponse struct {
		Items    []models.Transaction `json:"items"`
		NextPage *int                 `json:"next_page"`
	}

	w := a.do(http.MethodGet, "/api/transactions", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[listResponse](t, w)
	require.Len(t, first.Items, 2)
	require.NotNil(t, first.NextPage)
	assert.Equal(t, 2, *first.NextPage)
	assert.Equal(t, "2024-03-03", first.Items[0].Date.Format("2006-01-02"))

	w = a.do(http.MethodGet, "/api/transactions?page=2", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[listResponse](t, w)
	require.Len(t, second.Items, 1)
	assert.Nil(t, second.NextPage)

	w = a.do(http.MethodGet, "/api/transactions?type=saving", 1, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransferFlow(t *testing.T) {
	a := newAPI(t)
	usd := a.account(1, "USD", "1234")
	usd2 := a.account(1, "USD", "0")
	eur := a.account(1, "EUR", "0")

	w := a.do(http.MethodPost, "/api/transfers", 1, gin.H{
		"account_from_id": usd.ID, "account_to_id": usd2.ID, "amount": "1000",
		"converted_amount": "5", "date": "2024-02-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	same := decode[models.AccountTransfer](t, w)
	assert.True(t, same.ConvertedAmount.Equal(same.Amount), "same-currency transfers convert 1:1")
	a.requireBalance(usd.ID, "234")
	a.requireBalance(usd2.ID, "1000")

	w = a.do(http.MethodPost, "/api/transfers", 1, gin.H{
		"account_from_id": usd2.ID, "account_to_id": eur.ID, "amount": "100", "date": "2024-02-02",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "converted_amount")

	w = a.do(http.MethodPost, "/api/transfers", 1, gin.H{
		"account_from_id": usd2.ID, "account_to_id": eur.ID, "amount": "100",
		"converted_amount": "91.5", "date": "2024-02-02",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cross := decode[models.AccountTransfer](t, w)
	a.requireBalance(usd2.ID, "900")
	a.requireBalance(eur.ID, "91.5")

	w = a.do(http.MethodPut, fmt.Sprintf("/api/transfers/%d", cross.ID), 1, gin.H{
		"account_from_id": usd.ID, "account_to_id": eur.ID, "amount": "200",
		"converted_amount": "183", "date": "2024-02-02",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	a.requireBalance(usd.ID, "34")
	a.requireBalance(usd2.ID, "1000")
	a.requireBalance(eur.ID, "183")

	w = a.do(http.MethodDelete, fmt.Sprintf("/api/transfers/%d", same.ID), 1, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	a.requireBalance(usd.ID, "1034")
	a.requireBalance(usd2.ID, "0")

	w = a.do(http.MethodPost, "/api/transfers", 1, gin.H{
		"account_from_id": usd.ID, "account_to_id": usd.ID, "amount": "1", "date": "2024-02-02",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, fmt.Sprintf("/api/transfers?account_id=%d", eur.ID), 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[{`)

	w = a.do(http.MethodGet, "/api/audit", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"drifted":0`)
}

func TestAccountLifecycle(t *testing.T) {
	a := newAPI(t)
	acc := a.account(1, "USD", "50")
	other := a.account(1, "USD", "0")

	w := a.do(http.MethodPut, fmt.Sprintf("/api/accounts/%d", acc.ID), 1, gin.H{
		"title": "Savings", "currency": "USD", "color": "#00ff00", "balance": "999999",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Account](t, w)
	assert.Equal(t, "Savings", updated.Title)
	a.requireBalance(acc.ID, "50")

	w = a.do(http.MethodPost, fmt.Sprintf("/api/accounts/%d/toggle", acc.ID), 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.Account](t, w).Active)

	w = a.do(http.MethodPost, "/api/transfers", 1, gin.H{
		"account_from_id": acc.ID, "account_to_id": other.ID, "amount": "20", "date": "2024-02-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodDelete, fmt.Sprintf("/api/accounts/%d?mode=everything", acc.ID), 1, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodDelete, fmt.Sprintf("/api/accounts/%d?mode=delete_all", acc.ID), 1, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	a.requireBalance(other.ID, "0")

	w = a.do(http.MethodGet, fmt.Sprintf("/api/accounts/%d", acc.ID), 1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodDelete, fmt.Sprintf("/api/accounts/%d?mode=delete_account", other.ID), 1, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/api/accounts", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"next_page":null}`, w.Body.String())
}

func TestCurrenciesAndCategories(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/api/currencies", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"EUR"`)

	w = a.do(http.MethodPost, "/api/categories", 1, gin.H{"title": "Gifts", "type": "transfer"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	a.category(1, "income")
	a.category(2, "expense")
	w = a.do(http.MethodGet, "/api/categories", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"income"`)
	assert.NotContains(t, w.Body.String(), `"type":"expense"`)
}

func TestUnexpectedErrorIsLoggedAndHidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	store := memstore.New()
	r, err := routes.SetupRouter(ledger.New(store), logger.NewWithWriter(&logs), 2)
	require.NoError(t, err)
	a := &api{t: t, router: r, store: store}

	store.SetFault(func(op string, id int) error {
		if op == "create_account" {
			return errors.New("disk on fire")
		}
		return nil
	})
	w := a.do(http.MethodPost, "/api/accounts", 1, gin.H{"title": "cash", "currency": "USD", "balance": "1"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")

	out := logs.String()
	assert.Contains(t, out, "request failed")
	assert.Contains(t, out, "disk on fire")
	assert.Contains(t, out, w.Header().Get("X-Request-ID"))
}

func TestSoftDeletedAccountHistoryStaysEditable(t *testing.T) {
	a := newAPI(t)
	gone := a.account(1, "USD", "100")
	live := a.account(1, "USD", "0")
	expense := a.category(1, "expense")

	w := a.do(http.MethodPost, "/api/transactions", 1, gin.H{
		"date": "2024-03-01", "amount": "30", "currency": "USD",
		"category_id": expense.ID, "account_id": gone.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tr := decode[models.Transaction](t, w)

	w = a.do(http.MethodPost, "/api/transfers", 1, gin.H{
		"account_from_id": gone.ID, "account_to_id": live.ID, "amount": "20", "date": "2024-03-02",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	transfer := decode[models.AccountTransfer](t, w)

	w = a.do(http.MethodDelete, fmt.Sprintf("/api/accounts/%d?mode=delete_account", gone.ID), 1, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodPut, fmt.Sprintf("/api/transactions/%d", tr.ID), 1, gin.H{
		"date": "2024-03-01", "amount": "35", "currency": "USD",
		"category_id": expense.ID, "account_id": gone.ID, "description": "fixed typo",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "fixed typo", decode[models.Transaction](t, w).Description)

	w = a.do(http.MethodPut, fmt.Sprintf("/api/transfers/%d", transfer.ID), 1, gin.H{
		"account_from_id": gone.ID, "account_to_id": live.ID, "amount": "25",
		"date": "2024-03-02", "description": "corrected",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	a.requireBalance(gone.ID, "40")
	a.requireBalance(live.ID, "25")

	w = a.do(http.MethodPut, fmt.Sprintf("/api/transfers/%d", transfer.ID), 1, gin.H{
		"account_from_id": live.ID, "account_to_id": gone.ID, "amount": "25", "date": "2024-03-02",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// a soft-deleted account is never a new target
	fresh := a.account(1, "USD", "0")
	w = a.do(http.MethodPost, "/api/transactions", 1, gin.H{
		"date": "2024-03-03", "amount": "1", "currency": "USD",
		"category_id": expense.ID, "account_id": fresh.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	other := decode[models.Transaction](t, w)
	w = a.do(http.MethodPut, fmt.Sprintf("/api/transactions/%d", other.ID), 1, gin.H{
		"date": "2024-03-03", "amount": "1", "currency": "USD",
		"category_id": expense.ID, "account_id": gone.ID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/api/transfers", 1, gin.H{
		"account_from_id": live.ID, "account_to_id": gone.ID, "amount": "1", "date": "2024-03-04",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/audit", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"drifted":0`)
}

func TestCategoryUpdateAndDelete(t *testing.T) {
	a := newAPI(t)
	acc := a.account(1, "USD", "100")
	cat := a.category(1, "expense")

	for _, amount := range []string{"10", "15"} {
		w := a.do(http.MethodPost, "/api/transactions", 1, gin.H{
			"date": "2024-04-01", "amount": amount, "currency": "USD",
			"category_id": cat.ID, "account_id": acc.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	a.requireBalance(acc.ID, "75")

	w := a.do(http.MethodPut, fmt.Sprintf("/api/categories/%d", cat.ID), 2, gin.H{"title": "x", "type": "income"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPut, fmt.Sprintf("/api/categories/%d", cat.ID), 1, gin.H{"title": "x", "type": "transfer"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPut, fmt.Sprintf("/api/categories/%d", cat.ID), 1, gin.H{
		"title": "Cashback", "type": "income", "color": "#00aa00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Category](t, w)
	assert.Equal(t, models.CategoryIncome, updated.Type)
	assert.Equal(t, "Cashback", updated.Title)
	a.requireBalance(acc.ID, "125")

	w = a.do(http.MethodGet, "/api/audit", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"drifted":0`)

	w = a.do(http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), 1, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	unused := a.category(1, "income")
	w = a.do(http.MethodDelete, fmt.Sprintf("/api/categories/%d", unused.ID), 2, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(http.MethodDelete, fmt.Sprintf("/api/categories/%d", unused.ID), 1, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodGet, "/api/categories", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Items []models.Category `json:"items"`
	}](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, cat.ID, page.Items[0].ID)
}
