// Package memstore is an in-memory ledger.Store. Atomic scopes are
// serialized by a mutex and rolled back by restoring a snapshot taken when
// the scope began.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

// FaultFunc is consulted before every mutation made inside an atomic scope.
// A non-nil result aborts the mutation with that error.
type FaultFunc func(op string, id int) error

type data struct {
	seq          int
	accounts     map[int]models.Account
	categories   map[int]models.Category
	currencies   map[int]models.Currency
	transactions map[int]models.Transaction
	transfers    map[int]models.AccountTransfer
}

func (d *data) clone() *data {
	c := &data{
		seq:          d.seq,
		accounts:     make(map[int]models.Account, len(d.accounts)),
		categories:   make(map[int]models.Category, len(d.categories)),
		currencies:   make(map[int]models.Currency, len(d.currencies)),
		transactions: make(map[int]models.Transaction, len(d.transactions)),
		transfers:    make(map[int]models.AccountTransfer, len(d.transfers)),
	}
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.currencies {
		c.currencies[k] = v
	}
	for k, v := range d.transactions {
		c.transactions[k] = v
	}
	for k, v := range d.transfers {
		c.transfers[k] = v
	}
	return c
}

func (d *data) nextID() int {
	d.seq++
	return d.seq
}

type Store struct {
	mu    sync.RWMutex
	d     *data
	fault FaultFunc
}

var _ ledger.Store = (*Store)(nil)

// New returns a store holding models.DefaultCurrencies.
func New() *Store {
	s := &Store{d: &data{
		accounts:     map[int]models.Account{},
		categories:   map[int]models.Category{},
		currencies:   map[int]models.Currency{},
		transactions: map[int]models.Transaction{},
		transfers:    map[int]models.AccountTransfer{},
	}}
	for _, c := range models.DefaultCurrencies {
		c.ID = s.d.nextID()
		s.d.currencies[c.ID] = c
	}
	return s
}

// SetFault installs f; nil removes it.
func (s *Store) SetFault(f FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

func (s *Store) InTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	defer func() {
		if r := recover(); r != nil {
			s.d = snapshot
			panic(r)
		}
	}()
	tx := &memTx{d: s.d, fault: s.fault}
	if err := fn(tx); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

func notFound(kind string, id any) error {
	return fmt.Errorf("%s %v: %w", kind, id, ledger.ErrNotFound)
}

func (s *Store) FindCurrencyByCode(_ context.Context, code string) (*models.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.d.currencies {
		if strings.EqualFold(c.Code, code) {
			return &c, nil
		}
	}
	return nil, notFound("currency", code)
}

func (s *Store) ListCurrencies(_ context.Context) ([]models.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Currency, 0, len(s.d.currencies))
	for _, c := range s.d.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, id int) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAccount(s.d, id)
}

func (s *Store) ListAccounts(_ context.Context, userID int) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Account
	for _, a := range s.d.accounts {
		if a.UserID == userID && !a.Deleted() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id int) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCategory(s.d, id)
}

func (s *Store) ListCategories(_ context.Context, userID int) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Category
	for _, c := range s.d.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.d.nextID()
	c.CreatedAt = time.Now()
	s.d.categories[c.ID] = *c
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id int) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getTransaction(s.d, id)
}

func (s *Store) matchTransaction(t models.Transaction, f models.TransactionFilter) bool {
	if f.UserID != 0 && t.UserID != f.UserID {
		return false
	}
	if f.AccountID != 0 && t.AccountID != f.AccountID {
		return false
	}
	if f.CategoryID != 0 && t.CategoryID != f.CategoryID {
		return false
	}
	if f.Type != "" && s.d.categories[t.CategoryID].Type != f.Type {
		return false
	}
	if f.DateFrom != nil && t.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && t.Date.After(*f.DateTo) {
		return false
	}
	return true
}

func (s *Store) ListTransactions(_ context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Transaction
	for _, t := range s.d.transactions {
		if s.matchTransaction(t, f) {
			t.CategoryType = s.d.categories[t.CategoryID].Type
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, f.Offset, f.Limit), nil
}

func (s *Store) SummarizeTransactions(_ context.Context, f models.TransactionFilter) (models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := models.Summary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range s.d.transactions {
		if !s.matchTransaction(t, f) {
			continue
		}
		if s.d.categories[t.CategoryID].Type == models.CategoryIncome {
			sum.Income = sum.Income.Add(t.Amount)
		} else {
			sum.Expense = sum.Expense.Add(t.Amount)
		}
	}
	return sum, nil
}

func (s *Store) GetTransfer(_ context.Context, id int) (*models.AccountTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getTransfer(s.d, id)
}

func (s *Store) ListTransfers(_ context.Context, f models.TransferFilter) ([]models.AccountTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AccountTransfer
	for _, t := range s.d.transfers {
		if f.UserID != 0 && t.UserID != f.UserID {
			continue
		}
		if f.AccountID != 0 && t.AccountFromID != f.AccountID && t.AccountToID != f.AccountID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, f.Offset, f.Limit), nil
}

func (s *Store) AuditBalances(_ context.Context, userID int) ([]models.BalanceAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expected := map[int]decimal.Decimal{}
	for id, a := range s.d.accounts {
		expected[id] = a.OpeningBalance
	}
	for _, t := range s.d.transactions {
		expected[t.AccountID] = expected[t.AccountID].Add(t.Effect(s.d.categories[t.CategoryID].Type))
	}
	for _, t := range s.d.transfers {
		expected[t.AccountFromID] = expected[t.AccountFromID].Sub(t.Amount)
		expected[t.AccountToID] = expected[t.AccountToID].Add(t.ConvertedAmount)
	}

	var out []models.BalanceAudit
	for id, a := range s.d.accounts {
		if userID != 0 && a.UserID != userID {
			continue
		}
		out = append(out, models.BalanceAudit{
			AccountID:    id,
			Title:        a.Title,
			CurrencyCode: a.CurrencyCode,
			Stored:       a.Balance,
			Expected:     expected[id],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func getAccount(d *data, id int) (*models.Account, error) {
	a, ok := d.accounts[id]
	if !ok {
		return nil, notFound("account", id)
	}
	return &a, nil
}

func getCategory(d *data, id int) (*models.Category, error) {
	c, ok := d.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	return &c, nil
}

func getTransaction(d *data, id int) (*models.Transaction, error) {
	t, ok := d.transactions[id]
	if !ok {
		return nil, notFound("transaction", id)
	}
	t.CategoryType = d.categories[t.CategoryID].Type
	return &t, nil
}

func getTransfer(d *data, id int) (*models.AccountTransfer, error) {
	t, ok := d.transfers[id]
	if !ok {
		return nil, notFound("transfer", id)
	}
	return &t, nil
}
