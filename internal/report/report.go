// Package report renders account balances as markdown for the terminal.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

// FormatAmount formats amount in the currency's display form, falling back
// to a plain number when the code is unknown to go-money.
func FormatAmount(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	factor := decimal.New(1, int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), cur.Code).Display()
}

// Balances writes a markdown table of the user's live accounts, their audit
// state and per-currency totals.
func Balances(w io.Writer, accounts []models.Account, audits []models.BalanceAudit) {
	byID := make(map[int]models.BalanceAudit, len(audits))
	for _, a := range audits {
		byID[a.AccountID] = a
	}

	fmt.Fprintln(w, "# Balances")
	fmt.Fprintln(w)
	if len(accounts) == 0 {
		fmt.Fprintln(w, "_No accounts._")
		return
	}

	fmt.Fprintln(w, "| Account | Currency | Balance | Status |")
	fmt.Fprintln(w, "|:---|:---|---:|:---|")
	totals := map[string]decimal.Decimal{}
	for _, a := range accounts {
		status := "ok"
		if audit, ok := byID[a.ID]; ok && !audit.Consistent() {
			status = "drift " + FormatAmount(audit.Drift(), a.CurrencyCode)
		}
		if !a.Active {
			status += ", inactive"
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			escape(a.Title), a.CurrencyCode, FormatAmount(a.Balance, a.CurrencyCode), status)
		totals[a.CurrencyCode] = totals[a.CurrencyCode].Add(a.Balance)
	}

	codes := make([]string, 0, len(totals))
	for code := range totals {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "## Totals")
	fmt.Fprintln(w)
	for _, code := range codes {
		fmt.Fprintf(w, "- **%s**: %s\n", code, FormatAmount(totals[code], code))
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Build collects the balance report for userID.
func Build(ctx context.Context, l *ledger.Ledger, userID int) (string, error) {
	accounts, err := l.Accounts.List(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list accounts: %w", err)
	}
	audits, err := l.Audit(ctx, userID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	Balances(&b, accounts, audits)
	return b.String(), nil
}

// Render formats markdown for a dark terminal.
func Render(md string) (string, error) {
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
