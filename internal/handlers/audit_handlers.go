package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

type auditView struct {
	models.BalanceAudit
	Drift decimal.Decimal `json:"drift"`
}

// AuditHandler reports stored against recomputed balances for the acting
// user's accounts.
func AuditHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		audits, err := l.Audit(c.Request.Context(), ownerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		views := make([]auditView, 0, len(audits))
		drifted := 0
		for _, a := range audits {
			if !a.Consistent() {
				drifted++
			}
			views = append(views, auditView{BalanceAudit: a, Drift: a.Drift()})
		}
		c.JSON(http.StatusOK, gin.H{"items": views, "drifted": drifted})
	}
}
