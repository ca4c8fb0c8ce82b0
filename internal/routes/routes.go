package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/valeriaulyamaeva/finance-ledger/internal/handlers"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
)

func SetupRouter(l *ledger.Ledger, log zerolog.Logger, pageSize int) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(RequestLogger(log), Recovery(log), CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", Owner())

	api.GET("/accounts", handlers.ListAccountsHandler(l))
	api.POST("/accounts", handlers.CreateAccountHandler(l))
	api.GET("/accounts/:id", handlers.GetAccountHandler(l))
	api.PUT("/accounts/:id", handlers.UpdateAccountHandler(l))
	api.DELETE("/accounts/:id", handlers.DeleteAccountHandler(l))
	api.POST("/accounts/:id/toggle", handlers.ToggleAccountHandler(l))

	api.GET("/categories", handlers.ListCategoriesHandler(l))
	api.POST("/categories", handlers.CreateCategoryHandler(l))
	api.PUT("/categories/:id", handlers.UpdateCategoryHandler(l))
	api.DELETE("/categories/:id", handlers.DeleteCategoryHandler(l))
	api.GET("/currencies", handlers.ListCurrenciesHandler(l))

	api.GET("/transactions", handlers.ListTransactionsHandler(l, pageSize))
	api.POST("/transactions", handlers.CreateTransactionHandler(l))
	api.GET("/transactions/summary", handlers.TransactionSummaryHandler(l))
	api.GET("/transactions/:id", handlers.GetTransactionHandler(l))
	api.PUT("/transactions/:id", handlers.UpdateTransactionHandler(l))
	api.DELETE("/transactions/:id", handlers.DeleteTransactionHandler(l))

	api.GET("/transfers", handlers.ListTransfersHandler(l, pageSize))
	api.POST("/transfers", handlers.CreateTransferHandler(l))
	api.GET("/transfers/:id", handlers.GetTransferHandler(l))
	api.PUT("/transfers/:id", handlers.UpdateTransferHandler(l))
	api.DELETE("/transfers/:id", handlers.DeleteTransferHandler(l))

	api.GET("/audit", handlers.AuditHandler(l))

	return r, nil
}
