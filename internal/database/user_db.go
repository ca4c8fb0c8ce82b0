package database

import (
	"context"

	"github.com/valeriaulyamaeva/finance-ledger/models"
)

func CreateUser(ctx context.Context, db DBTX, user *models.User) error {
	query := `
		INSERT INTO users (name, email)
		VALUES ($1, $2)
		RETURNING id, created_at`

	if err := db.QueryRow(ctx, query, user.Name, user.Email).Scan(&user.ID, &user.CreatedAt); err != nil {
		return dbError(err, "create user")
	}
	return nil
}
