package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

func CreateCategory(ctx context.Context, db DBTX, category *models.Category) error {
	query := `
		INSERT INTO categories (user_id, title, type, color)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := db.QueryRow(ctx, query,
		category.UserID,
		category.Title,
		category.Type,
		category.Color).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return dbError(err, "create category")
	}
	return nil
}

func GetCategoryByID(ctx context.Context, db DBTX, categoryID int) (*models.Category, error) {
	query := `
		SELECT id, user_id, title, type, color, created_at
		FROM categories
		WHERE id = $1`

	category := &models.Category{}
	err := db.QueryRow(ctx, query, categoryID).Scan(
		&category.ID,
		&category.UserID,
		&category.Title,
		&category.Type,
		&category.Color,
		&category.CreatedAt,
	)
	if err != nil {
		return nil, dbError(err, "get category %d", categoryID)
	}
	return category, nil
}

// LockCategory takes an exclusive row lock, held while the category type
// changes.
func LockCategory(ctx context.Context, db DBTX, categoryID int) (*models.Category, error) {
	return lockCategory(ctx, db, categoryID, "UPDATE")
}

// ShareCategory reads the category under a shared lock so its type cannot
// flip before the reading transaction commits.
func ShareCategory(ctx context.Context, db DBTX, categoryID int) (*models.Category, error) {
	return lockCategory(ctx, db, categoryID, "SHARE")
}

func lockCategory(ctx context.Context, db DBTX, categoryID int, strength string) (*models.Category, error) {
	query := `
		SELECT id, user_id, title, type, color, created_at
		FROM categories
		WHERE id = $1
		FOR ` + strength

	category := &models.Category{}
	err := db.QueryRow(ctx, query, categoryID).Scan(
		&category.ID,
		&category.UserID,
		&category.Title,
		&category.Type,
		&category.Color,
		&category.CreatedAt,
	)
	if err != nil {
		return nil, dbError(err, "lock category %d", categoryID)
	}
	return category, nil
}

func UpdateCategory(ctx context.Context, db DBTX, category *models.Category) error {
	query := `
		UPDATE categories
		SET title = $1, type = $2, color = $3
		WHERE id = $4`

	tag, err := db.Exec(ctx, query, category.Title, category.Type, category.Color, category.ID)
	if err != nil {
		return dbError(err, "update category %d", category.ID)
	}
	return expectOne(tag, "update category %d", category.ID)
}

// DeleteCategory removes the category. transactions.category_id does not
// cascade, so a category still in use fails with ledger.ErrCategoryInUse.
func DeleteCategory(ctx context.Context, db DBTX, categoryID int) error {
	tag, err := db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("delete category %d: %w", categoryID, ledger.ErrCategoryInUse)
		}
		return dbError(err, "delete category %d", categoryID)
	}
	return expectOne(tag, "delete category %d", categoryID)
}

func GetCategoriesByUserID(ctx context.Context, db DBTX, userID int) ([]models.Category, error) {
	query := `
		SELECT id, user_id, title, type, color, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY title`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, dbError(err, "list categories of user %d", userID)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Type, &c.Color, &c.CreatedAt); err != nil {
			return nil, dbError(err, "scan category")
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "list categories of user %d", userID)
	}
	return categories, nil
}
