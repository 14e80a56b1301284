package store

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	models "storefront/model"
)

var (
	// ErrNotFound is returned when a product does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateFavorite is returned when (user, product) is already a favorite.
	ErrDuplicateFavorite = errors.New("product already in favorites")
)

//go:embed migrations.sql
var migrationSQL string

// Postgres error codes mapped to sentinel errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// PostgresStore is the remote data store backed by Postgres.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return &PostgresStore{DB: db}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// Migrate creates the products and favorites tables if they are missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, migrationSQL); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}

// ListFavorites returns the user's favorites joined with product details,
// oldest first.
func (s *PostgresStore) ListFavorites(ctx context.Context, userID string) ([]models.FavoriteEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT f.id, f.user_id, f.product_id, f.created_at, `+productColumns("p")+`
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1
		ORDER BY f.created_at, f.id
	`, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "list favorites for %s", userID)
	}
	defer rows.Close()

	out := []models.FavoriteEntry{}
	for rows.Next() {
		var (
			f models.FavoriteEntry
			r ProductRow
		)
		dest := append([]any{&f.ID, &f.UserID, &f.ProductID, &f.CreatedAt}, r.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "scan favorite")
		}
		p := r.Product()
		f.Product = &p
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate favorites")
	}
	return out, nil
}

func (s *PostgresStore) InsertFavorite(ctx context.Context, userID, productID string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO favorites (user_id, product_id) VALUES ($1, $2)`,
		userID, productID,
	)
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrDuplicateFavorite
		case pqForeignKeyViolation:
			return errors.Wrapf(ErrNotFound, "product %s", productID)
		}
	}
	return errors.Wrap(err, "insert favorite")
}

// DeleteFavorite removes the (user, product) favorite. Deleting a favorite
// that does not exist is not an error.
func (s *PostgresStore) DeleteFavorite(ctx context.Context, userID, productID string) error {
	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id=$1 AND product_id=$2`,
		userID, productID,
	); err != nil {
		return errors.Wrap(err, "delete favorite")
	}
	return nil
}
