package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
)

// CatalogRepository loads the initial auction set from the auction_catalog
// table. It only seeds auctions at boot; bids are never written back.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) LoadCatalog(ctx context.Context) ([]domain.Seed, error) {
	query := `
        SELECT id, title, starting_price, min_increment, end_time
        FROM auction_catalog WHERE end_time > ?
    `

	rows, err := r.db.QueryContext(ctx, query, time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seeds []domain.Seed
	for rows.Next() {
		var seed domain.Seed
		var endTime time.Time

		if err := rows.Scan(&seed.ID, &seed.Title, &seed.StartingPrice,
			&seed.MinIncrement, &endTime); err != nil {
			return nil, err
		}

		seed.Duration = time.Until(endTime)
		seeds = append(seeds, seed)
	}

	return seeds, rows.Err()
}
