// Package oracles defines SQL invariants checked repeatedly while the stress
// actors run. Any returned row is a violation.
package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_unique_email_ci",
			SQL: `SELECT lower(email), COUNT(*) FROM users
                  GROUP BY lower(email) HAVING COUNT(*) > 1`,
		},
		{
			Name: "O2_listing_owner_exists",
			SQL: `SELECT p.id FROM properties p
                  LEFT JOIN users u ON u.id = p.user_id
                  WHERE u.id IS NULL`,
		},
		{
			Name: "O3_status_vocabulary",
			SQL:  `SELECT id, status FROM properties WHERE status NOT IN ('active','sold','rented')`,
		},
		{
			Name: "O4_arrays_never_null",
			SQL:  `SELECT id FROM properties WHERE features IS NULL OR images IS NULL`,
		},
		{
			Name: "O5_timestamps_ordered",
			SQL: `SELECT id FROM properties WHERE updated_at < created_at
                  UNION ALL
                  SELECT id FROM users WHERE updated_at < created_at`,
		},
		{
			Name: "O6_verification_fields_paired",
			SQL: `SELECT id FROM users
                  WHERE (verification_token IS NULL) <> (verification_token_expires IS NULL)`,
		},
		{
			Name: "O7_password_hash_present",
			SQL:  `SELECT id FROM users WHERE password_hash IS NULL OR password_hash = ''`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and a sample
// row) or an empty name when all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		if rows.Next() {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}
