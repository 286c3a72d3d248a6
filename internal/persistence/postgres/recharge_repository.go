package postgres

import (
	"context"
	"time"

	"github.com/example/charging-hub/internal/application"
	"github.com/example/charging-hub/internal/persistence"
)

const rechargeColumns = "id, user_id, local, endereco, data_hora, duracao, energia, custo, created_at"

func (s *Store) CreateRecharge(ctx context.Context, recharge application.Recharge) (application.Recharge, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO recargas (id, user_id, local, endereco, data_hora, duracao, energia, custo, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		recharge.ID, recharge.UserID, recharge.Local, recharge.Endereco, recharge.DataHora,
		recharge.Duracao, recharge.Energia, recharge.Custo, recharge.CreatedAt,
	)
	if err != nil {
		return application.Recharge{}, mapError(err)
	}
	return recharge, nil
}

func (s *Store) GetRecharge(ctx context.Context, id, userID string) (application.Recharge, error) {
	var recharge application.Recharge
	err := s.pool.QueryRow(ctx,
		"SELECT "+rechargeColumns+" FROM recargas WHERE id = $1 AND user_id = $2", id, userID,
	).Scan(&recharge.ID, &recharge.UserID, &recharge.Local, &recharge.Endereco, &recharge.DataHora,
		&recharge.Duracao, &recharge.Energia, &recharge.Custo, &recharge.CreatedAt)
	if err != nil {
		return application.Recharge{}, mapError(err)
	}
	return recharge, nil
}

func (s *Store) ListRecharges(ctx context.Context, userID string, limit, offset int, startDate *time.Time) ([]application.Recharge, error) {
	query := "SELECT " + rechargeColumns + " FROM recargas WHERE user_id = $1"
	args := []any{userID}
	if startDate != nil {
		query += " AND data_hora >= $2"
		args = append(args, *startDate)
	}
	query += " ORDER BY created_at DESC, id"
	args = append(args, limit, offset)
	if startDate != nil {
		query += " LIMIT $3 OFFSET $4"
	} else {
		query += " LIMIT $2 OFFSET $3"
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var recharges []application.Recharge
	for rows.Next() {
		var recharge application.Recharge
		if err := rows.Scan(&recharge.ID, &recharge.UserID, &recharge.Local, &recharge.Endereco, &recharge.DataHora,
			&recharge.Duracao, &recharge.Energia, &recharge.Custo, &recharge.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		recharges = append(recharges, recharge)
	}
	return recharges, mapError(rows.Err())
}

func (s *Store) CountRecharges(ctx context.Context, userID string, startDate *time.Time) (int, error) {
	query := "SELECT count(*) FROM recargas WHERE user_id = $1"
	args := []any{userID}
	if startDate != nil {
		query += " AND data_hora >= $2"
		args = append(args, *startDate)
	}

	var count int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

func (s *Store) DeleteRecharge(ctx context.Context, id, userID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM recargas WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
