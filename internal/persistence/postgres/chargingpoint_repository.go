package postgres

import (
	"context"
	"database/sql"

	"github.com/example/charging-hub/internal/application"
	"github.com/example/charging-hub/internal/persistence"
)

const pointColumns = "id, nome, endereco, cidade, latitude, longitude, tipo_conector, velocidade, potencia, disponivel, funcionario_id, created_at, updated_at"

func (s *Store) CreateChargingPoint(ctx context.Context, point application.ChargingPoint) (application.ChargingPoint, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pontos_recarga (id, nome, endereco, cidade, latitude, longitude, tipo_conector, velocidade, potencia, disponivel, funcionario_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		point.ID, point.Nome, point.Endereco, point.Cidade, point.Latitude, point.Longitude,
		point.TipoConector, point.Velocidade, point.Potencia, point.Disponivel,
		nullString(point.FuncionarioID), point.CreatedAt, point.UpdatedAt,
	)
	if err != nil {
		return application.ChargingPoint{}, mapError(err)
	}
	return point, nil
}

func (s *Store) GetChargingPoint(ctx context.Context, id string) (application.ChargingPoint, error) {
	var (
		point         application.ChargingPoint
		funcionarioID sql.NullString
	)
	err := s.pool.QueryRow(ctx,
		"SELECT "+pointColumns+" FROM pontos_recarga WHERE id = $1", id,
	).Scan(&point.ID, &point.Nome, &point.Endereco, &point.Cidade, &point.Latitude, &point.Longitude,
		&point.TipoConector, &point.Velocidade, &point.Potencia, &point.Disponivel,
		&funcionarioID, &point.CreatedAt, &point.UpdatedAt)
	if err != nil {
		return application.ChargingPoint{}, mapError(err)
	}
	point.FuncionarioID = funcionarioID.String
	return point, nil
}

func (s *Store) UpdateChargingPoint(ctx context.Context, point application.ChargingPoint) (application.ChargingPoint, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE pontos_recarga
		 SET nome = $2, endereco = $3, cidade = $4, latitude = $5, longitude = $6,
		     tipo_conector = $7, velocidade = $8, potencia = $9, disponivel = $10, updated_at = $11
		 WHERE id = $1`,
		point.ID, point.Nome, point.Endereco, point.Cidade, point.Latitude, point.Longitude,
		point.TipoConector, point.Velocidade, point.Potencia, point.Disponivel, point.UpdatedAt,
	)
	if err != nil {
		return application.ChargingPoint{}, mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return application.ChargingPoint{}, persistence.ErrNotFound
	}
	return point, nil
}

func (s *Store) DeleteChargingPoint(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pontos_recarga WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (s *Store) ListChargingPoints(ctx context.Context) ([]application.ChargingPoint, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+pointColumns+" FROM pontos_recarga ORDER BY created_at DESC, id")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var points []application.ChargingPoint
	for rows.Next() {
		var (
			point         application.ChargingPoint
			funcionarioID sql.NullString
		)
		if err := rows.Scan(&point.ID, &point.Nome, &point.Endereco, &point.Cidade, &point.Latitude, &point.Longitude,
			&point.TipoConector, &point.Velocidade, &point.Potencia, &point.Disponivel,
			&funcionarioID, &point.CreatedAt, &point.UpdatedAt); err != nil {
			return nil, mapError(err)
		}
		point.FuncionarioID = funcionarioID.String
		points = append(points, point)
	}
	return points, mapError(rows.Err())
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
