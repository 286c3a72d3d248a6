package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/charging-hub/internal/application"
	"github.com/example/charging-hub/internal/persistence"
)

const requestColumns = "id, usuario_id, tipo_instalacao, endereco, cidade, estado, cep, distancia_quadro, tipo_residencia, tipo_carregador, preco_total, custo_total, status, responsavel_id, latitude, longitude, observacoes, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (application.InstallationRequest, error) {
	var (
		request       application.InstallationRequest
		status        string
		responsavelID sql.NullString
	)
	err := row.Scan(&request.ID, &request.UsuarioID, &request.TipoInstalacao, &request.Endereco,
		&request.Cidade, &request.Estado, &request.CEP, &request.DistanciaQuadro,
		&request.TipoResidencia, &request.TipoCarregador, &request.PrecoTotal, &request.CustoTotal,
		&status, &responsavelID, &request.Latitude, &request.Longitude, &request.Observacoes,
		&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return application.InstallationRequest{}, mapError(err)
	}
	request.Status = application.Status(status)
	request.ResponsavelID = responsavelID.String
	return request, nil
}

func (s *Store) CreateRequest(ctx context.Context, request application.InstallationRequest) (application.InstallationRequest, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO solicitacoes_instalacao
		   (id, usuario_id, tipo_instalacao, endereco, cidade, estado, cep, distancia_quadro,
		    tipo_residencia, tipo_carregador, preco_total, custo_total, status, latitude, longitude,
		    observacoes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		request.ID, request.UsuarioID, request.TipoInstalacao, request.Endereco, request.Cidade,
		request.Estado, request.CEP, request.DistanciaQuadro, request.TipoResidencia,
		request.TipoCarregador, request.PrecoTotal, request.CustoTotal, string(request.Status),
		request.Latitude, request.Longitude, request.Observacoes, request.CreatedAt, request.UpdatedAt,
	)
	if err != nil {
		return application.InstallationRequest{}, mapError(err)
	}
	return request, nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (application.InstallationRequest, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+requestColumns+" FROM solicitacoes_instalacao WHERE id = $1", id)
	return scanRequest(row)
}

func (s *Store) ListRequests(ctx context.Context) ([]application.InstallationRequest, error) {
	return s.listRequests(ctx,
		"SELECT "+requestColumns+" FROM solicitacoes_instalacao ORDER BY created_at DESC, id")
}

// ListRequestsForLead returns the unassigned pending backlog plus requests
// owned by the given employee.
func (s *Store) ListRequestsForLead(ctx context.Context, employeeID string) ([]application.InstallationRequest, error) {
	return s.listRequests(ctx,
		`SELECT `+requestColumns+` FROM solicitacoes_instalacao
		 WHERE (status = 'pendente' AND responsavel_id IS NULL) OR responsavel_id = $1
		 ORDER BY created_at DESC, id`,
		employeeID)
}

func (s *Store) listRequests(ctx context.Context, query string, args ...any) ([]application.InstallationRequest, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var requests []application.InstallationRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, mapError(rows.Err())
}

func (s *Store) ListProfessionals(ctx context.Context, requestID string) ([]application.InstallationProfessional, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, solicitacao_id, funcionario_id, cargo, created_at
		 FROM profissionais_instalacao WHERE solicitacao_id = $1 ORDER BY created_at, id`,
		requestID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var members []application.InstallationProfessional
	for rows.Next() {
		var (
			member application.InstallationProfessional
			cargo  string
		)
		if err := rows.Scan(&member.ID, &member.SolicitacaoID, &member.FuncionarioID, &cargo, &member.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		member.Cargo = application.Role(cargo)
		members = append(members, member)
	}
	return members, mapError(rows.Err())
}

// ReplaceRoster swaps the full crew of a request and moves it to em_andamento
// under the given lead. The request row is locked for the duration of the
// transaction.
func (s *Store) ReplaceRoster(ctx context.Context, requestID string, roster []application.InstallationProfessional, leadID string) ([]application.InstallationProfessional, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	defer tx.Rollback(ctx)

	if err := lockRequest(ctx, tx, requestID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM profissionais_instalacao WHERE solicitacao_id = $1`, requestID); err != nil {
		return nil, mapError(err)
	}
	for _, member := range roster {
		if _, err := tx.Exec(ctx,
			`INSERT INTO profissionais_instalacao (id, solicitacao_id, funcionario_id, cargo, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			member.ID, member.SolicitacaoID, member.FuncionarioID, string(member.Cargo), member.CreatedAt,
		); err != nil {
			return nil, mapError(err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE solicitacoes_instalacao SET status = 'em_andamento', responsavel_id = $2, updated_at = $3 WHERE id = $1`,
		requestID, leadID, time.Now().UTC(),
	); err != nil {
		return nil, mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapError(err)
	}
	return roster, nil
}

// CompleteRequest transitions an in-progress request to concluida and
// publishes its charging point in one transaction.
func (s *Store) CompleteRequest(ctx context.Context, requestID string, point application.ChargingPoint) (application.ChargingPoint, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return application.ChargingPoint{}, mapError(err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM solicitacoes_instalacao WHERE id = $1 FOR UPDATE`, requestID,
	).Scan(&status)
	if err != nil {
		return application.ChargingPoint{}, mapError(err)
	}
	if application.Status(status) != application.StatusEmAndamento {
		return application.ChargingPoint{}, fmt.Errorf("request %s is %s: %w", requestID, status, persistence.ErrInvalidState)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO pontos_recarga (id, nome, endereco, cidade, latitude, longitude, tipo_conector, velocidade, potencia, disponivel, funcionario_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		point.ID, point.Nome, point.Endereco, point.Cidade, point.Latitude, point.Longitude,
		point.TipoConector, point.Velocidade, point.Potencia, point.Disponivel,
		nullString(point.FuncionarioID), point.CreatedAt, point.UpdatedAt,
	); err != nil {
		return application.ChargingPoint{}, mapError(err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE solicitacoes_instalacao SET status = 'concluida', updated_at = $2 WHERE id = $1`,
		requestID, time.Now().UTC(),
	); err != nil {
		return application.ChargingPoint{}, mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return application.ChargingPoint{}, mapError(err)
	}
	return point, nil
}

func lockRequest(ctx context.Context, tx pgx.Tx, requestID string) error {
	var id string
	err := tx.QueryRow(ctx,
		`SELECT id FROM solicitacoes_instalacao WHERE id = $1 FOR UPDATE`, requestID,
	).Scan(&id)
	return mapError(err)
}
