package postgres

import (
	"context"

	"github.com/example/charging-hub/internal/application"
	"github.com/example/charging-hub/internal/persistence"
)

const employeeColumns = "id, nome, cpf, email, senha_hash, cargo, imagem_url, created_at"

func (s *Store) CreateEmployee(ctx context.Context, account application.EmployeeAccount) (application.Employee, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO funcionarios (id, nome, cpf, email, senha_hash, cargo, imagem_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		account.ID, account.Name, account.CPF, account.Email, account.PasswordHash, string(account.Position), account.ImageURL, account.CreatedAt,
	)
	if err != nil {
		return application.Employee{}, mapError(err)
	}
	return account.Employee, nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (application.Employee, error) {
	account, err := s.getEmployeeAccount(ctx, "WHERE id = $1", id)
	if err != nil {
		return application.Employee{}, err
	}
	return account.Employee, nil
}

func (s *Store) GetEmployeeAccount(ctx context.Context, id string) (application.EmployeeAccount, error) {
	return s.getEmployeeAccount(ctx, "WHERE id = $1", id)
}

func (s *Store) GetEmployeeAccountByCPF(ctx context.Context, cpf string) (application.EmployeeAccount, error) {
	return s.getEmployeeAccount(ctx, "WHERE cpf = $1", cpf)
}

func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (application.Employee, error) {
	account, err := s.getEmployeeAccount(ctx, "WHERE lower(email) = lower($1)", email)
	if err != nil {
		return application.Employee{}, err
	}
	return account.Employee, nil
}

func (s *Store) getEmployeeAccount(ctx context.Context, where string, arg any) (application.EmployeeAccount, error) {
	var (
		account application.EmployeeAccount
		cargo   string
	)
	err := s.pool.QueryRow(ctx,
		"SELECT "+employeeColumns+" FROM funcionarios "+where, arg,
	).Scan(&account.ID, &account.Name, &account.CPF, &account.Email, &account.PasswordHash, &cargo, &account.ImageURL, &account.CreatedAt)
	if err != nil {
		return application.EmployeeAccount{}, mapError(err)
	}
	account.Position = application.Role(cargo)
	return account, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, account application.EmployeeAccount) (application.Employee, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE funcionarios SET nome = $2, cpf = $3, email = $4, senha_hash = $5, cargo = $6, imagem_url = $7 WHERE id = $1`,
		account.ID, account.Name, account.CPF, account.Email, account.PasswordHash, string(account.Position), account.ImageURL,
	)
	if err != nil {
		return application.Employee{}, mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return application.Employee{}, persistence.ErrNotFound
	}
	return account.Employee, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM funcionarios WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]application.Employee, error) {
	return s.listEmployees(ctx,
		"SELECT "+employeeColumns+" FROM funcionarios ORDER BY created_at DESC, id")
}

func (s *Store) ListEmployeesByPosition(ctx context.Context, position application.Role) ([]application.Employee, error) {
	return s.listEmployees(ctx,
		"SELECT "+employeeColumns+" FROM funcionarios WHERE cargo = $1 ORDER BY created_at DESC, id",
		string(position))
}

func (s *Store) listEmployees(ctx context.Context, query string, args ...any) ([]application.Employee, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var employees []application.Employee
	for rows.Next() {
		var (
			account application.EmployeeAccount
			cargo   string
		)
		if err := rows.Scan(&account.ID, &account.Name, &account.CPF, &account.Email, &account.PasswordHash, &cargo, &account.ImageURL, &account.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		account.Position = application.Role(cargo)
		employees = append(employees, account.Employee)
	}
	return employees, mapError(rows.Err())
}
