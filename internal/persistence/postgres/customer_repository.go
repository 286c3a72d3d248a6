package postgres

import (
	"context"

	"github.com/example/charging-hub/internal/application"
	"github.com/example/charging-hub/internal/persistence"
)

const customerColumns = "id, nome, email, senha_hash, imagem_url, created_at"

func (s *Store) CreateCustomer(ctx context.Context, account application.CustomerAccount) (application.Customer, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO usuarios (id, nome, email, senha_hash, imagem_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID, account.Name, account.Email, account.PasswordHash, account.ImageURL, account.CreatedAt,
	)
	if err != nil {
		return application.Customer{}, mapError(err)
	}
	return account.Customer, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (application.Customer, error) {
	account, err := s.getCustomerAccount(ctx, "WHERE id = $1", id)
	if err != nil {
		return application.Customer{}, err
	}
	return account.Customer, nil
}

func (s *Store) GetCustomerAccount(ctx context.Context, id string) (application.CustomerAccount, error) {
	return s.getCustomerAccount(ctx, "WHERE id = $1", id)
}

func (s *Store) GetCustomerAccountByEmail(ctx context.Context, email string) (application.CustomerAccount, error) {
	return s.getCustomerAccount(ctx, "WHERE lower(email) = lower($1)", email)
}

func (s *Store) getCustomerAccount(ctx context.Context, where string, arg any) (application.CustomerAccount, error) {
	var account application.CustomerAccount
	err := s.pool.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM usuarios "+where, arg,
	).Scan(&account.ID, &account.Name, &account.Email, &account.PasswordHash, &account.ImageURL, &account.CreatedAt)
	if err != nil {
		return application.CustomerAccount{}, mapError(err)
	}
	return account, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, account application.CustomerAccount) (application.Customer, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE usuarios SET nome = $2, email = $3, senha_hash = $4, imagem_url = $5 WHERE id = $1`,
		account.ID, account.Name, account.Email, account.PasswordHash, account.ImageURL,
	)
	if err != nil {
		return application.Customer{}, mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return application.Customer{}, persistence.ErrNotFound
	}
	return account.Customer, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]application.Customer, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+customerColumns+" FROM usuarios ORDER BY created_at DESC, id")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var customers []application.Customer
	for rows.Next() {
		var account application.CustomerAccount
		if err := rows.Scan(&account.ID, &account.Name, &account.Email, &account.PasswordHash, &account.ImageURL, &account.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		customers = append(customers, account.Customer)
	}
	return customers, mapError(rows.Err())
}
