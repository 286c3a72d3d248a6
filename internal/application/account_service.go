package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/persistence"
)

// CustomerRepository captures the persistence operations needed by the
// account service.
type CustomerRepository interface {
	CreateCustomer(ctx context.Context, account CustomerAccount) (Customer, error)
	GetCustomer(ctx context.Context, id string) (Customer, error)
	GetCustomerAccount(ctx context.Context, id string) (CustomerAccount, error)
	GetCustomerAccountByEmail(ctx context.Context, email string) (CustomerAccount, error)
	UpdateCustomer(ctx context.Context, account CustomerAccount) (Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomers(ctx context.Context) ([]Customer, error)
}

// TokenIssuer signs bearer tokens for authenticated principals.
type TokenIssuer interface {
	IssueCustomerToken(id string) (string, error)
	IssueEmployeeToken(id string) (string, error)
}

// AccountService orchestrates customer registration, login and profile
// management, plus the CEO-only back-office listing and removal.
type AccountService struct {
	customers   CustomerRepository
	tokens      TokenIssuer
	idGenerator func() string
	now         func() time.Time
	logger      zerolog.Logger
}

// NewAccountService wires dependencies for the account service.
func NewAccountService(customers CustomerRepository, tokens TokenIssuer, idGenerator func() string, now func() time.Time, logger *zerolog.Logger) *AccountService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		customers:   customers,
		tokens:      tokens,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AccountService) log(ctx context.Context, operation string) *zerolog.Logger {
	return serviceLogger(ctx, s.logger, "AccountService", operation)
}

// RegisterCustomerParams wraps the data required to create a customer account.
type RegisterCustomerParams struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// LoginParams wraps customer login credentials.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult couples the issued bearer token with the authenticated account.
type LoginResult struct {
	Token    string
	Customer Customer
}

// UpdateProfileParams wraps the partial profile update for the authenticated
// customer. Empty fields are ignored; ImageURL replaces the stored avatar
// when non-nil.
type UpdateProfileParams struct {
	Principal       Principal
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
	ImageURL        *string
}

// UpdateProfileResult carries the updated account and, when the avatar was
// replaced, the previous image path so callers can remove the stale file.
type UpdateProfileResult struct {
	Customer      Customer
	ReplacedImage string
}

// Register validates input and persists a new customer account. The password
// is hashed before it leaves this method and is never echoed back.
func (s *AccountService) Register(ctx context.Context, params RegisterCustomerParams) (Customer, error) {
	if s == nil || s.customers == nil {
		return Customer{}, fmt.Errorf("account service not configured")
	}

	name := sanitizeText(params.Name)
	email := normalizeEmail(params.Email)

	vErr := &ValidationError{}
	if name == "" {
		vErr.add("name", "Informe seu nome completo.")
	}
	if email == "" {
		vErr.add("email", "Informe um e-mail válido.")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "E-mail inválido.")
	}
	if len(params.Password) < 6 {
		vErr.add("password", "A senha deve conter no mínimo 6 caracteres.")
	}
	if params.PasswordConfirm == "" {
		vErr.add("passwordConfirm", "Confirme sua senha.")
	} else if params.Password != params.PasswordConfirm {
		vErr.add("passwordConfirm", "As senhas precisam ser iguais.")
	}
	if vErr.HasErrors() {
		return Customer{}, vErr
	}

	logger := s.log(ctx, "Register")

	if _, err := s.customers.GetCustomerAccountByEmail(ctx, email); err == nil {
		return Customer{}, &ConflictError{Message: "Já existe um usuário cadastrado com este e-mail."}
	} else if !errors.Is(err, persistence.ErrNotFound) {
		return Customer{}, err
	}

	hash, err := CreatePasswordHash(params.Password, DefaultArgon2idParams)
	if err != nil {
		return Customer{}, err
	}

	now := s.now()
	account := CustomerAccount{
		Customer: Customer{
			ID:        s.idGenerator(),
			Name:      name,
			Email:     email,
			CreatedAt: now,
		},
		PasswordHash: hash,
	}

	created, err := s.customers.CreateCustomer(ctx, account)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return Customer{}, &ConflictError{Message: "Já existe um usuário cadastrado com este e-mail."}
		}
		logger.Error().Err(err).Str("error_kind", ErrorKind(err)).Msg("customer registration failed")
		return Customer{}, err
	}

	logger.Info().Str("customer_id", created.ID).Msg("customer registered")
	return created, nil
}

// Login verifies customer credentials and issues a bearer token.
func (s *AccountService) Login(ctx context.Context, params LoginParams) (LoginResult, error) {
	if s == nil || s.customers == nil || s.tokens == nil {
		return LoginResult{}, fmt.Errorf("account service not configured")
	}

	email := normalizeEmail(params.Email)
	logger := s.log(ctx, "Login")

	if email == "" || params.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	account, err := s.customers.GetCustomerAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := VerifyPassword(account.PasswordHash, params.Password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	signed, err := s.tokens.IssueCustomerToken(account.ID)
	if err != nil {
		return LoginResult{}, err
	}

	logger.Info().Str("customer_id", account.ID).Msg("customer authenticated")
	return LoginResult{Token: signed, Customer: account.Customer}, nil
}

// Profile returns the authenticated customer's own record.
func (s *AccountService) Profile(ctx context.Context, principal Principal) (Customer, error) {
	if s == nil || s.customers == nil {
		return Customer{}, fmt.Errorf("account service not configured")
	}

	customer, err := s.customers.GetCustomer(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
	}
	return customer, nil
}

// UpdateProfile applies a partial update to the authenticated customer.
func (s *AccountService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (UpdateProfileResult, error) {
	if s == nil || s.customers == nil {
		return UpdateProfileResult{}, fmt.Errorf("account service not configured")
	}

	vErr := &ValidationError{}
	if params.Password != "" {
		if len(params.Password) < 6 {
			vErr.add("password", "A senha deve conter no mínimo 6 caracteres.")
		} else if params.Password != params.PasswordConfirm {
			vErr.add("passwordConfirm", "As senhas precisam ser iguais.")
		}
	}
	email := ""
	if params.Email != "" {
		email = normalizeEmail(params.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			vErr.add("email", "E-mail inválido.")
		}
	}
	if vErr.HasErrors() {
		return UpdateProfileResult{}, vErr
	}

	current, err := s.customers.GetCustomerAccount(ctx, params.Principal.ID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return UpdateProfileResult{}, ErrNotFound
		}
		return UpdateProfileResult{}, err
	}

	if email != "" && email != current.Email {
		if other, err := s.customers.GetCustomerAccountByEmail(ctx, email); err == nil && other.ID != current.ID {
			return UpdateProfileResult{}, &ConflictError{Message: "Já existe um usuário cadastrado com este e-mail."}
		} else if err != nil && !errors.Is(err, persistence.ErrNotFound) {
			return UpdateProfileResult{}, err
		}
		current.Email = email
	}

	if name := sanitizeText(params.Name); name != "" {
		current.Name = name
	}
	if params.Password != "" {
		hash, err := CreatePasswordHash(params.Password, DefaultArgon2idParams)
		if err != nil {
			return UpdateProfileResult{}, err
		}
		current.PasswordHash = hash
	}

	replaced := ""
	if params.ImageURL != nil && *params.ImageURL != "" {
		replaced = current.ImageURL
		current.ImageURL = *params.ImageURL
	}

	updated, err := s.customers.UpdateCustomer(ctx, current)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return UpdateProfileResult{}, &ConflictError{Message: "Já existe um usuário cadastrado com este e-mail."}
		}
		if errors.Is(err, persistence.ErrNotFound) {
			return UpdateProfileResult{}, ErrNotFound
		}
		return UpdateProfileResult{}, err
	}

	s.log(ctx, "UpdateProfile").Info().Str("customer_id", updated.ID).Msg("customer profile updated")
	return UpdateProfileResult{Customer: updated, ReplacedImage: replaced}, nil
}

// ListCustomers returns every customer for back-office administration.
func (s *AccountService) ListCustomers(ctx context.Context, principal Principal) ([]Customer, error) {
	if s == nil || s.customers == nil {
		return nil, fmt.Errorf("account service not configured")
	}
	if !principal.Can(CapManageAccounts) {
		return nil, ErrUnauthorized
	}
	return s.customers.ListCustomers(ctx)
}

// DeleteCustomer removes a customer account for back-office administration.
func (s *AccountService) DeleteCustomer(ctx context.Context, principal Principal, id string) error {
	if s == nil || s.customers == nil {
		return fmt.Errorf("account service not configured")
	}
	if !principal.Can(CapManageAccounts) {
		return ErrUnauthorized
	}

	if err := s.customers.DeleteCustomer(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log(ctx, "DeleteCustomer").Info().Str("customer_id", id).Msg("customer removed")
	return nil
}
