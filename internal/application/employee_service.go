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

// EmployeeRepository captures the persistence operations needed by the
// employee service and the middleware that re-fetches employee rows.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, account EmployeeAccount) (Employee, error)
	GetEmployee(ctx context.Context, id string) (Employee, error)
	GetEmployeeAccount(ctx context.Context, id string) (EmployeeAccount, error)
	GetEmployeeAccountByCPF(ctx context.Context, cpf string) (EmployeeAccount, error)
	GetEmployeeByEmail(ctx context.Context, email string) (Employee, error)
	UpdateEmployee(ctx context.Context, account EmployeeAccount) (Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	ListEmployees(ctx context.Context) ([]Employee, error)
	ListEmployeesByPosition(ctx context.Context, position Role) ([]Employee, error)
}

// EmployeeService orchestrates employee registration, CPF-based login,
// profile management, the position directory, and CEO administration.
type EmployeeService struct {
	employees   EmployeeRepository
	tokens      TokenIssuer
	idGenerator func() string
	now         func() time.Time
	logger      zerolog.Logger
}

// NewEmployeeService wires dependencies for the employee service.
func NewEmployeeService(employees EmployeeRepository, tokens TokenIssuer, idGenerator func() string, now func() time.Time, logger *zerolog.Logger) *EmployeeService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EmployeeService{
		employees:   employees,
		tokens:      tokens,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EmployeeService) log(ctx context.Context, operation string) *zerolog.Logger {
	return serviceLogger(ctx, s.logger, "EmployeeService", operation)
}

// RegisterEmployeeParams wraps the data required to create an employee account.
type RegisterEmployeeParams struct {
	Name            string
	CPF             string
	Email           string
	Password        string
	PasswordConfirm string
	Position        string
}

// EmployeeLoginParams wraps CPF-based login credentials.
type EmployeeLoginParams struct {
	CPF      string
	Password string
}

// EmployeeLoginResult couples the issued bearer token with the account.
type EmployeeLoginResult struct {
	Token    string
	Employee Employee
}

// UpdateEmployeeProfileParams wraps the partial profile update for the
// authenticated employee.
type UpdateEmployeeProfileParams struct {
	Principal       Principal
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
	Position        string
	ImageURL        *string
}

// UpdateEmployeeProfileResult carries the updated account and any replaced
// avatar path.
type UpdateEmployeeProfileResult struct {
	Employee      Employee
	ReplacedImage string
}

// Register validates input and persists a new employee account.
func (s *EmployeeService) Register(ctx context.Context, params RegisterEmployeeParams) (Employee, error) {
	if s == nil || s.employees == nil {
		return Employee{}, fmt.Errorf("employee service not configured")
	}

	name := sanitizeText(params.Name)
	cpf := CleanCPF(params.CPF)
	email := normalizeEmail(params.Email)

	vErr := &ValidationError{}
	if name == "" {
		vErr.add("name", "Informe seu nome completo.")
	}
	if cpf == "" {
		vErr.add("cpf", "Informe seu CPF.")
	} else if !ValidCPF(cpf) {
		vErr.add("cpf", "CPF inválido. Informe um CPF válido.")
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
	position, ok := ParseRole(sanitizeText(params.Position))
	if !ok {
		vErr.add("position", "Cargo inválido. Selecione um cargo válido.")
	}
	if vErr.HasErrors() {
		return Employee{}, vErr
	}

	logger := s.log(ctx, "Register")

	if _, err := s.employees.GetEmployeeAccountByCPF(ctx, cpf); err == nil {
		return Employee{}, &ConflictError{Message: "Já existe um funcionário cadastrado com este CPF."}
	} else if !errors.Is(err, persistence.ErrNotFound) {
		return Employee{}, err
	}
	if _, err := s.employees.GetEmployeeByEmail(ctx, email); err == nil {
		return Employee{}, &ConflictError{Message: "Já existe um funcionário cadastrado com este e-mail."}
	} else if !errors.Is(err, persistence.ErrNotFound) {
		return Employee{}, err
	}

	hash, err := CreatePasswordHash(params.Password, DefaultArgon2idParams)
	if err != nil {
		return Employee{}, err
	}

	account := EmployeeAccount{
		Employee: Employee{
			ID:        s.idGenerator(),
			Name:      name,
			CPF:       cpf,
			Email:     email,
			Position:  position,
			CreatedAt: s.now(),
		},
		PasswordHash: hash,
	}

	created, err := s.employees.CreateEmployee(ctx, account)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return Employee{}, &ConflictError{Message: "Já existe um funcionário cadastrado com este CPF ou e-mail."}
		}
		logger.Error().Err(err).Str("error_kind", ErrorKind(err)).Msg("employee registration failed")
		return Employee{}, err
	}

	logger.Info().Str("employee_id", created.ID).Str("position", string(created.Position)).Msg("employee registered")
	return created, nil
}

// Login verifies CPF credentials and issues an employee bearer token.
func (s *EmployeeService) Login(ctx context.Context, params EmployeeLoginParams) (EmployeeLoginResult, error) {
	if s == nil || s.employees == nil || s.tokens == nil {
		return EmployeeLoginResult{}, fmt.Errorf("employee service not configured")
	}

	cpf := CleanCPF(params.CPF)
	if !ValidCPF(cpf) {
		return EmployeeLoginResult{}, &ValidationError{FieldErrors: map[string]string{"cpf": "CPF inválido."}}
	}
	if params.Password == "" {
		return EmployeeLoginResult{}, ErrInvalidCredentials
	}

	account, err := s.employees.GetEmployeeAccountByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return EmployeeLoginResult{}, ErrInvalidCredentials
		}
		return EmployeeLoginResult{}, err
	}

	if err := VerifyPassword(account.PasswordHash, params.Password); err != nil {
		return EmployeeLoginResult{}, ErrInvalidCredentials
	}

	signed, err := s.tokens.IssueEmployeeToken(account.ID)
	if err != nil {
		return EmployeeLoginResult{}, err
	}

	s.log(ctx, "Login").Info().Str("employee_id", account.ID).Msg("employee authenticated")
	return EmployeeLoginResult{Token: signed, Employee: account.Employee}, nil
}

// Profile returns the authenticated employee's own record.
func (s *EmployeeService) Profile(ctx context.Context, principal Principal) (Employee, error) {
	if s == nil || s.employees == nil {
		return Employee{}, fmt.Errorf("employee service not configured")
	}

	employee, err := s.employees.GetEmployee(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, err
	}
	return employee, nil
}

// UpdateProfile applies a partial update to the authenticated employee.
func (s *EmployeeService) UpdateProfile(ctx context.Context, params UpdateEmployeeProfileParams) (UpdateEmployeeProfileResult, error) {
	if s == nil || s.employees == nil {
		return UpdateEmployeeProfileResult{}, fmt.Errorf("employee service not configured")
	}

	vErr := &ValidationError{}
	if params.Password != "" {
		if len(params.Password) < 6 {
			vErr.add("password", "A senha deve conter no mínimo 6 caracteres.")
		} else if params.Password != params.PasswordConfirm {
			vErr.add("passwordConfirm", "As senhas precisam ser iguais.")
		}
	}
	var position Role
	if params.Position != "" {
		parsed, ok := ParseRole(sanitizeText(params.Position))
		if !ok {
			vErr.add("position", "Cargo inválido. Selecione um cargo válido.")
		} else {
			position = parsed
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
		return UpdateEmployeeProfileResult{}, vErr
	}

	current, err := s.employees.GetEmployeeAccount(ctx, params.Principal.ID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return UpdateEmployeeProfileResult{}, ErrNotFound
		}
		return UpdateEmployeeProfileResult{}, err
	}

	if email != "" && email != current.Email {
		if other, err := s.employees.GetEmployeeByEmail(ctx, email); err == nil && other.ID != current.ID {
			return UpdateEmployeeProfileResult{}, &ConflictError{Message: "Já existe um funcionário cadastrado com este e-mail."}
		} else if err != nil && !errors.Is(err, persistence.ErrNotFound) {
			return UpdateEmployeeProfileResult{}, err
		}
		current.Email = email
	}

	if name := sanitizeText(params.Name); name != "" {
		current.Name = name
	}
	if position != "" {
		current.Position = position
	}
	if params.Password != "" {
		hash, err := CreatePasswordHash(params.Password, DefaultArgon2idParams)
		if err != nil {
			return UpdateEmployeeProfileResult{}, err
		}
		current.PasswordHash = hash
	}

	replaced := ""
	if params.ImageURL != nil && *params.ImageURL != "" {
		replaced = current.ImageURL
		current.ImageURL = *params.ImageURL
	}

	updated, err := s.employees.UpdateEmployee(ctx, current)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return UpdateEmployeeProfileResult{}, &ConflictError{Message: "Já existe um funcionário cadastrado com este e-mail."}
		}
		if errors.Is(err, persistence.ErrNotFound) {
			return UpdateEmployeeProfileResult{}, ErrNotFound
		}
		return UpdateEmployeeProfileResult{}, err
	}

	s.log(ctx, "UpdateProfile").Info().Str("employee_id", updated.ID).Msg("employee profile updated")
	return UpdateEmployeeProfileResult{Employee: updated, ReplacedImage: replaced}, nil
}

// ListEmployees returns every employee for back-office administration.
func (s *EmployeeService) ListEmployees(ctx context.Context, principal Principal) ([]Employee, error) {
	if s == nil || s.employees == nil {
		return nil, fmt.Errorf("employee service not configured")
	}
	if !principal.Can(CapManageAccounts) {
		return nil, ErrUnauthorized
	}
	return s.employees.ListEmployees(ctx)
}

// ListByPosition returns the staff directory for one position, used when
// assembling installation rosters.
func (s *EmployeeService) ListByPosition(ctx context.Context, principal Principal, position string) ([]Employee, error) {
	if s == nil || s.employees == nil {
		return nil, fmt.Errorf("employee service not configured")
	}
	if !principal.IsEmployee() {
		return nil, ErrUnauthorized
	}

	role, ok := ParseRole(position)
	if !ok {
		return nil, nil
	}
	return s.employees.ListEmployeesByPosition(ctx, role)
}

// DeleteEmployee removes an employee account. An employee cannot remove
// their own record.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, principal Principal, id string) error {
	if s == nil || s.employees == nil {
		return fmt.Errorf("employee service not configured")
	}
	if !principal.Can(CapManageAccounts) {
		return ErrUnauthorized
	}
	if id == principal.ID {
		return &RuleError{Message: "Você não pode remover seu próprio perfil."}
	}

	if err := s.employees.DeleteEmployee(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log(ctx, "DeleteEmployee").Info().Str("employee_id", id).Msg("employee removed")
	return nil
}
