// Package memory provides an in-memory storage backend. It powers the
// development profile and the end-to-end tests, and implements the same
// repository contracts as the PostgreSQL backend.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/charging-hub/internal/application"
	"github.com/example/charging-hub/internal/persistence"
)

// Storage keeps every record in process memory guarded by a single RWMutex.
type Storage struct {
	mu        sync.RWMutex
	customers map[string]application.CustomerAccount
	employees map[string]application.EmployeeAccount
	points    map[string]application.ChargingPoint
	requests  map[string]application.InstallationRequest
	rosters   map[string][]application.InstallationProfessional
	recharges map[string]application.Recharge
}

// Open returns an empty storage.
func Open() *Storage {
	return &Storage{
		customers: make(map[string]application.CustomerAccount),
		employees: make(map[string]application.EmployeeAccount),
		points:    make(map[string]application.ChargingPoint),
		requests:  make(map[string]application.InstallationRequest),
		rosters:   make(map[string][]application.InstallationProfessional),
		recharges: make(map[string]application.Recharge),
	}
}

// Close releases resources held by the storage. No-op for memory.
func (s *Storage) Close() error {
	return nil
}

// Migrate initialises the storage. No-op for memory.
func (s *Storage) Migrate(context.Context) error {
	return nil
}

// --- CustomerRepository implementation ---

func (s *Storage) CreateCustomer(ctx context.Context, account application.CustomerAccount) (application.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[account.ID]; ok {
		return application.Customer{}, persistence.ErrDuplicate
	}
	if s.customerEmailTakenLocked(account.ID, account.Email) {
		return application.Customer{}, persistence.ErrDuplicate
	}

	s.customers[account.ID] = account
	return account.Customer, nil
}

func (s *Storage) GetCustomer(ctx context.Context, id string) (application.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.customers[id]
	if !ok {
		return application.Customer{}, persistence.ErrNotFound
	}
	return account.Customer, nil
}

func (s *Storage) GetCustomerAccount(ctx context.Context, id string) (application.CustomerAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.customers[id]
	if !ok {
		return application.CustomerAccount{}, persistence.ErrNotFound
	}
	return account, nil
}

func (s *Storage) GetCustomerAccountByEmail(ctx context.Context, email string) (application.CustomerAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.customers {
		if strings.EqualFold(account.Email, email) {
			return account, nil
		}
	}
	return application.CustomerAccount{}, persistence.ErrNotFound
}

func (s *Storage) UpdateCustomer(ctx context.Context, account application.CustomerAccount) (application.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[account.ID]; !ok {
		return application.Customer{}, persistence.ErrNotFound
	}
	if s.customerEmailTakenLocked(account.ID, account.Email) {
		return application.Customer{}, persistence.ErrDuplicate
	}

	s.customers[account.ID] = account
	return account.Customer, nil
}

func (s *Storage) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.customers, id)
	return nil
}

func (s *Storage) ListCustomers(ctx context.Context) ([]application.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]application.Customer, 0, len(s.customers))
	for _, account := range s.customers {
		customers = append(customers, account.Customer)
	}
	sort.Slice(customers, func(i, j int) bool {
		if customers[i].CreatedAt.Equal(customers[j].CreatedAt) {
			return customers[i].ID < customers[j].ID
		}
		return customers[i].CreatedAt.After(customers[j].CreatedAt)
	})
	return customers, nil
}

func (s *Storage) customerEmailTakenLocked(id, email string) bool {
	for _, account := range s.customers {
		if account.ID != id && strings.EqualFold(account.Email, email) {
			return true
		}
	}
	return false
}

// --- EmployeeRepository implementation ---

func (s *Storage) CreateEmployee(ctx context.Context, account application.EmployeeAccount) (application.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[account.ID]; ok {
		return application.Employee{}, persistence.ErrDuplicate
	}
	if s.employeeIdentityTakenLocked(account.ID, account.CPF, account.Email) {
		return application.Employee{}, persistence.ErrDuplicate
	}

	s.employees[account.ID] = account
	return account.Employee, nil
}

func (s *Storage) GetEmployee(ctx context.Context, id string) (application.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.employees[id]
	if !ok {
		return application.Employee{}, persistence.ErrNotFound
	}
	return account.Employee, nil
}

func (s *Storage) GetEmployeeAccount(ctx context.Context, id string) (application.EmployeeAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.employees[id]
	if !ok {
		return application.EmployeeAccount{}, persistence.ErrNotFound
	}
	return account, nil
}

func (s *Storage) GetEmployeeAccountByCPF(ctx context.Context, cpf string) (application.EmployeeAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.employees {
		if account.CPF == cpf {
			return account, nil
		}
	}
	return application.EmployeeAccount{}, persistence.ErrNotFound
}

func (s *Storage) GetEmployeeByEmail(ctx context.Context, email string) (application.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.employees {
		if strings.EqualFold(account.Email, email) {
			return account.Employee, nil
		}
	}
	return application.Employee{}, persistence.ErrNotFound
}

func (s *Storage) UpdateEmployee(ctx context.Context, account application.EmployeeAccount) (application.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[account.ID]; !ok {
		return application.Employee{}, persistence.ErrNotFound
	}
	if s.employeeIdentityTakenLocked(account.ID, account.CPF, account.Email) {
		return application.Employee{}, persistence.ErrDuplicate
	}

	s.employees[account.ID] = account
	return account.Employee, nil
}

func (s *Storage) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.employees, id)
	return nil
}

func (s *Storage) ListEmployees(ctx context.Context) ([]application.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listEmployeesLocked(func(application.Employee) bool { return true }), nil
}

func (s *Storage) ListEmployeesByPosition(ctx context.Context, position application.Role) ([]application.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listEmployeesLocked(func(e application.Employee) bool { return e.Position == position }), nil
}

func (s *Storage) listEmployeesLocked(keep func(application.Employee) bool) []application.Employee {
	employees := make([]application.Employee, 0, len(s.employees))
	for _, account := range s.employees {
		if keep(account.Employee) {
			employees = append(employees, account.Employee)
		}
	}
	sort.Slice(employees, func(i, j int) bool {
		if employees[i].CreatedAt.Equal(employees[j].CreatedAt) {
			return employees[i].ID < employees[j].ID
		}
		return employees[i].CreatedAt.After(employees[j].CreatedAt)
	})
	return employees
}

func (s *Storage) employeeIdentityTakenLocked(id, cpf, email string) bool {
	for _, account := range s.employees {
		if account.ID == id {
			continue
		}
		if account.CPF == cpf || strings.EqualFold(account.Email, email) {
			return true
		}
	}
	return false
}

// --- ChargingPointRepository implementation ---

func (s *Storage) CreateChargingPoint(ctx context.Context, point application.ChargingPoint) (application.ChargingPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.points[point.ID]; ok {
		return application.ChargingPoint{}, persistence.ErrDuplicate
	}
	s.points[point.ID] = point
	return point, nil
}

func (s *Storage) GetChargingPoint(ctx context.Context, id string) (application.ChargingPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	point, ok := s.points[id]
	if !ok {
		return application.ChargingPoint{}, persistence.ErrNotFound
	}
	return point, nil
}

func (s *Storage) UpdateChargingPoint(ctx context.Context, point application.ChargingPoint) (application.ChargingPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.points[point.ID]; !ok {
		return application.ChargingPoint{}, persistence.ErrNotFound
	}
	s.points[point.ID] = point
	return point, nil
}

func (s *Storage) DeleteChargingPoint(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.points[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.points, id)
	return nil
}

func (s *Storage) ListChargingPoints(ctx context.Context) ([]application.ChargingPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := make([]application.ChargingPoint, 0, len(s.points))
	for _, point := range s.points {
		points = append(points, point)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].CreatedAt.Equal(points[j].CreatedAt) {
			return points[i].ID < points[j].ID
		}
		return points[i].CreatedAt.After(points[j].CreatedAt)
	})
	return points, nil
}

// --- InstallationRepository implementation ---

func (s *Storage) CreateRequest(ctx context.Context, request application.InstallationRequest) (application.InstallationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[request.ID]; ok {
		return application.InstallationRequest{}, persistence.ErrDuplicate
	}
	if _, ok := s.customers[request.UsuarioID]; !ok {
		return application.InstallationRequest{}, persistence.ErrForeignKeyViolation
	}

	s.requests[request.ID] = cloneRequest(request)
	return request, nil
}

func (s *Storage) GetRequest(ctx context.Context, id string) (application.InstallationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.requests[id]
	if !ok {
		return application.InstallationRequest{}, persistence.ErrNotFound
	}
	return cloneRequest(request), nil
}

func (s *Storage) ListRequests(ctx context.Context) ([]application.InstallationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listRequestsLocked(func(application.InstallationRequest) bool { return true }), nil
}

// ListRequestsForLead returns the unassigned pending backlog plus requests
// already owned by the given employee.
func (s *Storage) ListRequestsForLead(ctx context.Context, employeeID string) ([]application.InstallationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listRequestsLocked(func(request application.InstallationRequest) bool {
		unassigned := request.Status == application.StatusPendente && request.ResponsavelID == ""
		return unassigned || request.ResponsavelID == employeeID
	}), nil
}

func (s *Storage) listRequestsLocked(keep func(application.InstallationRequest) bool) []application.InstallationRequest {
	requests := make([]application.InstallationRequest, 0, len(s.requests))
	for _, request := range s.requests {
		if keep(request) {
			requests = append(requests, cloneRequest(request))
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].ID < requests[j].ID
		}
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests
}

func (s *Storage) ListProfessionals(ctx context.Context, requestID string) ([]application.InstallationProfessional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]application.InstallationProfessional(nil), s.rosters[requestID]...), nil
}

// ReplaceRoster swaps the full crew of a request and moves it to
// em_andamento under the given lead, as a single atomic step.
func (s *Storage) ReplaceRoster(ctx context.Context, requestID string, roster []application.InstallationProfessional, leadID string) ([]application.InstallationProfessional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.requests[requestID]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	for _, member := range roster {
		if _, ok := s.employees[member.FuncionarioID]; !ok {
			return nil, persistence.ErrForeignKeyViolation
		}
	}

	s.rosters[requestID] = append([]application.InstallationProfessional(nil), roster...)
	request.Status = application.StatusEmAndamento
	request.ResponsavelID = leadID
	request.UpdatedAt = time.Now()
	s.requests[requestID] = request

	return append([]application.InstallationProfessional(nil), roster...), nil
}

// CompleteRequest transitions an in-progress request to concluida and
// publishes its charging point, as a single atomic step.
func (s *Storage) CompleteRequest(ctx context.Context, requestID string, point application.ChargingPoint) (application.ChargingPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.requests[requestID]
	if !ok {
		return application.ChargingPoint{}, persistence.ErrNotFound
	}
	if request.Status != application.StatusEmAndamento {
		return application.ChargingPoint{}, persistence.ErrInvalidState
	}

	request.Status = application.StatusConcluida
	request.UpdatedAt = time.Now()
	s.requests[requestID] = request
	s.points[point.ID] = point
	return point, nil
}

// --- RechargeRepository implementation ---

func (s *Storage) CreateRecharge(ctx context.Context, recharge application.Recharge) (application.Recharge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recharges[recharge.ID]; ok {
		return application.Recharge{}, persistence.ErrDuplicate
	}
	s.recharges[recharge.ID] = recharge
	return recharge, nil
}

func (s *Storage) GetRecharge(ctx context.Context, id, userID string) (application.Recharge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recharge, ok := s.recharges[id]
	if !ok || recharge.UserID != userID {
		return application.Recharge{}, persistence.ErrNotFound
	}
	return recharge, nil
}

func (s *Storage) ListRecharges(ctx context.Context, userID string, limit, offset int, startDate *time.Time) ([]application.Recharge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matchRechargesLocked(userID, startDate)
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit >= 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Storage) CountRecharges(ctx context.Context, userID string, startDate *time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matchRechargesLocked(userID, startDate)), nil
}

func (s *Storage) DeleteRecharge(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recharge, ok := s.recharges[id]
	if !ok || recharge.UserID != userID {
		return persistence.ErrNotFound
	}
	delete(s.recharges, id)
	return nil
}

func (s *Storage) matchRechargesLocked(userID string, startDate *time.Time) []application.Recharge {
	var matched []application.Recharge
	for _, recharge := range s.recharges {
		if recharge.UserID != userID {
			continue
		}
		if startDate != nil && recharge.DataHora.Before(*startDate) {
			continue
		}
		matched = append(matched, recharge)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

func cloneRequest(request application.InstallationRequest) application.InstallationRequest {
	cloned := request
	cloned.DistanciaQuadro = clonePtr(request.DistanciaQuadro)
	cloned.Latitude = clonePtr(request.Latitude)
	cloned.Longitude = clonePtr(request.Longitude)
	cloned.Professionals = nil
	return cloned
}

func clonePtr(value *float64) *float64 {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
