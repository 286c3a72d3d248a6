package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/charging-hub/internal/persistence"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return fixedNow }

// tickingClock returns a clock advancing one second per call, so records
// created later carry strictly later creation times.
func tickingClock() func() time.Time {
	var n int
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fixedNow.Add(time.Duration(n) * time.Second)
	}
}

// sequentialIDs returns a generator producing id-1, id-2, ...
func sequentialIDs() func() string {
	var n int
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type stubTokens struct{}

func (stubTokens) IssueCustomerToken(id string) (string, error) {
	return "customer-token-" + id, nil
}

func (stubTokens) IssueEmployeeToken(id string) (string, error) {
	return "employee-token-" + id, nil
}

type stubCustomerRepo struct {
	mu       sync.Mutex
	accounts map[string]CustomerAccount
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{accounts: map[string]CustomerAccount{}}
}

func (r *stubCustomerRepo) CreateCustomer(_ context.Context, account CustomerAccount) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return Customer{}, persistence.ErrDuplicate
		}
	}
	r.accounts[account.ID] = account
	return account.Customer, nil
}

func (r *stubCustomerRepo) GetCustomer(_ context.Context, id string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return Customer{}, persistence.ErrNotFound
	}
	return account.Customer, nil
}

func (r *stubCustomerRepo) GetCustomerAccount(_ context.Context, id string) (CustomerAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return CustomerAccount{}, persistence.ErrNotFound
	}
	return account, nil
}

func (r *stubCustomerRepo) GetCustomerAccountByEmail(_ context.Context, email string) (CustomerAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if strings.EqualFold(account.Email, email) {
			return account, nil
		}
	}
	return CustomerAccount{}, persistence.ErrNotFound
}

func (r *stubCustomerRepo) UpdateCustomer(_ context.Context, account CustomerAccount) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		return Customer{}, persistence.ErrNotFound
	}
	r.accounts[account.ID] = account
	return account.Customer, nil
}

func (r *stubCustomerRepo) DeleteCustomer(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *stubCustomerRepo) ListCustomers(_ context.Context) ([]Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	customers := make([]Customer, 0, len(r.accounts))
	for _, account := range r.accounts {
		customers = append(customers, account.Customer)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers, nil
}

type stubEmployeeRepo struct {
	mu       sync.Mutex
	accounts map[string]EmployeeAccount
}

func newStubEmployeeRepo() *stubEmployeeRepo {
	return &stubEmployeeRepo{accounts: map[string]EmployeeAccount{}}
}

func (r *stubEmployeeRepo) CreateEmployee(_ context.Context, account EmployeeAccount) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.CPF == account.CPF || strings.EqualFold(existing.Email, account.Email) {
			return Employee{}, persistence.ErrDuplicate
		}
	}
	r.accounts[account.ID] = account
	return account.Employee, nil
}

func (r *stubEmployeeRepo) GetEmployee(_ context.Context, id string) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return Employee{}, persistence.ErrNotFound
	}
	return account.Employee, nil
}

func (r *stubEmployeeRepo) GetEmployeeAccount(_ context.Context, id string) (EmployeeAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return EmployeeAccount{}, persistence.ErrNotFound
	}
	return account, nil
}

func (r *stubEmployeeRepo) GetEmployeeAccountByCPF(_ context.Context, cpf string) (EmployeeAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.CPF == cpf {
			return account, nil
		}
	}
	return EmployeeAccount{}, persistence.ErrNotFound
}

func (r *stubEmployeeRepo) GetEmployeeByEmail(_ context.Context, email string) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if strings.EqualFold(account.Email, email) {
			return account.Employee, nil
		}
	}
	return Employee{}, persistence.ErrNotFound
}

func (r *stubEmployeeRepo) UpdateEmployee(_ context.Context, account EmployeeAccount) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		return Employee{}, persistence.ErrNotFound
	}
	r.accounts[account.ID] = account
	return account.Employee, nil
}

func (r *stubEmployeeRepo) DeleteEmployee(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *stubEmployeeRepo) ListEmployees(_ context.Context) ([]Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	employees := make([]Employee, 0, len(r.accounts))
	for _, account := range r.accounts {
		employees = append(employees, account.Employee)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees, nil
}

func (r *stubEmployeeRepo) ListEmployeesByPosition(_ context.Context, position Role) ([]Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var employees []Employee
	for _, account := range r.accounts {
		if account.Position == position {
			employees = append(employees, account.Employee)
		}
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees, nil
}

type stubPointRepo struct {
	mu     sync.Mutex
	points map[string]ChargingPoint
}

func newStubPointRepo() *stubPointRepo {
	return &stubPointRepo{points: map[string]ChargingPoint{}}
}

func (r *stubPointRepo) CreateChargingPoint(_ context.Context, point ChargingPoint) (ChargingPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.points[point.ID] = point
	return point, nil
}

func (r *stubPointRepo) GetChargingPoint(_ context.Context, id string) (ChargingPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	point, ok := r.points[id]
	if !ok {
		return ChargingPoint{}, persistence.ErrNotFound
	}
	return point, nil
}

func (r *stubPointRepo) UpdateChargingPoint(_ context.Context, point ChargingPoint) (ChargingPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.points[point.ID]; !ok {
		return ChargingPoint{}, persistence.ErrNotFound
	}
	r.points[point.ID] = point
	return point, nil
}

func (r *stubPointRepo) DeleteChargingPoint(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.points[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.points, id)
	return nil
}

func (r *stubPointRepo) ListChargingPoints(_ context.Context) ([]ChargingPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	points := make([]ChargingPoint, 0, len(r.points))
	for _, point := range r.points {
		points = append(points, point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].ID < points[j].ID })
	return points, nil
}

type stubInstallationRepo struct {
	mu       sync.Mutex
	requests map[string]InstallationRequest
	rosters  map[string][]InstallationProfessional
	points   []ChargingPoint
}

func newStubInstallationRepo() *stubInstallationRepo {
	return &stubInstallationRepo{
		requests: map[string]InstallationRequest{},
		rosters:  map[string][]InstallationProfessional{},
	}
}

func (r *stubInstallationRepo) CreateRequest(_ context.Context, request InstallationRequest) (InstallationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[request.ID] = request
	return request, nil
}

func (r *stubInstallationRepo) GetRequest(_ context.Context, id string) (InstallationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return InstallationRequest{}, persistence.ErrNotFound
	}
	return request, nil
}

func (r *stubInstallationRepo) sortedLocked() []InstallationRequest {
	requests := make([]InstallationRequest, 0, len(r.requests))
	for _, request := range r.requests {
		requests = append(requests, request)
	}
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].ID > requests[j].ID
		}
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests
}

func (r *stubInstallationRepo) ListRequests(_ context.Context) ([]InstallationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked(), nil
}

func (r *stubInstallationRepo) ListRequestsForLead(_ context.Context, employeeID string) ([]InstallationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var visible []InstallationRequest
	for _, request := range r.sortedLocked() {
		unassigned := request.Status == StatusPendente && request.ResponsavelID == ""
		if unassigned || request.ResponsavelID == employeeID {
			visible = append(visible, request)
		}
	}
	return visible, nil
}

func (r *stubInstallationRepo) ListProfessionals(_ context.Context, requestID string) ([]InstallationProfessional, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]InstallationProfessional(nil), r.rosters[requestID]...), nil
}

func (r *stubInstallationRepo) ReplaceRoster(_ context.Context, requestID string, roster []InstallationProfessional, leadID string) ([]InstallationProfessional, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[requestID]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	r.rosters[requestID] = append([]InstallationProfessional(nil), roster...)
	request.Status = StatusEmAndamento
	request.ResponsavelID = leadID
	r.requests[requestID] = request
	return append([]InstallationProfessional(nil), roster...), nil
}

func (r *stubInstallationRepo) CompleteRequest(_ context.Context, requestID string, point ChargingPoint) (ChargingPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[requestID]
	if !ok {
		return ChargingPoint{}, persistence.ErrNotFound
	}
	if request.Status != StatusEmAndamento {
		return ChargingPoint{}, persistence.ErrInvalidState
	}
	request.Status = StatusConcluida
	r.requests[requestID] = request
	r.points = append(r.points, point)
	return point, nil
}

type stubRechargeRepo struct {
	mu        sync.Mutex
	recharges []Recharge
}

func newStubRechargeRepo() *stubRechargeRepo { return &stubRechargeRepo{} }

func (r *stubRechargeRepo) CreateRecharge(_ context.Context, recharge Recharge) (Recharge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recharges = append(r.recharges, recharge)
	return recharge, nil
}

func (r *stubRechargeRepo) matchesLocked(userID string, startDate *time.Time) []Recharge {
	var matched []Recharge
	for _, recharge := range r.recharges {
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

func (r *stubRechargeRepo) GetRecharge(_ context.Context, id, userID string) (Recharge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, recharge := range r.recharges {
		if recharge.ID == id && recharge.UserID == userID {
			return recharge, nil
		}
	}
	return Recharge{}, persistence.ErrNotFound
}

func (r *stubRechargeRepo) ListRecharges(_ context.Context, userID string, limit, offset int, startDate *time.Time) ([]Recharge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := r.matchesLocked(userID, startDate)
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *stubRechargeRepo) CountRecharges(_ context.Context, userID string, startDate *time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matchesLocked(userID, startDate)), nil
}

func (r *stubRechargeRepo) DeleteRecharge(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, recharge := range r.recharges {
		if recharge.ID == id && recharge.UserID == userID {
			r.recharges = append(r.recharges[:i], r.recharges[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}
