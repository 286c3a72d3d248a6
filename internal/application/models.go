package application

import "time"

// Role is the closed set of employee positions. The string values are the
// business tokens used on the wire and in storage.
type Role string

const (
	RolePedreiro    Role = "pedreiro"
	RoleEletrecista Role = "eletrecista"
	RoleInstalador  Role = "responsável por instalação"
	RoleCEO         Role = "CEO"
)

// Roles lists every valid position, in registration-form order.
var Roles = []Role{RolePedreiro, RoleEletrecista, RoleInstalador, RoleCEO}

// ParseRole maps a wire token to a Role.
func ParseRole(value string) (Role, bool) {
	role := Role(value)
	return role, role.Valid()
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RolePedreiro, RoleEletrecista, RoleInstalador, RoleCEO:
		return true
	}
	return false
}

// Capability names an operation gated by employee position.
type Capability string

const (
	CapManageChargingPoints Capability = "manage_charging_points"
	CapViewInstallations    Capability = "view_installations"
	CapAssignProfessionals  Capability = "assign_professionals"
	CapCompleteInstallation Capability = "complete_installation"
	CapViewBalance          Capability = "view_balance"
	CapManageAccounts       Capability = "manage_accounts"
)

// capabilityRoles is the exhaustive capability-to-role table. Authorization
// is a membership check here, never a string comparison at call sites.
var capabilityRoles = map[Capability][]Role{
	CapManageChargingPoints: {RoleCEO, RoleInstalador},
	CapViewInstallations:    {RolePedreiro, RoleEletrecista, RoleInstalador, RoleCEO},
	CapAssignProfessionals:  {RoleCEO, RoleInstalador},
	CapCompleteInstallation: {RoleCEO, RoleInstalador},
	CapViewBalance:          {RoleCEO},
	CapManageAccounts:       {RoleCEO},
}

// Can reports whether the role holds the capability.
func (r Role) Can(capability Capability) bool {
	for _, allowed := range capabilityRoles[capability] {
		if r == allowed {
			return true
		}
	}
	return false
}

// PrincipalKind distinguishes the two authenticated caller populations.
type PrincipalKind string

const (
	KindCustomer PrincipalKind = "customer"
	KindEmployee PrincipalKind = "employee"
)

// Principal represents the authenticated caller invoking a service method.
// Role is only set for employees and reflects the row re-fetched at request
// time, so position changes take effect immediately.
type Principal struct {
	ID   string
	Kind PrincipalKind
	Role Role
}

// IsEmployee reports whether the principal is an employee account.
func (p Principal) IsEmployee() bool {
	return p.Kind == KindEmployee
}

// Can reports whether the principal holds the capability.
func (p Principal) Can(capability Capability) bool {
	return p.IsEmployee() && p.Role.Can(capability)
}

// Status is the installation-request lifecycle state.
type Status string

const (
	StatusPendente    Status = "pendente"
	StatusEmAndamento Status = "em_andamento"
	StatusConcluida   Status = "concluida"
)

// Customer is a registered end user of the marketplace.
type Customer struct {
	ID        string
	Name      string
	Email     string
	ImageURL  string
	CreatedAt time.Time
}

// CustomerAccount couples a customer with its stored credential.
type CustomerAccount struct {
	Customer
	PasswordHash string
}

// Employee is a staff account. Position gates authorization.
type Employee struct {
	ID        string
	Name      string
	CPF       string
	Email     string
	Position  Role
	ImageURL  string
	CreatedAt time.Time
}

// EmployeeAccount couples an employee with its stored credential.
type EmployeeAccount struct {
	Employee
	PasswordHash string
}

// ChargingPoint is a geolocated charger exposed on the public map. Field
// names follow the business vocabulary used on the wire.
type ChargingPoint struct {
	ID            string
	Nome          string
	Endereco      string
	Cidade        string
	Latitude      float64
	Longitude     float64
	TipoConector  string
	Velocidade    string
	Potencia      string
	Disponivel    bool
	FuncionarioID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InstallationRequest tracks a customer-submitted installation job through
// pendente, em_andamento and concluida.
type InstallationRequest struct {
	ID              string
	UsuarioID       string
	TipoInstalacao  string
	Endereco        string
	Cidade          string
	Estado          string
	CEP             string
	DistanciaQuadro *float64
	TipoResidencia  string
	TipoCarregador  string
	PrecoTotal      float64
	CustoTotal      float64
	Status          Status
	ResponsavelID   string
	Latitude        *float64
	Longitude       *float64
	Observacoes     string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Professionals []InstallationProfessional
}

// InstallationProfessional is one staff assignment bound to a request.
type InstallationProfessional struct {
	ID            string
	SolicitacaoID string
	FuncionarioID string
	Cargo         Role
	CreatedAt     time.Time
}

// Recharge is a user-owned log entry for a personal charging session.
type Recharge struct {
	ID        string
	UserID    string
	Local     string
	Endereco  string
	DataHora  time.Time
	Duracao   int
	Energia   float64
	Custo     float64
	CreatedAt time.Time
}

// Balance is the CEO-only financial aggregate over installation requests.
type Balance struct {
	TotalReceitas float64
	TotalCustos   float64
	Lucro         float64
	Estatisticas  StatusCounts
	Solicitacoes  []InstallationRequest
}

// StatusCounts tabulates requests per lifecycle state.
type StatusCounts struct {
	Pendentes   int
	EmAndamento int
	Concluidas  int
	Total       int
}
