package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/persistence"
)

// costMargin is the fraction of the quoted price booked as installation cost.
const costMargin = 0.6

// Default charger attributes used when a completed installation does not
// carry its own coordinates or hardware details.
const (
	defaultPointLatitude  = -27.0953
	defaultPointLongitude = -52.6167
	defaultConnectorType  = "Tipo 2"
	defaultChargeSpeed    = "Normal"
	defaultPowerRating    = "7.4kW"
)

// InstallationRepository captures the persistence operations needed by the
// installation service. ReplaceRoster and CompleteRequest run atomically:
// the roster swap and the status transition either both happen or neither
// does.
type InstallationRepository interface {
	CreateRequest(ctx context.Context, request InstallationRequest) (InstallationRequest, error)
	GetRequest(ctx context.Context, id string) (InstallationRequest, error)
	ListRequests(ctx context.Context) ([]InstallationRequest, error)
	ListRequestsForLead(ctx context.Context, employeeID string) ([]InstallationRequest, error)
	ListProfessionals(ctx context.Context, requestID string) ([]InstallationProfessional, error)
	ReplaceRoster(ctx context.Context, requestID string, roster []InstallationProfessional, leadID string) ([]InstallationProfessional, error)
	CompleteRequest(ctx context.Context, requestID string, point ChargingPoint) (ChargingPoint, error)
}

// InstallationService drives the installation workflow from customer request
// through professional assignment to the published charging point.
type InstallationService struct {
	installations InstallationRepository
	idGenerator   func() string
	now           func() time.Time
	logger        zerolog.Logger
}

// NewInstallationService wires dependencies for the installation service.
func NewInstallationService(installations InstallationRepository, idGenerator func() string, now func() time.Time, logger *zerolog.Logger) *InstallationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &InstallationService{
		installations: installations,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *InstallationService) log(ctx context.Context, operation string) *zerolog.Logger {
	return serviceLogger(ctx, s.logger, "InstallationService", operation)
}

// CreateInstallationParams captures a customer's installation request.
type CreateInstallationParams struct {
	Principal       Principal
	TipoInstalacao  string
	Endereco        string
	Cidade          string
	Estado          string
	CEP             string
	DistanciaQuadro *float64
	TipoResidencia  string
	TipoCarregador  string
	PrecoTotal      float64
	Latitude        *float64
	Longitude       *float64
	Observacoes     string
}

// CreateRequest registers a new installation request for the acting customer.
// The internal cost is derived from the quoted price and never taken from the
// caller.
func (s *InstallationService) CreateRequest(ctx context.Context, params CreateInstallationParams) (InstallationRequest, error) {
	if s == nil || s.installations == nil {
		return InstallationRequest{}, fmt.Errorf("installation service not configured")
	}
	if params.Principal.Kind != KindCustomer {
		return InstallationRequest{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if sanitizeText(params.TipoInstalacao) == "" {
		vErr.add("tipoInstalacao", "Informe o tipo de instalação.")
	}
	if sanitizeText(params.Endereco) == "" {
		vErr.add("endereco", "Informe o endereço.")
	}
	if sanitizeText(params.Cidade) == "" {
		vErr.add("cidade", "Informe a cidade.")
	}
	if params.PrecoTotal <= 0 {
		vErr.add("precoTotal", "Informe o preço total da instalação.")
	}
	if vErr.HasErrors() {
		return InstallationRequest{}, vErr
	}

	now := s.now()
	request := InstallationRequest{
		ID:              s.idGenerator(),
		UsuarioID:       params.Principal.ID,
		TipoInstalacao:  sanitizeText(params.TipoInstalacao),
		Endereco:        sanitizeText(params.Endereco),
		Cidade:          sanitizeText(params.Cidade),
		Estado:          sanitizeText(params.Estado),
		CEP:             sanitizeText(params.CEP),
		DistanciaQuadro: params.DistanciaQuadro,
		TipoResidencia:  sanitizeText(params.TipoResidencia),
		TipoCarregador:  sanitizeText(params.TipoCarregador),
		PrecoTotal:      params.PrecoTotal,
		CustoTotal:      params.PrecoTotal * costMargin,
		Status:          StatusPendente,
		Latitude:        params.Latitude,
		Longitude:       params.Longitude,
		Observacoes:     sanitizeText(params.Observacoes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.installations.CreateRequest(ctx, request)
	if err != nil {
		return InstallationRequest{}, err
	}

	s.log(ctx, "CreateRequest").Info().
		Str("request_id", created.ID).
		Str("user_id", created.UsuarioID).
		Msg("installation request created")
	return created, nil
}

// ListRequests returns installation requests visible to the acting employee.
// Installation leads see unassigned pending requests plus the ones assigned
// to them; everyone else with view access sees the full backlog.
func (s *InstallationService) ListRequests(ctx context.Context, principal Principal) ([]InstallationRequest, error) {
	if s == nil || s.installations == nil {
		return nil, fmt.Errorf("installation service not configured")
	}
	if !principal.Can(CapViewInstallations) {
		return nil, ErrUnauthorized
	}

	var (
		requests []InstallationRequest
		err      error
	)
	if principal.Role == RoleInstalador {
		requests, err = s.installations.ListRequestsForLead(ctx, principal.ID)
	} else {
		requests, err = s.installations.ListRequests(ctx)
	}
	if err != nil {
		return nil, err
	}

	for i := range requests {
		professionals, err := s.installations.ListProfessionals(ctx, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].Professionals = professionals
	}
	return requests, nil
}

// GetRequest returns one installation request with its assigned roster.
func (s *InstallationService) GetRequest(ctx context.Context, principal Principal, id string) (InstallationRequest, error) {
	if s == nil || s.installations == nil {
		return InstallationRequest{}, fmt.Errorf("installation service not configured")
	}
	if !principal.Can(CapViewInstallations) {
		return InstallationRequest{}, ErrUnauthorized
	}

	request, err := s.installations.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return InstallationRequest{}, ErrNotFound
		}
		return InstallationRequest{}, err
	}

	professionals, err := s.installations.ListProfessionals(ctx, id)
	if err != nil {
		return InstallationRequest{}, err
	}
	request.Professionals = professionals
	return request, nil
}

// ProfessionalAssignment names one employee and the role they fill on an
// installation crew.
type ProfessionalAssignment struct {
	FuncionarioID string
	Cargo         string
}

// AssignProfessionalsParams carries a full crew roster for one request.
type AssignProfessionalsParams struct {
	Principal     Principal
	RequestID     string
	Profissionais []ProfessionalAssignment
}

// AssignProfessionals replaces the crew of an installation request. A valid
// roster covers all three trades; on success the request moves to
// "em_andamento" with the assigned lead as its owner.
func (s *InstallationService) AssignProfessionals(ctx context.Context, params AssignProfessionalsParams) ([]InstallationProfessional, error) {
	if s == nil || s.installations == nil {
		return nil, fmt.Errorf("installation service not configured")
	}
	if !params.Principal.Can(CapAssignProfessionals) {
		return nil, ErrUnauthorized
	}
	if len(params.Profissionais) == 0 {
		return nil, &RuleError{Message: "Lista de profissionais é obrigatória."}
	}

	var (
		hasPedreiro    bool
		hasEletrecista bool
		leadID         string
	)
	for _, assignment := range params.Profissionais {
		role, ok := ParseRole(assignment.Cargo)
		if !ok {
			return nil, &RuleError{Message: "A instalação deve ter pelo menos 1 pedreiro, 1 eletrecista e 1 responsável por instalação."}
		}
		switch role {
		case RolePedreiro:
			hasPedreiro = true
		case RoleEletrecista:
			hasEletrecista = true
		case RoleInstalador:
			if leadID == "" {
				leadID = assignment.FuncionarioID
			}
		}
	}
	if !hasPedreiro || !hasEletrecista || leadID == "" {
		return nil, &RuleError{Message: "A instalação deve ter pelo menos 1 pedreiro, 1 eletrecista e 1 responsável por instalação."}
	}

	now := s.now()
	roster := make([]InstallationProfessional, 0, len(params.Profissionais))
	for _, assignment := range params.Profissionais {
		role, _ := ParseRole(assignment.Cargo)
		roster = append(roster, InstallationProfessional{
			ID:            s.idGenerator(),
			SolicitacaoID: params.RequestID,
			FuncionarioID: assignment.FuncionarioID,
			Cargo:         role,
			CreatedAt:     now,
		})
	}

	assigned, err := s.installations.ReplaceRoster(ctx, params.RequestID, roster, leadID)
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, persistence.ErrForeignKeyViolation):
			return nil, &RuleError{Message: "Um dos profissionais informados não foi encontrado."}
		}
		return nil, err
	}

	s.log(ctx, "AssignProfessionals").Info().
		Str("request_id", params.RequestID).
		Str("lead_id", leadID).
		Int("crew_size", len(assigned)).
		Msg("installation crew assigned")
	return assigned, nil
}

// CompleteInstallationParams carries optional charger attributes supplied at
// completion time.
type CompleteInstallationParams struct {
	Principal    Principal
	RequestID    string
	Nome         string
	TipoConector string
	Velocidade   string
	Potencia     string
	Latitude     *float64
	Longitude    *float64
	Disponivel   *bool
}

// Complete finishes an in-progress installation and publishes the resulting
// charging point. Missing charger attributes fall back to the request data
// and then to the service defaults.
func (s *InstallationService) Complete(ctx context.Context, params CompleteInstallationParams) (ChargingPoint, error) {
	if s == nil || s.installations == nil {
		return ChargingPoint{}, fmt.Errorf("installation service not configured")
	}
	if !params.Principal.Can(CapCompleteInstallation) {
		return ChargingPoint{}, ErrUnauthorized
	}

	request, err := s.installations.GetRequest(ctx, params.RequestID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ChargingPoint{}, ErrNotFound
		}
		return ChargingPoint{}, err
	}
	if request.Status != StatusEmAndamento {
		return ChargingPoint{}, &RuleError{Message: "Apenas instalações em andamento podem ser concluídas."}
	}

	nome := sanitizeText(params.Nome)
	if nome == "" {
		nome = "Ponto de Recarga - " + request.Endereco
	}
	latitude := defaultPointLatitude
	if params.Latitude != nil {
		latitude = *params.Latitude
	} else if request.Latitude != nil {
		latitude = *request.Latitude
	}
	longitude := defaultPointLongitude
	if params.Longitude != nil {
		longitude = *params.Longitude
	} else if request.Longitude != nil {
		longitude = *request.Longitude
	}
	tipoConector := sanitizeText(params.TipoConector)
	if tipoConector == "" {
		tipoConector = defaultConnectorType
	}
	velocidade := sanitizeText(params.Velocidade)
	if velocidade == "" {
		velocidade = defaultChargeSpeed
	}
	potencia := sanitizeText(params.Potencia)
	if potencia == "" {
		potencia = defaultPowerRating
	}
	disponivel := true
	if params.Disponivel != nil {
		disponivel = *params.Disponivel
	}

	now := s.now()
	point := ChargingPoint{
		ID:            s.idGenerator(),
		Nome:          nome,
		Endereco:      request.Endereco,
		Cidade:        request.Cidade,
		Latitude:      latitude,
		Longitude:     longitude,
		TipoConector:  tipoConector,
		Velocidade:    velocidade,
		Potencia:      potencia,
		Disponivel:    disponivel,
		FuncionarioID: params.Principal.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.installations.CompleteRequest(ctx, params.RequestID, point)
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			return ChargingPoint{}, ErrNotFound
		case errors.Is(err, persistence.ErrInvalidState):
			return ChargingPoint{}, &RuleError{Message: "Apenas instalações em andamento podem ser concluídas."}
		}
		return ChargingPoint{}, err
	}

	s.log(ctx, "Complete").Info().
		Str("request_id", params.RequestID).
		Str("point_id", created.ID).
		Msg("installation completed")
	return created, nil
}

// Balance aggregates revenue, cost and status counts over all installation
// requests. Only completed installations count toward revenue and cost.
func (s *InstallationService) Balance(ctx context.Context, principal Principal) (Balance, error) {
	if s == nil || s.installations == nil {
		return Balance{}, fmt.Errorf("installation service not configured")
	}
	if !principal.Can(CapViewBalance) {
		return Balance{}, ErrUnauthorized
	}

	requests, err := s.installations.ListRequests(ctx)
	if err != nil {
		return Balance{}, err
	}

	balance := Balance{Solicitacoes: requests}
	for _, request := range requests {
		balance.Estatisticas.Total++
		switch request.Status {
		case StatusPendente:
			balance.Estatisticas.Pendentes++
		case StatusEmAndamento:
			balance.Estatisticas.EmAndamento++
		case StatusConcluida:
			balance.Estatisticas.Concluidas++
			balance.TotalReceitas += request.PrecoTotal
			balance.TotalCustos += request.CustoTotal
		}
	}
	balance.Lucro = balance.TotalReceitas - balance.TotalCustos
	return balance, nil
}
