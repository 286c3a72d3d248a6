package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/persistence"
)

// ChargingPointRepository captures the persistence operations needed by the
// charging point service.
type ChargingPointRepository interface {
	CreateChargingPoint(ctx context.Context, point ChargingPoint) (ChargingPoint, error)
	GetChargingPoint(ctx context.Context, id string) (ChargingPoint, error)
	UpdateChargingPoint(ctx context.Context, point ChargingPoint) (ChargingPoint, error)
	DeleteChargingPoint(ctx context.Context, id string) error
	ListChargingPoints(ctx context.Context) ([]ChargingPoint, error)
}

// ChargingPointService manages the public charger catalog. Reads are open;
// writes require the manage-charging-points capability.
type ChargingPointService struct {
	points      ChargingPointRepository
	idGenerator func() string
	now         func() time.Time
	logger      zerolog.Logger
}

// NewChargingPointService wires dependencies for the charging point service.
func NewChargingPointService(points ChargingPointRepository, idGenerator func() string, now func() time.Time, logger *zerolog.Logger) *ChargingPointService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ChargingPointService{
		points:      points,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ChargingPointService) log(ctx context.Context, operation string) *zerolog.Logger {
	return serviceLogger(ctx, s.logger, "ChargingPointService", operation)
}

// ChargingPointInput captures caller provided charger fields. Latitude and
// Longitude are pointers so absent and zero coordinates are distinguishable.
type ChargingPointInput struct {
	Nome         string
	Endereco     string
	Cidade       string
	Latitude     *float64
	Longitude    *float64
	TipoConector string
	Velocidade   string
	Potencia     string
	Disponivel   *bool
}

// CreateChargingPointParams wraps the data required to register a charger.
type CreateChargingPointParams struct {
	Principal Principal
	Input     ChargingPointInput
}

// UpdateChargingPointParams wraps a partial charger update.
type UpdateChargingPointParams struct {
	Principal Principal
	PointID   string
	Input     ChargingPointInput
}

// Create validates input and persists a new charging point attributed to the
// acting employee.
func (s *ChargingPointService) Create(ctx context.Context, params CreateChargingPointParams) (ChargingPoint, error) {
	if s == nil || s.points == nil {
		return ChargingPoint{}, fmt.Errorf("charging point service not configured")
	}
	if !params.Principal.Can(CapManageChargingPoints) {
		return ChargingPoint{}, ErrUnauthorized
	}

	input := params.Input
	vErr := &ValidationError{}
	if sanitizeText(input.Nome) == "" {
		vErr.add("nome", "Informe o nome do ponto.")
	}
	if sanitizeText(input.Endereco) == "" {
		vErr.add("endereco", "Informe o endereço.")
	}
	if sanitizeText(input.Cidade) == "" {
		vErr.add("cidade", "Informe a cidade.")
	}
	if input.Latitude == nil {
		vErr.add("latitude", "Informe a latitude.")
	}
	if input.Longitude == nil {
		vErr.add("longitude", "Informe a longitude.")
	}
	if sanitizeText(input.TipoConector) == "" {
		vErr.add("tipoConector", "Informe o tipo de conector.")
	}
	if sanitizeText(input.Velocidade) == "" {
		vErr.add("velocidade", "Informe a velocidade.")
	}
	if sanitizeText(input.Potencia) == "" {
		vErr.add("potencia", "Informe a potência.")
	}
	if vErr.HasErrors() {
		return ChargingPoint{}, vErr
	}

	disponivel := true
	if input.Disponivel != nil {
		disponivel = *input.Disponivel
	}

	now := s.now()
	point := ChargingPoint{
		ID:            s.idGenerator(),
		Nome:          sanitizeText(input.Nome),
		Endereco:      sanitizeText(input.Endereco),
		Cidade:        sanitizeText(input.Cidade),
		Latitude:      *input.Latitude,
		Longitude:     *input.Longitude,
		TipoConector:  sanitizeText(input.TipoConector),
		Velocidade:    sanitizeText(input.Velocidade),
		Potencia:      sanitizeText(input.Potencia),
		Disponivel:    disponivel,
		FuncionarioID: params.Principal.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.points.CreateChargingPoint(ctx, point)
	if err != nil {
		return ChargingPoint{}, err
	}

	s.log(ctx, "Create").Info().Str("point_id", created.ID).Msg("charging point registered")
	return created, nil
}

// Get returns one charging point. Reads are public.
func (s *ChargingPointService) Get(ctx context.Context, id string) (ChargingPoint, error) {
	if s == nil || s.points == nil {
		return ChargingPoint{}, fmt.Errorf("charging point service not configured")
	}

	point, err := s.points.GetChargingPoint(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ChargingPoint{}, ErrNotFound
		}
		return ChargingPoint{}, err
	}
	return point, nil
}

// List returns every charging point for the public map.
func (s *ChargingPointService) List(ctx context.Context) ([]ChargingPoint, error) {
	if s == nil || s.points == nil {
		return nil, fmt.Errorf("charging point service not configured")
	}
	return s.points.ListChargingPoints(ctx)
}

// Update applies a partial update to an existing charging point.
func (s *ChargingPointService) Update(ctx context.Context, params UpdateChargingPointParams) (ChargingPoint, error) {
	if s == nil || s.points == nil {
		return ChargingPoint{}, fmt.Errorf("charging point service not configured")
	}
	if !params.Principal.Can(CapManageChargingPoints) {
		return ChargingPoint{}, ErrUnauthorized
	}

	current, err := s.points.GetChargingPoint(ctx, params.PointID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ChargingPoint{}, ErrNotFound
		}
		return ChargingPoint{}, err
	}

	input := params.Input
	if v := sanitizeText(input.Nome); v != "" {
		current.Nome = v
	}
	if v := sanitizeText(input.Endereco); v != "" {
		current.Endereco = v
	}
	if v := sanitizeText(input.Cidade); v != "" {
		current.Cidade = v
	}
	if input.Latitude != nil {
		current.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		current.Longitude = *input.Longitude
	}
	if v := sanitizeText(input.TipoConector); v != "" {
		current.TipoConector = v
	}
	if v := sanitizeText(input.Velocidade); v != "" {
		current.Velocidade = v
	}
	if v := sanitizeText(input.Potencia); v != "" {
		current.Potencia = v
	}
	if input.Disponivel != nil {
		current.Disponivel = *input.Disponivel
	}
	current.UpdatedAt = s.now()

	updated, err := s.points.UpdateChargingPoint(ctx, current)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ChargingPoint{}, ErrNotFound
		}
		return ChargingPoint{}, err
	}

	s.log(ctx, "Update").Info().Str("point_id", updated.ID).Msg("charging point updated")
	return updated, nil
}

// Delete removes a charging point from the catalog.
func (s *ChargingPointService) Delete(ctx context.Context, principal Principal, id string) error {
	if s == nil || s.points == nil {
		return fmt.Errorf("charging point service not configured")
	}
	if !principal.Can(CapManageChargingPoints) {
		return ErrUnauthorized
	}

	if err := s.points.DeleteChargingPoint(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log(ctx, "Delete").Info().Str("point_id", id).Msg("charging point removed")
	return nil
}
