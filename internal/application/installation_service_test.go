package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCustomer = Principal{ID: "user-1", Kind: KindCustomer}
	testCEO      = Principal{ID: "emp-ceo", Kind: KindEmployee, Role: RoleCEO}
	testLead     = Principal{ID: "emp-lead", Kind: KindEmployee, Role: RoleInstalador}
	testMason    = Principal{ID: "emp-mason", Kind: KindEmployee, Role: RolePedreiro}
)

func newInstallationService(repo *stubInstallationRepo) *InstallationService {
	return NewInstallationService(repo, sequentialIDs(), testClock, nil)
}

func createPendingRequest(t *testing.T, svc *InstallationService, price float64) InstallationRequest {
	t.Helper()
	request, err := svc.CreateRequest(context.Background(), CreateInstallationParams{
		Principal:      testCustomer,
		TipoInstalacao: "residencial",
		Endereco:       "Rua das Flores, 100",
		Cidade:         "Chapecó",
		PrecoTotal:     price,
	})
	require.NoError(t, err)
	return request
}

func fullRoster(leadID string) []ProfessionalAssignment {
	return []ProfessionalAssignment{
		{FuncionarioID: "emp-mason", Cargo: "pedreiro"},
		{FuncionarioID: "emp-sparky", Cargo: "eletrecista"},
		{FuncionarioID: leadID, Cargo: "responsável por instalação"},
	}
}

func TestInstallationService_CreateRequest(t *testing.T) {
	t.Parallel()

	t.Run("derives cost from price and starts pending", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())

		request := createPendingRequest(t, svc, 1000)

		assert.Equal(t, StatusPendente, request.Status)
		assert.InDelta(t, 600.0, request.CustoTotal, 1e-9)
		assert.Equal(t, "user-1", request.UsuarioID)
		assert.Empty(t, request.ResponsavelID)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())

		_, err := svc.CreateRequest(context.Background(), CreateInstallationParams{
			Principal: testCustomer,
			Endereco:  "Rua das Flores, 100",
		})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "tipoInstalacao")
		assert.Contains(t, vErr.FieldErrors, "cidade")
		assert.Contains(t, vErr.FieldErrors, "precoTotal")
		assert.NotContains(t, vErr.FieldErrors, "endereco")
	})

	t.Run("rejects employees", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())

		_, err := svc.CreateRequest(context.Background(), CreateInstallationParams{
			Principal:      testCEO,
			TipoInstalacao: "residencial",
			Endereco:       "Rua das Flores, 100",
			Cidade:         "Chapecó",
			PrecoTotal:     1000,
		})

		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestInstallationService_AssignProfessionals(t *testing.T) {
	t.Parallel()

	t.Run("requires all three trades", func(t *testing.T) {
		t.Parallel()
		repo := newStubInstallationRepo()
		svc := newInstallationService(repo)
		request := createPendingRequest(t, svc, 1000)

		_, err := svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal: testCEO,
			RequestID: request.ID,
			Profissionais: []ProfessionalAssignment{
				{FuncionarioID: "emp-sparky", Cargo: "eletrecista"},
				{FuncionarioID: "emp-lead", Cargo: "responsável por instalação"},
			},
		})

		var ruleErr *RuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "A instalação deve ter pelo menos 1 pedreiro, 1 eletrecista e 1 responsável por instalação.", ruleErr.Message)

		stored, getErr := svc.GetRequest(context.Background(), testCEO, request.ID)
		require.NoError(t, getErr)
		assert.Equal(t, StatusPendente, stored.Status)
		assert.Empty(t, stored.Professionals)
	})

	t.Run("rejects empty roster", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())
		request := createPendingRequest(t, svc, 1000)

		_, err := svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal: testCEO,
			RequestID: request.ID,
		})

		var ruleErr *RuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "Lista de profissionais é obrigatória.", ruleErr.Message)
	})

	t.Run("moves the request to in progress under the lead", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())
		request := createPendingRequest(t, svc, 1000)

		assigned, err := svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal:     testCEO,
			RequestID:     request.ID,
			Profissionais: fullRoster("emp-lead"),
		})
		require.NoError(t, err)
		require.Len(t, assigned, 3)

		stored, err := svc.GetRequest(context.Background(), testCEO, request.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusEmAndamento, stored.Status)
		assert.Equal(t, "emp-lead", stored.ResponsavelID)
		assert.Len(t, stored.Professionals, 3)
	})

	t.Run("replaces the previous roster on reassignment", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())
		request := createPendingRequest(t, svc, 1000)

		_, err := svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal:     testCEO,
			RequestID:     request.ID,
			Profissionais: fullRoster("emp-lead"),
		})
		require.NoError(t, err)

		_, err = svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal:     testCEO,
			RequestID:     request.ID,
			Profissionais: fullRoster("emp-other-lead"),
		})
		require.NoError(t, err)

		stored, err := svc.GetRequest(context.Background(), testCEO, request.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Professionals, 3)
		assert.Equal(t, "emp-other-lead", stored.ResponsavelID)
	})

	t.Run("rejects employees without assignment rights", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())
		request := createPendingRequest(t, svc, 1000)

		_, err := svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal:     testMason,
			RequestID:     request.ID,
			Profissionais: fullRoster("emp-lead"),
		})

		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("reports missing requests", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())

		_, err := svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal:     testCEO,
			RequestID:     "missing",
			Profissionais: fullRoster("emp-lead"),
		})

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestInstallationService_Complete(t *testing.T) {
	t.Parallel()

	startInProgress := func(t *testing.T, svc *InstallationService) InstallationRequest {
		t.Helper()
		request := createPendingRequest(t, svc, 1000)
		_, err := svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal:     testCEO,
			RequestID:     request.ID,
			Profissionais: fullRoster("emp-lead"),
		})
		require.NoError(t, err)
		return request
	}

	t.Run("publishes a charging point with fallback attributes", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())
		request := startInProgress(t, svc)

		point, err := svc.Complete(context.Background(), CompleteInstallationParams{
			Principal: testLead,
			RequestID: request.ID,
		})
		require.NoError(t, err)

		assert.Equal(t, "Ponto de Recarga - Rua das Flores, 100", point.Nome)
		assert.Equal(t, "Rua das Flores, 100", point.Endereco)
		assert.Equal(t, "Chapecó", point.Cidade)
		assert.InDelta(t, -27.0953, point.Latitude, 1e-9)
		assert.InDelta(t, -52.6167, point.Longitude, 1e-9)
		assert.Equal(t, "Tipo 2", point.TipoConector)
		assert.Equal(t, "Normal", point.Velocidade)
		assert.Equal(t, "7.4kW", point.Potencia)
		assert.True(t, point.Disponivel)
		assert.Equal(t, testLead.ID, point.FuncionarioID)

		stored, err := svc.GetRequest(context.Background(), testCEO, request.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusConcluida, stored.Status)
	})

	t.Run("prefers request coordinates over defaults", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())
		lat, lng := -26.5, -53.2
		request, err := svc.CreateRequest(context.Background(), CreateInstallationParams{
			Principal:      testCustomer,
			TipoInstalacao: "residencial",
			Endereco:       "Av. Brasil, 2000",
			Cidade:         "Chapecó",
			PrecoTotal:     800,
			Latitude:       &lat,
			Longitude:      &lng,
		})
		require.NoError(t, err)
		_, err = svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal:     testCEO,
			RequestID:     request.ID,
			Profissionais: fullRoster("emp-lead"),
		})
		require.NoError(t, err)

		point, err := svc.Complete(context.Background(), CompleteInstallationParams{
			Principal: testCEO,
			RequestID: request.ID,
		})
		require.NoError(t, err)
		assert.InDelta(t, lat, point.Latitude, 1e-9)
		assert.InDelta(t, lng, point.Longitude, 1e-9)
	})

	t.Run("rejects pending requests", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())
		request := createPendingRequest(t, svc, 1000)

		_, err := svc.Complete(context.Background(), CompleteInstallationParams{
			Principal: testCEO,
			RequestID: request.ID,
		})

		var ruleErr *RuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "Apenas instalações em andamento podem ser concluídas.", ruleErr.Message)
	})

	t.Run("rejects double completion", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())
		request := startInProgress(t, svc)

		_, err := svc.Complete(context.Background(), CompleteInstallationParams{
			Principal: testCEO,
			RequestID: request.ID,
		})
		require.NoError(t, err)

		_, err = svc.Complete(context.Background(), CompleteInstallationParams{
			Principal: testCEO,
			RequestID: request.ID,
		})
		var ruleErr *RuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "Apenas instalações em andamento podem ser concluídas.", ruleErr.Message)
	})

	t.Run("rejects employees without completion rights", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())
		request := startInProgress(t, svc)

		_, err := svc.Complete(context.Background(), CompleteInstallationParams{
			Principal: testMason,
			RequestID: request.ID,
		})

		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestInstallationService_ListRequests(t *testing.T) {
	t.Parallel()

	t.Run("installation leads see unassigned pending plus their own", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())

		pending := createPendingRequest(t, svc, 500)
		mine := createPendingRequest(t, svc, 700)
		others := createPendingRequest(t, svc, 900)

		_, err := svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal:     testCEO,
			RequestID:     mine.ID,
			Profissionais: fullRoster(testLead.ID),
		})
		require.NoError(t, err)
		_, err = svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal:     testCEO,
			RequestID:     others.ID,
			Profissionais: fullRoster("emp-other-lead"),
		})
		require.NoError(t, err)

		visible, err := svc.ListRequests(context.Background(), testLead)
		require.NoError(t, err)

		ids := make([]string, 0, len(visible))
		for _, request := range visible {
			ids = append(ids, request.ID)
		}
		assert.ElementsMatch(t, []string{pending.ID, mine.ID}, ids)
	})

	t.Run("other staff see every request with its crew", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())

		first := createPendingRequest(t, svc, 500)
		_, err := svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal:     testCEO,
			RequestID:     first.ID,
			Profissionais: fullRoster(testLead.ID),
		})
		require.NoError(t, err)
		createPendingRequest(t, svc, 900)

		visible, err := svc.ListRequests(context.Background(), testCEO)
		require.NoError(t, err)
		require.Len(t, visible, 2)
		for _, request := range visible {
			if request.ID == first.ID {
				assert.Len(t, request.Professionals, 3)
			}
		}
	})

	t.Run("rejects customers", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())

		_, err := svc.ListRequests(context.Background(), testCustomer)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestInstallationService_Balance(t *testing.T) {
	t.Parallel()

	t.Run("aggregates revenue and costs over completed work", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())

		complete := func(price float64) {
			request := createPendingRequest(t, svc, price)
			_, err := svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
				Principal:     testCEO,
				RequestID:     request.ID,
				Profissionais: fullRoster(testLead.ID),
			})
			require.NoError(t, err)
			_, err = svc.Complete(context.Background(), CompleteInstallationParams{
				Principal: testCEO,
				RequestID: request.ID,
			})
			require.NoError(t, err)
		}

		complete(1000)
		complete(500)
		createPendingRequest(t, svc, 2000)
		inProgress := createPendingRequest(t, svc, 3000)
		_, err := svc.AssignProfessionals(context.Background(), AssignProfessionalsParams{
			Principal:     testCEO,
			RequestID:     inProgress.ID,
			Profissionais: fullRoster(testLead.ID),
		})
		require.NoError(t, err)

		balance, err := svc.Balance(context.Background(), testCEO)
		require.NoError(t, err)

		assert.InDelta(t, 1500.0, balance.TotalReceitas, 1e-9)
		assert.InDelta(t, 900.0, balance.TotalCustos, 1e-9)
		assert.InDelta(t, 600.0, balance.Lucro, 1e-9)
		assert.Equal(t, 1, balance.Estatisticas.Pendentes)
		assert.Equal(t, 1, balance.Estatisticas.EmAndamento)
		assert.Equal(t, 2, balance.Estatisticas.Concluidas)
		assert.Equal(t, 4, balance.Estatisticas.Total)
		assert.Len(t, balance.Solicitacoes, 4)
	})

	t.Run("is restricted to the CEO", func(t *testing.T) {
		t.Parallel()
		svc := newInstallationService(newStubInstallationRepo())

		_, err := svc.Balance(context.Background(), testLead)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
