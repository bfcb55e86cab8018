package handlers

import (
	"net/http"
	"testing"

	"github.com/avc/frete-console/internal/carrierconfig"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/domain/mocks"
	"github.com/avc/frete-console/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func carrierCatalogue() []domain.Carrier {
	return []domain.Carrier{
		{ID: "t1", Name: "Correios", Code: "CORREIOS", Active: true},
		{ID: "t2", Name: "Jadlog", Code: "JADLOG", Active: true},
	}
}

func TestClientsHandler_List(t *testing.T) {
	t.Run("Filter parsed from query", func(t *testing.T) {
		clients := mocks.NewClientServiceMock(t)
		h := NewClientsHandler(clients, mocks.NewCarrierServiceMock(t), testLogger())

		active := true
		clients.On("List", mock.Anything, domain.ClientFilter{
			Search: "azul",
			Active: &active,
			PlanID: "p1",
			Limit:  20,
			Offset: 40,
		}).Return([]domain.Client{{ID: "c1", CompanyName: "Loja Azul"}}, nil)

		w := serve(http.MethodGet, "/api/clientes", "/api/clientes?busca=azul&ativo=true&plano_id=p1&limite=20&offset=40",
			nil, adminSession(), h.List)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody[[]domain.Client](t, w)
		require.Len(t, body, 1)
		assert.Equal(t, "Loja Azul", body[0].CompanyName)
	})

	t.Run("Invalid flag", func(t *testing.T) {
		h := NewClientsHandler(mocks.NewClientServiceMock(t), mocks.NewCarrierServiceMock(t), testLogger())

		w := serve(http.MethodGet, "/api/clientes", "/api/clientes?ativo=talvez", nil, adminSession(), h.List)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid limit", func(t *testing.T) {
		h := NewClientsHandler(mocks.NewClientServiceMock(t), mocks.NewCarrierServiceMock(t), testLogger())

		w := serve(http.MethodGet, "/api/clientes", "/api/clientes?limite=dez", nil, adminSession(), h.List)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestClientsHandler_Get(t *testing.T) {
	t.Run("Client sees own record", func(t *testing.T) {
		clients := mocks.NewClientServiceMock(t)
		h := NewClientsHandler(clients, mocks.NewCarrierServiceMock(t), testLogger())

		clients.On("Get", mock.Anything, "c1").Return(&domain.Client{ID: "c1"}, nil)

		w := serve(http.MethodGet, "/api/clientes/{id}", "/api/clientes/c1", nil, clientSession("c1"), h.Get)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Client cannot see another client", func(t *testing.T) {
		h := NewClientsHandler(mocks.NewClientServiceMock(t), mocks.NewCarrierServiceMock(t), testLogger())

		w := serve(http.MethodGet, "/api/clientes/{id}", "/api/clientes/c2", nil, clientSession("c1"), h.Get)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Not found", func(t *testing.T) {
		clients := mocks.NewClientServiceMock(t)
		h := NewClientsHandler(clients, mocks.NewCarrierServiceMock(t), testLogger())

		clients.On("Get", mock.Anything, "nope").Return(nil, service.ErrNotFound)

		w := serve(http.MethodGet, "/api/clientes/{id}", "/api/clientes/nope", nil, adminSession(), h.Get)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestClientsHandler_CarrierEditor(t *testing.T) {
	clients := mocks.NewClientServiceMock(t)
	carriers := mocks.NewCarrierServiceMock(t)
	h := NewClientsHandler(clients, carriers, testLogger())

	carriers.On("List", mock.Anything).Return(carrierCatalogue())
	clients.On("Get", mock.Anything, "c1").Return(&domain.Client{
		ID: "c1",
		CarrierConfigs: []domain.CarrierConfig{
			{CarrierID: "t2", CarrierName: "Jadlog", Active: true},
		},
	}, nil)

	w := serve(http.MethodGet, "/api/clientes/{id}/transportadoras", "/api/clientes/c1/transportadoras",
		nil, adminSession(), h.CarrierEditor)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[carrierEditorResponse](t, w)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, carrierconfig.StateInactive, body.Rows[0].State)
	assert.Equal(t, carrierconfig.StateActiveUnconfigured, body.Rows[1].State)
	assert.Equal(t, []string{"t2"}, body.Incomplete)
}

func TestClientsHandler_SaveCarriers(t *testing.T) {
	configured := func() *domain.Client {
		return &domain.Client{
			ID: "c1",
			CarrierConfigs: []domain.CarrierConfig{
				{CarrierID: "t1", CarrierName: "Correios", Active: true, SurchargeType: domain.SurchargeFixed, SurchargeValue: 5},
			},
		}
	}

	t.Run("Toggled off carrier is not saved", func(t *testing.T) {
		clients := mocks.NewClientServiceMock(t)
		carriers := mocks.NewCarrierServiceMock(t)
		h := NewClientsHandler(clients, carriers, testLogger())

		carriers.On("List", mock.Anything).Return(carrierCatalogue())
		clients.On("Get", mock.Anything, "c1").Return(configured(), nil)
		clients.On("SaveCarrierConfigs", mock.Anything, "c1", mock.MatchedBy(func(configs []domain.CarrierConfig) bool {
			return len(configs) == 1 && configs[0].CarrierID == "t2" && configs[0].SurchargeValue == 10
		})).Return(&domain.Client{
			ID: "c1",
			CarrierConfigs: []domain.CarrierConfig{
				{CarrierID: "t2", CarrierName: "Jadlog", Active: true, SurchargeType: domain.SurchargePercentage, SurchargeValue: 10},
			},
		}, nil)

		edits := `[
			{"transportadora_id":"t1","ativo":false},
			{"transportadora_id":"t2","ativo":true,"formulario":{"tipo_acrescimo":"PERCENTUAL","valor_acrescimo":10}}
		]`
		w := serve(http.MethodPut, "/api/clientes/{id}/transportadoras", "/api/clientes/c1/transportadoras",
			edits, adminSession(), h.SaveCarriers)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody[carrierEditorResponse](t, w)
		assert.Equal(t, carrierconfig.StateInactive, body.Rows[0].State)
		assert.Equal(t, carrierconfig.StateActiveConfigured, body.Rows[1].State)
		assert.Empty(t, body.Incomplete)
	})

	t.Run("Invalid form returns field errors", func(t *testing.T) {
		clients := mocks.NewClientServiceMock(t)
		carriers := mocks.NewCarrierServiceMock(t)
		h := NewClientsHandler(clients, carriers, testLogger())

		carriers.On("List", mock.Anything).Return(carrierCatalogue())
		clients.On("Get", mock.Anything, "c1").Return(configured(), nil)

		edits := `[{"transportadora_id":"t1","ativo":true,"formulario":{"tipo_acrescimo":"PERCENTUAL","valor_acrescimo":150}}]`
		w := serve(http.MethodPut, "/api/clientes/{id}/transportadoras", "/api/clientes/c1/transportadoras",
			edits, adminSession(), h.SaveCarriers)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodeBody[errorResponse](t, w)
		assert.True(t, body.Fields.Has("transportadoras[0].valor_acrescimo"))
		clients.AssertNotCalled(t, "SaveCarrierConfigs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown carrier", func(t *testing.T) {
		clients := mocks.NewClientServiceMock(t)
		carriers := mocks.NewCarrierServiceMock(t)
		h := NewClientsHandler(clients, carriers, testLogger())

		carriers.On("List", mock.Anything).Return(carrierCatalogue())
		clients.On("Get", mock.Anything, "c1").Return(configured(), nil)

		w := serve(http.MethodPut, "/api/clientes/{id}/transportadoras", "/api/clientes/c1/transportadoras",
			`[{"transportadora_id":"t9","ativo":true}]`, adminSession(), h.SaveCarriers)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Client session cannot save its own surcharges", func(t *testing.T) {
		clients := mocks.NewClientServiceMock(t)
		carriers := mocks.NewCarrierServiceMock(t)
		h := NewClientsHandler(clients, carriers, testLogger())

		edits := `[{"transportadora_id":"t1","ativo":true,"formulario":{"tipo_acrescimo":"VALOR","valor_acrescimo":0.01}}]`
		w := serve(http.MethodPut, "/api/clientes/{id}/transportadoras", "/api/clientes/c1/transportadoras",
			edits, clientSession("c1"), h.SaveCarriers)

		assert.Equal(t, http.StatusForbidden, w.Code)
		clients.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		clients.AssertNotCalled(t, "SaveCarrierConfigs", mock.Anything, mock.Anything, mock.Anything)
	})
}
