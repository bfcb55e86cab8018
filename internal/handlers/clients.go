package handlers

import (
	"net/http"
	"strconv"

	"github.com/avc/frete-console/internal/carrierconfig"
	"github.com/avc/frete-console/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ClientsHandler struct {
	clients  domain.ClientService
	carriers domain.CarrierService
	logger   *zap.Logger
}

func NewClientsHandler(clients domain.ClientService, carriers domain.CarrierService, logger *zap.Logger) *ClientsHandler {
	return &ClientsHandler{
		clients:  clients,
		carriers: carriers,
		logger:   logger,
	}
}

// List список клиентов: ?busca=&ativo=&plano_id=&limite=&offset=
func (h *ClientsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	clients, err := h.clients.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, clients)
}

func (h *ClientsHandler) parseFilter(w http.ResponseWriter, r *http.Request) (domain.ClientFilter, bool) {
	q := r.URL.Query()
	filter := domain.ClientFilter{
		Search: q.Get("busca"),
		PlanID: q.Get("plano_id"),
	}

	if v := q.Get("ativo"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeMessage(w, h.logger, http.StatusBadRequest, "Filtro 'ativo' inválido")
			return filter, false
		}
		filter.Active = &active
	}

	for param, dst := range map[string]*int{"limite": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(param)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeMessage(w, h.logger, http.StatusBadRequest, "Filtro '"+param+"' inválido")
			return filter, false
		}
		*dst = n
	}

	return filter, true
}

func (h *ClientsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clientID(w, r)
	if !ok {
		return
	}

	client, err := h.clients.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, client)
}

func (h *ClientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	client, err := h.clients.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, client)
}

func (h *ClientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.ClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	client, err := h.clients.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, client)
}

func (h *ClientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.clients.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClientsHandler) Carriers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.carriers.List(r.Context()))
}

type carrierEditorResponse struct {
	Rows       []carrierconfig.Row `json:"transportadoras"`
	Incomplete []string            `json:"incompletas"`
}

// CarrierEditor строки редактора перевозчиков клиента
func (h *ClientsHandler) CarrierEditor(w http.ResponseWriter, r *http.Request) {
	editor, _, ok := h.loadEditor(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, editorResponse(editor))
}

// SaveCarriers применяет изменения редактора и сохраняет массив целиком.
// Сохранять надбавки может только оператор, клиенту редактор доступен на чтение.
func (h *ClientsHandler) SaveCarriers(w http.ResponseWriter, r *http.Request) {
	if s, ok := currentSession(r); !ok || !s.User.IsAdmin() {
		writeError(w, h.logger, domain.ErrAdminOnly)
		return
	}

	var edits []carrierconfig.Edit
	if err := decodeJSON(w, r, &edits); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	editor, client, ok := h.loadEditor(w, r)
	if !ok {
		return
	}

	if err := editor.ApplyEdits(edits); err != nil {
		writeError(w, h.logger, err)
		return
	}

	saved, err := h.clients.SaveCarrierConfigs(r.Context(), client.ID, editor.Output())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("carrier configs saved",
		zap.String("cliente_id", client.ID),
		zap.Int("ativas", len(saved.CarrierConfigs)),
	)
	editor = carrierconfig.NewEditor(h.carriers.List(r.Context()), saved.CarrierConfigs, saved.Settings.RequireSizeLimits)
	writeJSON(w, h.logger, http.StatusOK, editorResponse(editor))
}

func (h *ClientsHandler) loadEditor(w http.ResponseWriter, r *http.Request) (*carrierconfig.Editor, *domain.Client, bool) {
	id, ok := h.clientID(w, r)
	if !ok {
		return nil, nil, false
	}

	client, err := h.clients.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return nil, nil, false
	}

	editor := carrierconfig.NewEditor(h.carriers.List(r.Context()), client.CarrierConfigs, client.Settings.RequireSizeLimits)
	return editor, client, true
}

func editorResponse(editor *carrierconfig.Editor) carrierEditorResponse {
	incomplete := editor.Incomplete()
	if incomplete == nil {
		incomplete = []string{}
	}
	return carrierEditorResponse{Rows: editor.Rows(), Incomplete: incomplete}
}

// clientID id клиента из пути с проверкой доступа
func (h *ClientsHandler) clientID(w http.ResponseWriter, r *http.Request) (string, bool) {
	return authorizedClient(w, r, h.logger, chi.URLParam(r, "id"))
}

// authorizedClient проверяет, что сессия может работать с клиентом
func authorizedClient(w http.ResponseWriter, r *http.Request, logger *zap.Logger, clientID string) (string, bool) {
	s, ok := currentSession(r)
	if !ok {
		writeError(w, logger, domain.ErrSessionNotFound)
		return "", false
	}
	if clientID == "" {
		writeMessage(w, logger, http.StatusBadRequest, "Cliente não informado")
		return "", false
	}
	if !canAccessClient(s, clientID) {
		writeError(w, logger, domain.ErrAdminOnly)
		return "", false
	}
	return clientID, true
}
