package mocks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/avc/frete-console/internal/domain"
	"github.com/stretchr/testify/mock"
)

// SessionServiceMock мок domain.SessionService
type SessionServiceMock struct {
	mock.Mock
}

// NewSessionServiceMock создает мок с проверкой ожиданий
func NewSessionServiceMock(t *testing.T) *SessionServiceMock {
	m := &SessionServiceMock{}
	register(t, &m.Mock)
	return m
}

func (m *SessionServiceMock) Login(ctx context.Context, email, password string) (string, *domain.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(1).(*domain.Session)
	return args.String(0), s, args.Error(2)
}

func (m *SessionServiceMock) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// ClientServiceMock мок domain.ClientService
type ClientServiceMock struct {
	mock.Mock
}

// NewClientServiceMock создает мок с проверкой ожиданий
func NewClientServiceMock(t *testing.T) *ClientServiceMock {
	m := &ClientServiceMock{}
	register(t, &m.Mock)
	return m
}

func (m *ClientServiceMock) List(ctx context.Context, filter domain.ClientFilter) ([]domain.Client, error) {
	args := m.Called(ctx, filter)
	clients, _ := args.Get(0).([]domain.Client)
	return clients, args.Error(1)
}

func (m *ClientServiceMock) Get(ctx context.Context, id string) (*domain.Client, error) {
	args := m.Called(ctx, id)
	client, _ := args.Get(0).(*domain.Client)
	return client, args.Error(1)
}

func (m *ClientServiceMock) Create(ctx context.Context, req domain.ClientRequest) (*domain.Client, error) {
	args := m.Called(ctx, req)
	client, _ := args.Get(0).(*domain.Client)
	return client, args.Error(1)
}

func (m *ClientServiceMock) Update(ctx context.Context, id string, req domain.ClientRequest) (*domain.Client, error) {
	args := m.Called(ctx, id, req)
	client, _ := args.Get(0).(*domain.Client)
	return client, args.Error(1)
}

func (m *ClientServiceMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ClientServiceMock) SaveCarrierConfigs(ctx context.Context, clientID string, configs []domain.CarrierConfig) (*domain.Client, error) {
	args := m.Called(ctx, clientID, configs)
	client, _ := args.Get(0).(*domain.Client)
	return client, args.Error(1)
}

// CarrierServiceMock мок domain.CarrierService
type CarrierServiceMock struct {
	mock.Mock
}

// NewCarrierServiceMock создает мок с проверкой ожиданий
func NewCarrierServiceMock(t *testing.T) *CarrierServiceMock {
	m := &CarrierServiceMock{}
	register(t, &m.Mock)
	return m
}

func (m *CarrierServiceMock) List(ctx context.Context) []domain.Carrier {
	carriers, _ := m.Called(ctx).Get(0).([]domain.Carrier)
	return carriers
}

func (m *CarrierServiceMock) Get(ctx context.Context, id string) (*domain.Carrier, error) {
	args := m.Called(ctx, id)
	carrier, _ := args.Get(0).(*domain.Carrier)
	return carrier, args.Error(1)
}

// PlanServiceMock мок domain.PlanService
type PlanServiceMock struct {
	mock.Mock
}

// NewPlanServiceMock создает мок с проверкой ожиданий
func NewPlanServiceMock(t *testing.T) *PlanServiceMock {
	m := &PlanServiceMock{}
	register(t, &m.Mock)
	return m
}

func (m *PlanServiceMock) List(ctx context.Context) ([]domain.Plan, error) {
	args := m.Called(ctx)
	plans, _ := args.Get(0).([]domain.Plan)
	return plans, args.Error(1)
}

func (m *PlanServiceMock) Get(ctx context.Context, id string) (*domain.Plan, error) {
	args := m.Called(ctx, id)
	plan, _ := args.Get(0).(*domain.Plan)
	return plan, args.Error(1)
}

func (m *PlanServiceMock) Create(ctx context.Context, req domain.PlanRequest) (*domain.Plan, error) {
	args := m.Called(ctx, req)
	plan, _ := args.Get(0).(*domain.Plan)
	return plan, args.Error(1)
}

func (m *PlanServiceMock) Update(ctx context.Context, id string, req domain.PlanRequest) (*domain.Plan, error) {
	args := m.Called(ctx, id, req)
	plan, _ := args.Get(0).(*domain.Plan)
	return plan, args.Error(1)
}

func (m *PlanServiceMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// JobServiceMock мок domain.JobService
type JobServiceMock struct {
	mock.Mock
}

// NewJobServiceMock создает мок с проверкой ожиданий
func NewJobServiceMock(t *testing.T) *JobServiceMock {
	m := &JobServiceMock{}
	register(t, &m.Mock)
	return m
}

func (m *JobServiceMock) List(ctx context.Context, clientID string) ([]domain.Job, error) {
	args := m.Called(ctx, clientID)
	jobs, _ := args.Get(0).([]domain.Job)
	return jobs, args.Error(1)
}

func (m *JobServiceMock) Get(ctx context.Context, id string) (*domain.Job, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*domain.Job)
	return job, args.Error(1)
}

func (m *JobServiceMock) Create(ctx context.Context, req domain.JobRequest) (*domain.Job, error) {
	args := m.Called(ctx, req)
	job, _ := args.Get(0).(*domain.Job)
	return job, args.Error(1)
}

// UserServiceMock мок domain.UserService
type UserServiceMock struct {
	mock.Mock
}

// NewUserServiceMock создает мок с проверкой ожиданий
func NewUserServiceMock(t *testing.T) *UserServiceMock {
	m := &UserServiceMock{}
	register(t, &m.Mock)
	return m
}

func (m *UserServiceMock) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *UserServiceMock) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserServiceMock) Update(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, id, req)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserServiceMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// BoletoServiceMock мок domain.BoletoService
type BoletoServiceMock struct {
	mock.Mock
}

// NewBoletoServiceMock создает мок с проверкой ожиданий
func NewBoletoServiceMock(t *testing.T) *BoletoServiceMock {
	m := &BoletoServiceMock{}
	register(t, &m.Mock)
	return m
}

func (m *BoletoServiceMock) List(ctx context.Context, clientID string) ([]domain.Boleto, error) {
	args := m.Called(ctx, clientID)
	boletos, _ := args.Get(0).([]domain.Boleto)
	return boletos, args.Error(1)
}

func (m *BoletoServiceMock) Issue(ctx context.Context, req domain.BoletoRequest) (*domain.Boleto, error) {
	args := m.Called(ctx, req)
	boleto, _ := args.Get(0).(*domain.Boleto)
	return boleto, args.Error(1)
}

func (m *BoletoServiceMock) Cancel(ctx context.Context, req domain.CancelBoletoRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *BoletoServiceMock) ConfigureWebhook(ctx context.Context, req domain.WebhookRequest) error {
	return m.Called(ctx, req).Error(0)
}

// PixServiceMock мок domain.PixService
type PixServiceMock struct {
	mock.Mock
}

// NewPixServiceMock создает мок с проверкой ожиданий
func NewPixServiceMock(t *testing.T) *PixServiceMock {
	m := &PixServiceMock{}
	register(t, &m.Mock)
	return m
}

func (m *PixServiceMock) CreateRecharge(ctx context.Context, req domain.PixRechargeRequest) (*domain.PixRecharge, error) {
	args := m.Called(ctx, req)
	recharge, _ := args.Get(0).(*domain.PixRecharge)
	return recharge, args.Error(1)
}

func (m *PixServiceMock) ListRecharges(ctx context.Context, clientID string) ([]domain.PixRecharge, error) {
	args := m.Called(ctx, clientID)
	recharges, _ := args.Get(0).([]domain.PixRecharge)
	return recharges, args.Error(1)
}

// CreditServiceMock мок domain.CreditService
type CreditServiceMock struct {
	mock.Mock
}

// NewCreditServiceMock создает мок с проверкой ожиданий
func NewCreditServiceMock(t *testing.T) *CreditServiceMock {
	m := &CreditServiceMock{}
	register(t, &m.Mock)
	return m
}

func (m *CreditServiceMock) Statement(ctx context.Context, clientID string) domain.Result[[]domain.Transaction] {
	return m.Called(ctx, clientID).Get(0).(domain.Result[[]domain.Transaction])
}

func (m *CreditServiceMock) Summary(ctx context.Context, clientID string) domain.Result[domain.Summary] {
	return m.Called(ctx, clientID).Get(0).(domain.Result[domain.Summary])
}

func (m *CreditServiceMock) Balance(ctx context.Context, clientID string) (*domain.BalanceView, error) {
	args := m.Called(ctx, clientID)
	balance, _ := args.Get(0).(*domain.BalanceView)
	return balance, args.Error(1)
}

func (m *CreditServiceMock) AddManualCredit(ctx context.Context, req domain.ManualCreditRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *CreditServiceMock) ConfirmManualPayment(ctx context.Context, req domain.ManualPaymentRequest) error {
	return m.Called(ctx, req).Error(0)
}

// ClosingServiceMock мок domain.ClosingService
type ClosingServiceMock struct {
	mock.Mock
}

// NewClosingServiceMock создает мок с проверкой ожиданий
func NewClosingServiceMock(t *testing.T) *ClosingServiceMock {
	m := &ClosingServiceMock{}
	register(t, &m.Mock)
	return m
}

func (m *ClosingServiceMock) Close(ctx context.Context, req domain.ClosingRequest) (*domain.ClosingResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*domain.ClosingResult)
	return result, args.Error(1)
}

// StateServiceMock мок domain.StateService
type StateServiceMock struct {
	mock.Mock
}

// NewStateServiceMock создает мок с проверкой ожиданий
func NewStateServiceMock(t *testing.T) *StateServiceMock {
	m := &StateServiceMock{}
	register(t, &m.Mock)
	return m
}

func (m *StateServiceMock) SaveDraft(ctx context.Context, userID string, data json.RawMessage) (*domain.PlanDraft, error) {
	args := m.Called(ctx, userID, data)
	draft, _ := args.Get(0).(*domain.PlanDraft)
	return draft, args.Error(1)
}

func (m *StateServiceMock) GetDraft(ctx context.Context, userID string) (*domain.PlanDraft, error) {
	args := m.Called(ctx, userID)
	draft, _ := args.Get(0).(*domain.PlanDraft)
	return draft, args.Error(1)
}

func (m *StateServiceMock) DiscardDraft(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *StateServiceMock) RememberRedirect(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *StateServiceMock) TakeRedirect(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *StateServiceMock) NextReceipt(ctx context.Context, receiptType string) (*domain.Receipt, error) {
	args := m.Called(ctx, receiptType)
	receipt, _ := args.Get(0).(*domain.Receipt)
	return receipt, args.Error(1)
}
