package domain

import (
	"context"
	"encoding/json"
)

// DraftRepository хранит черновики тарифных планов
type DraftRepository interface {
	SaveDraft(ctx context.Context, userID string, data json.RawMessage) (*PlanDraft, error)
	GetDraft(ctx context.Context, userID string) (*PlanDraft, error)
	DeleteDraft(ctx context.Context, userID string) error
}

// RedirectRepository хранит одноразовые адреса возврата после входа
type RedirectRepository interface {
	SaveRedirect(ctx context.Context, id, path string) error
	PopRedirect(ctx context.Context, id string) (string, error)
}

// ReceiptCounterRepository выдает последовательные номера квитанций
type ReceiptCounterRepository interface {
	NextReceiptNumber(ctx context.Context, receiptType string) (int64, error)
}

// SessionService вход и выход пользователей
type SessionService interface {
	Login(ctx context.Context, email, password string) (string, *Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// ClientService операции с клиентами
type ClientService interface {
	List(ctx context.Context, filter ClientFilter) ([]Client, error)
	Get(ctx context.Context, id string) (*Client, error)
	Create(ctx context.Context, req ClientRequest) (*Client, error)
	Update(ctx context.Context, id string, req ClientRequest) (*Client, error)
	Delete(ctx context.Context, id string) error
	SaveCarrierConfigs(ctx context.Context, clientID string, configs []CarrierConfig) (*Client, error)
}

// CarrierService каталог перевозчиков
type CarrierService interface {
	List(ctx context.Context) []Carrier
	Get(ctx context.Context, id string) (*Carrier, error)
}

// PlanService операции с тарифными планами
type PlanService interface {
	List(ctx context.Context) ([]Plan, error)
	Get(ctx context.Context, id string) (*Plan, error)
	Create(ctx context.Context, req PlanRequest) (*Plan, error)
	Update(ctx context.Context, id string, req PlanRequest) (*Plan, error)
	Delete(ctx context.Context, id string) error
}

// JobService фоновые задачи backend
type JobService interface {
	List(ctx context.Context, clientID string) ([]Job, error)
	Get(ctx context.Context, id string) (*Job, error)
	Create(ctx context.Context, req JobRequest) (*Job, error)
}

// UserService пользователи консоли
type UserService interface {
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, id string) error
}

// BoletoService выпуск и отмена boleto
type BoletoService interface {
	List(ctx context.Context, clientID string) ([]Boleto, error)
	Issue(ctx context.Context, req BoletoRequest) (*Boleto, error)
	Cancel(ctx context.Context, req CancelBoletoRequest) error
	ConfigureWebhook(ctx context.Context, req WebhookRequest) error
}

// PixService пополнения через PIX
type PixService interface {
	CreateRecharge(ctx context.Context, req PixRechargeRequest) (*PixRecharge, error)
	ListRecharges(ctx context.Context, clientID string) ([]PixRecharge, error)
}

// CreditService кредитный журнал клиента
type CreditService interface {
	Statement(ctx context.Context, clientID string) Result[[]Transaction]
	Summary(ctx context.Context, clientID string) Result[Summary]
	Balance(ctx context.Context, clientID string) (*BalanceView, error)
	AddManualCredit(ctx context.Context, req ManualCreditRequest) error
	ConfirmManualPayment(ctx context.Context, req ManualPaymentRequest) error
}

// ClosingService закрытие периода
type ClosingService interface {
	Close(ctx context.Context, req ClosingRequest) (*ClosingResult, error)
}

// StateService локальное состояние консоли: черновики, возврат после входа, номера квитанций
type StateService interface {
	SaveDraft(ctx context.Context, userID string, data json.RawMessage) (*PlanDraft, error)
	GetDraft(ctx context.Context, userID string) (*PlanDraft, error)
	DiscardDraft(ctx context.Context, userID string) error
	RememberRedirect(ctx context.Context, path string) (string, error)
	TakeRedirect(ctx context.Context, id string) (string, error)
	NextReceipt(ctx context.Context, receiptType string) (*Receipt, error)
}
