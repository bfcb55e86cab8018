package domain

import (
	"net/url"
	"strconv"

	"github.com/avc/frete-console/internal/utils/money"
)

// ClientFilter фильтр списка клиентов
type ClientFilter struct {
	Search string `json:"busca"`
	Active *bool  `json:"ativo"`
	PlanID string `json:"plano_id"`
	Limit  int    `json:"limite" validate:"gte=0,lte=200"`
	Offset int    `json:"offset" validate:"gte=0"`
}

// Query переводит фильтр в параметры запроса к REST API
func (f ClientFilter) Query() url.Values {
	q := url.Values{}
	q.Set("order", "nome_empresa.asc")
	if f.Search != "" {
		q.Set("nome_empresa", "ilike.*"+f.Search+"*")
	}
	if f.Active != nil {
		q.Set("ativo", "eq."+strconv.FormatBool(*f.Active))
	}
	if f.PlanID != "" {
		q.Set("plano_id", "eq."+f.PlanID)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	return q
}

// AddressRequest адрес в форме клиента
type AddressRequest struct {
	ZipCode    string `json:"cep" validate:"required,cep"`
	Street     string `json:"logradouro" validate:"required"`
	Number     string `json:"numero" validate:"required"`
	Complement string `json:"complemento"`
	District   string `json:"bairro" validate:"required"`
	City       string `json:"cidade" validate:"required"`
	State      string `json:"uf" validate:"required,uf"`
}

// ClientRequest создание или полная замена клиента
type ClientRequest struct {
	CompanyName string         `json:"nome_empresa" validate:"required,min=2,max=200"`
	Document    string         `json:"cpf_cnpj" validate:"required,cpfcnpj"`
	Email       string         `json:"email" validate:"required,email"`
	Phone       string         `json:"telefone" validate:"omitempty,min=10,max=20"`
	Address     AddressRequest `json:"endereco" validate:"required"`
	Settings    ClientSettings `json:"configuracoes"`
	Active      bool           `json:"ativo"`
	PlanID      *string        `json:"plano_id" validate:"omitempty,uuid"`
}

// PlanRequest создание или замена тарифного плана
type PlanRequest struct {
	Name          string      `json:"nome" validate:"required,min=2,max=100"`
	Description   string      `json:"descricao" validate:"max=500"`
	Price         money.Cents `json:"preco" validate:"gte=0"`
	ShipmentLimit int         `json:"limite_envios" validate:"gte=0"`
	Active        bool        `json:"ativo"`
}

// JobRequest постановка фоновой задачи
type JobRequest struct {
	Type     string         `json:"tipo" validate:"required,oneof=sincronizar_rastreios gerar_faturas reprocessar_emissoes"`
	ClientID *string        `json:"cliente_id" validate:"omitempty,uuid"`
	Params   map[string]any `json:"parametros"`
}

// CreateUserRequest создание пользователя
type CreateUserRequest struct {
	Name     string   `json:"nome" validate:"required,min=2"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"senha" validate:"required,min=8"`
	Role     UserRole `json:"perfil" validate:"required,oneof=admin cliente"`
	ClientID *string  `json:"cliente_id" validate:"required_if=Role cliente,omitempty,uuid"`
}

// UpdateUserRequest изменение пользователя
type UpdateUserRequest struct {
	Name     string   `json:"nome" validate:"required,min=2"`
	Email    string   `json:"email" validate:"required,email"`
	Role     UserRole `json:"perfil" validate:"required,oneof=admin cliente"`
	ClientID *string  `json:"cliente_id" validate:"required_if=Role cliente,omitempty,uuid"`
}

// BoletoRequest выпуск boleto
type BoletoRequest struct {
	ClientID    string      `json:"cliente_id" validate:"required"`
	Value       money.Cents `json:"valor" validate:"gt=0"`
	DueDate     string      `json:"vencimento" validate:"required,datetime=2006-01-02"`
	Description string      `json:"descricao" validate:"max=200"`
}

// CancelBoletoRequest отмена boleto
type CancelBoletoRequest struct {
	BoletoID string `json:"boleto_id" validate:"required"`
	Reason   string `json:"motivo" validate:"required,oneof=ACERTOS APEDIDODOCLIENTE PAGODIRETOAOCLIENTE SUBSTITUICAO"`
}

// WebhookRequest настройка webhook банка
type WebhookRequest struct {
	URL string `json:"webhook_url" validate:"required,url"`
}

// PixRechargeRequest создание пополнения через PIX
type PixRechargeRequest struct {
	ClientID string      `json:"cliente_id" validate:"required"`
	Value    money.Cents `json:"valor" validate:"gt=0"`
}

// ManualPaymentRequest ручное подтверждение оплаты PIX
type ManualPaymentRequest struct {
	TxID string `json:"txid" validate:"required"`
}

// ManualCreditRequest ручное начисление кредита
type ManualCreditRequest struct {
	ClientID    string      `json:"cliente_id" validate:"required"`
	Value       money.Cents `json:"valor" validate:"gt=0"`
	Description string      `json:"descricao" validate:"required,min=3"`
}

// ClosingRequest закрытие периода
type ClosingRequest struct {
	ClientID string `json:"cliente_id,omitempty"`
	Period   string `json:"periodo" validate:"required,datetime=2006-01"`
}
