package domain

import (
	"encoding/json"
	"time"

	"github.com/avc/frete-console/internal/utils/money"
)

// TransactionType тип записи кредитного журнала
type TransactionType string

const (
	TransactionTypeRecharge    TransactionType = "recarga"
	TransactionTypeConsumption TransactionType = "consumo"
)

// PaymentStatus статус записи recargas_pix
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pendente_pagamento"
	PaymentStatusPaid    PaymentStatus = "pago"
)

// SurchargeType тип надбавки перевозчика
type SurchargeType string

const (
	SurchargeFixed      SurchargeType = "VALOR"
	SurchargePercentage SurchargeType = "PERCENTUAL"
)

// UserRole роль пользователя консоли
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleClient UserRole = "cliente"
)

// Transaction запись кредитного журнала (только добавление)
type Transaction struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"cliente_id"`
	Type        TransactionType `json:"tipo"`
	Value       money.Cents     `json:"valor"`
	Description string          `json:"descricao"`
	EmissionID  *string         `json:"emissao_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PixRecharge запись пополнения через PIX
type PixRecharge struct {
	TxID      string        `json:"txid"`
	ClientID  string        `json:"cliente_id"`
	Status    PaymentStatus `json:"status"`
	Value     money.Cents   `json:"valor"`
	QRCode    string        `json:"qr_code,omitempty"`
	CopyPaste string        `json:"pix_copia_cola,omitempty"`
	ExpiresAt *time.Time    `json:"expira_em,omitempty"`
	PaidAt    *time.Time    `json:"pago_em,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Summary агрегаты журнала клиента
type Summary struct {
	TotalRecharges    money.Cents `json:"total_recargas"`
	TotalConsumptions money.Cents `json:"total_consumos"`
	RechargeCount     int         `json:"quantidade_recargas"`
	ConsumptionCount  int         `json:"quantidade_consumos"`
	Balance           money.Cents `json:"saldo"`
}

// BalanceView балансы клиента для дашборда
type BalanceView struct {
	Available money.Cents `json:"saldo_disponivel"`
	Recharge  money.Cents `json:"saldo_recarga"`
}

// CarrierConfig настройка перевозчика для клиента
type CarrierConfig struct {
	CarrierID      string        `json:"transportadora_id"`
	CarrierName    string        `json:"transportadora_nome"`
	Active         bool          `json:"ativo"`
	SurchargeType  SurchargeType `json:"tipo_acrescimo"`
	SurchargeValue float64       `json:"valor_acrescimo"`
	MaxHeight      *float64      `json:"altura_maxima,omitempty"`
	MaxWidth       *float64      `json:"largura_maxima,omitempty"`
	MaxLength      *float64      `json:"comprimento_maximo,omitempty"`
	MaxWeight      *float64      `json:"peso_maximo,omitempty"`
}

// Address адрес клиента
type Address struct {
	ZipCode    string `json:"cep"`
	Street     string `json:"logradouro"`
	Number     string `json:"numero"`
	Complement string `json:"complemento,omitempty"`
	District   string `json:"bairro"`
	City       string `json:"cidade"`
	State      string `json:"uf"`
}

// ClientSettings настройки клиента
type ClientSettings struct {
	RequireSizeLimits bool        `json:"exigir_limites_dimensoes"`
	CreditLimit       money.Cents `json:"limite_credito"`
	PostpaidBilling   bool        `json:"faturamento_pos_pago"`
}

// Client клиент (корень агрегата), сохраняется целиком
type Client struct {
	ID             string          `json:"id,omitempty"`
	CompanyName    string          `json:"nome_empresa"`
	Document       string          `json:"cpf_cnpj"`
	Email          string          `json:"email"`
	Phone          string          `json:"telefone,omitempty"`
	Address        Address         `json:"endereco"`
	Settings       ClientSettings  `json:"configuracoes"`
	CarrierConfigs []CarrierConfig `json:"transportadora_configuracoes"`
	Active         bool            `json:"ativo"`
	PlanID         *string         `json:"plano_id,omitempty"`
	CreatedAt      *time.Time      `json:"created_at,omitempty"`
}

// Carrier перевозчик из каталога
type Carrier struct {
	ID     string `json:"id"`
	Name   string `json:"nome"`
	Code   string `json:"codigo"`
	Active bool   `json:"ativo"`
}

// Plan тарифный план
type Plan struct {
	ID            string      `json:"id,omitempty"`
	Name          string      `json:"nome"`
	Description   string      `json:"descricao,omitempty"`
	Price         money.Cents `json:"preco"`
	ShipmentLimit int         `json:"limite_envios"`
	Active        bool        `json:"ativo"`
}

// Job фоновая задача backend
type Job struct {
	ID        string    `json:"id"`
	Type      string    `json:"tipo"`
	Status    string    `json:"status"`
	ClientID  *string   `json:"cliente_id,omitempty"`
	Detail    string    `json:"detalhe,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Boleto платежный бланк
type Boleto struct {
	ID            string      `json:"id"`
	ClientID      string      `json:"cliente_id"`
	Value         money.Cents `json:"valor"`
	DueDate       string      `json:"vencimento"`
	Status        string      `json:"status"`
	OurNumber     string      `json:"nosso_numero,omitempty"`
	DigitableLine string      `json:"linha_digitavel,omitempty"`
}

// User пользователь консоли
type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"nome"`
	Email    string   `json:"email"`
	Role     UserRole `json:"perfil"`
	ClientID *string  `json:"cliente_id,omitempty"`
}

// IsAdmin пользователь с правами администратора
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session сессия пользователя консоли
type Session struct {
	ID          string    `json:"id"`
	User        User      `json:"usuario"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expira_em"`
	CreatedAt   time.Time `json:"created_at"`
}

// Scope область данных сессии для кэша и push: id клиента или id пользователя
func (s *Session) Scope() string {
	if s.User.ClientID != nil && *s.User.ClientID != "" {
		return *s.User.ClientID
	}
	return s.User.ID
}

// PlanDraft черновик тарифного плана пользователя
type PlanDraft struct {
	UserID    string          `json:"-"`
	Data      json.RawMessage `json:"dados"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ClosingResult итог закрытия периода
type ClosingResult struct {
	Period       string      `json:"periodo"`
	ClientsCount int         `json:"quantidade_clientes"`
	Total        money.Cents `json:"valor_total"`
	Message      string      `json:"mensagem,omitempty"`
}

// Receipt номер квитанции
type Receipt struct {
	Type     string `json:"tipo"`
	Sequence int64  `json:"sequencia"`
	Number   string `json:"numero"`
}
