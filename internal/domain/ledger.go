package domain

import "github.com/avc/frete-console/internal/utils/money"

// Contribution вклад записи в баланс: recarga увеличивает, consumo уменьшает.
// Знак сохраненного значения не важен.
func (t Transaction) Contribution() money.Cents {
	switch t.Type {
	case TransactionTypeRecharge:
		return t.Value.Abs()
	case TransactionTypeConsumption:
		return -t.Value.Abs()
	default:
		return 0
	}
}

// LedgerBalance баланс = Σ recarga − Σ |consumo|, порядок записей не важен
func LedgerBalance(transactions []Transaction) money.Cents {
	var balance money.Cents
	for _, tx := range transactions {
		balance += tx.Contribution()
	}
	return balance
}

// Summarize считает агрегаты по списку записей журнала
func Summarize(transactions []Transaction) Summary {
	var s Summary
	for _, tx := range transactions {
		switch tx.Type {
		case TransactionTypeRecharge:
			s.TotalRecharges += tx.Value.Abs()
			s.RechargeCount++
		case TransactionTypeConsumption:
			s.TotalConsumptions += tx.Value.Abs()
			s.ConsumptionCount++
		}
	}
	s.Balance = s.TotalRecharges - s.TotalConsumptions
	return s
}
