package client

import (
	"github.com/posware/kernel/money"
	"github.com/shopspring/decimal"
)

func moneyFromDecimal(amount decimal.Decimal, currency string) money.Money {
	return money.New(amount, currency)
}
