package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
)

// Currency площадки. Все суммы хранятся в рупиях с точностью до пайсы.
const Currency = "INR"

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Breakdown раскладывает сумму на удержание и остаток.
type Breakdown struct {
	Amount decimal.Decimal `json:"amount"`
	Tax    decimal.Decimal `json:"tax"`
	Net    decimal.Decimal `json:"net"`
}

// Round округляет сумму до пайсы.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(moneyPlaces)
}

// Percent возвращает percent% от amount, округлённые до пайсы.
func Percent(amount, percent decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(percent).Div(hundred))
}

// NewAmount проверяет, что сумма положительна, и округляет её.
func NewAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperror.New(apperror.ErrCodeValidation, "сумма должна быть положительной")
	}
	return Round(amount), nil
}

// Split удерживает percent% с суммы: Net = Amount - Tax.
func Split(amount, percent decimal.Decimal) Breakdown {
	amount = Round(amount)
	tax := Percent(amount, percent)
	return Breakdown{Amount: amount, Tax: tax, Net: amount.Sub(tax)}
}

// SplitInclusive выделяет налог, уже включённый в сумму (GST в цене подписки).
func SplitInclusive(amount, percent decimal.Decimal) Breakdown {
	amount = Round(amount)
	tax := Round(amount.Mul(percent).Div(hundred.Add(percent)))
	return Breakdown{Amount: amount, Tax: tax, Net: amount.Sub(tax)}
}

// CampaignFunding считает бюджет кампании и сумму списания со спонсора.
// Amount = бюджет + комиссия площадки, Tax = комиссия, Net = бюджет в escrow.
func CampaignFunding(payAmount decimal.Decimal, spots int, feePercent decimal.Decimal) Breakdown {
	budget := Round(payAmount.Mul(decimal.NewFromInt(int64(spots))))
	fee := Percent(budget, feePercent)
	return Breakdown{Amount: budget.Add(fee), Tax: fee, Net: budget}
}

// Discount применяет процентную скидку, цена не уходит ниже нуля.
func Discount(price, percent decimal.Decimal) decimal.Decimal {
	if percent.GreaterThanOrEqual(hundred) {
		return decimal.Zero
	}
	off := Percent(price, percent)
	return Round(price.Sub(off))
}
