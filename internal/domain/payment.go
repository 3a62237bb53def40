package domain

// Payment описывает платёж заказа. Разные способы оплаты несут разный набор данных,
// поэтому токен карты и число рассрочек доступны только через CardTokenCarrier
// и InstallmentsCarrier.
type Payment interface {
	Method() PaymentMethod
	AmountMinor() int64
}

// CardTokenCarrier реализуют платежи, у которых есть токен карты.
type CardTokenCarrier interface {
	CardToken() string
}

// InstallmentsCarrier реализуют платежи с рассрочкой.
type InstallmentsCarrier interface {
	Installments() int
}

// CardPayment — оплата картой по токену.
type CardPayment struct {
	Token           string
	InstallmentsNum int
	Amount          int64
	Debit           bool
}

func (p CardPayment) Method() PaymentMethod {
	if p.Debit {
		return PaymentMethodDebitCard
	}
	return PaymentMethodCreditCard
}

func (p CardPayment) AmountMinor() int64 { return p.Amount }

// CardToken возвращает токен карты.
func (p CardPayment) CardToken() string { return p.Token }

// Installments возвращает число платежей рассрочки.
func (p CardPayment) Installments() int { return p.InstallmentsNum }

// BoletoPayment — оплата по boleto: ни токена, ни рассрочки.
type BoletoPayment struct {
	Amount int64
}

func (p BoletoPayment) Method() PaymentMethod { return PaymentMethodBoleto }

func (p BoletoPayment) AmountMinor() int64 { return p.Amount }

var (
	_ CardTokenCarrier    = CardPayment{}
	_ InstallmentsCarrier = CardPayment{}
	_ Payment             = BoletoPayment{}
)
