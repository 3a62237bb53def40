package domain

// PaymentMethod — способ оплаты, выбранный покупателем в заказе.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodBoleto     PaymentMethod = "boleto"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
)

// IntervalType задаёт единицу периода повторения подписки.
type IntervalType string

const (
	IntervalDay   IntervalType = "day"
	IntervalWeek  IntervalType = "week"
	IntervalMonth IntervalType = "month"
	IntervalYear  IntervalType = "year"
)

// BillingType определяет, когда выставляется счёт за цикл.
type BillingType string

const (
	BillingTypePrepaid  BillingType = "prepaid"
	BillingTypePostpaid BillingType = "postpaid"
	BillingTypeExactDay BillingType = "exact_day"
)

// Repetition — выбранная покупателем опция повторения для позиции заказа.
type Repetition struct {
	Interval      IntervalType `json:"interval"`
	IntervalCount int          `json:"interval_count"`
	// Cycles — количество циклов списания (0 означает бессрочно).
	Cycles      int         `json:"cycles"`
	BillingType BillingType `json:"billing_type"`
}

// RecurrenceSettings — настройки рекуррентного товара из каталога.
type RecurrenceSettings struct {
	ProductID   string       `json:"product_id"`
	Cycles      int          `json:"cycles"`
	BillingType BillingType  `json:"billing_type"`
	Repetitions []Repetition `json:"repetitions,omitempty"`
}

// Customer — покупатель, на которого оформляется подписка.
type Customer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document,omitempty"`
}

// Address — адрес доставки.
type Address struct {
	Street  string `json:"street"`
	Number  string `json:"number"`
	ZipCode string `json:"zip_code"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Shipping — данные доставки, копируются в подписку без изменений.
type Shipping struct {
	AmountMinor   int64   `json:"amount"`
	Description   string  `json:"description"`
	RecipientName string  `json:"recipient_name"`
	Address       Address `json:"address"`
}

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// Code — код товара на платформе, по нему ищутся настройки в каталоге.
	Code        string
	Description string
	Quantity    int
	// AmountMinor — цена за единицу в минимальных денежных единицах.
	AmountMinor int64
	// SelectedRepetition == nil означает, что позиция не рекуррентная.
	SelectedRepetition *Repetition
}

// IsRecurring сообщает, выбрал ли покупатель опцию повторения.
func (i OrderItem) IsRecurring() bool {
	return i.SelectedRepetition != nil
}

// Order — канонический платёжный заказ, извлечённый из заказа платформы.
// В рамках создания подписки не изменяется.
type Order struct {
	Code          string
	Customer      Customer
	Items         []OrderItem
	Payments      []Payment
	Shipping      *Shipping
	PaymentMethod PaymentMethod
}

// SubscriptionItems возвращает позиции с выбранной опцией повторения в исходном порядке.
func SubscriptionItems(order Order) []OrderItem {
	items := make([]OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		if item.IsRecurring() {
			items = append(items, item)
		}
	}
	return items
}

// PrimaryRecurrenceItem возвращает первую рекуррентную позицию заказа.
// Именно она служит источником настроек повторения для всей подписки.
func PrimaryRecurrenceItem(order Order) (OrderItem, error) {
	for _, item := range order.Items {
		if item.IsRecurring() {
			return item, nil
		}
	}
	return OrderItem{}, ErrRecurrenceItemsNotFound
}
