package stripepay

// CheckoutParams параметры создания checkout-сессии
type CheckoutParams struct {
	// CorrelationKey попадает в client_reference_id сессии и возвращается
	// в webhook checkout.session.completed
	CorrelationKey string
	ProductName    string
	AmountMinor    int64
	Currency       string
	SuccessURL     string
	CancelURL      string
}

// CheckoutSession созданная checkout-сессия
type CheckoutSession struct {
	ID  string
	URL string
}

// Refund результат создания возврата у провайдера
type Refund struct {
	ID          string
	Status      string
	AmountMinor int64
}
