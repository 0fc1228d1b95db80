package create_booking_link

// Request параметры выпуска пары ссылок (бронирование + оплата)
type Request struct {
	BuilderID     int64  `validate:"required,gt=0"`
	ClientID      int64  `validate:"required,gt=0"`
	SessionTypeID int64  `validate:"required,gt=0"`
	EventTypeURI  string `validate:"required,url"`
	ProductName   string `validate:"required,max=250"`
	AmountMinor   int64  `validate:"required,gt=0"`
	Currency      string `validate:"required,len=3"`
}

// Response пара ссылок, связанных общим ключом корреляции
type Response struct {
	CorrelationKey    string
	SchedulingURL     string
	CheckoutURL       string
	CheckoutSessionID string
}
