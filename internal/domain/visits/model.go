package visits

import "time"

type Visit struct {
	ID             int64 `json:"id"`
	ClientID       int64 `json:"clientId"`
	SubscriptionID int64 `json:"subscriptionId"`
	// VisitDate в сдвинутом локальном времени клуба.
	VisitDate   time.Time `json:"visitDate"`
	IsFreezeDay bool      `json:"isFreezeDay"`
	// QRCode токен для аудита/дедупликации, картинки здесь нет.
	QRCode    string    `json:"qrCode"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReportRow строка выгрузки посещений.
type ReportRow struct {
	Visit
	ClientName  string
	ClientPhone string
	ExternalID  string
}
