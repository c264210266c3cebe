package dialog

type State string

const (
	StateIdle State = "idle"
	// показали карточку проверки, ждём подтверждения или заморозки
	StateAwaitVisitConfirm State = "await_visit_confirm"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
