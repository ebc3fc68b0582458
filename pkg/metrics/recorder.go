package metrics

// Методы-рекордеры бизнес-метрик. Потребители (usecases, сервисы) зависят
// от узких интерфейсов в своих пакетах; при выключенных метриках
// подставляется Noop

// IncBookingCreated увеличивает счетчик созданных занятий
func (m *Metrics) IncBookingCreated(lessonType string) {
	m.BookingsCreatedTotal.WithLabelValues(lessonType).Inc()
}

// IncPayment увеличивает счетчик попыток оплаты по результату
func (m *Metrics) IncPayment(result string) {
	m.PaymentsTotal.WithLabelValues(result).Inc()
}

// IncRefund увеличивает счетчик попыток возврата по результату
func (m *Metrics) IncRefund(result string) {
	m.RefundsTotal.WithLabelValues(result).Inc()
}

// AddSweepClaimed увеличивает счетчик занятий, забранных свипом оплат
func (m *Metrics) AddSweepClaimed(n int) {
	m.SweepClaimedTotal.Add(float64(n))
}

// Noop рекордер-заглушка для выключенных метрик
type Noop struct{}

func (Noop) IncBookingCreated(string) {}
func (Noop) IncPayment(string)       {}
func (Noop) IncRefund(string)        {}
func (Noop) AddSweepClaimed(int)     {}
