package payment_sweep

// Report итог одного прохода по платежам
type Report struct {
	Claimed  int // Захвачено занятий, у которых наступил момент оплаты
	Paid     int // Успешно оплачено
	Failed   int // Отклонено провайдером (payment_failed)
	Released int // Возвращено в pending после неопределенного исхода
	Reversed int // Списание возвращено: занятие отменили во время оплаты
}
