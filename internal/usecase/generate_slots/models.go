package generate_slots

// Request модель запроса на генерацию слотов корта
type Request struct {
	CourtID   int64
	DaysAhead *int   // nil = горизонт из шаблона
	ActorID   *int64 // nil для фонового запуска, иначе только персонал площадки
}

// Response модель ответа генерации
type Response struct {
	CourtID int64
	Created int // количество новых слотов, существующие не учитываются
}

// SweepResult итог генерации по всем кортам с активными шаблонами
type SweepResult struct {
	Courts  int
	Created int
	Skipped int
	Failed  int
}
