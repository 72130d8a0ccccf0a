package domain

import "time"

// Organization корневая сущность мультиарендности
type Organization struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Branch филиал организации
type Branch struct {
	ID        int64
	OrgID     int64
	Name      string
	Timezone  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resource бронируемая сущность (комната, оборудование) в филиале
type Resource struct {
	ID          int64
	BranchID    int64
	Name        string
	Description *string
	Capacity    int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScheduleTemplate шаблон расписания ресурса.
// Из шаблонов внешний генератор порождает конкретные timeslot'ы;
// сам алгоритм генерации живет в БД (см. миграции) и вызывается по имени.
type ScheduleTemplate struct {
	ID          int64
	ResourceID  int64
	DayOfWeek   int    // 0 = воскресенье ... 6 = суббота
	StartTime   string // "HH:MM"
	EndTime     string // "HH:MM"
	MaxCapacity int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
