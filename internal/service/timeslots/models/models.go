package models

import (
	"time"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// Request модели

// ListRequest запрос списка слотов ресурса
type ListRequest struct {
	ResourceID int64      `json:"resourceId"`
	From       *time.Time `json:"from,omitempty"` // Нижняя граница start_at
	To         *time.Time `json:"to,omitempty"`   // Верхняя граница start_at
	OnlyOpen   bool       `json:"onlyOpen"`       // Только доступные для бронирования
}

// GenerateRequest запрос генерации слотов по шаблонам расписания
type GenerateRequest struct {
	ResourceID int64  `json:"resourceId"`
	StartDate  string `json:"startDate"` // "YYYY-MM-DD"
	EndDate    string `json:"endDate"`   // "YYYY-MM-DD"
}

// Response модели

// TimeslotResponse ответ с данными слота
type TimeslotResponse struct {
	ID                int64     `json:"id"`
	ResourceID        int64     `json:"resourceId"`
	StartAt           time.Time `json:"startAt"`
	EndAt             time.Time `json:"endAt"`
	Status            string    `json:"status"`
	AvailableCapacity int       `json:"availableCapacity"`
	MaxCapacity       int       `json:"maxCapacity"`
}

// TimeslotListResponse ответ со списком слотов
type TimeslotListResponse struct {
	Timeslots []TimeslotResponse `json:"timeslots"`
	Total     int                `json:"total"`
}

// GenerateResponse ответ генератора слотов
type GenerateResponse struct {
	Created int `json:"created"` // Количество созданных слотов
}

// FromDomainTimeslot конвертирует domain.Timeslot в response модель
func FromDomainTimeslot(t *domain.Timeslot) TimeslotResponse {
	return TimeslotResponse{
		ID:                t.ID,
		ResourceID:        t.ResourceID,
		StartAt:           t.StartAt,
		EndAt:             t.EndAt,
		Status:            string(t.Status),
		AvailableCapacity: t.AvailableCapacity,
		MaxCapacity:       t.MaxCapacity,
	}
}

// FromDomainTimeslots конвертирует список domain.Timeslot
func FromDomainTimeslots(list []*domain.Timeslot) *TimeslotListResponse {
	out := &TimeslotListResponse{
		Timeslots: make([]TimeslotResponse, 0, len(list)),
		Total:     len(list),
	}
	for _, t := range list {
		out.Timeslots = append(out.Timeslots, FromDomainTimeslot(t))
	}
	return out
}
