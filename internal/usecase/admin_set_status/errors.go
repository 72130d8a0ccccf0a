package admin_set_status

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("admin_set_status: booking not found")

	// ErrInvalidStatus возвращается при недопустимом целевом статусе
	ErrInvalidStatus = errors.New("admin_set_status: invalid target status")

	// ErrInsufficientCapacity возвращается в strict-режиме, когда
	// реактивация не помещается в остаток вместимости слота
	ErrInsufficientCapacity = errors.New("admin_set_status: not enough capacity for reactivation")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("admin_set_status: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("admin_set_status: internal error")
)
