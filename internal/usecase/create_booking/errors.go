package create_booking

import "errors"

var (
	// ErrUnauthenticated возвращается, когда пользователь не разрешается
	// в существующую учетную запись. Бронирование без регистрации запрещено.
	ErrUnauthenticated = errors.New("create_booking: user is not authenticated")

	// ErrResourceNotFound возвращается, когда ресурс не найден
	ErrResourceNotFound = errors.New("create_booking: resource not found")

	// ErrTimeslotNotFound возвращается, когда слот не найден
	ErrTimeslotNotFound = errors.New("create_booking: timeslot not found")

	// ErrTimeslotMismatch возвращается, когда слот не принадлежит указанному ресурсу
	ErrTimeslotMismatch = errors.New("create_booking: timeslot does not belong to given resource")

	// ErrSlotNotOpen возвращается, когда слот не открыт для бронирования
	ErrSlotNotOpen = errors.New("create_booking: timeslot is not open")

	// ErrInsufficientCapacity возвращается, когда на слоте не хватает вместимости
	ErrInsufficientCapacity = errors.New("create_booking: not enough capacity")

	// ErrSlotTaken возвращается, когда на слоте уже есть активное бронирование.
	// Явная проверка до вставки: дает осмысленную ошибку раньше, чем
	// сработал бы уникальный индекс.
	ErrSlotTaken = errors.New("create_booking: timeslot already has an active booking")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
