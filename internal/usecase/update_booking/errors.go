package update_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("update_booking: booking not found")

	// ErrBookingCancelled возвращается при попытке изменить отмененное бронирование
	ErrBookingCancelled = errors.New("update_booking: booking is cancelled")

	// ErrInsufficientCapacity возвращается, когда на слоте не хватает
	// вместимости для увеличения числа гостей
	ErrInsufficientCapacity = errors.New("update_booking: not enough capacity")

	// ErrSlotNotOpen возвращается, когда слот закрыт, а число гостей растет
	ErrSlotNotOpen = errors.New("update_booking: timeslot is not open")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("update_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("update_booking: internal error")
)
