package services

import "errors"

// Ошибки движка турниров. Все восстановимы: вызывающий слой сообщает их пользователю.
var (
	// Состояние турнира
	ErrNotConfigured        = errors.New("no tournament has been configured")
	ErrAlreadyActive        = errors.New("tournament already started")
	ErrNotActive            = errors.New("no active tournament")
	ErrInsufficientEntrants = errors.New("not enough entrants to start (minimum 2)")

	// Регистрация
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
	ErrFull              = errors.New("registration is full")

	// Матчи
	ErrNoSuchMatch = errors.New("entrant is not in an unresolved match of the current round")

	// Команды и приглашения
	ErrAlreadyTeamed       = errors.New("player is already in a team")
	ErrNotInTeam           = errors.New("player is not in a team")
	ErrDuplicateInvitation = errors.New("invitation already sent")
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrSelfInvite          = errors.New("cannot invite yourself")

	// Валидация конфигурации
	ErrInvalidMode     = errors.New("invalid tournament mode")
	ErrInvalidCapacity = errors.New("tournament capacity must be positive")

	// Регистрация хостов
	ErrHostRegistrationClosed = errors.New("host registration is not open")
)
