package domain

import "errors"

var (
	// ErrNotFound возвращается когда запись не найдена
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoActiveAgents возвращается когда в панели нет активных агентов
	ErrNoActiveAgents = errors.New("no active agents")

	// ErrNoPrincipal возвращается когда в панели нет активного принципала
	ErrNoPrincipal = errors.New("no principal agent")

	// ErrZeroTotalWeight возвращается когда суммарный вес голосов равен нулю
	ErrZeroTotalWeight = errors.New("zero total vote weight")

	// ErrInsufficientBalance возвращается при недостаточном балансе принципала
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAlreadyExecuted возвращается при повторной попытке исполнить решение
	ErrAlreadyExecuted = errors.New("decision already executed")

	// ErrVenueAPI возвращается при ошибке API торговой площадки
	ErrVenueAPI = errors.New("venue API error")

	// ErrDatabaseConnection возвращается при ошибке подключения к БД
	ErrDatabaseConnection = errors.New("database connection error")
)
