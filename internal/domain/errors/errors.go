package errors

import (
	"fmt"
)

// ErrSubscriberNotFound означает, что чат ни разу не выполнял /start.
// Cause заполняется, если запись не удалось прочитать из-за недоступности хранилища.
type ErrSubscriberNotFound struct {
	ChatID int64
	Cause  error
}

func (e *ErrSubscriberNotFound) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("подписчик не найден: %d (%v)", e.ChatID, e.Cause)
	}

	return fmt.Sprintf("подписчик не найден: %d", e.ChatID)
}

func (e *ErrSubscriberNotFound) Is(target error) bool {
	_, ok := target.(*ErrSubscriberNotFound)
	return ok
}

func (e *ErrSubscriberNotFound) Unwrap() error {
	return e.Cause
}

// ErrForwardRejected возвращается, когда Telegram отклонил запрос клиента
// (бот удален из чата, сообщение удалено и т.п.).
type ErrForwardRejected struct {
	ChatID int64
	Code   int
	Cause  error
}

func (e *ErrForwardRejected) Error() string {
	return fmt.Sprintf("telegram отклонил пересылку в чат %d (код %d): %v", e.ChatID, e.Code, e.Cause)
}

func (e *ErrForwardRejected) Is(target error) bool {
	_, ok := target.(*ErrForwardRejected)
	return ok
}

func (e *ErrForwardRejected) Unwrap() error {
	return e.Cause
}

type ErrTransport struct {
	Operation string
	Cause     error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("ошибка транспорта при %s: %v", e.Operation, e.Cause)
}

func (e *ErrTransport) Unwrap() error {
	return e.Cause
}

type ErrTelegramNotInitialized struct{}

func (e *ErrTelegramNotInitialized) Error() string {
	return "telegram клиент не инициализирован"
}

type ErrUnknownCommand struct {
	Command string
}

func (e *ErrUnknownCommand) Error() string {
	return "неизвестная команда: " + e.Command
}

type ErrInvalidArgument struct {
	Message string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("некорректный аргумент: %s", e.Message)
}

type ErrUnknownDBAccessType struct {
	AccessType string
}

func (e *ErrUnknownDBAccessType) Error() string {
	return fmt.Sprintf("неизвестный тип доступа к базе данных: %s", e.AccessType)
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

type ErrSQLScan struct {
	Entity string
	Cause  error
}

func (e *ErrSQLScan) Error() string {
	return fmt.Sprintf("ошибка при сканировании %s: %v", e.Entity, e.Cause)
}

func (e *ErrSQLScan) Unwrap() error {
	return e.Cause
}

// ErrInvalidPostMessage возникает, когда событие поста из Kafka не содержит обязательных полей.
type ErrInvalidPostMessage struct {
	Reason string
}

func (e *ErrInvalidPostMessage) Error() string {
	return "некорректное сообщение о посте: " + e.Reason
}

func (e *ErrInvalidPostMessage) Is(target error) bool {
	_, ok := target.(*ErrInvalidPostMessage)
	return ok
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP ошибка %d", e.StatusCode)
}

const (
	OpFindSubscriber   = "find_subscriber"
	OpCreateSubscriber = "create_subscriber"
	OpListEnabled      = "list_enabled"
	OpListAll          = "list_all"
	OpSaveSubscriber   = "save_subscriber"
	OpLoadSubscribers  = "load_subscribers"
)
