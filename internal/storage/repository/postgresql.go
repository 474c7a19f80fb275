// Package repository реализует хранилище данных на основе PostgreSQL
// для управления активами и пользователями. Предоставляет методы
// создания, чтения, обновления и удаления записей, а также подсчёт
// строк для freemium-лимитов.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Сигнальные ошибки хранилища. Обработчики транслируют их в HTTP-статусы,
// не раскрывая клиенту текст ошибок драйвера.
var (
	// ErrNotFound — запись не найдена (или принадлежит другому пользователю).
	ErrNotFound = errors.New("not found")
	// ErrDuplicate — нарушено ограничение уникальности.
	ErrDuplicate = errors.New("duplicate value")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с активами и пользователями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'assets'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table assets missing or query error: %w", err)
	}
	return nil
}

// isUniqueViolation возвращает true, если ошибка вызвана нарушением
// ограничения уникальности PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
