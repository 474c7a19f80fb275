// Package models содержит доменные структуры, описывающие актив,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Asset представляет собой учётную единицу (актив), принадлежащую пользователю.
// Серийный номер уникален глобально, а не в рамках одного владельца.
type Asset struct {
	ID             int        `json:"id"`              // Уникальный идентификатор актива
	Name           string     `json:"name"`            // Название актива
	SerialNumber   string     `json:"serial_number"`   // Серийный номер (глобально уникальный)
	Responsible    *string    `json:"responsible"`     // Ответственный за актив (опционально)
	AssignmentDate time.Time  `json:"assignment_date"` // Дата постановки на учёт
	Condition      *string    `json:"condition"`       // Состояние актива (опционально)
	Notes          *string    `json:"notes"`           // Заметки (опционально)
	UserUID        string     `json:"-"`               // Владелец актива
}

// DummyAsset используется для приёма данных из JSON-запроса на создание актива.
type DummyAsset struct {
	Name         string  `json:"name" validate:"required"`          // Название
	SerialNumber string  `json:"serial_number" validate:"required"` // Серийный номер
	Responsible  *string `json:"responsible"`                       // Ответственный
	Condition    *string `json:"condition"`                         // Состояние
	Notes        *string `json:"notes"`                             // Заметки
}

// UpdateAsset используется для приёма данных из JSON-запроса на обновление.
// Каждое поле опционально: nil означает «оставить текущее значение»,
// присутствующее поле применяется даже если оно пустое.
type UpdateAsset struct {
	Name         *string `json:"name"`
	SerialNumber *string `json:"serial_number"`
	Responsible  *string `json:"responsible"`
	Condition    *string `json:"condition"`
	Notes        *string `json:"notes"`
}
