package domain

import (
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type UserID = uuid.UUID
type ActivityID = uuid.UUID

// Роли сотрудников
type Role string

const (
	RoleFiscal     Role = "fiscal"     // полевой инспектор: создаёт записи
	RoleSupervisor Role = "supervisor" // проверяющий: роли, отчёты, удаление
)

// Сотрудник (фискал или супервизор)
type User struct {
	ID        UserID    `json:"id"`
	Login     string    `json:"login"`
	Role      Role      `json:"role"`
	PassHash  []byte    `json:"-"` // никогда не отдаём наружу
	CreatedAt time.Time `json:"created_at"`
}

func (u User) IsSupervisor() bool { return u.Role == RoleSupervisor }

// Уровень серьёзности нарушения
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Статус записи
type Status string

const (
	StatusOpen     Status = "open"
	StatusInReview Status = "in_review"
	StatusResolved Status = "resolved"
)

// Географическая точка осмотра
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Запись о проверке (occurrence). Фото — в S3, здесь только метаданные.
type Activity struct {
	ID          ActivityID `json:"id"`
	FiscalID    UserID     `json:"fiscal_id"`
	Description string     `json:"description"`
	Severity    Severity   `json:"severity"`
	Status      Status     `json:"status"`
	Location    GeoPoint   `json:"location"`
	Address     string     `json:"address,omitempty"`

	// Фото (опционально)
	HasPhoto  bool   `json:"has_photo"`
	PhotoMIME string `json:"photo_mime,omitempty"`
	PhotoSize int64  `json:"-"`

	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`

	// Технические поля для выдачи/кеша/ETag
	SHA256  []byte `json:"-"` // контент-хэш фото (для ETag)
	Version int64  `json:"-"` // версионирование записи

	// Где лежит фото (S3/MinIO)
	StorageKey string `json:"-"`
}

// Сводка для отчёта супервизора
type SummaryRow struct {
	Status   Status   `json:"status"`
	Severity Severity `json:"severity"`
	Count    int64    `json:"count"`
}
