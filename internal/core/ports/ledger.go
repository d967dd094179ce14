package ports

import (
	"context"
	"time"

	"github.com/safad/worklog/internal/core/domain"
)

// NewRecord carries the caller-supplied fields of a record. Id, date,
// startTime and endTime are stamped by the ledger.
type NewRecord struct {
	UserID      string
	UserName    string
	ProjectName string
	Description string
	Attachments []domain.Attachment
	Department  string
}

// RecordPatch is a partial update. Only ProjectName, Description and
// Attachments are applied; the remaining fields are accepted so callers can
// pass a whole edited record, and are ignored because they are fixed at
// creation.
type RecordPatch struct {
	ProjectName *string
	Description *string
	Attachments *[]domain.Attachment

	ID         *string
	UserID     *string
	UserName   *string
	Department *string
	Date       *time.Time
	StartTime  *string
	EndTime    *string
}

// LedgerService owns the work records and the queries over them.
type LedgerService interface {
	AddRecord(ctx context.Context, in NewRecord) (*domain.Record, error)
	UpdateRecord(ctx context.Context, id string, patch RecordPatch) (*domain.Record, error)
	DeleteRecord(ctx context.Context, id string) error
	Records() []domain.Record
	RecordByID(id string) (*domain.Record, error)
	EmployeeRecords(userID string) []domain.Record
	RecordsByDepartment(department string) []domain.Record
	RecordsOn(day string) []domain.Record
	EmployeeRecordsToday(userID string) []domain.Record
	UsersLoggedToday() []domain.User
	UsersNotLoggedToday() []domain.User
}

// Clock supplies the current instant. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}
