package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/safad/worklog/internal/core/domain"
	"github.com/safad/worklog/internal/core/ports"
	"github.com/safad/worklog/internal/metrics"
)

// Ledger implements ports.LedgerService. Records are kept newest-first.
type Ledger struct {
	mu      sync.RWMutex
	kv      ports.KVStore
	records []domain.Record
	users   ports.UserLister
	clock   ports.Clock
	loc     *time.Location
	log     zerolog.Logger
}

var _ ports.LedgerService = (*Ledger)(nil)

func loadLedger(ctx context.Context, kv ports.KVStore, users ports.UserLister, opts Options) (*Ledger, error) {
	l := &Ledger{
		kv:    kv,
		users: users,
		clock: opts.Clock,
		loc:   opts.Location,
		log:   *opts.Logger,
	}

	var records []domain.Record
	found, err := loadDocument(ctx, kv, ports.KeyRecords, &records, l.log)
	if err != nil {
		return nil, err
	}
	if !found {
		records = []domain.Record{}
	}
	l.records = records
	return l, nil
}

// AddRecord stamps id, date, startTime and endTime on in and prepends the
// record to the ledger.
func (l *Ledger) AddRecord(ctx context.Context, in ports.NewRecord) (*domain.Record, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: record without owner", domain.ErrInvalidInput)
	}

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("add record: %w", err)
	}
	now := l.clock.Now()

	attachments := append([]domain.Attachment{}, in.Attachments...)
	department := in.Department
	if department == "" {
		department = domain.DefaultDepartment
	}

	rec := domain.Record{
		ID:          id,
		UserID:      in.UserID,
		UserName:    in.UserName,
		ProjectName: in.ProjectName,
		Description: in.Description,
		Attachments: attachments,
		Department:  department,
		Date:        now.UTC().Truncate(time.Millisecond),
		StartTime:   now.In(l.loc).Format(domain.ClockLayout),
		EndTime:     domain.EndOfDay,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.Record, 0, len(l.records)+1)
	next = append(next, rec)
	next = append(next, l.records...)
	if err := saveDocument(ctx, l.kv, ports.KeyRecords, next); err != nil {
		return nil, fmt.Errorf("add record: %w", err)
	}
	l.records = next

	metrics.RecordMutationsTotal.WithLabelValues("add").Inc()
	l.log.Debug().Str("record_id", rec.ID).Str("user_id", rec.UserID).Msg("record added")
	out := rec.Clone()
	return &out, nil
}

// UpdateRecord applies the editable fields of patch. Fields fixed at
// creation are ignored even when set.
func (l *Ledger) UpdateRecord(ctx context.Context, id string, patch ports.RecordPatch) (*domain.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return nil, domain.ErrRecordNotFound
	}

	updated := l.records[idx].Clone()
	if patch.ProjectName != nil {
		updated.ProjectName = *patch.ProjectName
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Attachments != nil {
		updated.Attachments = append([]domain.Attachment{}, (*patch.Attachments)...)
	}

	next := append(make([]domain.Record, 0, len(l.records)), l.records...)
	next[idx] = updated
	if err := saveDocument(ctx, l.kv, ports.KeyRecords, next); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	l.records = next

	metrics.RecordMutationsTotal.WithLabelValues("update").Inc()
	out := updated.Clone()
	return &out, nil
}

// DeleteRecord removes the record with id. A missing id is not an error.
func (l *Ledger) DeleteRecord(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return nil
	}

	next := make([]domain.Record, 0, len(l.records)-1)
	next = append(next, l.records[:idx]...)
	next = append(next, l.records[idx+1:]...)
	if err := saveDocument(ctx, l.kv, ports.KeyRecords, next); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	l.records = next

	metrics.RecordMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

// Records returns a copy of the whole ledger, newest first.
func (l *Ledger) Records() []domain.Record {
	return l.filter(func(domain.Record) bool { return true })
}

func (l *Ledger) RecordByID(id string) (*domain.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return nil, domain.ErrRecordNotFound
	}
	out := l.records[idx].Clone()
	return &out, nil
}

func (l *Ledger) EmployeeRecords(userID string) []domain.Record {
	return l.filter(func(r domain.Record) bool { return r.UserID == userID })
}

// RecordsByDepartment matches the department snapshot exactly.
func (l *Ledger) RecordsByDepartment(department string) []domain.Record {
	return l.filter(func(r domain.Record) bool { return r.Department == department })
}

// RecordsOn returns the records whose date falls on day (YYYY-MM-DD).
func (l *Ledger) RecordsOn(day string) []domain.Record {
	return l.filter(func(r domain.Record) bool { return r.Day(l.loc) == day })
}

func (l *Ledger) EmployeeRecordsToday(userID string) []domain.Record {
	today := l.today()
	return l.filter(func(r domain.Record) bool {
		return r.UserID == userID && r.Day(l.loc) == today
	})
}

// UsersLoggedToday returns the directory users with at least one record
// dated today, in directory order.
func (l *Ledger) UsersLoggedToday() []domain.User {
	logged := l.loggedOn(l.today())
	return selectUsers(l.users.AllUsers(), func(u domain.User) bool { return logged[u.ID] })
}

// UsersNotLoggedToday is the complement of UsersLoggedToday within the
// directory.
func (l *Ledger) UsersNotLoggedToday() []domain.User {
	logged := l.loggedOn(l.today())
	return selectUsers(l.users.AllUsers(), func(u domain.User) bool { return !logged[u.ID] })
}

func (l *Ledger) today() string {
	return domain.DayKey(l.clock.Now(), l.loc)
}

func (l *Ledger) loggedOn(day string) map[string]bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	logged := make(map[string]bool)
	for _, r := range l.records {
		if r.Day(l.loc) == day {
			logged[r.UserID] = true
		}
	}
	return logged
}

func (l *Ledger) filter(keep func(domain.Record) bool) []domain.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Record, 0, len(l.records))
	for _, r := range l.records {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (l *Ledger) indexOf(id string) int {
	for i, r := range l.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func selectUsers(users []domain.User, keep func(domain.User) bool) []domain.User {
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

// newID returns a time-ordered UUIDv7 string.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
