package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/safad/worklog/internal/core/domain"
	"github.com/safad/worklog/internal/core/ports"
)

func addFor(t *testing.T, l *Ledger, u *domain.User, project string) *domain.Record {
	t.Helper()
	rec, err := l.AddRecord(context.Background(), ports.NewRecord{
		UserID:      u.ID,
		UserName:    u.Name,
		ProjectName: project,
		Description: "worked on " + project,
		Department:  u.RecordDepartment(),
	})
	if err != nil {
		t.Fatalf("AddRecord returned error: %v", err)
	}
	return rec
}

func TestAddRecord_StampsFields(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 14, 9, 30, 45, 123456789, time.UTC)}
	app := newTestApp(t, newStubKV(), clock)

	rec, err := app.Ledger.AddRecord(context.Background(), ports.NewRecord{
		UserID:      "u1",
		UserName:    "Alice",
		ProjectName: "Apollo",
		Description: "wiring",
		Attachments: []domain.Attachment{{Name: "a.png", URL: "blob:1", MimeType: "image/png"}},
	})
	if err != nil {
		t.Fatalf("AddRecord returned error: %v", err)
	}
	if rec.ID == "" {
		t.Errorf("expected id")
	}
	if rec.StartTime != "09:30" {
		t.Errorf("expected startTime 09:30, got %q", rec.StartTime)
	}
	if rec.EndTime != "23:59" {
		t.Errorf("expected endTime 23:59, got %q", rec.EndTime)
	}
	if want := time.Date(2024, 3, 14, 9, 30, 45, 123000000, time.UTC); !rec.Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, rec.Date)
	}
	if rec.Department != domain.DefaultDepartment {
		t.Errorf("expected fallback department, got %q", rec.Department)
	}
	if len(rec.Attachments) != 1 || rec.Attachments[0].MimeType != "image/png" {
		t.Errorf("unexpected attachments: %+v", rec.Attachments)
	}
}

func TestAddRecord_StartTimeUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	app, err := Open(context.Background(), newStubKV(), Options{
		Clock:      &fakeClock{now: time.Date(2024, 3, 14, 2, 15, 0, 0, time.UTC)},
		Location:   loc,
		BcryptCost: bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	rec, err := app.Ledger.AddRecord(context.Background(), ports.NewRecord{UserID: "u1"})
	if err != nil {
		t.Fatalf("AddRecord returned error: %v", err)
	}
	if rec.StartTime != "21:15" {
		t.Errorf("expected local startTime 21:15, got %q", rec.StartTime)
	}
	if day := rec.Day(loc); day != "2024-03-13" {
		t.Errorf("expected local day 2024-03-13, got %q", day)
	}
}

func TestAddRecord_UniqueIDsNewestFirst(t *testing.T) {
	clock := &fakeClock{now: day1}
	app := newTestApp(t, newStubKV(), clock)

	var added []string
	for i := 0; i < 50; i++ {
		rec, err := app.Ledger.AddRecord(context.Background(), ports.NewRecord{UserID: "u1", ProjectName: "p"})
		if err != nil {
			t.Fatalf("AddRecord #%d returned error: %v", i, err)
		}
		added = append(added, rec.ID)
		if i%7 == 0 {
			clock.Advance(time.Minute)
		}
	}

	records := app.Ledger.Records()
	if len(records) != len(added) {
		t.Fatalf("expected %d records, got %d", len(added), len(records))
	}
	seen := make(map[string]bool)
	for i, r := range records {
		if seen[r.ID] {
			t.Fatalf("duplicate id %q", r.ID)
		}
		seen[r.ID] = true
		if want := added[len(added)-1-i]; r.ID != want {
			t.Errorf("records[%d] = %q, want %q (newest first)", i, r.ID, want)
		}
	}
}

func TestAddRecord_RequiresOwner(t *testing.T) {
	app := newTestApp(t, newStubKV(), &fakeClock{now: day1})
	if _, err := app.Ledger.AddRecord(context.Background(), ports.NewRecord{ProjectName: "p"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAddRecord_PersistsAndReloads(t *testing.T) {
	kv := newStubKV()
	app := newTestApp(t, kv, &fakeClock{now: day1})
	first := addFor(t, app.Ledger, &domain.User{ID: "u1", Name: "Alice"}, "one")
	second := addFor(t, app.Ledger, &domain.User{ID: "u1", Name: "Alice"}, "two")

	if !strings.Contains(kv.raw(ports.KeyRecords), `"fileUrls":[]`) {
		t.Errorf("expected attachments persisted as fileUrls: %s", kv.raw(ports.KeyRecords))
	}

	reopened := newTestApp(t, kv, &fakeClock{now: day1})
	records := reopened.Ledger.Records()
	if len(records) != 2 || records[0].ID != second.ID || records[1].ID != first.ID {
		t.Fatalf("unexpected reloaded ledger: %+v", records)
	}
	if !records[1].Date.Equal(first.Date) {
		t.Errorf("date did not round-trip: %v vs %v", records[1].Date, first.Date)
	}
}

func TestAddRecord_WriteFailureLeavesLedgerUnchanged(t *testing.T) {
	kv := newStubKV()
	app := newTestApp(t, kv, &fakeClock{now: day1})
	addFor(t, app.Ledger, &domain.User{ID: "u1"}, "one")
	kv.setFailing(true)

	if _, err := app.Ledger.AddRecord(context.Background(), ports.NewRecord{UserID: "u1"}); !errors.Is(err, errStubWrite) {
		t.Fatalf("expected write error, got %v", err)
	}
	if n := len(app.Ledger.Records()); n != 1 {
		t.Errorf("expected 1 record after failed write, got %d", n)
	}
}

func TestUpdateRecord_IgnoresImmutableFields(t *testing.T) {
	clock := &fakeClock{now: day1}
	app := newTestApp(t, newStubKV(), clock)
	rec := addFor(t, app.Ledger, &domain.User{ID: "u1", Name: "Alice", Department: "engineering"}, "Apollo")

	clock.Advance(48 * time.Hour)
	otherDate := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	forgedID, newStart, newUser, newDept := "forged", "01:00", "u2", "sales"
	project, desc := "Gemini", "rewired"
	attachments := []domain.Attachment{{Name: "log.txt", URL: "blob:2", MimeType: "text/plain"}}

	updated, err := app.Ledger.UpdateRecord(context.Background(), rec.ID, ports.RecordPatch{
		ProjectName: &project,
		Description: &desc,
		Attachments: &attachments,
		ID:          &forgedID,
		UserID:      &newUser,
		Department:  &newDept,
		Date:        &otherDate,
		StartTime:   &newStart,
	})
	if err != nil {
		t.Fatalf("UpdateRecord returned error: %v", err)
	}
	if updated.ProjectName != "Gemini" || updated.Description != "rewired" || len(updated.Attachments) != 1 {
		t.Errorf("editable fields not applied: %+v", updated)
	}
	if updated.ID != rec.ID || !updated.Date.Equal(rec.Date) || updated.StartTime != rec.StartTime {
		t.Errorf("immutable fields changed: before %+v after %+v", rec, updated)
	}
	if updated.UserID != "u1" || updated.Department != "engineering" {
		t.Errorf("snapshot fields changed: %+v", updated)
	}

	stored, err := app.Ledger.RecordByID(rec.ID)
	if err != nil {
		t.Fatalf("RecordByID returned error: %v", err)
	}
	if !stored.Date.Equal(rec.Date) {
		t.Errorf("stored date changed to %v", stored.Date)
	}
}

func TestUpdateRecord_NotFound(t *testing.T) {
	app := newTestApp(t, newStubKV(), &fakeClock{now: day1})
	desc := "x"
	_, err := app.Ledger.UpdateRecord(context.Background(), "missing", ports.RecordPatch{Description: &desc})
	if !errors.Is(err, domain.ErrRecordNotFound) || !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteRecord_Idempotent(t *testing.T) {
	kv := newStubKV()
	app := newTestApp(t, kv, &fakeClock{now: day1})
	u := &domain.User{ID: "u1"}
	keep := addFor(t, app.Ledger, u, "keep")
	drop := addFor(t, app.Ledger, u, "drop")

	if err := app.Ledger.DeleteRecord(context.Background(), drop.ID); err != nil {
		t.Fatalf("first DeleteRecord returned error: %v", err)
	}
	afterFirst := kv.raw(ports.KeyRecords)
	if err := app.Ledger.DeleteRecord(context.Background(), drop.ID); err != nil {
		t.Fatalf("second DeleteRecord returned error: %v", err)
	}

	records := app.Ledger.Records()
	if len(records) != 1 || records[0].ID != keep.ID {
		t.Errorf("unexpected ledger after deletes: %+v", records)
	}
	if kv.raw(ports.KeyRecords) != afterFirst {
		t.Errorf("second delete changed the stored document")
	}
}

func TestQueries(t *testing.T) {
	clock := &fakeClock{now: day1.Add(-24 * time.Hour)}
	app := newTestApp(t, newStubKV(), clock)

	eng := mustRegister(t, app.Directory, "eve", "Eve", "engineering")
	acc := mustRegister(t, app.Directory, "sam", "Sam", "accounting")

	yesterday := addFor(t, app.Ledger, eng, "old")
	clock.Set(day1)
	today := addFor(t, app.Ledger, eng, "new")

	t.Run("employee records newest first", func(t *testing.T) {
		got := app.Ledger.EmployeeRecords(eng.ID)
		if len(got) != 2 || got[0].ID != today.ID || got[1].ID != yesterday.ID {
			t.Errorf("unexpected employee records: %+v", got)
		}
		if len(app.Ledger.EmployeeRecords(acc.ID)) != 0 {
			t.Errorf("expected no records for %s", acc.Username)
		}
	})

	t.Run("today only", func(t *testing.T) {
		got := app.Ledger.EmployeeRecordsToday(eng.ID)
		if len(got) != 1 || got[0].ID != today.ID {
			t.Errorf("unexpected records today: %+v", got)
		}
	})

	t.Run("by department exact match", func(t *testing.T) {
		if got := app.Ledger.RecordsByDepartment("engineering"); len(got) != 2 {
			t.Errorf("expected 2 engineering records, got %d", len(got))
		}
		if got := app.Ledger.RecordsByDepartment("Engineering"); len(got) != 0 {
			t.Errorf("department match must be exact, got %d", len(got))
		}
	})

	t.Run("on day", func(t *testing.T) {
		got := app.Ledger.RecordsOn("2024-03-13")
		if len(got) != 1 || got[0].ID != yesterday.ID {
			t.Errorf("unexpected records on 2024-03-13: %+v", got)
		}
	})

	t.Run("attendance", func(t *testing.T) {
		logged := app.Ledger.UsersLoggedToday()
		if len(logged) != 1 || logged[0].ID != eng.ID {
			t.Errorf("expected only eve logged today, got %+v", logged)
		}
		notLogged := app.Ledger.UsersNotLoggedToday()
		if len(notLogged) != 2 || notLogged[0].ID != domain.SeedAdminID || notLogged[1].ID != acc.ID {
			t.Errorf("expected admin and sam not logged today, got %+v", notLogged)
		}
	})

	t.Run("today is evaluated at call time", func(t *testing.T) {
		clock.Set(day1.Add(24 * time.Hour))
		defer clock.Set(day1)
		if got := app.Ledger.UsersLoggedToday(); len(got) != 0 {
			t.Errorf("expected nobody logged on the next day, got %+v", got)
		}
	})

	t.Run("records are copies", func(t *testing.T) {
		got := app.Ledger.Records()
		got[0].ProjectName = "mutated"
		if app.Ledger.Records()[0].ProjectName == "mutated" {
			t.Errorf("Records must return copies")
		}
	})
}

func TestScenario_LoggedTodayByDepartment(t *testing.T) {
	app := newTestApp(t, newStubKV(), &fakeClock{now: day1})
	e := mustRegister(t, app.Directory, "E", "Employee E", "engineering")

	rec := addFor(t, app.Ledger, e, "daily")

	if logged := app.Ledger.UsersLoggedToday(); !containsUser(logged, e.ID) {
		t.Errorf("expected E logged today")
	}
	if dept := app.Ledger.RecordsByDepartment("engineering"); len(dept) != 1 || dept[0].ID != rec.ID {
		t.Errorf("expected the record under engineering, got %+v", dept)
	}
	if notLogged := app.Ledger.UsersNotLoggedToday(); containsUser(notLogged, e.ID) {
		t.Errorf("expected E excluded from not-logged-today")
	}
}

func TestScenario_DepartmentChangeIsNotRetroactive(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, newStubKV(), &fakeClock{now: day1})
	e := mustRegister(t, app.Directory, "E", "Employee E", "engineering")
	addFor(t, app.Ledger, e, "before move")

	e.Department = "accounting"
	if _, err := app.Directory.UpdateUser(ctx, *e); err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}

	if got := app.Ledger.RecordsByDepartment("accounting"); len(got) != 0 {
		t.Errorf("past records must keep their department snapshot, got %+v", got)
	}
	if got := app.Ledger.RecordsByDepartment("engineering"); len(got) != 1 {
		t.Errorf("expected the record to stay under engineering, got %d", len(got))
	}
}

func TestScenario_OrphanedRecordsAfterUserDelete(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, newStubKV(), &fakeClock{now: day1})
	e := mustRegister(t, app.Directory, "gone", "Gone Soon", "sales")
	rec := addFor(t, app.Ledger, e, "last day")

	if err := app.Directory.DeleteUser(ctx, e.ID); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}

	if got := app.Ledger.EmployeeRecords(e.ID); len(got) != 1 || got[0].ID != rec.ID {
		t.Errorf("expected orphaned record kept, got %+v", got)
	}
	if containsUser(app.Ledger.UsersLoggedToday(), e.ID) || containsUser(app.Ledger.UsersNotLoggedToday(), e.ID) {
		t.Errorf("deleted user must not appear in attendance")
	}
}

func containsUser(users []domain.User, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}
