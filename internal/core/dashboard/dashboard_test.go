package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safad/worklog/internal/core/domain"
)

func rec(id, userID, dept string, at time.Time) domain.Record {
	return domain.Record{ID: id, UserID: userID, Department: dept, Date: at}
}

func at(day, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", day+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

// ledger is newest first, like the live one.
func sampleLedger() []domain.Record {
	return []domain.Record{
		rec("r6", "u1", "engineering", at("2024-03-15", "17:00")),
		rec("r5", "u2", "sales", at("2024-03-15", "09:00")),
		rec("r4", "u1", "engineering", at("2024-03-14", "23:30")),
		rec("r3", "u3", "general", at("2024-03-14", "08:00")),
		rec("r2", "u2", "sales", at("2024-03-12", "10:00")),
		rec("r1", "u1", "engineering", at("2024-03-12", "09:00")),
	}
}

func ids(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestGroupByDate(t *testing.T) {
	groups := GroupByDate(sampleLedger(), time.UTC)

	require.Len(t, groups, 3)
	assert.Equal(t, "2024-03-15", groups[0].Day)
	assert.Equal(t, []string{"r6", "r5"}, ids(groups[0].Records))
	assert.Equal(t, "2024-03-14", groups[1].Day)
	assert.Equal(t, []string{"r4", "r3"}, ids(groups[1].Records))
	assert.Equal(t, "2024-03-12", groups[2].Day)
	assert.Equal(t, []string{"r2", "r1"}, ids(groups[2].Records))
}

func TestGroupByDate_UnorderedInputSortsDaysDescending(t *testing.T) {
	records := []domain.Record{
		rec("a", "u1", "x", at("2023-12-31", "10:00")),
		rec("b", "u1", "x", at("2024-01-02", "10:00")),
		rec("c", "u1", "x", at("2023-12-31", "08:00")),
		rec("d", "u1", "x", at("2024-01-01", "10:00")),
	}

	groups := GroupByDate(records, time.UTC)

	days := make([]string, len(groups))
	for i, g := range groups {
		days[i] = g.Day
	}
	assert.Equal(t, []string{"2024-01-02", "2024-01-01", "2023-12-31"}, days)
	assert.Equal(t, []string{"a", "c"}, ids(groups[2].Records), "within a day the input order is kept")
}

func TestGroupByDate_FlattenIsPermutationGroupedByDay(t *testing.T) {
	in := sampleLedger()
	groups := GroupByDate(in, time.UTC)
	flat := Flatten(groups)

	assert.ElementsMatch(t, ids(in), ids(flat))
	for _, g := range groups {
		for _, r := range g.Records {
			assert.Equal(t, g.Day, r.Day(time.UTC), "record %s grouped under wrong day", r.ID)
		}
	}
	for i := 1; i < len(flat); i++ {
		assert.GreaterOrEqual(t, flat[i-1].Day(time.UTC), flat[i].Day(time.UTC))
	}
}

func TestGroupByDate_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	groups := GroupByDate(sampleLedger(), loc)

	// r4 at 23:30 UTC is 01:30 the next day at UTC+2.
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"r6", "r5", "r4"}, ids(groups[0].Records))
}

func TestGroupByDate_Empty(t *testing.T) {
	assert.Empty(t, GroupByDate(nil, time.UTC))
	assert.Empty(t, Flatten(nil))
}

func TestDepartmentCounts(t *testing.T) {
	counts := DepartmentCounts(sampleLedger())

	assert.Equal(t, []DepartmentCount{
		{Department: "engineering", Count: 3},
		{Department: "sales", Count: 2},
		{Department: "general", Count: 1},
	}, counts)
	assert.Equal(t, []string{"engineering", "sales", "general"}, Departments(sampleLedger()))
}

func TestDepartmentCounts_ZeroCountAbsent(t *testing.T) {
	records := FilterByDepartment(sampleLedger(), "sales")
	assert.Equal(t, []string{"sales"}, Departments(records))
}

func TestAttendance(t *testing.T) {
	users := []domain.User{{ID: "1"}, {ID: "u1"}, {ID: "u2"}, {ID: "u3"}}

	view := Attendance(sampleLedger(), users, "2024-03-15", time.UTC)

	assert.Equal(t, "2024-03-15", view.Day)
	assert.Equal(t, []domain.User{{ID: "u1"}, {ID: "u2"}}, view.Logged)
	assert.Equal(t, []domain.User{{ID: "1"}, {ID: "u3"}}, view.NotLogged)
}

func TestAttendance_IgnoresUnknownUsers(t *testing.T) {
	users := []domain.User{{ID: "u2"}}
	view := Attendance(sampleLedger(), users, "2024-03-14", time.UTC)

	assert.Empty(t, view.Logged)
	assert.Equal(t, []domain.User{{ID: "u2"}}, view.NotLogged)
}

func TestFilters(t *testing.T) {
	ledger := sampleLedger()

	assert.Equal(t, []string{"r4", "r3"}, ids(FilterByDay(ledger, "2024-03-14", time.UTC)))
	assert.Len(t, FilterByDay(ledger, "", time.UTC), len(ledger))
	assert.Equal(t, []string{"r5", "r2"}, ids(FilterByDepartment(ledger, "sales")))
	assert.Len(t, FilterByDepartment(ledger, "all"), len(ledger))
	assert.Empty(t, FilterByDepartment(ledger, "Sales"))
	assert.Equal(t, []string{"r6", "r4", "r1"}, ids(FilterByUser(ledger, "u1")))
}

func TestSummaries(t *testing.T) {
	users := []domain.User{{ID: "1"}, {ID: "u1"}, {ID: "u2"}, {ID: "u3"}}
	now := at("2024-03-14", "12:00")

	s := AdminSummary(sampleLedger(), users, now, time.UTC)
	assert.Equal(t, 6, s.TotalRecords)
	assert.Equal(t, 4, s.TotalUsers)
	assert.Equal(t, 3, s.Departments)
	assert.Equal(t, 2, s.Active)
	assert.Equal(t, 2, s.Inactive)

	e := EmployeeSummary(sampleLedger(), "u1", now, time.UTC)
	assert.True(t, e.LoggedToday)
	assert.Equal(t, 3, e.Total)
	assert.Equal(t, []string{"r4"}, ids(e.Today))

	e = EmployeeSummary(sampleLedger(), "u2", now, time.UTC)
	assert.False(t, e.LoggedToday)
	assert.Empty(t, e.Today)
}

func TestFunctionsDoNotAliasInput(t *testing.T) {
	ledger := sampleLedger()
	ledger[0].Attachments = []domain.Attachment{{Name: "a"}}

	groups := GroupByDate(ledger, time.UTC)
	groups[0].Records[0].Attachments[0].Name = "changed"

	assert.Equal(t, "a", ledger[0].Attachments[0].Name)
}
