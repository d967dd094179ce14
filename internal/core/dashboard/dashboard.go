// Package dashboard holds the pure views the front end renders: records
// grouped by day, per-department counts, attendance and summary cards.
// Every function takes snapshots and never mutates its inputs.
package dashboard

import (
	"sort"
	"time"

	"github.com/safad/worklog/internal/core/domain"
)

// DayGroup is the records of one calendar day, in ledger order.
type DayGroup struct {
	Day     string
	Records []domain.Record
}

// DepartmentCount is the number of records carrying one department.
type DepartmentCount struct {
	Department string
	Count      int
}

// AttendanceView splits the directory by whether each user logged a record
// on Day.
type AttendanceView struct {
	Day       string
	Logged    []domain.User
	NotLogged []domain.User
}

// Summary feeds the admin statistic cards and the department chart.
type Summary struct {
	TotalRecords  int
	TotalUsers    int
	Departments   int
	Active        int
	Inactive      int
	PerDepartment []DepartmentCount
}

// EmployeeStatus feeds the employee dashboard cards.
type EmployeeStatus struct {
	Today       []domain.Record
	Total       int
	LoggedToday bool
}

// GroupByDate partitions records by calendar day in loc. Days are sorted
// most recent first; within a day the input order is kept.
func GroupByDate(records []domain.Record, loc *time.Location) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup
	for _, r := range records {
		day := r.Day(loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		groups[i].Records = append(groups[i].Records, r.Clone())
	}

	// YYYY-MM-DD sorts lexically.
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Day > groups[b].Day })
	return groups
}

// Flatten concatenates groups in order.
func Flatten(groups []DayGroup) []domain.Record {
	var out []domain.Record
	for _, g := range groups {
		for _, r := range g.Records {
			out = append(out, r.Clone())
		}
	}
	return out
}

// DepartmentCounts counts records per department. Departments appear in the
// order they are first seen; a department without records is absent.
func DepartmentCounts(records []domain.Record) []DepartmentCount {
	index := make(map[string]int)
	var out []DepartmentCount
	for _, r := range records {
		i, ok := index[r.Department]
		if !ok {
			i = len(out)
			index[r.Department] = i
			out = append(out, DepartmentCount{Department: r.Department})
		}
		out[i].Count++
	}
	return out
}

// Departments lists the distinct departments present in records.
func Departments(records []domain.Record) []string {
	counts := DepartmentCounts(records)
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Department
	}
	return out
}

// Attendance splits users by whether they have a record on day. Records of
// users no longer in the directory are ignored.
func Attendance(records []domain.Record, users []domain.User, day string, loc *time.Location) AttendanceView {
	logged := make(map[string]bool)
	for _, r := range records {
		if r.Day(loc) == day {
			logged[r.UserID] = true
		}
	}

	view := AttendanceView{Day: day, Logged: []domain.User{}, NotLogged: []domain.User{}}
	for _, u := range users {
		if logged[u.ID] {
			view.Logged = append(view.Logged, u)
		} else {
			view.NotLogged = append(view.NotLogged, u)
		}
	}
	return view
}

// FilterByDay keeps the records dated day. An empty day keeps everything.
func FilterByDay(records []domain.Record, day string, loc *time.Location) []domain.Record {
	if day == "" {
		return cloneAll(records)
	}
	return keep(records, func(r domain.Record) bool { return r.Day(loc) == day })
}

// FilterByDepartment keeps the records of one department. An empty
// department or "all" keeps everything.
func FilterByDepartment(records []domain.Record, department string) []domain.Record {
	if department == "" || department == "all" {
		return cloneAll(records)
	}
	return keep(records, func(r domain.Record) bool { return r.Department == department })
}

// FilterByUser keeps the records owned by userID.
func FilterByUser(records []domain.Record, userID string) []domain.Record {
	return keep(records, func(r domain.Record) bool { return r.UserID == userID })
}

// AdminSummary computes the admin dashboard cards for the day of now.
func AdminSummary(records []domain.Record, users []domain.User, now time.Time, loc *time.Location) Summary {
	att := Attendance(records, users, domain.DayKey(now, loc), loc)
	per := DepartmentCounts(records)
	return Summary{
		TotalRecords:  len(records),
		TotalUsers:    len(users),
		Departments:   len(per),
		Active:        len(att.Logged),
		Inactive:      len(att.NotLogged),
		PerDepartment: per,
	}
}

// EmployeeSummary computes the employee dashboard cards for userID.
func EmployeeSummary(records []domain.Record, userID string, now time.Time, loc *time.Location) EmployeeStatus {
	own := FilterByUser(records, userID)
	today := FilterByDay(own, domain.DayKey(now, loc), loc)
	return EmployeeStatus{
		Today:       today,
		Total:       len(own),
		LoggedToday: len(today) > 0,
	}
}

func keep(records []domain.Record, pred func(domain.Record) bool) []domain.Record {
	out := []domain.Record{}
	for _, r := range records {
		if pred(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func cloneAll(records []domain.Record) []domain.Record {
	return keep(records, func(domain.Record) bool { return true })
}
