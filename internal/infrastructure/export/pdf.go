package export

import (
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/safad/worklog/internal/core/dashboard"
	"github.com/safad/worklog/internal/core/domain"
)

var (
	colorPrimary = &props.Color{Red: 37, Green: 99, Blue: 235}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// Report is the input of a printable PDF.
type Report struct {
	Title       string
	GeneratedBy string
	GeneratedAt time.Time
	Location    *time.Location
	Records     []domain.Record
	// Summary is printed as a header block when set.
	Summary *dashboard.Summary
}

// PDF renders the report: optional summary, then the records grouped by day,
// most recent day first.
func PDF(rep Report) ([]byte, error) {
	loc := rep.Location
	if loc == nil {
		loc = time.UTC
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(rep.Title, true).
		WithAuthor(rep.GeneratedBy, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(titleRow(rep, loc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	if rep.Summary != nil {
		m.AddRows(summaryRows(*rep.Summary)...)
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	}

	groups := dashboard.GroupByDate(rep.Records, loc)
	if len(groups) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("No records found", props.Text{Align: align.Center, Top: 3, Color: colorGray}),
		)))
	}
	for _, g := range groups {
		m.AddRows(dayRow(g))
		m.AddRows(tableHeaderRow())
		m.AddRows(recordRows(g.Records)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate: %w", err)
	}
	return doc.GetBytes(), nil
}

func titleRow(rep Report, loc *time.Location) core.Row {
	generated := rep.GeneratedAt.In(loc).Format("Jan 2, 2006 15:04 MST")
	if rep.GeneratedBy != "" {
		generated += " by " + rep.GeneratedBy
	}
	return row.New(16).Add(
		col.New(8).Add(
			text.New(rep.Title, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
		),
		col.New(4).Add(
			text.New(generated, props.Text{Size: 8, Align: align.Right, Color: colorGray, Top: 3}),
		),
	)
}

func summaryRows(s dashboard.Summary) []core.Row {
	card := func(label string, n int) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 8, Color: colorGray, Align: align.Center, Top: 1}),
			text.New(strconv.Itoa(n), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Center, Top: 6}),
		)
	}
	rows := []core.Row{row.New(14).Add(
		card("Total Records", s.TotalRecords),
		card("Active Employees", s.Active),
		card("Departments", s.Departments),
		card("Inactive Employees", s.Inactive),
	)}
	for _, d := range s.PerDepartment {
		rows = append(rows, row.New(5).Add(
			col.New(6).Add(text.New(d.Department, props.Text{Size: 8, Left: 2})),
			col.New(6).Add(text.New(strconv.Itoa(d.Count), props.Text{Size: 8, Align: align.Right, Right: 2})),
		))
	}
	return rows
}

func dayRow(g dashboard.DayGroup) core.Row {
	label := g.Day
	if t, err := time.Parse(domain.DayLayout, g.Day); err == nil {
		label = t.Format("Monday, January 2, 2006")
	}
	return row.New(10).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 10, Top: 4}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorWhite, Top: 2, Left: 1,
		}))
	}
	return row.New(8).Add(
		h("Employee", 2),
		h("Project", 3),
		h("Description", 4),
		h("Time", 2),
		h("Files", 1),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func recordRows(records []domain.Record) []core.Row {
	out := make([]core.Row, 0, len(records))
	for _, r := range records {
		out = append(out, row.New(7).Add(
			col.New(2).Add(text.New(r.UserName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(r.ProjectName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(r.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(TimeRange(r), props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(1).Add(text.New(strconv.Itoa(len(r.Attachments)), props.Text{Size: 8, Top: 1, Align: align.Center})),
		))
	}
	return out
}
