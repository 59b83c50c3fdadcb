// Package report renders a record as a printable HTML document.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/pkg/recordstats"
)

//go:embed templates/record.html
var templateFS embed.FS

var recordTemplate = template.Must(
	template.New("record.html").
		Funcs(template.FuncMap{"yesno": yesNo}).
		ParseFS(templateFS, "templates/record.html"),
)

// DefaultDepartment is used when Options.Department is empty.
const DefaultDepartment = "Department of Computer Engineering"

// Options controls the report header.
type Options struct {
	Department  string
	GeneratedAt time.Time
}

type semesterRow struct {
	Semester  string
	Marks     string
	NoOfKT    string
	KTSubject string
	Mentor    string
}

type view struct {
	Department  string
	Title       string
	GeneratedAt string
	Info        models.PersonalInfo
	Semesters   []semesterRow
	Achieve     models.Achievements
	Counseling  []models.CounselingEntry
	Summary     recordstats.Summary
}

// Render writes rec as a self-contained HTML page styled for printing.
// Counseling slots with no topic, date or action are omitted.
func Render(w io.Writer, rec models.StudentRecord, opts Options) error {
	if opts.Department == "" {
		opts.Department = DefaultDepartment
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	name := rec.PersonalInfo.Name
	if name == "" {
		name = "Unknown Student"
	}

	v := view{
		Department:  opts.Department,
		Title:       "Student Mentoring Record - " + name,
		GeneratedAt: opts.GeneratedAt.Format("02 Jan 2006 15:04"),
		Info:        rec.PersonalInfo,
		Achieve:     rec.Achievements,
		Summary:     recordstats.Summarize(rec),
	}

	for i, m := range rec.Marks {
		row := semesterRow{Semester: m.Semester, Marks: m.Marks, NoOfKT: m.NoOfKT, KTSubject: m.KTSubject}
		if i < len(rec.Mentors) {
			row.Mentor = rec.Mentors[i].MentorName
		}
		v.Semesters = append(v.Semesters, row)
	}
	for _, c := range rec.Counseling {
		if c.Topic == "" && c.Date == "" && c.ActionTaken == "" {
			continue
		}
		v.Counseling = append(v.Counseling, c)
	}

	if err := recordTemplate.Execute(w, v); err != nil {
		return fmt.Errorf("failed to render record report: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
