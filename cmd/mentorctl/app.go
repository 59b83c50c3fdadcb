package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/pkg/client"
	"github.com/deptce/mentorship/internal/pkg/logger"
	"github.com/deptce/mentorship/internal/pkg/normalize"
	"github.com/deptce/mentorship/internal/pkg/recordstats"
	"github.com/deptce/mentorship/internal/pkg/report"
	"github.com/deptce/mentorship/internal/pkg/validation"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:      "mentorctl",
		Usage:     "view and edit student mentoring records",
		Writer:    stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "http://localhost:8000", EnvVars: []string{"MENTORCTL_SERVER"}, Usage: "API base URL"},
			&cli.StringFlag{Name: "token-file", EnvVars: []string{"MENTORCTL_TOKEN_FILE"}, Usage: "where the access token is kept"},
			&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"MENTORCTL_LOG_LEVEL"}},
			&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second},
		},
		Before: func(c *cli.Context) error {
			logger.Configure(logger.Config{
				Level:  logger.LogLevel(c.String("log-level")),
				Pretty: true,
				Output: os.Stderr,
			})
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "sign in as a mentor, or store a student token from the browser sign-in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "password", EnvVars: []string{"MENTORCTL_PASSWORD"}},
					&cli.StringFlag{Name: "token", Usage: "access token to store as-is"},
				},
				Action: login,
			},
			{Name: "logout", Usage: "revoke and forget the stored token", Action: logout},
			{
				Name:  "me",
				Usage: "print your record as JSON",
				Flags: []cli.Flag{&cli.StringFlag{Name: "out", Usage: "write to this file instead of stdout"}},
				Action: me,
			},
			{
				Name:   "save",
				Usage:  "save a record JSON file as your record",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "file", Required: true}},
				Action: save,
			},
			{
				Name:   "upload-photo",
				Usage:  "replace your profile photo",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "file", Required: true}},
				Action: uploadPhoto,
			},
			{
				Name:  "report",
				Usage: "write a printable HTML report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Required: true},
					&cli.StringFlag{Name: "file", Usage: "render this record file instead of your stored record"},
					&cli.StringFlag{Name: "department", Value: report.DefaultDepartment},
				},
				Action: writeReport,
			},
			{
				Name:   "stats",
				Usage:  "print average marks, KT count and counseling sessions",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "file", Usage: "use this record file instead of your stored record"}},
				Action: stats,
			},
			{
				Name:  "students",
				Usage: "list your students (mentors)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "semester"},
					&cli.BoolFlag{Name: "banned"},
				},
				Action: students,
			},
			{
				Name:  "records",
				Usage: "browse all records (mentors)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search"},
					&cli.StringFlag{Name: "semester"},
					&cli.StringFlag{Name: "mentor"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "size", Value: 20},
				},
				Action: records,
			},
			{
				Name:   "export",
				Usage:  "download every record as JSON (mentors)",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "out", Value: "students_data.json"}},
				Action: export,
			},
		},
	}
}

func newClient(c *cli.Context) (*client.Client, error) {
	path := c.String("token-file")
	if path == "" {
		var err error
		if path, err = client.DefaultTokenPath(); err != nil {
			return nil, err
		}
	}
	return client.New(c.String("server"), client.WithTokenStore(client.FileTokenStore{Path: path})), nil
}

func withTimeout(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, c.Duration("timeout"))
}

func login(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	if token := c.String("token"); token != "" {
		return api.SetToken(token)
	}

	email := c.String("email")
	if err := validation.Email("email", email).Err(); err != nil {
		return err
	}
	password, err := passwordFrom(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := api.Login(ctx, email, password); err != nil {
		return err
	}
	logger.Info().Str("email", email).Msg("Logged in")
	return nil
}

// passwordFrom takes the flag value, or prompts without echo on a terminal
func passwordFrom(c *cli.Context) (string, error) {
	if p := c.String("password"); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password or MENTORCTL_PASSWORD is required")
	}
	fmt.Fprint(c.App.ErrWriter, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(c.App.ErrWriter)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func logout(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	return api.Logout(ctx)
}

func me(c *cli.Context) error {
	rec, err := loadRecord(c, "")
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if out := c.String("out"); out != "" {
		return writeFileAtomic(out, b)
	}
	_, err = c.App.Writer.Write(b)
	return err
}

func save(c *cli.Context) error {
	rec, err := readRecordFile(c.String("file"))
	if err != nil {
		return err
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := api.Save(ctx, rec); err != nil {
		return err
	}
	logger.Info().Msg("Student information updated successfully")
	return nil
}

func uploadPhoto(c *cli.Context) error {
	path := c.String("file")
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	api, err := newClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	url, err := api.UploadPhoto(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, url)
	return nil
}

func writeReport(c *cli.Context) error {
	rec, err := loadRecord(c, c.String("file"))
	if err != nil {
		return err
	}
	var sb strings.Builder
	if err := report.Render(&sb, rec, report.Options{Department: c.String("department")}); err != nil {
		return err
	}
	return writeFileAtomic(c.String("out"), []byte(sb.String()))
}

func stats(c *cli.Context) error {
	rec, err := loadRecord(c, c.String("file"))
	if err != nil {
		return err
	}
	s := recordstats.Summarize(rec)
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Average marks\t%s\n", s.AverageMarks)
	fmt.Fprintf(tw, "Total KTs\t%d\n", s.TotalKTs)
	fmt.Fprintf(tw, "Counseling sessions\t%d\n", s.CounselingSessions)
	return tw.Flush()
}

func students(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	filter := client.StudentFilter{Name: c.String("name"), Semester: c.String("semester")}
	if c.IsSet("banned") {
		banned := c.Bool("banned")
		filter.IsBan = &banned
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	items, err := api.Students(ctx, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tENROLLMENT\tEMAIL\tAVG\tKTS\tSESSIONS\tBANNED")
	for _, it := range items {
		info := it.Record.PersonalInfo
		if info == nil {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%t\n", info.Name, info.EnrollmentNo, info.CollegeEmail,
			it.Summary.AverageMarks, it.Summary.TotalKTs, it.Summary.CounselingSessions, it.IsBan)
	}
	return tw.Flush()
}

func records(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	page, err := api.AdminRecords(ctx, client.RecordQuery{
		Search:   c.String("search"),
		Semester: c.String("semester"),
		Mentor:   c.String("mentor"),
		Page:     c.Int("page"),
		Size:     c.Int("size"),
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tENROLLMENT\tAVG\tKTS\tSESSIONS\tUPDATED")
	for _, r := range page.Items {
		updated := ""
		if !r.LastUpdated.IsZero() {
			updated = r.LastUpdated.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n", r.ID, r.Record.PersonalInfo.Name, r.Record.PersonalInfo.EnrollmentNo,
			r.Summary.AverageMarks, r.Summary.TotalKTs, r.Summary.CounselingSessions, updated)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	p := page.Pagination
	fmt.Fprintf(c.App.Writer, "page %d of %d, %d records\n", p.CurrentPage, p.TotalPages, p.TotalItems)
	return nil
}

func export(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	var sb strings.Builder
	if err := api.Export(ctx, &sb); err != nil {
		return err
	}
	out := c.String("out")
	if err := writeFileAtomic(out, []byte(sb.String())); err != nil {
		return err
	}
	logger.Info().Str("file", out).Msg("Export written")
	return nil
}

// loadRecord reads path when set, otherwise fetches the caller's record
func loadRecord(c *cli.Context, path string) (models.StudentRecord, error) {
	if path != "" {
		return readRecordFile(path)
	}
	api, err := newClient(c)
	if err != nil {
		return models.StudentRecord{}, err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	return api.Me(ctx)
}

// readRecordFile accepts either dialect, or a stored document whose record
// sits under mentorForm
func readRecordFile(path string) (models.StudentRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return models.StudentRecord{}, err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return models.StudentRecord{}, fmt.Errorf("%s is not a JSON object: %w", path, err)
	}
	if form, ok := probe["mentorForm"]; ok {
		return normalize.RecordJSON(form), nil
	}
	if form, ok := probe["record"]; ok {
		return normalize.RecordJSON(form), nil
	}
	return normalize.RecordJSON(b), nil
}

// writeFileAtomic replaces path only once data is fully written
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
