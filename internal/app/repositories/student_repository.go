package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/db"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/dberrors"
	"github.com/deptce/mentorship/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
)

var personalInfoColumns = []string{
	"name", "enrollment_no", "date_of_birth", "blood_group", "aadhar_no",
	"personal_email", "college_email", "mobile_no",
	"father_name", "father_occupation", "father_mobile",
	"mother_name", "mother_occupation", "mother_mobile",
	"local_address", "permanent_address", "ssc", "hsc", "diploma",
	"sport", "other", "photo",
	"nss_member", "ember_member", "rhythm_member",
}

// personalInfoTargets must list fields in the order of personalInfoColumns.
func personalInfoTargets(p *models.PersonalInfo) []any {
	return []any{
		&p.Name, &p.EnrollmentNo, &p.DateOfBirth, &p.BloodGroup, &p.AadharNo,
		&p.PersonalEmail, &p.CollegeEmail, &p.MobileNo,
		&p.FatherName, &p.FatherOccupation, &p.FatherMobile,
		&p.MotherName, &p.MotherOccupation, &p.MotherMobile,
		&p.LocalAddress, &p.PermanentAddress, &p.SSC, &p.HSC, &p.Diploma,
		&p.Sport, &p.Other, &p.Photo,
		&p.NSSMember, &p.EmberMember, &p.RhythmMember,
	}
}

func personalInfoSetMap(p models.PersonalInfo) map[string]any {
	targets := personalInfoTargets(&p)
	set := make(map[string]any, len(targets)+1)
	for i, col := range personalInfoColumns {
		switch v := targets[i].(type) {
		case *string:
			set[col] = *v
		case *bool:
			set[col] = *v
		}
	}
	delete(set, "college_email")
	set["updated_at"] = squirrel.Expr("NOW()")
	return set
}

// StudentFilter narrows a student listing. Zero values disable a criterion.
type StudentFilter struct {
	MentorID string
	Name     string
	Semester string
	IsBan    *bool
}

// StudentRepository handles student records spread over personal_info and
// its child tables
type StudentRepository struct {
	pg *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(pg *db.PostgresDB) *StudentRepository {
	return &StudentRepository{
		pg: pg,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StudentRepository) selectProfiles() squirrel.SelectBuilder {
	cols := []string{"pi.id", "pi.student_id", "pi.is_ban", "s.mentor_id"}
	for _, c := range personalInfoColumns {
		cols = append(cols, "pi."+c)
	}
	return r.sb.Select(cols...).
		From("personal_info pi").
		Join("students s ON s.id = pi.student_id")
}

// GetByProfileID loads the full record of the student whose personal info
// id is id
func (r *StudentRepository) GetByProfileID(ctx context.Context, id string) (*models.StudentAggregate, error) {
	return r.getOne(ctx, r.pg.Pool, r.selectProfiles().Where(squirrel.Eq{"pi.id": id}))
}

// GetByEmail loads the full record of the student with the given college email
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*models.StudentAggregate, error) {
	return r.getOne(ctx, r.pg.Pool,
		r.selectProfiles().Where(squirrel.Eq{"lower(pi.college_email)": strings.ToLower(email)}))
}

func (r *StudentRepository) getOne(ctx context.Context, q db.DBTX, sel squirrel.SelectBuilder) (*models.StudentAggregate, error) {
	aggs, err := r.query(ctx, q, sel.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(aggs) == 0 {
		return nil, apperrors.ErrStudentNotFound
	}
	return aggs[0], nil
}

// List returns the students matching filter ordered by name
func (r *StudentRepository) List(ctx context.Context, filter StudentFilter) ([]*models.StudentAggregate, error) {
	sel := r.selectProfiles()
	if filter.MentorID != "" {
		sel = sel.Where(squirrel.Eq{"s.mentor_id": filter.MentorID})
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		like := "%" + escapeLike(name) + "%"
		sel = sel.Where(squirrel.Or{
			squirrel.ILike{"pi.name": like},
			squirrel.ILike{"pi.enrollment_no": like},
			squirrel.ILike{"pi.college_email": like},
		})
	}
	if filter.Semester != "" {
		sel = sel.Where("EXISTS (SELECT 1 FROM marks m WHERE m.student_id = pi.student_id AND m.semester = ?)", filter.Semester)
	}
	if filter.IsBan != nil {
		sel = sel.Where(squirrel.Eq{"pi.is_ban": *filter.IsBan})
	}
	return r.query(ctx, r.pg.Pool, sel.OrderBy("pi.name", "pi.college_email"))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *StudentRepository) query(ctx context.Context, q db.DBTX, sel squirrel.SelectBuilder) ([]*models.StudentAggregate, error) {
	sql, args, err := sel.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building student select SQL")
		return nil, fmt.Errorf("failed to build student query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying students")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	var aggs []*models.StudentAggregate
	for rows.Next() {
		agg := &models.StudentAggregate{Record: models.NewStudentRecord()}
		dest := append([]any{&agg.Profile.ID, &agg.Profile.StudentID, &agg.Profile.IsBan, &agg.Profile.MentorID},
			personalInfoTargets(&agg.Record.PersonalInfo)...)
		if err := rows.Scan(dest...); err != nil {
			logger.Error().Err(err).Msg("Error scanning student row")
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		agg.Profile.Info = agg.Record.PersonalInfo
		aggs = append(aggs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}
	rows.Close()

	if err := r.loadChildren(ctx, q, aggs); err != nil {
		return nil, err
	}
	return aggs, nil
}

func (r *StudentRepository) loadChildren(ctx context.Context, q db.DBTX, aggs []*models.StudentAggregate) error {
	if len(aggs) == 0 {
		return nil
	}
	byStudent := make(map[string]*models.StudentRecord, len(aggs))
	ids := make([]string, 0, len(aggs))
	for _, agg := range aggs {
		byStudent[agg.Profile.StudentID] = &agg.Record
		ids = append(ids, agg.Profile.StudentID)
	}
	in := squirrel.Eq{"student_id": ids}

	err := r.scanEach(ctx, q, r.sb.Select("student_id", "position", "semester", "marks", "no_of_kt", "kt_subject").
		From("marks").Where(in), func(row pgx.Rows) error {
		var sid string
		var pos int
		var m models.MarkEntry
		if err := row.Scan(&sid, &pos, &m.Semester, &m.Marks, &m.NoOfKT, &m.KTSubject); err != nil {
			return err
		}
		if rec := byStudent[sid]; rec != nil && pos >= 0 && pos < len(rec.Marks) {
			rec.Marks[pos] = m
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error loading marks: %w", err)
	}

	err = r.scanEach(ctx, q, r.sb.Select("student_id", "first_year", "second_year", "third_year", "final_year").
		From("achievements").Where(in), func(row pgx.Rows) error {
		var sid string
		var a models.Achievements
		if err := row.Scan(&sid, &a.FirstYear, &a.SecondYear, &a.ThirdYear, &a.FinalYear); err != nil {
			return err
		}
		if rec := byStudent[sid]; rec != nil {
			rec.Achievements = a
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error loading achievements: %w", err)
	}

	err = r.scanEach(ctx, q, r.sb.Select("student_id", "position", "semester", "mentor_name").
		From("semester_mentors").Where(in), func(row pgx.Rows) error {
		var sid string
		var pos int
		var m models.MentorEntry
		if err := row.Scan(&sid, &pos, &m.Semester, &m.MentorName); err != nil {
			return err
		}
		if rec := byStudent[sid]; rec != nil && pos >= 0 && pos < len(rec.Mentors) {
			rec.Mentors[pos] = m
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error loading semester mentors: %w", err)
	}

	err = r.scanEach(ctx, q, r.sb.Select("student_id", "position", "sr_no", "topic", "date", "action_taken", "remark", "sign").
		From("counseling").Where(in), func(row pgx.Rows) error {
		var sid string
		var pos int
		var c models.CounselingEntry
		if err := row.Scan(&sid, &pos, &c.SrNo, &c.Topic, &c.Date, &c.ActionTaken, &c.Remark, &c.Sign); err != nil {
			return err
		}
		if rec := byStudent[sid]; rec != nil && pos >= 0 && pos < len(rec.Counseling) {
			rec.Counseling[pos] = c
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error loading counseling: %w", err)
	}
	return nil
}

func (r *StudentRepository) scanEach(ctx context.Context, q db.DBTX, sel squirrel.SelectBuilder, fn func(pgx.Rows) error) error {
	sql, args, err := sel.ToSql()
	if err != nil {
		return err
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying student child rows")
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Create inserts an empty record for a first-time student
func (r *StudentRepository) Create(ctx context.Context, info models.PersonalInfo) (*models.StudentAggregate, error) {
	var profileID string
	err := r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var studentID string
		if err := tx.QueryRow(ctx, `INSERT INTO students DEFAULT VALUES RETURNING id`).Scan(&studentID); err != nil {
			return fmt.Errorf("error creating student: %w", err)
		}

		set := personalInfoSetMap(info)
		delete(set, "updated_at")
		set["student_id"] = studentID
		set["college_email"] = strings.ToLower(info.CollegeEmail)
		sql, args, err := r.sb.Insert("personal_info").SetMap(set).Suffix("RETURNING id").ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create personal info query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&profileID); err != nil {
			if dberrors.IsDuplicateConstraintError(err, "personal_info_college_email_key") {
				return apperrors.NewConflictError(fmt.Sprintf("student %s already exists", info.CollegeEmail))
			}
			return fmt.Errorf("error creating personal info: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Str("email", info.CollegeEmail).Msg("Error creating student")
		return nil, err
	}
	return r.GetByProfileID(ctx, profileID)
}

// UpdateRecord loads the record under a row lock, lets fn edit it, and
// writes it back wholesale in the same transaction
func (r *StudentRepository) UpdateRecord(ctx context.Context, profileID string, fn func(*models.StudentRecord) error) (*models.StudentAggregate, error) {
	var updated *models.StudentAggregate
	err := r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		agg, err := r.getOne(ctx, tx, r.selectProfiles().
			Where(squirrel.Eq{"pi.id": profileID}).
			Suffix("FOR UPDATE OF pi"))
		if err != nil {
			return err
		}

		rec := agg.Record.Clone()
		if err := fn(&rec); err != nil {
			return err
		}
		rec.EnsureSlots()
		rec.PersonalInfo.CollegeEmail = agg.Record.PersonalInfo.CollegeEmail

		if err := r.writeRecord(ctx, tx, agg.Profile, rec); err != nil {
			return err
		}
		agg.Record = rec
		agg.Profile.Info = rec.PersonalInfo
		updated = agg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *StudentRepository) writeRecord(ctx context.Context, tx pgx.Tx, profile models.StudentProfile, rec models.StudentRecord) error {
	exec := func(b squirrel.Sqlizer, what string) error {
		sql, args, err := b.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build %s query: %w", what, err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Str("studentID", profile.StudentID).Msgf("Error executing %s", what)
			return fmt.Errorf("error executing %s: %w", what, err)
		}
		return nil
	}

	if err := exec(r.sb.Update("personal_info").
		SetMap(personalInfoSetMap(rec.PersonalInfo)).
		Where(squirrel.Eq{"id": profile.ID}), "update personal info"); err != nil {
		return err
	}

	a := rec.Achievements
	if err := exec(r.sb.Insert("achievements").
		Columns("student_id", "first_year", "second_year", "third_year", "final_year").
		Values(profile.StudentID, a.FirstYear, a.SecondYear, a.ThirdYear, a.FinalYear).
		Suffix(`ON CONFLICT (student_id) DO UPDATE SET first_year = EXCLUDED.first_year,
			second_year = EXCLUDED.second_year, third_year = EXCLUDED.third_year,
			final_year = EXCLUDED.final_year`), "upsert achievements"); err != nil {
		return err
	}

	own := squirrel.Eq{"student_id": profile.StudentID}
	for _, table := range []string{"marks", "semester_mentors", "counseling"} {
		if err := exec(r.sb.Delete(table).Where(own), "clear "+table); err != nil {
			return err
		}
	}

	if err := exec(r.marksInsert(profile.StudentID, rec.Marks), "insert marks"); err != nil {
		return err
	}

	mentors := r.sb.Insert("semester_mentors").Columns("student_id", "position", "semester", "mentor_name")
	n := 0
	for i, m := range rec.Mentors {
		if m.MentorName == "" {
			continue
		}
		mentors = mentors.Values(profile.StudentID, i, m.Semester, m.MentorName)
		n++
	}
	if n > 0 {
		if err := exec(mentors, "insert semester mentors"); err != nil {
			return err
		}
	}

	counseling := r.sb.Insert("counseling").
		Columns("student_id", "position", "sr_no", "topic", "date", "action_taken", "remark", "sign")
	n = 0
	for i, c := range rec.Counseling {
		if c.Topic == "" && c.Date == "" && c.ActionTaken == "" && c.Remark == "" && c.Sign == "" && c.SrNo == i+1 {
			continue
		}
		counseling = counseling.Values(profile.StudentID, i, c.SrNo, c.Topic, c.Date, c.ActionTaken, c.Remark, c.Sign)
		n++
	}
	if n > 0 {
		if err := exec(counseling, "insert counseling"); err != nil {
			return err
		}
	}
	return nil
}

// marksInsert stores every semester slot, empty or not, relabelled by
// position. The semester filter of List relies on saved students having a
// row per semester.
func (r *StudentRepository) marksInsert(studentID string, marks []models.MarkEntry) squirrel.InsertBuilder {
	ins := r.sb.Insert("marks").Columns("student_id", "position", "semester", "marks", "no_of_kt", "kt_subject")
	for i := 0; i < models.SemesterCount; i++ {
		var m models.MarkEntry
		if i < len(marks) {
			m = marks[i]
		}
		ins = ins.Values(studentID, i, models.SemesterLabel(i), m.Marks, m.NoOfKT, m.KTSubject)
	}
	return ins
}

// UpdatePhoto stores the photo URL on a student's personal info
func (r *StudentRepository) UpdatePhoto(ctx context.Context, profileID, url string) error {
	return r.updateProfile(ctx, squirrel.Eq{"id": profileID}, map[string]any{"photo": url})
}

// SetBan sets the ban flag of the student with the given college email
func (r *StudentRepository) SetBan(ctx context.Context, email string, isBan bool) error {
	return r.updateProfile(ctx, squirrel.Eq{"lower(college_email)": strings.ToLower(email)}, map[string]any{"is_ban": isBan})
}

func (r *StudentRepository) updateProfile(ctx context.Context, where squirrel.Sqlizer, set map[string]any) error {
	set["updated_at"] = squirrel.Expr("NOW()")
	sql, args, err := r.sb.Update("personal_info").SetMap(set).Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update personal info SQL")
		return fmt.Errorf("failed to build update personal info query: %w", err)
	}

	tag, err := r.pg.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error updating personal info")
		return fmt.Errorf("error updating personal info: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// AssignMentor links the student with the given college email to a mentor
func (r *StudentRepository) AssignMentor(ctx context.Context, email, mentorID string) error {
	sql, args, err := r.sb.Update("students").
		Set("mentor_id", mentorID).
		Where("id = (SELECT student_id FROM personal_info WHERE lower(college_email) = ?)", strings.ToLower(email)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build assign mentor query: %w", err)
	}

	tag, err := r.pg.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrMentorNotFound
		}
		logger.Error().Err(err).Str("email", email).Msg("Error assigning mentor")
		return fmt.Errorf("error assigning mentor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}
