package repositories

import (
	"testing"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarksInsert_StoresEverySemester(t *testing.T) {
	repo := NewStudentRepository(nil)

	tests := []struct {
		name  string
		marks []models.MarkEntry
	}{
		{"all empty", models.NewStudentRecord().Marks},
		{"one filled", func() []models.MarkEntry {
			m := models.NewStudentRecord().Marks
			m[2] = models.MarkEntry{Semester: "SEM 3", Marks: "70", NoOfKT: "1"}
			return m
		}()},
		{"short slice", []models.MarkEntry{{Semester: "sem1", Marks: "55"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.marksInsert("s-1", tt.marks).ToSql()
			require.NoError(t, err)

			assert.Contains(t, sql, "INSERT INTO marks")
			require.Len(t, args, models.SemesterCount*6)
			for i := 0; i < models.SemesterCount; i++ {
				row := args[i*6 : (i+1)*6]
				assert.Equal(t, "s-1", row[0])
				assert.Equal(t, i, row[1])
				assert.Equal(t, models.SemesterLabel(i), row[2])
			}
		})
	}
}

func TestMarksInsert_KeepsValues(t *testing.T) {
	marks := models.NewStudentRecord().Marks
	marks[2] = models.MarkEntry{Semester: "SEM 3", Marks: "70", NoOfKT: "1", KTSubject: "Maths"}

	_, args, err := NewStudentRepository(nil).marksInsert("s-1", marks).ToSql()
	require.NoError(t, err)

	assert.Equal(t, []any{"s-1", 2, "sem3", "70", "1", "Maths"}, args[12:18])
	assert.Equal(t, []any{"s-1", 7, "sem8", "", "", ""}, args[42:48])
}
