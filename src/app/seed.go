package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/elee1766/campusadmin/src/storage"
)

// SampleStudents is the demo roster inserted by Seed.
var SampleStudents = []storage.Student{
	{StudentID: "STU001", Name: "Alice Johnson", Department: "Computer Science", Email: "alice.johnson@university.edu"},
	{StudentID: "STU002", Name: "Bob Smith", Department: "Mathematics", Email: "bob.smith@university.edu"},
	{StudentID: "STU003", Name: "Carol Davis", Department: "Physics", Email: "carol.davis@university.edu"},
	{StudentID: "STU004", Name: "David Wilson", Department: "Computer Science", Email: "david.wilson@university.edu"},
	{StudentID: "STU005", Name: "Emma Brown", Department: "Biology", Email: "emma.brown@university.edu"},
}

// Seed inserts the sample students that are missing and reports how many
// were added.
func (a *App) Seed(ctx context.Context) (int, error) {
	added := 0
	err := a.DB.WithTx(ctx, func(tx *sql.Tx) error {
		for _, s := range SampleStudents {
			s := s
			err := storage.CreateStudent(ctx, tx, &s)
			if errors.Is(err, storage.ErrStudentExists) {
				continue
			}
			if err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
