package tool_students

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aymanbagabas/go-udiff"
	"github.com/elee1766/campusadmin/src/agent"
	"github.com/elee1766/campusadmin/src/campusagent/toolsutil"
	"github.com/elee1766/campusadmin/src/storage"
)

// Tool name constants
const (
	AddName    = "add_student"
	GetName    = "get_student"
	UpdateName = "update_student"
	DeleteName = "delete_student"
	ListName   = "list_students"
)

const addPrompt = `Add a new student to the campus database.

Usage:
- student_id must be unique. Adding an ID that already exists fails.
- The student is created active.`

const getPrompt = `Get a student's record by student ID.`

const updatePrompt = `Update one field of a student's record.

Usage:
- field must be one of: name, department, email.
- new_value replaces the current value.`

const deletePrompt = `Delete a student from the database by student ID.`

const listPrompt = `List all students, oldest enrollment first.`

type AddInput struct {
	Name       string `json:"name" required:"true" description:"The student's full name"`
	StudentID  string `json:"student_id" required:"true" description:"Unique student ID, e.g. STU001"`
	Department string `json:"department" required:"true" description:"Department the student belongs to"`
	Email      string `json:"email" required:"true" validate:"email" description:"The student's email address"`
}

type GetInput struct {
	StudentID string `json:"student_id" required:"true" description:"The student's ID"`
}

type UpdateInput struct {
	StudentID string `json:"student_id" required:"true" description:"The student's ID"`
	Field     string `json:"field" required:"true" enum:"name,department,email" description:"Field to change"`
	NewValue  string `json:"new_value" required:"true" description:"The new value"`
}

type DeleteInput struct {
	StudentID string `json:"student_id" required:"true" description:"The student's ID"`
}

type ListInput struct{}

// Tools returns every student tool bound to db.
func Tools(db *storage.DB) ([]agent.Tool, error) {
	ctors := []func(*storage.DB) (agent.Tool, error){AddTool, GetTool, UpdateTool, DeleteTool, ListTool}
	out := make([]agent.Tool, 0, len(ctors))
	for _, ctor := range ctors {
		t, err := ctor(db)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func AddTool(db *storage.DB) (agent.Tool, error) {
	return agent.NewGenericTool(AddName, addPrompt, makeAddHandler(db), agent.Suspending())
}

func GetTool(db *storage.DB) (agent.Tool, error) {
	return agent.NewGenericTool(GetName, getPrompt, makeGetHandler(db), agent.Suspending())
}

func UpdateTool(db *storage.DB) (agent.Tool, error) {
	return agent.NewGenericTool(UpdateName, updatePrompt, makeUpdateHandler(db), agent.Suspending())
}

func DeleteTool(db *storage.DB) (agent.Tool, error) {
	return agent.NewGenericTool(DeleteName, deletePrompt, makeDeleteHandler(db), agent.Suspending())
}

func ListTool(db *storage.DB) (agent.Tool, error) {
	return agent.NewGenericTool(ListName, listPrompt, makeListHandler(db), agent.Suspending())
}

func makeAddHandler(db *storage.DB) func(ctx context.Context, input AddInput) (string, error) {
	return func(ctx context.Context, input AddInput) (string, error) {
		if err := toolsutil.Cancelled(ctx); err != nil {
			return "", err
		}

		student := &storage.Student{
			StudentID:  input.StudentID,
			Name:       input.Name,
			Department: input.Department,
			Email:      input.Email,
		}
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			if err := storage.CreateStudent(ctx, tx, student); err != nil {
				return err
			}
			toolsutil.RecordActivity(ctx, tx, student.StudentID, "student_added", fmt.Sprintf("%s joined %s", student.Name, student.Department))
			return nil
		})
		if errors.Is(err, storage.ErrStudentExists) {
			return "", toolsutil.NewToolError("conflict", fmt.Sprintf("Student with ID %s already exists", input.StudentID), "student_exists", err)
		}
		if err != nil {
			toolsutil.GetLogger().Error("failed to add student", "student_id", input.StudentID, "error", err)
			return "", fmt.Errorf("error adding student: %w", err)
		}

		toolsutil.GetLogger().Info("student added", "student_id", student.StudentID, "name", student.Name)
		return fmt.Sprintf("Student %s added successfully with ID: %s", student.Name, student.StudentID), nil
	}
}

func makeGetHandler(db *storage.DB) func(ctx context.Context, input GetInput) (*storage.Student, error) {
	return func(ctx context.Context, input GetInput) (*storage.Student, error) {
		student, err := storage.GetStudent(ctx, db.DB(), input.StudentID)
		if err != nil {
			return nil, fmt.Errorf("error retrieving student: %w", err)
		}
		if student == nil {
			return nil, toolsutil.StudentNotFound(input.StudentID)
		}
		return student, nil
	}
}

func makeUpdateHandler(db *storage.DB) func(ctx context.Context, input UpdateInput) (string, error) {
	return func(ctx context.Context, input UpdateInput) (string, error) {
		if err := toolsutil.Cancelled(ctx); err != nil {
			return "", err
		}

		var updated bool
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			before, err := storage.GetStudent(ctx, tx, input.StudentID)
			if err != nil || before == nil {
				return err
			}
			updated, err = storage.UpdateStudentField(ctx, tx, input.StudentID, input.Field, input.NewValue)
			if err != nil || !updated {
				return err
			}
			toolsutil.RecordActivity(ctx, tx, input.StudentID, "student_updated", FieldDiff(input.Field, fieldValue(before, input.Field), input.NewValue))
			return nil
		})
		if errors.Is(err, storage.ErrInvalidField) {
			return "", toolsutil.InvalidParams("Invalid field '%s'. Allowed fields: %v", input.Field, storage.StudentFields)
		}
		if err != nil {
			toolsutil.GetLogger().Error("failed to update student", "student_id", input.StudentID, "error", err)
			return "", fmt.Errorf("error updating student: %w", err)
		}
		if !updated {
			return "", toolsutil.StudentNotFound(input.StudentID)
		}

		toolsutil.GetLogger().Info("student updated", "student_id", input.StudentID, "field", input.Field)
		return fmt.Sprintf("Student %s updated successfully", input.StudentID), nil
	}
}

func makeDeleteHandler(db *storage.DB) func(ctx context.Context, input DeleteInput) (string, error) {
	return func(ctx context.Context, input DeleteInput) (string, error) {
		if err := toolsutil.Cancelled(ctx); err != nil {
			return "", err
		}

		var deleted bool
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			var err error
			deleted, err = storage.DeleteStudent(ctx, tx, input.StudentID)
			if err != nil || !deleted {
				return err
			}
			toolsutil.RecordActivity(ctx, tx, input.StudentID, "student_deleted", "")
			return nil
		})
		if err != nil {
			toolsutil.GetLogger().Error("failed to delete student", "student_id", input.StudentID, "error", err)
			return "", fmt.Errorf("error deleting student: %w", err)
		}
		if !deleted {
			return "", toolsutil.StudentNotFound(input.StudentID)
		}

		toolsutil.GetLogger().Info("student deleted", "student_id", input.StudentID)
		return fmt.Sprintf("Student %s deleted successfully", input.StudentID), nil
	}
}

func makeListHandler(db *storage.DB) func(ctx context.Context, input ListInput) ([]storage.Student, error) {
	return func(ctx context.Context, input ListInput) ([]storage.Student, error) {
		students, err := storage.ListStudents(ctx, db.DB())
		if err != nil {
			return nil, fmt.Errorf("error retrieving students: %w", err)
		}
		toolsutil.GetLogger().Debug("listed students", "count", len(students))
		return students, nil
	}
}

// FieldDiff renders a one-field change as a unified diff.
func FieldDiff(field, before, after string) string {
	return udiff.Unified(field, field, before+"\n", after+"\n")
}

func fieldValue(s *storage.Student, field string) string {
	switch field {
	case "name":
		return s.Name
	case "department":
		return s.Department
	case "email":
		return s.Email
	}
	return ""
}
