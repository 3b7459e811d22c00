package cli

import (
	"context"
	"fmt"

	"course-quiz-engine/internal/app"
	"course-quiz-engine/internal/domain"
	"github.com/spf13/cobra"
)

func newAddUserCmd(opts *rootOptions) *cobra.Command {
	var id, name, role string
	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Register a teacher or student",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Role(role)
			if r != domain.RoleTeacher && r != domain.RoleStudent {
				return fmt.Errorf("role must be %q or %q", domain.RoleTeacher, domain.RoleStudent)
			}
			return run(cmd, opts, true, func(ctx context.Context, e *engine) error {
				e.catalog.AddUser(domain.User{ID: id, Name: name, Role: r})
				fmt.Fprintf(cmd.OutOrStdout(), "User %s (%s) saved\n", id, name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "user id")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStudent), "teacher or student")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAddCourseCmd(opts *rootOptions) *cobra.Command {
	var id, name, teacher string
	cmd := &cobra.Command{
		Use:   "add-course",
		Short: "Create a course taught by a teacher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, e *engine) error {
				u, err := e.catalog.GetUser(ctx, teacher)
				if err != nil {
					return fmt.Errorf("instructor %s: %w", teacher, err)
				}
				if u.Role != domain.RoleTeacher {
					return fmt.Errorf("%s: %w", teacher, domain.ErrNotInstructor)
				}
				if _, err := e.catalog.LoadCourse(ctx, id); err == nil {
					return fmt.Errorf("course %s already exists", id)
				}
				e.catalog.AddCourse(domain.Course{ID: id, Name: name, InstructorID: teacher})
				fmt.Fprintf(cmd.OutOrStdout(), "Course %s - %s created\n", id, name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "course id")
	cmd.Flags().StringVar(&name, "name", "", "course name")
	cmd.Flags().StringVar(&teacher, "teacher", "", "instructor user id")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("teacher")
	return cmd
}

func newEnrollCmd(opts *rootOptions) *cobra.Command {
	var course string
	var students []string
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Enroll students in a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, e *engine) error {
				for _, s := range students {
					if err := e.catalog.Enroll(course, s); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d student(s) enrolled in %s\n", len(students), course)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&course, "course", "", "course id")
	cmd.Flags().StringSliceVar(&students, "student", nil, "student id (repeatable)")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

// newSeedCmd loads the sample course used for demos and manual testing.
func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample users, a course and its question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, e *engine) error {
				if _, err := e.catalog.LoadCourse(ctx, sampleCourseID); err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Sample data already present")
					return nil
				}
				if err := seed(ctx, e); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sample data loaded: course %s, teacher t1, students s1 and s2\n", sampleCourseID)
				return nil
			})
		},
	}
}

const sampleCourseID = "OOPT-2002"

func seed(ctx context.Context, e *engine) error {
	e.catalog.AddUser(domain.User{ID: "t1", Name: "Dr. Smith", Role: domain.RoleTeacher})
	e.catalog.AddUser(domain.User{ID: "s1", Name: "Ali Khan", Role: domain.RoleStudent})
	e.catalog.AddUser(domain.User{ID: "s2", Name: "Sara Ahmed", Role: domain.RoleStudent})
	e.catalog.AddCourse(domain.Course{
		ID:           sampleCourseID,
		Name:         "Object Oriented Programming Theory",
		InstructorID: "t1",
		StudentIDs:   []string{"s1", "s2"},
	})

	drafts := []app.QuestionDraft{
		{
			ID:           "q1",
			Kind:         domain.KindMultipleChoice,
			Topic:        "Inheritance",
			Prompt:       "Which keyword is used for inheritance in Java?",
			Points:       5,
			Options:      []string{"extends", "implements", "inherits", "derives"},
			CorrectIndex: 0,
		},
		{
			ID:           "q2",
			Kind:         domain.KindTrueFalse,
			Topic:        "Polymorphism",
			Prompt:       "Method overloading is an example of runtime polymorphism.",
			Points:       3,
			CorrectValue: false,
		},
	}
	for _, d := range drafts {
		if _, err := e.service.AuthorQuestion(ctx, "t1", sampleCourseID, d); err != nil {
			return err
		}
	}
	return nil
}
