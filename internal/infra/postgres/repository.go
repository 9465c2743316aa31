package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/samber/mo"

	"github.com/jinford/campus-match/internal/core/matching"
)

// MatchRepository は core/matching.Repository を実装する PostgreSQL リポジトリ
type MatchRepository struct {
	pool *pgxpool.Pool
}

// NewMatchRepository は新しい MatchRepository を返す
func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

// コンパイル時の型チェック
var _ matching.Repository = (*MatchRepository)(nil)

const studentColumns = `id, name, major, bio, interests, availability, location, skills, embedding, combined_text`

const projectColumns = `id, title, description, required_skills, location, start_date, end_date, estimated_weekly_hours, embedding, combined_text`

const courseColumns = `id, title, description, instructor, category, cover_image_url, required_skills, embedding, combined_text`

// GetStudent はIDで学生を取得する
func (r *MatchRepository) GetStudent(ctx context.Context, id uuid.UUID) (mo.Option[*matching.Student], error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id)

	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mo.None[*matching.Student](), nil
		}
		return mo.None[*matching.Student](), fmt.Errorf("failed to get student: %w", err)
	}
	return mo.Some(student), nil
}

// GetProject はIDでプロジェクトを取得する
func (r *MatchRepository) GetProject(ctx context.Context, id uuid.UUID) (mo.Option[*matching.Project], error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)

	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mo.None[*matching.Project](), nil
		}
		return mo.None[*matching.Project](), fmt.Errorf("failed to get project: %w", err)
	}
	return mo.Some(project), nil
}

// ListStudents は全学生を取得する
func (r *MatchRepository) ListStudents(ctx context.Context) ([]*matching.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := make([]*matching.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// ListProjects は全プロジェクトを取得する
func (r *MatchRepository) ListProjects(ctx context.Context) ([]*matching.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*matching.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ListCourses は全コースを取得する
func (r *MatchRepository) ListCourses(ctx context.Context) ([]*matching.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*matching.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// SaveStudentEmbedding は学生の埋め込みを更新する
func (r *MatchRepository) SaveStudentEmbedding(ctx context.Context, id uuid.UUID, embedding matching.Vector) error {
	return r.saveEmbedding(ctx, "students", id, embedding)
}

// SaveProjectEmbedding はプロジェクトの埋め込みを更新する
func (r *MatchRepository) SaveProjectEmbedding(ctx context.Context, id uuid.UUID, embedding matching.Vector) error {
	return r.saveEmbedding(ctx, "projects", id, embedding)
}

// SaveCourseEmbedding はコースの埋め込みを更新する
func (r *MatchRepository) SaveCourseEmbedding(ctx context.Context, id uuid.UUID, embedding matching.Vector) error {
	return r.saveEmbedding(ctx, "courses", id, embedding)
}

func (r *MatchRepository) saveEmbedding(ctx context.Context, table string, id uuid.UUID, embedding matching.Vector) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table+` SET embedding = $1, updated_at = now() WHERE id = $2`,
		pgvector.NewVector(embedding), id)
	if err != nil {
		return fmt.Errorf("failed to save embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no row updated for id %s in %s", id, table)
	}
	return nil
}

func scanStudent(row pgx.Row) (*matching.Student, error) {
	var (
		student      matching.Student
		major        pgtype.Text
		bio          pgtype.Text
		interests    pgtype.Text
		availability pgtype.Text
		location     pgtype.Text
		skills       []byte
		embedding    *pgvector.Vector
		combinedText pgtype.Text
	)
	if err := row.Scan(
		&student.ID, &student.Name, &major, &bio, &interests,
		&availability, &location, &skills, &embedding, &combinedText,
	); err != nil {
		return nil, err
	}

	student.Major = major.String
	student.Bio = bio.String
	student.Interests = interests.String
	student.Availability = availability.String
	student.Location = location.String
	student.Skills = rawJSON(skills)
	student.Embedding = rawEmbedding(embedding)
	student.CombinedText = combinedText.String
	return &student, nil
}

func scanProject(row pgx.Row) (*matching.Project, error) {
	var (
		project      matching.Project
		description  pgtype.Text
		skills       []byte
		location     pgtype.Text
		startDate    pgtype.Timestamptz
		endDate      pgtype.Timestamptz
		weeklyHours  pgtype.Int4
		embedding    *pgvector.Vector
		combinedText pgtype.Text
	)
	if err := row.Scan(
		&project.ID, &project.Title, &description, &skills, &location,
		&startDate, &endDate, &weeklyHours, &embedding, &combinedText,
	); err != nil {
		return nil, err
	}

	project.Description = description.String
	project.RequiredSkills = rawJSON(skills)
	project.Location = location.String
	if startDate.Valid {
		t := startDate.Time
		project.StartDate = &t
	}
	if endDate.Valid {
		t := endDate.Time
		project.EndDate = &t
	}
	project.EstimatedWeeklyHours = int(weeklyHours.Int32)
	project.Embedding = rawEmbedding(embedding)
	project.CombinedText = combinedText.String
	return &project, nil
}

func scanCourse(row pgx.Row) (*matching.Course, error) {
	var (
		course       matching.Course
		description  pgtype.Text
		instructor   pgtype.Text
		category     pgtype.Text
		coverImage   pgtype.Text
		skills       []byte
		embedding    *pgvector.Vector
		combinedText pgtype.Text
	)
	if err := row.Scan(
		&course.ID, &course.Title, &description, &instructor, &category,
		&coverImage, &skills, &embedding, &combinedText,
	); err != nil {
		return nil, err
	}

	course.Description = description.String
	course.Instructor = instructor.String
	course.Category = category.String
	course.CoverImageURL = coverImage.String
	course.RequiredSkills = rawJSON(skills)
	course.Embedding = rawEmbedding(embedding)
	course.CombinedText = combinedText.String
	return &course, nil
}
