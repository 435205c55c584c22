package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ResumeSense/internal/models"

	"github.com/google/uuid"
)

// CreateResume inserts a resume row and returns its id.
func (d *DB) CreateResume(ctx context.Context, r models.NewResume) (string, error) {
	id := uuid.NewString()
	now := d.timestamp()
	_, err := d.exec(ctx, d.sql, `
		INSERT INTO resumes (id, user_id, company_name, job_title, job_description, resume_file_path, image_file_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.UserID, nullString(r.CompanyName), nullString(r.JobTitle), nullString(r.JobDescription),
		r.ResumePath, r.ImagePath, now, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return "", fmt.Errorf("user %s: %w", r.UserID, ErrNotFound)
		}
		return "", fmt.Errorf("insert resume: %w", err)
	}
	return id, nil
}

const resumeColumns = `r.id, r.user_id, r.company_name, r.job_title, r.job_description,
	r.resume_file_path, r.image_file_path, r.overall_score, r.created_at`

const feedbackColumns = `f.overall_score, f.ats_score, f.ats_tips, f.tone_style_score, f.tone_style_tips,
	f.content_score, f.content_tips, f.structure_score, f.structure_tips, f.skills_score, f.skills_tips`

// GetResumeRecord returns the resume row without feedback.
func (d *DB) GetResumeRecord(ctx context.Context, id string) (models.Resume, error) {
	row := d.queryRow(ctx, d.sql, `SELECT `+resumeColumns+` FROM resumes r WHERE r.id = ?`, id)

	var r models.Resume
	var sc resumeScan
	if err := row.Scan(sc.dest(&r)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Resume{}, ErrNotFound
		}
		return models.Resume{}, fmt.Errorf("select resume: %w", err)
	}
	sc.apply(&r)
	return r, nil
}

// GetResume returns the resume together with its feedback. A resume that has
// no feedback yet is reported as ErrNotFound.
func (d *DB) GetResume(ctx context.Context, id string) (models.Resume, error) {
	row := d.queryRow(ctx, d.sql, `
		SELECT `+resumeColumns+`, `+feedbackColumns+`
		FROM resumes r JOIN feedback f ON f.resume_id = r.id
		WHERE r.id = ?`, id)

	r, err := scanResumeWithFeedback(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Resume{}, ErrNotFound
		}
		return models.Resume{}, fmt.Errorf("select resume: %w", err)
	}
	return r, nil
}

// ListUserResumes returns the user's resumes that have feedback, newest first.
func (d *DB) ListUserResumes(ctx context.Context, userID string) ([]models.Resume, error) {
	rows, err := d.query(ctx, d.sql, `
		SELECT `+resumeColumns+`, `+feedbackColumns+`
		FROM resumes r JOIN feedback f ON f.resume_id = r.id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	resumes := []models.Resume{}
	for rows.Next() {
		r, err := scanResumeWithFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resume: %w", err)
		}
		resumes = append(resumes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return resumes, nil
}

// UpdateResumeScore sets or clears (score == nil) the resume's overall score.
func (d *DB) UpdateResumeScore(ctx context.Context, id string, score *int) error {
	return d.updateResumeScore(ctx, d.sql, id, score)
}

func (d *DB) updateResumeScore(ctx context.Context, q querier, id string, score *int) error {
	var v sql.NullInt64
	if score != nil {
		v = sql.NullInt64{Int64: int64(*score), Valid: true}
	}
	res, err := d.exec(ctx, q, `UPDATE resumes SET overall_score = ?, updated_at = ? WHERE id = ?`, v, d.timestamp(), id)
	if err != nil {
		return fmt.Errorf("update resume score: %w", err)
	}
	return expectRow(res)
}

// DeleteResume removes the resume row; its feedback goes with it (ON DELETE CASCADE).
func (d *DB) DeleteResume(ctx context.Context, id string) error {
	res, err := d.exec(ctx, d.sql, `DELETE FROM resumes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	return expectRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

type resumeScan struct {
	company, title, description sql.NullString
	score                       sql.NullInt64
	created                     string
}

func (s *resumeScan) dest(r *models.Resume) []any {
	return []any{&r.ID, &r.UserID, &s.company, &s.title, &s.description,
		&r.ResumePath, &r.ImagePath, &s.score, &s.created}
}

func (s *resumeScan) apply(r *models.Resume) {
	r.CompanyName = stringPtr(s.company)
	r.JobTitle = stringPtr(s.title)
	r.JobDescription = stringPtr(s.description)
	r.OverallScore = intPtr(s.score)
	r.CreatedAt = parseTime(s.created)
}

func scanResumeWithFeedback(row scanner) (models.Resume, error) {
	var r models.Resume
	var rs resumeScan
	var fs feedbackScan
	if err := row.Scan(append(rs.dest(&r), fs.dest()...)...); err != nil {
		return models.Resume{}, err
	}
	rs.apply(&r)
	f, err := fs.feedback()
	if err != nil {
		return models.Resume{}, err
	}
	r.Feedback = &f
	return r, nil
}
