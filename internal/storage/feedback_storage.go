package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ResumeSense/internal/models"

	"github.com/google/uuid"
)

// CreateFeedback stores the review and copies its overall score onto the
// resume. A resume can only have one feedback row; a second one is ErrConflict.
func (d *DB) CreateFeedback(ctx context.Context, resumeID string, f models.Feedback) error {
	tips, err := marshalTips(&f)
	if err != nil {
		return err
	}

	return d.withTx(ctx, func(tx *sql.Tx) error {
		_, err := d.exec(ctx, tx, `
			INSERT INTO feedback (id, resume_id, overall_score,
				ats_score, ats_tips, tone_style_score, tone_style_tips, content_score, content_tips,
				structure_score, structure_tips, skills_score, skills_tips, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), resumeID, f.OverallScore,
			f.ATS.Score, tips[0], f.ToneAndStyle.Score, tips[1], f.Content.Score, tips[2],
			f.Structure.Score, tips[3], f.Skills.Score, tips[4], d.timestamp())
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("feedback for resume %s: %w", resumeID, ErrConflict)
			}
			if isForeignKeyViolation(err) {
				return fmt.Errorf("resume %s: %w", resumeID, ErrNotFound)
			}
			return fmt.Errorf("insert feedback: %w", err)
		}
		score := f.OverallScore
		return d.updateResumeScore(ctx, tx, resumeID, &score)
	})
}

// DeleteFeedback removes the review and clears the resume's overall score.
func (d *DB) DeleteFeedback(ctx context.Context, resumeID string) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		res, err := d.exec(ctx, tx, `DELETE FROM feedback WHERE resume_id = ?`, resumeID)
		if err != nil {
			return fmt.Errorf("delete feedback: %w", err)
		}
		if err := expectRow(res); err != nil {
			return err
		}
		return d.updateResumeScore(ctx, tx, resumeID, nil)
	})
}

// GetFeedback returns the feedback row for a resume.
func (d *DB) GetFeedback(ctx context.Context, resumeID string) (models.Feedback, error) {
	var fs feedbackScan
	err := d.queryRow(ctx, d.sql, `SELECT `+feedbackColumns+` FROM feedback f WHERE f.resume_id = ?`, resumeID).
		Scan(fs.dest()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Feedback{}, ErrNotFound
		}
		return models.Feedback{}, fmt.Errorf("select feedback: %w", err)
	}
	return fs.feedback()
}

func marshalTips(f *models.Feedback) ([5]string, error) {
	var out [5]string
	for i, cat := range []*models.Category{&f.ATS, &f.ToneAndStyle, &f.Content, &f.Structure, &f.Skills} {
		tips := cat.Tips
		if tips == nil {
			tips = []models.Tip{}
		}
		b, err := json.Marshal(tips)
		if err != nil {
			return out, fmt.Errorf("marshal tips: %w", err)
		}
		out[i] = string(b)
	}
	return out, nil
}

type feedbackScan struct {
	overall int
	scores  [5]int
	tips    [5]string
}

func (s *feedbackScan) dest() []any {
	return []any{&s.overall,
		&s.scores[0], &s.tips[0],
		&s.scores[1], &s.tips[1],
		&s.scores[2], &s.tips[2],
		&s.scores[3], &s.tips[3],
		&s.scores[4], &s.tips[4],
	}
}

func (s *feedbackScan) feedback() (models.Feedback, error) {
	f := models.Feedback{OverallScore: s.overall}
	for i, cat := range []*models.Category{&f.ATS, &f.ToneAndStyle, &f.Content, &f.Structure, &f.Skills} {
		cat.Score = s.scores[i]
		cat.Tips = []models.Tip{}
		if s.tips[i] == "" {
			continue
		}
		if err := json.Unmarshal([]byte(s.tips[i]), &cat.Tips); err != nil {
			return models.Feedback{}, fmt.Errorf("decode tips: %w", err)
		}
	}
	return f, nil
}
