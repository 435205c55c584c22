package models

import (
	"errors"
	"fmt"
)

const (
	TipGood    = "good"
	TipImprove = "improve"
)

type Tip struct {
	Type        string `json:"type"`
	Tip         string `json:"tip"`
	Explanation string `json:"explanation,omitempty"`
}

// Category is one scored section of the review.
type Category struct {
	Score int   `json:"score"`
	Tips  []Tip `json:"tips"`
}

// Feedback is the structured review of a resume. The JSON field names are
// the ones the reviewer model is asked to produce.
type Feedback struct {
	OverallScore int      `json:"overallScore"`
	ATS          Category `json:"ATS"`
	ToneAndStyle Category `json:"toneAndStyle"`
	Content      Category `json:"content"`
	Structure    Category `json:"structure"`
	Skills       Category `json:"skills"`
}

// Categories returns the five sections keyed by their JSON name.
func (f *Feedback) Categories() map[string]*Category {
	return map[string]*Category{
		"ATS":          &f.ATS,
		"toneAndStyle": &f.ToneAndStyle,
		"content":      &f.Content,
		"structure":    &f.Structure,
		"skills":       &f.Skills,
	}
}

// Validate checks score ranges and tip shapes.
func (f *Feedback) Validate() error {
	var errs []error
	if !validScore(f.OverallScore) {
		errs = append(errs, fmt.Errorf("overallScore %d out of range 0-100", f.OverallScore))
	}
	for name, cat := range f.Categories() {
		if !validScore(cat.Score) {
			errs = append(errs, fmt.Errorf("%s.score %d out of range 0-100", name, cat.Score))
		}
		for i, tip := range cat.Tips {
			if tip.Type != TipGood && tip.Type != TipImprove {
				errs = append(errs, fmt.Errorf("%s.tips[%d].type %q must be good or improve", name, i, tip.Type))
			}
			if tip.Tip == "" {
				errs = append(errs, fmt.Errorf("%s.tips[%d].tip is empty", name, i))
			}
		}
	}
	return errors.Join(errs...)
}

func validScore(s int) bool {
	return s >= 0 && s <= 100
}
