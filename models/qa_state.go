package models

import (
	"time"

	"gorm.io/datatypes"
)

// QaState is the QA companion record of an item.
type QaState struct {
	ID                            uint              `json:"id" gorm:"primarykey"`
	Status                        QaStatus          `json:"status" gorm:"not null;default:'draft'"`
	AllowReview                   bool              `json:"allow_review" gorm:"not null;default:false"`
	AllowPublish                  bool              `json:"allow_publish" gorm:"not null;default:false"`
	DraftValidationProgress       int               `json:"draft_validation_progress" gorm:"default:0"`
	ReviewableValidationProgress  int               `json:"reviewable_validation_progress" gorm:"default:0"`
	PublishableValidationProgress int               `json:"publishable_validation_progress" gorm:"default:0"`
	TranslationProgress           datatypes.JSONMap `json:"translation_progress"`
	CreatedAt                     time.Time         `json:"created_at"`
	UpdatedAt                     time.Time         `json:"updated_at"`
}

func NewQaState() *QaState {
	return &QaState{Status: QaStatusDraft, TranslationProgress: datatypes.JSONMap{}}
}

// Attributes flattens the tracked columns into the map a changeset records.
func (q *QaState) Attributes() map[string]any {
	attrs := map[string]any{
		"id":                              q.ID,
		"status":                          string(q.Status),
		"allow_review":                    q.AllowReview,
		"allow_publish":                   q.AllowPublish,
		"draft_validation_progress":       q.DraftValidationProgress,
		"reviewable_validation_progress":  q.ReviewableValidationProgress,
		"publishable_validation_progress": q.PublishableValidationProgress,
	}
	for lang, pct := range q.TranslationProgress {
		attrs["translate_into_"+lang+"_validation_progress"] = pct
	}
	return attrs
}
