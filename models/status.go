package models

import (
	"fmt"
	"strings"

	"content-qa-cms/rules"
)

type QaStatus string

const (
	QaStatusDraft       QaStatus = "draft"
	QaStatusReviewable  QaStatus = "reviewable"
	QaStatusPublishable QaStatus = "publishable"
	QaStatusPublished   QaStatus = "published"
)

// ParseQaStatus accepts the four QA statuses. "public" is read as published.
func ParseQaStatus(s string) (QaStatus, error) {
	switch status := QaStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case QaStatusDraft, QaStatusReviewable, QaStatusPublishable, QaStatusPublished:
		return status, nil
	case "public":
		return QaStatusPublished, nil
	}
	return "", fmt.Errorf("unknown qa status %q", s)
}

// Tier returns the validation tier backing the status. Published has none.
func (s QaStatus) Tier() (rules.Status, bool) {
	switch s {
	case QaStatusDraft:
		return rules.StatusDraft, true
	case QaStatusReviewable:
		return rules.StatusReviewable, true
	case QaStatusPublishable:
		return rules.StatusPublishable, true
	}
	return "", false
}
