package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ChangesetContents is the QA state snapshot pair of one save and its difference.
type ChangesetContents struct {
	Before map[string]any `json:"before"`
	After  map[string]any `json:"after"`
	Diff   map[string]any `json:"diff"`
}

// Changeset is an immutable audit record written once per tracked save.
type Changeset struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	Contents       datatypes.JSON `json:"contents" gorm:"not null"`
	ContentsSHA256 string         `json:"contents_sha256" gorm:"column:contents_sha256;not null"`
	UserID         *uint          `json:"user_id" gorm:"index"`
	NodeID         uint           `json:"node_id" gorm:"not null;index"`
	CreatedAt      time.Time      `json:"created_at"`
}

func NewChangeset(contents ChangesetContents, userID *uint, nodeID uint) (*Changeset, error) {
	data, err := json.Marshal(contents)
	if err != nil {
		return nil, fmt.Errorf("marshal changeset contents: %w", err)
	}
	sum := sha256.Sum256(data)
	return &Changeset{
		Contents:       datatypes.JSON(data),
		ContentsSHA256: hex.EncodeToString(sum[:]),
		UserID:         userID,
		NodeID:         nodeID,
	}, nil
}

func (c *Changeset) Decode() (ChangesetContents, error) {
	var contents ChangesetContents
	if err := json.Unmarshal(c.Contents, &contents); err != nil {
		return ChangesetContents{}, fmt.Errorf("unmarshal changeset %d: %w", c.ID, err)
	}
	return contents, nil
}

// DiffAttributes returns the entries of before whose value is absent from
// after or renders differently.
func DiffAttributes(before, after map[string]any) map[string]any {
	diff := make(map[string]any)
	for key, old := range before {
		cur, ok := after[key]
		if !ok || fmt.Sprint(old) != fmt.Sprint(cur) {
			diff[key] = old
		}
	}
	return diff
}
