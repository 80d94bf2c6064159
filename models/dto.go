package models

type RegisterRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=50"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role,omitempty" validate:"omitempty,oneof=writer reviewer publisher admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateItemRequest struct {
	Type   string         `json:"type" validate:"required"`
	Fields map[string]any `json:"fields"`
}

type SaveStepRequest struct {
	Status string         `json:"status" validate:"omitempty,oneof=temporary draft reviewable publishable"`
	Fields map[string]any `json:"fields" validate:"required"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type SetPermissionsRequest struct {
	AllowReview  *bool `json:"allow_review" validate:"required"`
	AllowPublish *bool `json:"allow_publish" validate:"required"`
}

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type AttachGroupRequest struct {
	GroupID    uint   `json:"group_id" validate:"required"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=visible hidden"`
}

type ItemListParams struct {
	Type      string `form:"type"`
	Status    string `form:"status"`
	AuthorID  uint   `form:"author_id"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// ItemDetail is an item together with its derived QA information.
type ItemDetail struct {
	Item            *Item                     `json:"item"`
	Label           string                    `json:"label"`
	Progress        map[string]int            `json:"progress"`
	IsPublishable   bool                      `json:"is_publishable"`
	IsUnpublishable bool                      `json:"is_unpublishable"`
	IsPublished     bool                      `json:"is_published"`
	FirstStep       string                    `json:"first_step"`
	FirstTranslate  string                    `json:"first_translation_step"`
	Routes          map[string]map[string]any `json:"routes"`
}

// ProgressReport is the validation state of an item in one scenario.
type ProgressReport struct {
	Scenario      string      `json:"scenario"`
	Progress      int         `json:"progress"`
	InvalidFields []string    `json:"invalid_fields"`
	Messages      FieldErrors `json:"messages,omitempty"`
}
