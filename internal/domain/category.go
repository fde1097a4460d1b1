package domain

type Category struct {
	ID          string          `json:"id"`
	Key         string          `json:"key,omitempty"`
	Name        LocalizedString `json:"name"`
	Slug        LocalizedString `json:"slug"`
	Description LocalizedString `json:"description,omitempty"`
	OrderHint   string          `json:"orderHint,omitempty"`
	ParentID    string          `json:"parentId,omitempty"`
}
