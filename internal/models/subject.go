package models

// Subject is a top-level entry of the home page grid.
type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	HasAR       bool   `json:"has_ar"`
	Path        string `json:"path"`
}

// Topic is a 3D model page under a subject.
type Topic struct {
	ID          string `json:"id"`
	SubjectID   string `json:"subject_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Path        string `json:"path"`
	EmbedURL    string `json:"embed_url"`
	EmbedTitle  string `json:"embed_title"`
	// ContextLabel is injected into every chat request opened from this topic.
	ContextLabel string `json:"context_label"`
}
