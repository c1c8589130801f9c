package catalog

import (
	"strings"

	"github.com/pkg/errors"

	"modelchat/internal/models"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrTopicNotFound   = errors.New("topic not found")
)

// Catalog is the read-only list of subjects and their 3D model topics.
type Catalog struct {
	subjects []models.Subject
	topics   []models.Topic
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(
		[]models.Subject{
			{ID: "biology", Name: "Biology", Description: "Explore human anatomy and cellular structures in 3D", Icon: "🧬", HasAR: true, Path: "/biology"},
			{ID: "physics", Name: "Physics", Description: "Understand mechanics and wave motion through AR models", Icon: "⚡", HasAR: true, Path: "/physics"},
			{ID: "chemistry", Name: "Chemistry", Description: "Visualize molecular structures and reactions", Icon: "⚗️", HasAR: true, Path: "/chemistry"},
		},
		[]models.Topic{
			{
				ID:           "heart",
				SubjectID:    "biology",
				Name:         "Human Heart",
				Description:  "Explore the structure and function of the human heart in 3D",
				ImageURL:     "https://images.unsplash.com/photo-1559757175-0eb30cd8c063?auto=format&fit=crop&q=80&w=800",
				Path:         "/biology/heart",
				EmbedURL:     "https://sketchfab.com/models/3f8072336ce94d18b3d0d055a1ece089/embed",
				EmbedTitle:   "Realistic Human Heart",
				ContextLabel: "human heart 3D model",
			},
		},
	)
}

func New(subjects []models.Subject, topics []models.Topic) *Catalog {
	return &Catalog{subjects: subjects, topics: topics}
}

// Subjects returns all subjects in display order.
func (c *Catalog) Subjects() []models.Subject {
	return append([]models.Subject(nil), c.subjects...)
}

func (c *Catalog) Subject(id string) (models.Subject, error) {
	for _, s := range c.subjects {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Subject{}, errors.Wrap(ErrSubjectNotFound, id)
}

// Topics lists topics of a subject. A known subject without topics yields an empty list.
func (c *Catalog) Topics(subjectID string) ([]models.Topic, error) {
	if _, err := c.Subject(subjectID); err != nil {
		return nil, err
	}
	topics := make([]models.Topic, 0)
	for _, t := range c.topics {
		if t.SubjectID == subjectID {
			topics = append(topics, t)
		}
	}
	return topics, nil
}

func (c *Catalog) Topic(id string) (models.Topic, error) {
	for _, t := range c.topics {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Topic{}, errors.Wrap(ErrTopicNotFound, id)
}

// Search matches topics by case-insensitive substring of name or description.
func (c *Catalog) Search(query string) []models.Topic {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Topic, 0)
	if q == "" {
		return out
	}
	for _, t := range c.topics {
		if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}
