package catalog

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSubjects(t *testing.T) {
	subjects := Default().Subjects()
	require.Len(t, subjects, 3)
	assert.Equal(t, "Biology", subjects[0].Name)
	assert.Equal(t, "Physics", subjects[1].Name)
	assert.Equal(t, "Chemistry", subjects[2].Name)
	for _, s := range subjects {
		assert.True(t, s.HasAR)
	}
}

func TestTopicsBySubject(t *testing.T) {
	c := Default()

	topics, err := c.Topics("biology")
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "heart", topics[0].ID)
	assert.Equal(t, "human heart 3D model", topics[0].ContextLabel)

	topics, err = c.Topics("physics")
	require.NoError(t, err)
	assert.Empty(t, topics)

	_, err = c.Topics("history")
	assert.True(t, errors.Is(err, ErrSubjectNotFound))
}

func TestTopicLookup(t *testing.T) {
	c := Default()
	topic, err := c.Topic("heart")
	require.NoError(t, err)
	assert.Contains(t, topic.EmbedURL, "sketchfab.com")

	_, err = c.Topic("lungs")
	assert.True(t, errors.Is(err, ErrTopicNotFound))
}

func TestSearch(t *testing.T) {
	c := Default()
	assert.Len(t, c.Search("HEART"), 1)
	assert.Len(t, c.Search("function"), 1)
	assert.Empty(t, c.Search("quark"))
	assert.Empty(t, c.Search("  "))
}

func TestSubjectsReturnsCopy(t *testing.T) {
	c := Default()
	s := c.Subjects()
	s[0].Name = "changed"
	assert.Equal(t, "Biology", c.Subjects()[0].Name)
}
