package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	courses := cat.Courses()
	require.Len(t, courses, 2)
	for _, c := range courses {
		assert.Len(t, c.Lessons, 4)
		assert.NotEmpty(t, c.Title)
		assert.NotEmpty(t, c.Description)
	}
}

func TestCourseLookup(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	course, err := cat.Course("ai-system")
	require.NoError(t, err)
	assert.Equal(t, "🚀 Войти в систему AI", course.Title)

	_, err = cat.Course("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLessonIndex(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	lesson, err := cat.Lesson("evolution", 0)
	require.NoError(t, err)
	assert.Equal(t, "🧠 Апгрейд мышления: модели гениев", lesson)

	_, err = cat.Lesson("evolution", 4)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = cat.Lesson("evolution", -1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourseContaining(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	course, ok := cat.CourseContaining("🔮 Стратегическое видение: анализ трендов")
	require.True(t, ok)
	assert.Equal(t, "ai-system", course.ID)

	_, ok = cat.CourseContaining("missing lesson")
	assert.False(t, ok)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New([]Course{{ID: "a", Title: "A", Lessons: []string{"l"}}, {ID: "a", Title: "B", Lessons: []string{"l"}}})
	assert.Error(t, err)

	_, err = New([]Course{{ID: "a", Title: "A"}})
	assert.Error(t, err)
}
