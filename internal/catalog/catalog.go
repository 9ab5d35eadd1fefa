// Package catalog holds the static course catalog: an ordered set of courses,
// each with an ordered list of lesson titles. The catalog is immutable after
// load; lookups never mutate it.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned for unknown course ids and out-of-range lesson
// indexes. Callers render the main menu instead of surfacing it to the user.
var ErrNotFound = errors.New("catalog: not found")

// Course describes one course: an id used in callback payloads, a display
// title and an ordered list of lesson titles.
type Course struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Lessons     []string `yaml:"lessons"`
	LevelLabel  string   `yaml:"level_label"`
	Description string   `yaml:"description"`
}

// Catalog is a read-only set of courses with stable ordering.
type Catalog struct {
	courses []Course
	byID    map[string]int
}

// New builds a Catalog from the given courses, validating ids and lessons.
func New(courses []Course) (*Catalog, error) {
	if len(courses) == 0 {
		return nil, fmt.Errorf("catalog: no courses defined")
	}
	byID := make(map[string]int, len(courses))
	for i, c := range courses {
		if c.ID == "" {
			return nil, fmt.Errorf("catalog: course %d has empty id", i)
		}
		if c.Title == "" {
			return nil, fmt.Errorf("catalog: course %q has empty title", c.ID)
		}
		if len(c.Lessons) == 0 {
			return nil, fmt.Errorf("catalog: course %q has no lessons", c.ID)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate course id %q", c.ID)
		}
		byID[c.ID] = i
	}
	return &Catalog{courses: courses, byID: byID}, nil
}

// LoadFile reads a course list from a YAML file. An empty path yields the
// compiled-in default catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var doc struct {
		Courses []Course `yaml:"courses"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return New(doc.Courses)
}

// Default returns the built-in course catalog.
func Default() (*Catalog, error) {
	return New(defaultCourses())
}

// Courses returns all courses in declaration order.
func (c *Catalog) Courses() []Course {
	out := make([]Course, len(c.courses))
	copy(out, c.courses)
	return out
}

// Course looks up a course by id.
func (c *Catalog) Course(id string) (Course, error) {
	i, ok := c.byID[id]
	if !ok {
		return Course{}, fmt.Errorf("course %q: %w", id, ErrNotFound)
	}
	return c.courses[i], nil
}

// Lessons returns the ordered lesson titles of a course.
func (c *Catalog) Lessons(courseID string) ([]string, error) {
	course, err := c.Course(courseID)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(course.Lessons))
	copy(out, course.Lessons)
	return out, nil
}

// Lesson resolves a lesson title by course id and index.
func (c *Catalog) Lesson(courseID string, index int) (string, error) {
	course, err := c.Course(courseID)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(course.Lessons) {
		return "", fmt.Errorf("course %q lesson %d: %w", courseID, index, ErrNotFound)
	}
	return course.Lessons[index], nil
}

// CourseContaining finds the course owning a lesson title. The scan is linear,
// which is fine for a catalog of this size.
func (c *Catalog) CourseContaining(lessonTitle string) (Course, bool) {
	for _, course := range c.courses {
		for _, lesson := range course.Lessons {
			if lesson == lessonTitle {
				return course, true
			}
		}
	}
	return Course{}, false
}

func defaultCourses() []Course {
	return []Course{
		{
			ID:         "ai-system",
			Title:      "🚀 Войти в систему AI",
			LevelLabel: "🎯 Инициация в новые возможности",
			Description: "Освойте системы, которые определяют будущее. " +
				"От наблюдателя станьте творцом.",
			Lessons: []string{
				"🌌 Первый контакт: основы взаимодействия с AI",
				"⚡ Когнитивное ускорение: 10x продуктивности",
				"🔮 Стратегическое видение: анализ трендов",
				"💫 Симбиоз: ваша роль в эпоху AI",
			},
		},
		{
			ID:         "evolution",
			Title:      "💫 Запустить эволюцию",
			LevelLabel: "🎯 Трансформация от потребителя к творцу",
			Description: "Активируйте скрытые уровни вашего потенциала. " +
				"Эволюционируйте осознанно.",
			Lessons: []string{
				"🧠 Апгрейд мышления: модели гениев",
				"🚀 Экспоненциальный рост компетенций",
				"🔧 Бесшовная интеграция AI в жизнь",
				"🌍 Позиционирование в новой реальности",
			},
		},
	}
}
