package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCallbackPlainKeys(t *testing.T) {
	cases := map[string]EventKind{
		KeyMain:    OpenMain,
		KeyPremium: OpenPremium,
		KeyProfile: OpenProfile,
		KeyFund:    OpenFund,
		KeyHelp:    OpenHelp,
		KeyReset:   ResetProgress,
		KeyBack:    BackToCourse,
		KeyAsk:     AskQuestion,
		KeyNext:    NextSection,
	}
	for unique, kind := range cases {
		ev := DecodeCallback(unique, "")
		assert.Equal(t, kind, ev.Kind, "unique %q", unique)
	}
}

func TestDecodeCourse(t *testing.T) {
	ev := DecodeCallback(KeyCourse, "ai-system")
	assert.Equal(t, OpenCourse, ev.Kind)
	assert.Equal(t, "ai-system", ev.CourseID)

	assert.Equal(t, Unrecognized, DecodeCallback(KeyCourse, "").Kind)
	assert.Equal(t, Unrecognized, DecodeCallback(KeyCourse, "   ").Kind)
}

func TestDecodeStartLesson(t *testing.T) {
	ev := DecodeCallback(KeyLesson, EncodeLesson("evolution", 2))
	assert.Equal(t, StartLesson, ev.Kind)
	assert.Equal(t, "evolution", ev.CourseID)
	assert.Equal(t, 2, ev.LessonIndex)

	for _, payload := range []string{"", "evolution", "evolution|x", "evolution|-1", "a|1|2"} {
		assert.Equal(t, Unrecognized, DecodeCallback(KeyLesson, payload).Kind, "payload %q", payload)
	}
}

func TestDecodeUnknownUnique(t *testing.T) {
	assert.Equal(t, Unrecognized, DecodeCallback("totally_unknown", "data").Kind)
	assert.Equal(t, Unrecognized, DecodeCallback("", "").Kind)
}
