package nav

import (
	"strconv"
	"strings"
)

// EventKind enumerates the closed set of recognized inbound menu events.
type EventKind int

const (
	// Unrecognized covers unknown keys and malformed payloads; it is handled
	// uniformly by rendering the main menu.
	Unrecognized EventKind = iota
	OpenMain
	OpenPremium
	OpenProfile
	OpenFund
	OpenHelp
	ResetProgress
	OpenCourse
	StartLesson
	BackToCourse
	AskQuestion
	NextSection
)

// Callback keys as they appear in inline button uniques.
const (
	KeyMain      = "menu_main"
	KeyPremium   = "menu_premium"
	KeyProfile   = "menu_profile"
	KeyFund      = "menu_development_fund"
	KeyHelp      = "menu_help"
	KeyReset     = "reset_progress"
	KeyCourse    = "menu_course"
	KeyLesson    = "start_lesson"
	KeyBack      = "menu_course_back"
	KeyAsk       = "ask_question"
	KeyNext      = "next_section"
	lessonSep    = "|"
	maxPayloadSz = 64
)

// Event is a decoded inbound menu action.
type Event struct {
	Kind        EventKind
	CourseID    string
	LessonIndex int
}

// DecodeCallback maps a callback unique plus payload to a typed Event.
// Anything that does not parse cleanly decodes to Unrecognized.
func DecodeCallback(unique, payload string) Event {
	switch unique {
	case KeyMain:
		return Event{Kind: OpenMain}
	case KeyPremium:
		return Event{Kind: OpenPremium}
	case KeyProfile:
		return Event{Kind: OpenProfile}
	case KeyFund:
		return Event{Kind: OpenFund}
	case KeyHelp:
		return Event{Kind: OpenHelp}
	case KeyReset:
		return Event{Kind: ResetProgress}
	case KeyBack:
		return Event{Kind: BackToCourse}
	case KeyAsk:
		return Event{Kind: AskQuestion}
	case KeyNext:
		return Event{Kind: NextSection}
	case KeyCourse:
		id := strings.TrimSpace(payload)
		if id == "" || len(id) > maxPayloadSz {
			return Event{}
		}
		return Event{Kind: OpenCourse, CourseID: id}
	case KeyLesson:
		parts := strings.Split(payload, lessonSep)
		if len(parts) != 2 {
			return Event{}
		}
		id := strings.TrimSpace(parts[0])
		idx, err := strconv.Atoi(parts[1])
		if id == "" || err != nil || idx < 0 {
			return Event{}
		}
		return Event{Kind: StartLesson, CourseID: id, LessonIndex: idx}
	default:
		return Event{}
	}
}

// EncodeLesson builds the start_lesson payload for a course and index.
func EncodeLesson(courseID string, index int) string {
	return courseID + lessonSep + strconv.Itoa(index)
}
