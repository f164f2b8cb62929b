// AngelaMos | 2026
// entity.go

package course

import (
	"time"

	"github.com/lib/pq"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
)

type Course struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	AuthorID      string         `db:"author_id"`
	Restricted    bool           `db:"restricted_to_allow_list"`
	AllowedEmails pq.StringArray `db:"allowed_emails"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (c *Course) Rules() access.CourseRules {
	return access.CourseRules{
		ID:            c.ID,
		AuthorID:      c.AuthorID,
		Restricted:    c.Restricted,
		AllowedEmails: []string(c.AllowedEmails),
	}
}

type Lesson struct {
	ID         string    `db:"id"`
	CourseID   string    `db:"course_id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	VideoURL   *string   `db:"video_url"`
	PDFURL     *string   `db:"pdf_url"`
	OrderIndex int       `db:"order_index"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// LessonSummary is what a caller without content access sees.
type LessonSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	OrderIndex int    `json:"order_index"`
	Position   int    `json:"position"`
}

// LessonListing holds either the full lessons or, when Locked, only their
// summaries.
type LessonListing struct {
	Locked    bool
	Lessons   []Lesson
	Summaries []LessonSummary
}

func summarize(lessons []Lesson) []LessonSummary {
	out := make([]LessonSummary, 0, len(lessons))
	for i, l := range lessons {
		out = append(out, LessonSummary{
			ID:         l.ID,
			Title:      l.Title,
			OrderIndex: l.OrderIndex,
			Position:   i + 1,
		})
	}
	return out
}

// planReorder assigns 1..k to the requested ids that belong to current, in
// request order, skipping unknown ids and repeats. The remaining lessons
// follow in their existing order. current must already be sorted.
func planReorder(current []Lesson, requested []string) []Lesson {
	byID := make(map[string]Lesson, len(current))
	for _, l := range current {
		byID[l.ID] = l
	}

	placed := make(map[string]struct{}, len(current))
	out := make([]Lesson, 0, len(current))

	for _, id := range requested {
		l, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := placed[id]; dup {
			continue
		}
		placed[id] = struct{}{}
		out = append(out, l)
	}

	for _, l := range current {
		if _, ok := placed[l.ID]; !ok {
			out = append(out, l)
		}
	}

	for i := range out {
		out[i].OrderIndex = i + 1
	}

	return out
}
