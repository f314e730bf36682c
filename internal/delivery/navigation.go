package delivery

import (
	"sort"
	"strconv"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
)

// Tab identifies the part being shown, or the terminal delivering state.
type Tab string

// TabDelivering is reached after the last part and means ready to submit.
const TabDelivering Tab = "delivering"

func PartTab(p *models.Part) Tab {
	return Tab(strconv.FormatUint(uint64(p.ID), 10))
}

// Position is the navigation state of a session.
type Position struct {
	Tab      Tab `json:"tab"`
	Question int `json:"question"`
}

// OrderedParts returns the assessment parts sorted by their order index.
func OrderedParts(a *models.Assessment) []models.Part {
	parts := make([]models.Part, len(a.Parts))
	copy(parts, a.Parts)
	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].Order < parts[j].Order
	})
	return parts
}

// Start is the position a freshly loaded assessment begins at.
func Start(a *models.Assessment) Position {
	parts := OrderedParts(a)
	if len(parts) == 0 {
		return Position{Tab: TabDelivering}
	}
	return Position{Tab: PartTab(&parts[0]), Question: firstQuestion(a, &parts[0])}
}

// HasTab reports whether tab names a part of the assessment or the
// delivering state.
func HasTab(a *models.Assessment, tab Tab) bool {
	if tab == TabDelivering {
		return true
	}
	return partIndex(OrderedParts(a), tab) >= 0
}

// Next advances one step. Within a non-writing part it moves focus to the
// following question; at the end of the part it moves to the next part's
// first question, and after the last part to TabDelivering.
func Next(a *models.Assessment, pos Position) Position {
	if pos.Tab == TabDelivering {
		return pos
	}
	parts := OrderedParts(a)
	idx := partIndex(parts, pos.Tab)
	if idx < 0 {
		return Start(a)
	}

	if a.Section != models.SectionWriting {
		if start, end, ok := parts[idx].QuestionRange(); ok {
			switch {
			case pos.Question < start:
				return Position{Tab: pos.Tab, Question: start}
			case pos.Question < end:
				return Position{Tab: pos.Tab, Question: pos.Question + 1}
			}
		}
	}

	if idx+1 >= len(parts) {
		return Position{Tab: TabDelivering, Question: pos.Question}
	}
	nextPart := &parts[idx+1]
	q := pos.Question
	if a.Section != models.SectionWriting {
		q = firstQuestion(a, nextPart)
	}
	return Position{Tab: PartTab(nextPart), Question: q}
}

// Previous is the mirror of Next. Crossing into the previous part keeps the
// current question number; the following step clamps it into range.
func Previous(a *models.Assessment, pos Position) Position {
	parts := OrderedParts(a)
	if len(parts) == 0 {
		return pos
	}
	if pos.Tab == TabDelivering {
		return Position{Tab: PartTab(&parts[len(parts)-1]), Question: pos.Question}
	}
	idx := partIndex(parts, pos.Tab)
	if idx < 0 {
		return Start(a)
	}

	if a.Section != models.SectionWriting {
		if start, end, ok := parts[idx].QuestionRange(); ok {
			switch {
			case pos.Question > end:
				return Position{Tab: pos.Tab, Question: end}
			case pos.Question > start:
				return Position{Tab: pos.Tab, Question: pos.Question - 1}
			}
			if idx == 0 {
				return Position{Tab: pos.Tab, Question: start}
			}
		}
	}

	if idx == 0 {
		return pos
	}
	return Position{Tab: PartTab(&parts[idx-1]), Question: pos.Question}
}

// Select focuses question n and switches to the part that owns it,
// regardless of the current position.
func Select(a *models.Assessment, n int) (Position, error) {
	p, _ := groupOf(a, n)
	if p == nil {
		return Position{}, ErrQuestionOutOfRange
	}
	return Position{Tab: PartTab(p), Question: n}, nil
}

// GroupOf returns the question group that owns question n, or nil.
func GroupOf(a *models.Assessment, n int) *models.QuestionGroup {
	_, g := groupOf(a, n)
	return g
}

func groupOf(a *models.Assessment, n int) (*models.Part, *models.QuestionGroup) {
	for i := range a.Parts {
		p := &a.Parts[i]
		for j := range p.QuestionGroups {
			if p.QuestionGroups[j].Contains(n) {
				return p, &p.QuestionGroups[j]
			}
		}
	}
	return nil, nil
}

func partIndex(parts []models.Part, tab Tab) int {
	for i := range parts {
		if PartTab(&parts[i]) == tab {
			return i
		}
	}
	return -1
}

func firstQuestion(a *models.Assessment, p *models.Part) int {
	if a.Section == models.SectionWriting {
		return 0
	}
	start, _, _ := p.QuestionRange()
	return start
}
