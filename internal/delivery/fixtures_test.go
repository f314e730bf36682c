package delivery

import "github.com/SAP-F-2025/exam-delivery-service/internal/models"

// readingAssessment has two parts listed out of order:
// part 10 (order 1) holds questions 1-3, part 20 (order 2) holds 4-6.
// Questions 1-2 are single choice, 3 is a statement, 4-5 a two-answer pair
// and 6 a blank.
func readingAssessment() *models.Assessment {
	return &models.Assessment{
		ID:             1,
		Name:           "Reading Test 1",
		Section:        models.SectionReading,
		TotalQuestions: 6,
		Duration:       60,
		Parts: []models.Part{
			{
				ID:    20,
				Order: 2,
				QuestionGroups: []models.QuestionGroup{
					{ID: 201, PartID: 20, Type: models.GroupMultiChoiceTwo, StartQuestionNumber: 4, EndQuestionNumber: 5},
					{ID: 202, PartID: 20, Type: models.GroupFillInBlank, StartQuestionNumber: 6, EndQuestionNumber: 6},
				},
			},
			{
				ID:    10,
				Order: 1,
				QuestionGroups: []models.QuestionGroup{
					{ID: 101, PartID: 10, Type: models.GroupSingleChoice, StartQuestionNumber: 1, EndQuestionNumber: 2},
					{ID: 102, PartID: 10, Type: models.GroupTrueFalseNotGiven, StartQuestionNumber: 3, EndQuestionNumber: 3},
				},
			},
		},
	}
}

// withEmptyPart inserts a part without question groups between the two
// reading parts.
func withEmptyPart(a *models.Assessment) *models.Assessment {
	for i := range a.Parts {
		if a.Parts[i].ID == 20 {
			a.Parts[i].Order = 3
		}
	}
	a.Parts = append(a.Parts, models.Part{ID: 15, Order: 2})
	return a
}

func writingAssessment() *models.Assessment {
	return &models.Assessment{
		ID:       2,
		Name:     "Writing Test 1",
		Section:  models.SectionWriting,
		Duration: 3600,
		Parts: []models.Part{
			{ID: 31, Order: 1, EssayPart: &models.EssayPart{ID: 1, PartID: 31, Prompt: "Describe the chart"}},
			{ID: 32, Order: 2, EssayPart: &models.EssayPart{ID: 2, PartID: 32, Prompt: "Discuss both views"}},
		},
	}
}

func listeningAssessment() *models.Assessment {
	a := readingAssessment()
	a.ID = 3
	a.Name = "Listening Test 1"
	a.Section = models.SectionListening
	return a
}
