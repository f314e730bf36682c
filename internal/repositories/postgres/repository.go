package postgres

import (
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	assessment   repositories.AssessmentRepository
	question     repositories.QuestionRepository
	choice       repositories.ChoiceRepository
	statementKey repositories.StatementKeyRepository
	result       repositories.ResultRepository
	essay        repositories.EssayRepository
	user         repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		assessment:   NewAssessmentPostgreSQL(db),
		question:     NewQuestionPostgreSQL(db),
		choice:       NewChoicePostgreSQL(db),
		statementKey: NewStatementKeyPostgreSQL(db),
		result:       NewResultPostgreSQL(db),
		essay:        NewEssayPostgreSQL(db),
		user:         NewUserPostgreSQL(db),
	}
}

func (r *repository) Assessment() repositories.AssessmentRepository     { return r.assessment }
func (r *repository) Question() repositories.QuestionRepository         { return r.question }
func (r *repository) Choice() repositories.ChoiceRepository             { return r.choice }
func (r *repository) StatementKey() repositories.StatementKeyRepository { return r.statementKey }
func (r *repository) Result() repositories.ResultRepository             { return r.result }
func (r *repository) Essay() repositories.EssayRepository               { return r.essay }
func (r *repository) User() repositories.UserRepository                 { return r.user }
