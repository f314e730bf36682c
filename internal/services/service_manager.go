package services

import (
	"log/slog"

	"github.com/SAP-F-2025/exam-delivery-service/internal/cache"
	"github.com/SAP-F-2025/exam-delivery-service/internal/events"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
	"github.com/SAP-F-2025/exam-delivery-service/internal/validator"
)

type serviceManager struct {
	delivery   DeliveryService
	assessment AssessmentService
	result     ResultService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	v *validator.Validator,
	logger *slog.Logger,
	cfg DeliveryConfig,
) ServiceManager {
	return &serviceManager{
		delivery:   NewDeliveryService(repo, cacheService, publisher, v, logger, cfg),
		assessment: NewAssessmentService(repo, logger),
		result:     NewResultService(repo, logger),
	}
}

func (m *serviceManager) Delivery() DeliveryService     { return m.delivery }
func (m *serviceManager) Assessment() AssessmentService { return m.assessment }
func (m *serviceManager) Result() ResultService         { return m.result }
