package service

import (
	"signalbot/pkg/logger"
	"signalbot/storage"
)

type IServiceManager interface {
	Flow() FlowService
	Postback() PostbackService
}

type service struct {
	flowService     FlowService
	postbackService PostbackService
}

// New wires the funnel engine and the postback state machine. The
// presentation, subscription-check and ops-forwarding collaborators are
// injected so tests can run against an in-memory store with fakes.
func New(stg storage.IStorage, log logger.ILogger, p Presenter, sc SubscriptionChecker, n OpsNotifier) IServiceManager {
	flow := NewFlowService(stg, log, p, sc)
	return &service{
		flowService:     flow,
		postbackService: NewPostbackService(stg, log, flow, n),
	}
}

func (s *service) Flow() FlowService {
	return s.flowService
}

func (s *service) Postback() PostbackService {
	return s.postbackService
}
