package services

import (
	portsqueue "github.com/meridianir/capcall_backend/internal/core/ports/queue"
	portsrepo "github.com/meridianir/capcall_backend/internal/core/ports/repositories"
	portssvc "github.com/meridianir/capcall_backend/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, taskQueue portsqueue.DelayedTaskQueue) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The scheduler goes first since the capital call service depends on it.
	container.Scheduler = NewReminderScheduler(taskQueue)

	container.Fund = NewFundService(repos.FundRepo)
	container.Investor = NewInvestorService(repos.InvestorRepo, repos.FundRepo)
	container.CapitalCall = NewCapitalCallService(
		repos.CapitalCallRepo,
		repos.InvestorRepo,
		repos.FundRepo,
		container.Scheduler,
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.CapitalCallSvcFacade = (*capitalCallService)(nil)
	_ portssvc.ReminderSchedulerSvc = (*reminderScheduler)(nil)
	_ portssvc.InvestorSvcFacade    = (*investorService)(nil)
	_ portssvc.FundSvcFacade        = (*fundService)(nil)
)
