package ingest

import "rewardledger/internal/model"

type projectFunc func(model.DomainEvent) ([]Mutation, error)

// Router dispatches a domain event to the projector for its kind.
type Router struct {
	handlers map[model.EventKind]projectFunc
}

// NewRouter registers the projector for every known event kind.
func NewRouter() *Router {
	return &Router{handlers: map[model.EventKind]projectFunc{
		model.EventRewardDeposited:       projectRewardDeposited,
		model.EventRewardsDistributed:    projectRewardsDistributed,
		model.EventRewardsClaimed:        projectRewardsClaimed,
		model.EventRewardsTransferred:    projectRewardsTransferred,
		model.EventSubscriptionCreated:   projectSubscriptionCreated,
		model.EventSubscriptionCancelled: projectSubscriptionCancelled,
		model.EventNftMinted:             projectNftMinted,
	}}
}

// Project maps an event to its store mutations. Kinds without a handler
// (including Unrecognized) resolve to zero mutations, not an error: program
// upgrades may emit event kinds this pipeline does not know yet.
func (r *Router) Project(ev model.DomainEvent) ([]Mutation, error) {
	handler, ok := r.handlers[ev.Kind()]
	if !ok {
		return nil, nil
	}
	return handler(ev)
}
