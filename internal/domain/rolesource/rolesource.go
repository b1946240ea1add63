// Package rolesource resolves the best available data source for each
// role-dependent metric from an ordered fallback list. Resolution happens
// exactly once per player, before any weighting, so scoring code never
// re-derives which source fired.
package rolesource

import "github.com/openflank/fire/internal/domain/model"

// Resolve picks the target-rate and route-rate sources for one window
// aggregate and records the outcome in RoleMeta.
//
// Target rate: target_share -> targets_per_snap (snaps>0) ->
// targets_per_route (routes>0) -> none.
// Route rate: route_participation -> raw routes -> none.
func Resolve(agg *model.WindowAggregate) model.RoleMeta {
	meta := model.RoleMeta{
		TargetSource: model.TargetSourceNone,
		RouteSource:  model.RouteSourceNone,
	}

	switch {
	case agg.TargetShare != nil:
		meta.TargetSource = model.TargetSourceShare
		meta.TargetRate = agg.TargetShare
	case agg.Snaps > 0:
		rate := agg.Targets / agg.Snaps * 100
		meta.TargetSource = model.TargetSourcePerSnap
		meta.TargetRate = &rate
	case agg.Routes > 0:
		rate := agg.Targets / agg.Routes * 100
		meta.TargetSource = model.TargetSourcePerRoute
		meta.TargetRate = &rate
	}

	switch {
	case agg.RouteParticipationAvg != nil:
		meta.RouteSource = model.RouteSourceParticipation
		meta.RouteRate = agg.RouteParticipationAvg
	case agg.Routes > 0:
		routes := agg.Routes
		meta.RouteSource = model.RouteSourceRaw
		meta.RouteRate = &routes
	}

	return meta
}
