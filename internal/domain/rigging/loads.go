package rigging

import (
	"math"

	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
)

// maxAttachmentAngleDeg clamps the tension formula short of horizontal,
// where cos(angle) would blow up.
const maxAttachmentAngleDeg = 85.0

// LoadDistributionInput bundles the rigging topology for one calculation.
type LoadDistributionInput struct {
	Points []model.RiggingPoint  `json:"points"`
	Loads  []model.SuspendedLoad `json:"loads"`
}

// PointLoadResult is the computed loading of a single rigging point.
type PointLoadResult struct {
	PointID string `json:"point_id"`

	// StaticLoad and DynamicLoad in kg; dynamic applies the 1.5x factor.
	StaticLoad  float64 `json:"static_load"`
	DynamicLoad float64 `json:"dynamic_load"`

	// CableTension is the dynamic tension in N along the worst leg.
	CableTension float64 `json:"cable_tension"`

	// Utilization is dynamic load over capacity, percent. 0 when the
	// capacity is unknown.
	Utilization float64 `json:"utilization"`

	// WorstAngleDeg is the largest attachment angle from vertical.
	WorstAngleDeg float64 `json:"worst_angle_deg"`
}

// LoadDistributionResult reports per-point loads plus system-level safety.
type LoadDistributionResult struct {
	PointLoads []PointLoadResult `json:"point_loads"`

	TotalStatic  float64 `json:"total_static"`
	TotalDynamic float64 `json:"total_dynamic"`

	// SafetyFactor is min breaking load over max dynamic load across
	// points with known capacity; 0 when no capacity is known.
	SafetyFactor   float64 `json:"safety_factor"`
	MaxUtilization float64 `json:"max_utilization"`

	// Safe is true iff SafetyFactor >= 5 and no point exceeds 100%
	// utilization.
	Safe bool `json:"safe"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// DistributeLoads splits every suspended load equally across its attached
// rigging points and validates the result against BGV-C1 conventions.
// Invalid topology (no attachments, unknown point ids) downgrades to a
// warning and skips the load; it never aborts the calculation.
func DistributeLoads(in LoadDistributionInput) LoadDistributionResult {
	byID := make(map[string]model.RiggingPoint, len(in.Points))
	for _, p := range in.Points {
		byID[p.ID] = p
	}

	static := make(map[string]float64, len(in.Points))
	tension := make(map[string]float64, len(in.Points))
	worstAngle := make(map[string]float64, len(in.Points))

	var warnings []Warning

	for _, load := range in.Loads {
		if len(load.PointIDs) == 0 {
			warnings = append(warnings, warnf(WarnInvalidTopology,
				"load %q has no attached rigging points; skipped", load.ID))
			continue
		}

		attached := make([]model.RiggingPoint, 0, len(load.PointIDs))
		valid := true
		for _, id := range load.PointIDs {
			p, ok := byID[id]
			if !ok {
				warnings = append(warnings, warnf(WarnUnknownPoint,
					"load %q references unknown rigging point %q; skipped", load.ID, id))
				valid = false
				break
			}
			attached = append(attached, p)
		}
		if !valid {
			continue
		}

		// Equal split, no load-path optimization.
		share := load.Weight / float64(len(attached))
		for _, p := range attached {
			angle := geo.AngleFromVertical(p.Position, load.Position)
			if angle > criticalAngleDeg {
				warnings = append(warnings, warnf(WarnCriticalAngle,
					"attachment %s->%s at %.1f degrees from vertical exceeds the %.0f degree limit",
					p.ID, load.ID, angle, criticalAngleDeg))
			} else if angle > steepAngleDeg {
				warnings = append(warnings, warnf(WarnSteepAngle,
					"attachment %s->%s at %.1f degrees from vertical multiplies cable tension",
					p.ID, load.ID, angle))
			}

			clamped := math.Min(angle, maxAttachmentAngleDeg)
			legTension := share * gravity / math.Cos(clamped*math.Pi/180)

			static[p.ID] += share
			tension[p.ID] = math.Max(tension[p.ID], legTension)
			worstAngle[p.ID] = math.Max(worstAngle[p.ID], angle)
		}
	}

	result := LoadDistributionResult{
		PointLoads: make([]PointLoadResult, 0, len(in.Points)),
		Warnings:   warnings,
	}

	minCapacity := math.Inf(1)
	maxDynamic := 0.0
	capacityKnown := false

	for _, p := range in.Points {
		s := static[p.ID]
		d := s * DynamicFactor

		r := PointLoadResult{
			PointID:       p.ID,
			StaticLoad:    s,
			DynamicLoad:   d,
			CableTension:  tension[p.ID] * DynamicFactor,
			WorstAngleDeg: worstAngle[p.ID],
		}
		if p.Capacity > 0 {
			r.Utilization = d / p.Capacity * 100
			capacityKnown = true
			minCapacity = math.Min(minCapacity, p.Capacity)
		} else if s > 0 {
			result.Warnings = append(result.Warnings, warnf(WarnNoCapacity,
				"rigging point %q carries %.0f kg but has no rated capacity", p.ID, d))
		}

		if r.Utilization > 100 {
			result.Warnings = append(result.Warnings, warnf(WarnOverload,
				"rigging point %q at %.0f%% of its working load limit", p.ID, r.Utilization))
		}

		result.TotalStatic += s
		result.TotalDynamic += d
		maxDynamic = math.Max(maxDynamic, d)
		result.MaxUtilization = math.Max(result.MaxUtilization, r.Utilization)
		result.PointLoads = append(result.PointLoads, r)
	}

	if capacityKnown && maxDynamic > 0 {
		result.SafetyFactor = minCapacity * RatedBreakingFactor / maxDynamic
	}

	result.Safe = result.SafetyFactor >= MinSafetyFactor && result.MaxUtilization <= 100
	if maxDynamic == 0 {
		// Nothing is hung; there is no load to be unsafe under.
		result.Safe = true
	}
	if !result.Safe && result.SafetyFactor > 0 && result.SafetyFactor < MinSafetyFactor {
		result.Warnings = append(result.Warnings, warnf(WarnLowSafetyFactor,
			"overall safety factor %.1f is below the required %.0f:1", result.SafetyFactor, MinSafetyFactor))
	}

	return result
}
