// Package rigging computes cable sag, per-point load distribution, beam
// deflection, and the BGV-C1 safety validations for suspended systems.
package rigging

import "fmt"

// Gravity in m/s^2.
const gravity = 9.81

// DynamicFactor is the BGV-C1 multiplier applied to static loads to cover
// movement and shock.
const DynamicFactor = 1.5

// MinSafetyFactor is the industry minimum overall safety factor.
const MinSafetyFactor = 5.0

// RatedBreakingFactor relates a point's working load limit to its minimum
// breaking load. Capacities in scene data are WLL values; the overall
// safety factor is computed against breaking load so that a point at
// exactly 100% utilization sits exactly at the 5:1 minimum.
const RatedBreakingFactor = 5.0

// Attachment angle thresholds, degrees from vertical.
const (
	steepAngleDeg    = 45.0
	criticalAngleDeg = 60.0
)

// WarningKind is the structured classification of an advisory warning.
type WarningKind string

const (
	WarnInvalidTopology WarningKind = "invalid_topology"
	WarnUnknownPoint    WarningKind = "unknown_point"
	WarnOverload        WarningKind = "overload"
	WarnLowSafetyFactor WarningKind = "low_safety_factor"
	WarnSteepAngle      WarningKind = "steep_angle"
	WarnCriticalAngle   WarningKind = "critical_angle"
	WarnNoCapacity      WarningKind = "no_capacity"
	WarnDeflection      WarningKind = "deflection"
	WarnVisibleSag      WarningKind = "visible_sag"
	WarnUndersized      WarningKind = "undersized"
)

// Warning pairs a machine-checkable kind with a human-readable message.
// Warnings are advisory: they ride along on otherwise valid results.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func warnf(kind WarningKind, format string, args ...any) Warning {
	return Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
