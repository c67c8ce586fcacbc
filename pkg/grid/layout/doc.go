// Package layout computes card-grid metrics for a container width.
//
// [Compute] is a pure function: the same width, configuration and [Hint]
// always produce bit-identical [Metrics]. Callers that want to skip
// downstream work cache the previous result and compare it themselves.
//
// # Tiers
//
// A grid has up to three visual tiers. Large rows show perRowBig cards at
// scale 1. Medium rows try to fit one extra card inside the same content
// width by scaling every card down; small rows try two extra cards. A tier
// whose required scale drops below [Config.MinScale] collapses back to the
// large tier's column count (medium) or onto the medium tier (small).
//
// # Compact mode
//
// Narrow viewports use uniform rows. The widest card width not exceeding the
// preferred width that fills the container with a whole number of columns is
// chosen; when [Hint.ExtraColumn] is set one more column is squeezed in at a
// reduced scale, provided the scale stays at or above [Config.CompactScaleFloor].
package layout
