// Package cablecore turns high-level morphological descriptions of nerve
// cells — trees of tapered cable segments around a spherical soma, with
// painted biophysical properties and placed point mechanisms — into the
// finite-volume discretization a compartmental simulator consumes.
//
// 🚀 What is cablecore?
//
//	A deterministic, single-threaded discretization library that brings together:
//		• Geometry primitives: exact frustum/sphere area and volume integrators
//		• Segment trees: parent-array morphology trees with rerooting ("balance")
//		• Morphology model: sample trees, branch decomposition, piecewise-linear embedding
//		• Cable cells: paints (density mechanisms, cm, rL, ion concentrations)
//		  and placements (synapses, detectors, clamps) over named regions
//		• FVM discretization: one contiguous CV index space across a cell population,
//		  with per-CV area, capacitance, face conductance and diameter
//		• Mechanism data: per-mechanism CV lists, area-weighted parameters,
//		  synapse coalescing with stable target indexing, ion and reversal-potential
//		  validation
//
// ✨ Why cablecore?
//
//   - Deterministic – identical inputs yield byte-identical outputs
//   - Index-array core – no pointer graphs, no hidden state, no locks needed
//   - Typed failures – every build error is a sentinel you can errors.Is against
//   - Pure Go – the numeric heavy lifting rides on gonum
//
// Under the hood, everything is organized under six subpackages:
//
//	geom/        — frustum, sphere and disc integrators
//	celltree/    — parent-indexed segment trees, ChangeRoot, Balance
//	morph/       — sample tree → branches, arc-length embedding
//	compartment/ — divided (left, centre, right) compartment integrator
//	cable/       — cells, paints, placements, catalogue, cell builder
//	fvm/         — Discretize and BuildMechanismData
//
// The pipeline, leaves first: geom feeds compartment and morph; celltree
// orders traversal; cable describes what to discretize; fvm flattens a
// []*cable.Cell into the Discretization and MechanismData records that the
// time-stepping solver (not part of this module) consumes.
//
// The module ships no example programs; the fvm package tests build the
// two-cell reference system end to end.
package cablecore
