// Package core defines the shared language of the device layer.
//
// This package contains:
//   - Plan nodes handed to a device by the planner (PlanNode)
//   - Internal scalar type identities (ScalarType)
//   - Catalog annotations (MetaData, Tag)
//   - Normalized catalog descriptors produced by harvesting
//   - The error taxonomy shared by every device component
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
