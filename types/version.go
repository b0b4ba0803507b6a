package types

// Version is the canonical project version.
// The CLI, the container format docs, and the view-state key set share this
// version (lockstep versioning).
const Version = "0.1.0"
