// Package service orchestrates the submission pipeline: per-session
// serialization, parallel retrieval and rubric scoring, feedback
// composition, the adaptive difficulty transition, and atomic persistence
// of the resulting session state.
package service
