// Package domain defines the core business entities of the progression
// engine: learner accounts, per-word review state, the learner's progress
// record (points, gems, streak), gated content entities, the achievement
// catalog and per-learner achievement progress.
//
// Entities here carry their own validation but no persistence or
// orchestration logic; stores persist them and services mutate them.
package domain
