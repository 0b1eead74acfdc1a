// Package artifact implements the detection pipeline that promotes fenced
// code blocks found in chat messages to interactive artifacts.
//
// The pipeline has three stages: DetectLanguage guesses a language tag for
// untagged blocks, Worthy decides whether a block deserves promotion, and
// Registry assigns each promoted block a fresh identity for the lifetime of
// the rendered chat view. Artifacts are regenerated from message content on
// every render pass; the registry is lookup state, not a source of truth.
//
// Classification is deliberately permissive: the product promise is "code
// becomes interactive", so the classifier errs toward false positives.
package artifact
