// Package identity names generated teams.
//
// A Namer turns a list of teams into one Identity per team index. Namers are
// treated as slow and fallible: the flow controller never calls one directly,
// it goes through Resilient, which bounds each call with a timeout and swaps
// any failure (error, panic, empty or malformed reply) for the deterministic
// Fallback identities so a generation always completes.
//
// Implementations:
//   - GenAI asks a Gemini model for JSON names and slogans.
//   - Local composes names offline from word lists using a shuffle.Source.
package identity
