// Package shuffle implements the repeated-pass Fisher–Yates shuffle used to
// randomize team rosters. Every random draw comes from a Source so production
// code can read from crypto/rand while tests substitute a seeded or fixed
// sequence and assert exact permutations.
package shuffle
