// Package stat provides size estimation and run statistics for password
// expansion.
//
// Estimation runs before any generation work so that callers can refuse
// inputs whose result set would not fit in memory. Results records what a
// completed run produced.
package stat

import (
	"math/big"
	"time"
	"unicode"
)

// Composition describes the characters of a password relevant to expansion.
type Composition struct {
	Length  int             // Number of runes
	Letters int             // Runes classified as letters, cased or not
	Cased   int             // Letters with distinct upper and lower forms
	Classes map[caseKey]int // Cased letters grouped by their (lower, upper) pair
	Fixed   map[rune]int    // Runes that keep a single form, with multiplicity
}

// caseKey identifies a case class by its lower and upper forms.
type caseKey struct {
	lower rune
	upper rune
}

// Results holds the statistics of a single generation run.
type Results struct {
	PasswordLength int           `json:"passwordLength"` // Runes in the input
	Letters        int           `json:"letters"`        // Alphabetic runes in the input
	Variants       int           `json:"variants"`       // Case variants before dedup
	UniqueVariants int           `json:"uniqueVariants"` // Case variants after dedup
	Estimated      string        `json:"estimated"`      // Estimated result size (decimal)
	Passwords      int           `json:"passwords"`      // Entries written
	OutputFile     string        `json:"outputFile"`     // Destination path
	BytesWritten   int64         `json:"bytesWritten"`   // Size of the output file
	Elapsed        time.Duration `json:"elapsed"`        // Wall time of the run
}

// Analyze classifies every rune of password.
func Analyze(password string) Composition {
	c := Composition{
		Classes: make(map[caseKey]int),
		Fixed:   make(map[rune]int),
	}
	for _, r := range password {
		c.Length++
		if !unicode.IsLetter(r) {
			c.Fixed[r]++
			continue
		}
		c.Letters++
		key := caseKey{lower: unicode.ToLower(r), upper: unicode.ToUpper(r)}
		if key.lower == key.upper {
			c.Fixed[key.lower]++
			continue
		}
		c.Cased++
		c.Classes[key]++
	}
	return c
}

// VariantCount returns the number of case variants produced before dedup,
// 2^letters.
func VariantCount(password string) *big.Int {
	c := Analyze(password)
	return new(big.Int).Lsh(big.NewInt(1), uint(c.Letters))
}

// UniqueVariantCount returns the number of distinct case variants,
// 2^cased. Letters without distinct forms contribute a single form.
func UniqueVariantCount(password string) *big.Int {
	c := Analyze(password)
	return new(big.Int).Lsh(big.NewInt(1), uint(c.Cased))
}

// Estimate returns the size of the deduplicated result set for password.
//
// Each case class of size c contributes 2^c / c! to the multinomial count
// of orderings, and each repeated fixed rune divides by its multiplicity
// factorial. The value is exact unless two distinct letters share a case
// form, in which case it is an upper bound.
func Estimate(password string) *big.Int {
	c := Analyze(password)

	num := factorial(c.Length)
	num.Lsh(num, uint(c.Cased))

	den := big.NewInt(1)
	for _, n := range c.Classes {
		den.Mul(den, factorial(n))
	}
	for _, n := range c.Fixed {
		den.Mul(den, factorial(n))
	}
	return num.Quo(num, den)
}

// Exceeds reports whether the estimate for password is larger than limit.
// A limit of zero disables the check.
func Exceeds(password string, limit uint64) (bool, *big.Int) {
	est := Estimate(password)
	if limit == 0 {
		return false, est
	}
	return est.Cmp(new(big.Int).SetUint64(limit)) > 0, est
}

// factorial returns n! as a new big.Int.
func factorial(n int) *big.Int {
	if n < 2 {
		return big.NewInt(1)
	}
	return new(big.Int).MulRange(1, int64(n))
}
