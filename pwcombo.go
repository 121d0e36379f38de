// Package pwcombo expands a password into every case variant and every
// character permutation of those variants.
//
// The expansion runs in two stages. Expand builds the Cartesian product of
// per-character case choices, and Permute collects every rune ordering of
// each variant into a deduplicated Set. Generate composes both stages with
// input validation and cancellation checks.
//
// Basic usage:
//
//	set, err := pwcombo.Generate(ctx, "ab1")
//	if err != nil {
//		// Handle error
//	}
//	for _, pw := range set.Sorted() {
//		fmt.Println(pw)
//	}
//
// The result grows as 2^letters * n!, and the whole set is held in memory.
// Callers should bound the input size before calling Generate.
package pwcombo

import (
	"context"
	"errors"
	"slices"
	"unicode"
)

var (
	// ErrEmptyPassword is returned when the password has no characters.
	ErrEmptyPassword = errors.New("password cannot be empty")

	// ErrTooLarge is returned by callers that refuse inputs whose result set
	// would exceed a configured bound.
	ErrTooLarge = errors.New("result set too large")
)

// checkInterval is how many strings are produced between context checks.
const checkInterval = 4096

// Set is an unordered collection of unique strings.
type Set map[string]struct{}

// Add inserts item into the set.
func (s Set) Add(item string) {
	s[item] = struct{}{}
}

// Contains reports whether item is in the set.
func (s Set) Contains(item string) bool {
	_, ok := s[item]
	return ok
}

// Len returns the number of items in the set.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the items in ascending byte order, which for valid UTF-8
// is code point order.
func (s Set) Sorted() []string {
	res := make([]string, 0, len(s))
	for item := range s {
		res = append(res, item)
	}
	slices.Sort(res)
	return res
}

// ValidatePassword rejects passwords that cannot be expanded.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// caseForms returns the candidate forms of r: lower then upper for letters,
// r alone otherwise.
func caseForms(r rune) []rune {
	if unicode.IsLetter(r) {
		return []rune{unicode.ToLower(r), unicode.ToUpper(r)}
	}
	return []rune{r}
}

// Expand returns every string obtained by choosing, for each letter of
// password, its lowercase or uppercase form. Non-letters are kept as is.
//
// The result has exactly 2^letters entries. It may contain duplicates when a
// letter has no distinct upper and lower forms. An empty password yields a
// single empty string.
func Expand(password string) []string {
	result, _ := expand(context.Background(), password)
	return result
}

// expand builds the case variants of password, checking ctx every
// checkInterval variants.
func expand(ctx context.Context, password string) ([]string, error) {
	runes := []rune(password)
	choices := make([][]rune, len(runes))
	total := 1
	for i, r := range runes {
		choices[i] = caseForms(r)
		total *= len(choices[i])
	}

	result := make([]string, 0, total)
	current := make([]rune, len(runes))
	var err error
	var walk func(pos int)
	walk = func(pos int) {
		if err != nil {
			return
		}
		if pos == len(runes) {
			if len(result)%checkInterval == 0 {
				if err = ctx.Err(); err != nil {
					return
				}
			}
			result = append(result, string(current))
			return
		}
		for _, c := range choices[pos] {
			current[pos] = c
			walk(pos + 1)
		}
	}
	walk(0)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Permute returns the union of all character permutations of every string in
// combinations. Repeated characters collapse to a single entry.
func Permute(combinations []string) Set {
	set, _ := PermuteContext(context.Background(), combinations)
	return set
}

// permuteInto adds every distinct rune ordering of s to set, checking ctx
// every checkInterval orderings.
//
// Orderings are produced in lexicographic order starting from the sorted
// runes, so equal runes never produce the same ordering twice.
func permuteInto(ctx context.Context, set Set, s string) error {
	runes := []rune(s)
	slices.Sort(runes)
	for n := 1; ; n++ {
		set.Add(string(runes))
		if !nextPermutation(runes) {
			return nil
		}
		if n%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}

// nextPermutation rearranges runes into the next lexicographic ordering and
// reports false once the last ordering has been reached.
func nextPermutation(runes []rune) bool {
	i := len(runes) - 2
	for i >= 0 && runes[i] >= runes[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(runes) - 1
	for runes[j] <= runes[i] {
		j--
	}
	runes[i], runes[j] = runes[j], runes[i]
	slices.Reverse(runes[i+1:])
	return true
}

// Dedupe returns the distinct strings of items, keeping first occurrences in
// order.
func Dedupe(items []string) []string {
	seen := make(Set, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if seen.Contains(item) {
			continue
		}
		seen.Add(item)
		result = append(result, item)
	}
	return result
}

// Generate validates password and returns the full set of permuted case
// variants.
//
// The context is checked between stages and periodically inside each stage.
// A cancelled context yields ctx.Err() and no partial result.
func Generate(ctx context.Context, password string) (Set, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	variants, err := expand(ctx, password)
	if err != nil {
		return nil, err
	}
	variants = Dedupe(variants)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return PermuteContext(ctx, variants)
}

// PermuteContext is Permute with cancellation. The context is checked before
// each combination and every few thousand orderings within one; a cancelled
// context yields ctx.Err() and no partial result.
func PermuteContext(ctx context.Context, combinations []string) (Set, error) {
	set := make(Set)
	for _, combination := range combinations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := permuteInto(ctx, set, combination); err != nil {
			return nil, err
		}
	}
	return set, nil
}
