// Package fuzzy implements Bitap approximate string matching with bounded
// scores: 0 is an exact match, 1 is no match.
package fuzzy

import (
	"math"
	"unicode"
)

// MaxBits is the longest pattern chunk the bit-parallel matcher handles.
// Longer patterns are split into chunks and their scores averaged.
const MaxBits = 32

// minScore is the floor for any non-exact match
const minScore = 0.001

// Options controls matching tolerance
type Options struct {
	// Threshold is the worst score still considered a match (0..1)
	Threshold float64
	// Location is where in the text the pattern is expected to be found
	Location int
	// Distance is how far from Location a match may be before it scores 1.
	// A match Distance characters away costs a full point of score.
	Distance int
	// MinMatchCharLength drops matched runs shorter than this
	MinMatchCharLength int
	// FindAllMatches keeps scanning the full text after a perfect match
	FindAllMatches bool
	// IgnoreLocation scores by error count only
	IgnoreLocation bool
}

// DefaultOptions returns the matcher defaults: threshold 0.3, distance 100
func DefaultOptions() Options {
	return Options{
		Threshold:          0.3,
		Location:           0,
		Distance:           100,
		MinMatchCharLength: 1,
	}
}

// Range is an inclusive span of rune offsets in the searched text
type Range struct {
	Start int
	End   int
}

// Result is the outcome of matching one text
type Result struct {
	IsMatch bool
	Score   float64
	Indices []Range
}

type chunk struct {
	pattern  []rune
	alphabet map[rune]uint64
	start    int
}

// Pattern is a compiled, lowercased query. It is safe for concurrent use.
type Pattern struct {
	runes  []rune
	chunks []chunk
	opts   Options
}

// Compile prepares pattern for matching. An empty pattern matches nothing.
func Compile(pattern string, opts Options) *Pattern {
	p := &Pattern{
		runes: Lower(pattern),
		opts:  opts,
	}

	n := len(p.runes)
	if n == 0 {
		return p
	}

	if n <= MaxBits {
		p.addChunk(p.runes, 0)
		return p
	}

	remainder := n % MaxBits
	end := n - remainder
	for i := 0; i < end; i += MaxBits {
		p.addChunk(p.runes[i:i+MaxBits], i)
	}
	if remainder > 0 {
		start := n - MaxBits
		p.addChunk(p.runes[start:], start)
	}
	return p
}

func (p *Pattern) addChunk(pattern []rune, start int) {
	p.chunks = append(p.chunks, chunk{
		pattern:  pattern,
		alphabet: alphabet(pattern),
		start:    start,
	})
}

// Len returns the pattern length in runes
func (p *Pattern) Len() int {
	return len(p.runes)
}

// Match lowercases text and matches it against the pattern
func (p *Pattern) Match(text string) Result {
	return p.MatchLower(Lower(text))
}

// MatchLower matches text that has already been lowercased with Lower.
// Offsets in the result index into text.
func (p *Pattern) MatchLower(text []rune) Result {
	if len(p.chunks) == 0 {
		return Result{Score: 1}
	}

	if equalRunes(p.runes, text) {
		return Result{
			IsMatch: true,
			Score:   0,
			Indices: []Range{{Start: 0, End: len(text) - 1}},
		}
	}

	var (
		indices    []Range
		totalScore float64
		hasMatches bool
	)
	for _, c := range p.chunks {
		res := search(text, c.pattern, c.alphabet, p.opts.Location+c.start, p.opts)
		if res.IsMatch {
			hasMatches = true
			indices = append(indices, res.Indices...)
		}
		totalScore += res.Score
	}

	if !hasMatches {
		return Result{Score: 1}
	}
	return Result{
		IsMatch: true,
		Score:   totalScore / float64(len(p.chunks)),
		Indices: indices,
	}
}

// Lower lowercases s rune by rune so offsets in the result line up
// with offsets in []rune(s)
func Lower(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

func alphabet(pattern []rune) map[rune]uint64 {
	mask := make(map[rune]uint64, len(pattern))
	n := len(pattern)
	for i, r := range pattern {
		mask[r] |= 1 << uint(n-i-1)
	}
	return mask
}

// search runs Bitap for one chunk. The pattern must be at most MaxBits runes.
func search(text, pattern []rune, alphabet map[rune]uint64, location int, opts Options) Result {
	patternLen := len(pattern)
	textLen := len(text)
	expectedLocation := max(0, min(location, textLen))

	currentThreshold := opts.Threshold
	bestLocation := expectedLocation
	matchMask := make([]bool, textLen)

	// Literal occurrences tighten the threshold before the fuzzy pass
	for {
		index := indexRunes(text, pattern, bestLocation)
		if index < 0 {
			break
		}
		score := computeScore(patternLen, 0, index, expectedLocation, opts)
		currentThreshold = math.Min(score, currentThreshold)
		bestLocation = index + patternLen
		for i := 0; i < patternLen; i++ {
			matchMask[index+i] = true
		}
	}

	bestLocation = -1
	var lastBitArr []uint64
	finalScore := 1.0
	binMax := patternLen + textLen
	mask := uint64(1) << uint(patternLen-1)

	for i := 0; i < patternLen; i++ {
		// Find how far from the expected location a match with i errors may be
		binMin := 0
		binMid := binMax
		for binMin < binMid {
			score := computeScore(patternLen, i, expectedLocation+binMid, expectedLocation, opts)
			if score <= currentThreshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		binMax = binMid

		start := max(1, expectedLocation-binMid+1)
		finish := textLen
		if !opts.FindAllMatches {
			finish = min(expectedLocation+binMid, textLen) + patternLen
		}

		bitArr := make([]uint64, finish+2)
		bitArr[finish+1] = (1 << uint(i)) - 1

		for j := finish; j >= start; j-- {
			currentLocation := j - 1

			var charMatch uint64
			if currentLocation < textLen {
				charMatch = alphabet[text[currentLocation]]
				matchMask[currentLocation] = charMatch != 0
			}

			// First pass: exact match
			bitArr[j] = ((bitArr[j+1] << 1) | 1) & charMatch

			// Subsequent passes: fuzzy match
			if i > 0 {
				bitArr[j] |= ((at(lastBitArr, j+1) | at(lastBitArr, j)) << 1) | 1 | at(lastBitArr, j+1)
			}

			if bitArr[j]&mask != 0 {
				finalScore = computeScore(patternLen, i, currentLocation, expectedLocation, opts)

				if finalScore <= currentThreshold {
					currentThreshold = finalScore
					bestLocation = currentLocation

					// Already passed the expected location, nothing better left
					if bestLocation <= expectedLocation {
						break
					}
					start = max(1, 2*expectedLocation-bestLocation)
				}
			}
		}

		// No hope for a better match at higher error levels
		score := computeScore(patternLen, i+1, expectedLocation, expectedLocation, opts)
		if score > currentThreshold {
			break
		}
		lastBitArr = bitArr
	}

	result := Result{
		IsMatch: bestLocation >= 0,
		Score:   math.Max(minScore, finalScore),
	}

	indices := maskToIndices(matchMask, opts.MinMatchCharLength)
	if len(indices) == 0 {
		result.IsMatch = false
	} else {
		result.Indices = indices
	}
	return result
}

func computeScore(patternLen, errors, currentLocation, expectedLocation int, opts Options) float64 {
	accuracy := float64(errors) / float64(patternLen)
	if opts.IgnoreLocation {
		return accuracy
	}

	proximity := expectedLocation - currentLocation
	if proximity < 0 {
		proximity = -proximity
	}

	if opts.Distance == 0 {
		if proximity != 0 {
			return 1.0
		}
		return accuracy
	}
	return accuracy + float64(proximity)/float64(opts.Distance)
}

// maskToIndices collapses a match mask into runs of at least minLen
func maskToIndices(mask []bool, minLen int) []Range {
	var indices []Range
	start := -1
	for i, matched := range mask {
		if matched && start == -1 {
			start = i
		} else if !matched && start != -1 {
			if i-start >= minLen {
				indices = append(indices, Range{Start: start, End: i - 1})
			}
			start = -1
		}
	}
	if start != -1 && len(mask)-start >= minLen {
		indices = append(indices, Range{Start: start, End: len(mask) - 1})
	}
	return indices
}

func at(arr []uint64, i int) uint64 {
	if i < 0 || i >= len(arr) {
		return 0
	}
	return arr[i]
}

func indexRunes(text, pattern []rune, from int) int {
	n := len(pattern)
	for i := from; i+n <= len(text); i++ {
		if equalRunes(text[i:i+n], pattern) {
			return i
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
