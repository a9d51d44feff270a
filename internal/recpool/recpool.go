// Package recpool holds the read-only recommendation candidate pool and
// the deterministic selection primitives built on it.
//
// The pool is an explicitly constructed index injected into the
// recommendation service. Candidate ordering is pseudo-random but
// reproducible: candidates are sorted by a hash of the request context
// plus the candidate text, so identical requests always pick the same
// texts while different contexts see different orderings.
package recpool

import (
	"crypto/sha256"
	_ "embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed recommendations.json
var defaultPoolJSON []byte

// Sleep-hour buckets.
const (
	SleepLess   = "less"
	SleepEnough = "enough"
	SleepMore   = "more"
)

// Pool is a read-only index of recommendation texts. Non-sleep
// categories map activity → polarity → texts; sleep maps an hours
// bucket → texts.
type Pool struct {
	categories map[string]map[string]map[string][]string
	sleep      map[string][]string
}

type poolFile struct {
	Activity map[string]map[string][]string `json:"activity"`
	Social   map[string]map[string][]string `json:"social"`
	Health   map[string]map[string][]string `json:"health"`
	Sleep    map[string][]string            `json:"sleep"`
}

// Default builds the pool from the embedded candidate file.
func Default() (*Pool, error) {
	return FromJSON(defaultPoolJSON)
}

// FromJSON builds a pool from raw candidate JSON. Tests inject small
// fixture pools this way.
func FromJSON(data []byte) (*Pool, error) {
	var f poolFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid recommendation pool: %w", err)
	}
	return &Pool{
		categories: map[string]map[string]map[string][]string{
			"activity": f.Activity,
			"social":   f.Social,
			"health":   f.Health,
		},
		sleep: f.Sleep,
	}, nil
}

// activityAliases maps normalized synonyms to the canonical keys used
// in the candidate file.
var activityAliases = map[string]string{
	"study":       "studying",
	"studies":     "studying",
	"read":        "reading",
	"walk":        "walking",
	"run":         "running",
	"jog":         "running",
	"jogging":     "running",
	"workout":     "exercise",
	"work-out":    "exercise",
	"working-out": "exercise",
	"meditate":    "meditation",
	"games":       "gaming",
	"video-games": "gaming",
	"game":        "gaming",
	"gym-session": "gym",
	"hang-out":    "friends",
	"hanging-out": "friends",
}

// NormalizeActivity canonicalizes an activity label: lowercase, strip
// punctuation, collapse whitespace and underscores to single dashes,
// then resolve known synonyms through the alias table.
func NormalizeActivity(activity string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(activity)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '_', r == '-', r == '\t':
			b.WriteRune('-')
		}
		// Other punctuation drops out entirely.
	}
	key := b.String()
	for strings.Contains(key, "--") {
		key = strings.ReplaceAll(key, "--", "-")
	}
	key = strings.Trim(key, "-")
	if canonical, ok := activityAliases[key]; ok {
		return canonical
	}
	return key
}

// NormalizeCategory lowercases a category and clamps unknown values to
// "activity".
func NormalizeCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "sleep":
		return "sleep"
	case "social":
		return "social"
	case "health":
		return "health"
	default:
		return "activity"
	}
}

// SleepBucket maps hours slept to a candidate bucket.
func SleepBucket(hours float64) string {
	switch {
	case hours < 7:
		return SleepLess
	case hours > 9:
		return SleepMore
	default:
		return SleepEnough
	}
}

// oppositePolarity flips positive/negative.
func oppositePolarity(polarity string) string {
	if polarity == "positive" {
		return "negative"
	}
	return "positive"
}

// Candidates returns the raw candidate texts for a non-sleep request,
// walking the fallback cascade until a step yields something:
//
//  1. exact category + activity + polarity
//  2. same category + activity, opposite polarity
//  3. any activity in the category with the requested polarity
//  4. any text at all in the category
//
// The category must already be normalized; the activity is normalized
// here.
func (p *Pool) Candidates(category, activity, polarity string) []string {
	byActivity := p.categories[category]
	if len(byActivity) == 0 {
		return nil
	}
	act := NormalizeActivity(activity)

	if texts := byActivity[act][polarity]; len(texts) > 0 {
		return texts
	}
	if texts := byActivity[act][oppositePolarity(polarity)]; len(texts) > 0 {
		return texts
	}

	// Cross-activity fallbacks walk activities in sorted order so the
	// candidate list is stable.
	keys := make([]string, 0, len(byActivity))
	for k := range byActivity {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var samePolarity []string
	for _, k := range keys {
		samePolarity = append(samePolarity, byActivity[k][polarity]...)
	}
	if len(samePolarity) > 0 {
		return samePolarity
	}

	var all []string
	for _, k := range keys {
		for _, pol := range []string{"positive", "negative"} {
			all = append(all, byActivity[k][pol]...)
		}
	}
	return all
}

// SleepCandidates returns texts for an hours bucket, falling back to
// every sleep text when the bucket is empty.
func (p *Pool) SleepCandidates(hours float64) []string {
	if texts := p.sleep[SleepBucket(hours)]; len(texts) > 0 {
		return texts
	}
	var all []string
	for _, bucket := range []string{SleepLess, SleepEnough, SleepMore} {
		all = append(all, p.sleep[bucket]...)
	}
	return all
}

// ContextKey builds the hashing context for deterministic ordering.
func ContextKey(category, activity, polarity string, sleepHours *float64) string {
	hours := ""
	if sleepHours != nil {
		hours = fmt.Sprintf("%v", *sleepHours)
	}
	return strings.Join([]string{category, NormalizeActivity(activity), polarity, hours}, "|")
}

// StableOrder sorts candidates by the numeric value of the first eight
// hex digits of sha256(key + "|" + candidate). The order is fixed for a
// given context key yet uncorrelated across contexts.
func StableOrder(candidates []string, key string) []string {
	type ranked struct {
		text string
		rank uint32
	}
	rows := make([]ranked, len(candidates))
	for i, c := range candidates {
		sum := sha256.Sum256([]byte(key + "|" + c))
		rows[i] = ranked{text: c, rank: binary.BigEndian.Uint32(sum[:4])}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].rank < rows[j].rank })
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.text
	}
	return out
}

// TopN orders candidates deterministically for key, drops empty and
// case-insensitive duplicate texts, skips excluded ones, and returns up
// to n results.
func TopN(candidates []string, key string, n int, excluded func(text string) bool) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range StableOrder(candidates, key) {
		text := strings.TrimSpace(c)
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		if excluded != nil && excluded(text) {
			continue
		}
		out = append(out, text)
		if len(out) == n {
			break
		}
	}
	return out
}
