// Package faq is the canned-response matcher for plain chat messages. It is
// stateless with respect to user records: input text in, optional response
// out, plus an independent random reaction draw.
package faq

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	defaultCutoff  = 0.6
	reactionChance = 0.1
	minInputLen    = 2
)

type entry struct {
	prompt string
	answer string
}

// Responder matches incoming text against a fixed prompt list using a
// normalized edit-distance ratio. Prompt order breaks score ties.
type Responder struct {
	entries   []entry
	cutoff    float64
	reactions []string

	mu  sync.Mutex
	rng *rand.Rand
}

func New() *Responder {
	return &Responder{
		entries: []entry{
			{"hello", "Hi there! Welcome to the server!"},
			{"what is your name", "I'm Michelle, the server bot. Nice to meet you!"},
			{"what can you do", "I can answer questions, hand out daily rewards and run the gacha. Try the help command!"},
			{"help", "Check /api/help for the full command list."},
			{"who is the smartest", "Me, obviously. I studied very hard."},
			{"i feel down", "Hang in there! I believe in you."},
			{"what should i eat", "Cake. The answer is always cake."},
			{"do you miss me", "Of course! I miss everyone on the server."},
		},
		cutoff:    defaultCutoff,
		reactions: []string{"smile", "heart", "sparkles", "party", "wink"},
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Answer returns the canned response closest to input, if any prompt scores
// at or above the cutoff. Very short inputs and command-prefixed messages
// never match.
func (r *Responder) Answer(input string) (string, bool) {
	msg := strings.ToLower(strings.TrimSpace(input))
	if len(msg) < minInputLen || strings.HasPrefix(msg, "!") {
		return "", false
	}

	best := -1
	bestScore := 0.0
	for i, e := range r.entries {
		if score := similarity(msg, e.prompt); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best == -1 || bestScore < r.cutoff {
		return "", false
	}
	return r.entries[best].answer, true
}

// Reaction draws an optional random reaction, independent of matching.
func (r *Responder) Reaction() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rng.Float64() >= reactionChance {
		return "", false
	}
	return r.reactions[r.rng.Intn(len(r.reactions))], true
}

// similarity is 1 - editDistance/maxLen over runes, in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(ra, rb))/float64(longest)
}

func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
