package app

import (
	"math/rand"
	"sync"
	"time"

	"course-quiz-engine/internal/domain"
)

// Presenter produces the per-attempt presentation of a quiz's questions.
type Presenter interface {
	Present(questions []domain.Question) []domain.Question
}

// Randomizer shuffles question order and multiple-choice option order.
// It is safe for concurrent use.
type Randomizer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomizer() *Randomizer {
	return NewSeededRandomizer(time.Now().UnixNano())
}

// NewSeededRandomizer is used by tests that need reproducible permutations.
func NewSeededRandomizer(seed int64) *Randomizer {
	return &Randomizer{rnd: rand.New(rand.NewSource(seed))}
}

// ShuffleQuestions returns a uniformly permuted copy of qs; qs is left untouched.
func (r *Randomizer) ShuffleQuestions(qs []domain.Question) []domain.Question {
	out := domain.CloneQuestions(qs)
	r.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// ShuffleOptions returns a copy of q with its options permuted. The correct
// index follows the correct option's text; with duplicate texts the first
// matching option wins.
func (r *Randomizer) ShuffleOptions(q domain.Question) domain.Question {
	c := q.Clone()
	correct, ok := c.CorrectOption()
	if !ok {
		return c
	}
	r.shuffle(len(c.Options), func(i, j int) { c.Options[i], c.Options[j] = c.Options[j], c.Options[i] })
	for i, opt := range c.Options {
		if opt == correct {
			c.CorrectIndex = i
			break
		}
	}
	return c
}

// Present shuffles question order and the options of every multiple-choice question.
func (r *Randomizer) Present(qs []domain.Question) []domain.Question {
	out := r.ShuffleQuestions(qs)
	for i := range out {
		out[i] = r.ShuffleOptions(out[i])
	}
	return out
}

func (r *Randomizer) shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(n, swap)
}
