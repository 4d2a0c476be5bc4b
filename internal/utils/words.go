package utils

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

var defaultWords = []string{
	"Apple", "Banana", "Cat", "Dog", "Elephant", "Fish", "Giraffe", "House",
	"Ice Cream", "Jungle", "Kite", "Lion", "Mountain", "Notebook", "Ocean",
	"Penguin", "Queen", "Rainbow", "Sun", "Tiger", "Umbrella", "Violin",
	"Watermelon", "Xylophone", "Yacht", "Zebra", "Anchor", "Butterfly",
	"Computer", "Diamond", "Eagle", "Flower", "Guitar", "Helicopter", "Igloo",
	"Jellyfish", "Kangaroo", "Lighthouse", "Mushroom", "Necklace", "Octopus",
	"Piano", "Quicksand", "Robot", "Saxophone", "Tree", "Volcano", "Whale",
	"Yoga", "Zipper", "Airplane", "Beach", "Castle", "Dragon", "Envelope",
	"Fireworks", "Ghost", "Hammer", "Island", "Jacket",
}

func DefaultWords() []string {
	return append([]string(nil), defaultWords...)
}

// WordCatalog hands out random word choices for a turn. It is safe for
// concurrent use.
type WordCatalog struct {
	mu    sync.Mutex
	words []string
	rng   *rand.Rand
}

func NewWordCatalog(words []string) *WordCatalog {
	return NewSeededWordCatalog(words, time.Now().UnixNano())
}

func NewSeededWordCatalog(words []string, seed int64) *WordCatalog {
	seen := make(map[string]bool, len(words))
	unique := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if w == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, w)
	}
	if len(unique) == 0 {
		unique = DefaultWords()
	}

	return &WordCatalog{
		words: unique,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (c *WordCatalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.words)
}

func (c *WordCatalog) Words() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.words...)
}

// Choices samples n distinct words uniformly. It returns every word when the
// catalog holds fewer than n.
func (c *WordCatalog) Choices(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= 0 {
		return []string{}
	}
	if n > len(c.words) {
		n = len(c.words)
	}

	choices := make([]string, 0, n)
	for _, i := range c.rng.Perm(len(c.words))[:n] {
		choices = append(choices, c.words[i])
	}
	return choices
}
