package vlist

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// Item is one list entry. ID is the stable key its measured height is
// cached under, so heights follow items when the list is reordered.
type Item struct {
	ID    string
	Title string
	Body  string // markdown
}

var words = strings.Fields(`
	range offset viewport overscan height estimate measure scroll window index
	buffer render layout cache resize settle debounce prefix virtual list item
	row column anchor frame paint commit budget stable key sample trace span`)

// Fixtures generates n items whose bodies vary from empty to several
// paragraphs with lists and code. The same seed yields the same items,
// IDs included.
func Fixtures(n int, seed int64) []Item {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: fixture data
	items := make([]Item, max(0, n))
	for i := range items {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			id = uuid.New()
		}
		items[i] = Item{
			ID:    id.String(),
			Title: fmt.Sprintf("#%d %s", i, sentence(rng, 2+rng.Intn(5))),
			Body:  body(rng),
		}
	}
	return items
}

func sentence(rng *rand.Rand, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[rng.Intn(len(words))]
	}
	s := strings.Join(parts, " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

func body(rng *rand.Rand) string {
	var sb strings.Builder
	for p := rng.Intn(4); p > 0; p-- {
		sb.WriteString(sentence(rng, 6+rng.Intn(30)))
		sb.WriteString(".\n\n")
	}
	if rng.Intn(3) == 0 {
		for b := 1 + rng.Intn(3); b > 0; b-- {
			fmt.Fprintf(&sb, "- %s\n", sentence(rng, 2+rng.Intn(6)))
		}
		sb.WriteString("\n")
	}
	if rng.Intn(5) == 0 {
		fmt.Fprintf(&sb, "```go\nv.OnMeasure(%d, %d)\n```\n", rng.Intn(1000), 1+rng.Intn(20))
	}
	return strings.TrimSpace(sb.String())
}
