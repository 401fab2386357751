package corpus

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/nao1215/storycrawl/internal/model"
	"golang.org/x/sync/errgroup"
)

// EndOfText terminates every text of the corpus.
const EndOfText = "<|endoftext|>"

// DefaultMaxVersions is the default number of texts kept per story.
const DefaultMaxVersions = 20

// DefaultConcurrency is the default number of stories flattened at once.
const DefaultConcurrency = 4

// Builder turns a forest into a corpus.
type Builder struct {
	maxVersions int
	separateAt  int
	rawActions  bool
	exclude     []string
	seed        uint64
	seeded      bool
	concurrency int
	logger      *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaxVersions keeps at most n texts per story, chosen at random.
// Zero or negative keeps every text.
func WithMaxVersions(n int) Option {
	return func(b *Builder) {
		b.maxVersions = n
	}
}

// WithSeparateAt inserts EndOfText inside long texts. Counting choices up
// from the ending, the separator goes between the (n+1)th choice and its
// page, and counting restarts there. Zero disables it.
func WithSeparateAt(n int) Option {
	return func(b *Builder) {
		b.separateAt = n
	}
}

// WithRawActions writes choice labels as they are.
func WithRawActions(raw bool) Option {
	return func(b *Builder) {
		b.rawActions = raw
	}
}

// WithExclude drops the stories with the given ids.
func WithExclude(ids ...string) Option {
	return func(b *Builder) {
		for _, id := range ids {
			if id = strings.TrimSpace(id); id != "" {
				b.exclude = append(b.exclude, id)
			}
		}
	}
}

// WithSeed makes the choice of kept texts reproducible.
func WithSeed(seed uint64) Option {
	return func(b *Builder) {
		b.seed = seed
		b.seeded = true
	}
}

// WithConcurrency sets how many stories are flattened at once.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		maxVersions: DefaultMaxVersions,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if !b.seeded {
		b.seed = rand.Uint64()
	}
	return b
}

// Story is the part of the corpus produced by one story.
type Story struct {
	Title string
	ID    string

	// Texts are the kept root-to-ending texts.
	Texts []string

	// Bytes is the total length of Texts.
	Bytes int
}

// Corpus is the flattened forest.
type Corpus struct {
	Stories []Story

	// Bytes is the total length of every text.
	Bytes int
}

// Texts returns every text in story order.
func (c *Corpus) Texts() []string {
	var texts []string
	for _, s := range c.Stories {
		texts = append(texts, s.Texts...)
	}
	return texts
}

// Share returns the percentage of the corpus taken by story i.
func (c *Corpus) Share(i int) float64 {
	if c.Bytes == 0 {
		return 0
	}
	return float64(c.Stories[i].Bytes) / float64(c.Bytes) * 100
}

// WriteTo writes the texts back to back.
func (c *Corpus) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, s := range c.Stories {
		for _, text := range s.Texts {
			n, err := io.WriteString(w, text)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// Build flattens every story of forest that is not excluded.
func (b *Builder) Build(ctx context.Context, forest model.Forest) (*Corpus, error) {
	roots := forest.Without(b.exclude)
	if n := len(forest) - len(roots); n > 0 {
		b.logger.Debug("excluded stories", "count", n)
	}

	stories := make([]Story, len(roots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, root := range roots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stories[i] = b.flatten(root, uint64(i)) //nolint:gosec // index is never negative
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Corpus{Stories: stories}
	for _, s := range stories {
		c.Bytes += s.Bytes
	}
	return c, nil
}

// flatten collects the texts of one story and trims them to maxVersions.
// Each story shuffles with its own stream so the result does not depend on
// scheduling.
func (b *Builder) flatten(root *model.Node, stream uint64) Story {
	var texts []string
	b.paths(root, nil, func(path []*model.Choice) {
		texts = append(texts, b.text(root, path))
	})

	if b.maxVersions > 0 && len(texts) > b.maxVersions {
		r := rand.New(rand.NewPCG(b.seed, stream))
		r.Shuffle(len(texts), func(i, j int) {
			texts[i], texts[j] = texts[j], texts[i]
		})
		texts = texts[:b.maxVersions]
	}

	s := Story{Title: root.Title, ID: root.ID, Texts: texts}
	for _, t := range texts {
		s.Bytes += len(t)
	}
	b.logger.Debug("story flattened", "story", root.ID, "texts", len(texts))
	return s
}

// paths calls fn with the choices of every root-to-leaf path under n.
func (b *Builder) paths(n *model.Node, path []*model.Choice, fn func([]*model.Choice)) {
	if n.IsLeaf() {
		fn(path)
		return
	}
	for _, c := range n.Choices {
		b.paths(c.Target, append(path[:len(path):len(path)], c), fn)
	}
}

// text renders one path. The last choice is dropped when it leads to an
// ending page without text.
func (b *Builder) text(root *model.Node, path []*model.Choice) string {
	if len(path) > 0 && path[len(path)-1].Target.Text == "" {
		path = slices.Clip(path[:len(path)-1])
	}

	split := b.separators(len(path))

	var sb strings.Builder
	sb.WriteString(root.Text)
	sb.WriteString("\n")
	for i, c := range path {
		sb.WriteString("> ")
		if b.rawActions {
			sb.WriteString(c.Label)
		} else {
			sb.WriteString(SecondPerson(c.Label))
		}
		sb.WriteString("\n")
		if split[i] {
			sb.WriteString(EndOfText)
		}
		sb.WriteString(c.Target.Text)
		sb.WriteString("\n")
	}
	sb.WriteString(EndOfText)
	return sb.String()
}

// separators marks the choices of an n-choice path that are followed by
// EndOfText. Marks are placed walking up from the ending.
func (b *Builder) separators(n int) []bool {
	split := make([]bool, n)
	if b.separateAt <= 0 {
		return split
	}
	count := 0
	for i := n - 1; i >= 0; i-- {
		if count >= b.separateAt {
			split[i] = true
			count = 0
			continue
		}
		count++
	}
	return split
}
