package pipeline

import (
	"context"
	"sync"

	"github.com/nao1215/storycrawl/internal/database"
	"github.com/nao1215/storycrawl/internal/model"
)

// library returns two replayable stories with ids 7 and 8.
func library() model.Forest {
	cave := model.NewRoot("7", "The Cave")
	cave.Text = "You stand at a cave."
	inside := &model.Node{Text: "Inside."}
	inside.AddChoice("Leave", &model.Node{})
	cave.AddChoice("Enter", inside)
	cave.AddChoice("Run away", &model.Node{Text: "You escape."})

	tower := model.NewRoot("8", "The Tower")
	tower.Text = "A tower rises."
	tower.AddChoice("Climb", &model.Node{})

	return model.Forest{cave, tower}
}

// memRecorder keeps saved crawls in memory.
type memRecorder struct {
	mu     sync.Mutex
	crawls []*database.StoryCrawl
	err    error
}

func (r *memRecorder) SaveStoryCrawl(_ context.Context, crawl *database.StoryCrawl) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.crawls = append(r.crawls, crawl)
	crawl.ID = int64(len(r.crawls))
	return crawl.ID, nil
}
