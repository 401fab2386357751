package browser

import "github.com/nao1215/storycrawl/internal/model"

const (
	textLocator     = "/html/body/div[3]/div[1]"
	headingLocator  = "/html/body/div[2]/h1"
	terminalLocator = "/html/body/form/div[3]/h1"
)

// caveStory is a small story:
//
//	You stand at a cave.
//	├── Enter -> Inside. -> Leave -> (rating page)
//	└── Run away -> You escape.
func caveStory() model.Forest {
	root := model.NewRoot("7", "The Cave")
	root.Text = "You stand at a cave."

	inside := &model.Node{Text: "Inside.\nIt is dark.\n\nWater drips."}
	inside.AddChoice("Leave", &model.Node{})
	root.AddChoice("Enter", inside)
	root.AddChoice("Run away", &model.Node{Text: "You escape."})

	return model.Forest{root}
}
