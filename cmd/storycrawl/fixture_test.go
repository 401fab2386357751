package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/storycrawl/internal/model"
	"github.com/spf13/cobra"
)

// library returns two stories with ids 7 and 8.
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

// writeForest saves forest under dir and returns its path.
func writeForest(t *testing.T, dir, name string, forest model.Forest) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := forest.Save(path); err != nil {
		t.Fatalf("failed to save %s: %v", name, err)
	}
	return path
}

// execute runs cmd with args and returns its standard output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

// writeFile writes content to path.
func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
