package browser

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/nao1215/storycrawl/internal/model"
)

// siteSuffix follows the story title in every page title.
const siteSuffix = " :: ChooseYourStory.com"

// terminalHeading marks the rating page shown after an ending.
const terminalHeading = "Rate This Story"

// pageTemplate reproduces the story viewer layout closely enough that the
// default locators apply:
//
//	/html/body/div[2]/h1        heading
//	/html/body/div[3]/div[1]    page text
//	/html/body/div[3]/ul/li     choices
//	/html/body/form/div[3]/h1   rating header on terminal pages
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}` + siteSuffix + `</title></head>
<body>
{{- if .Terminal}}
<form method="post" action="">
<div></div>
<div></div>
<div><h1>` + terminalHeading + `</h1></div>
</form>
{{- else}}
<div class="header"></div>
<div class="title"><h1>{{.Heading}}</h1></div>
<div class="story">
<div class="text">
{{- range .Paragraphs}}
<p>{{range $i, $line := .}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
{{- end}}
</div>
{{- if .Choices}}
<ul>
{{- range .Choices}}
<li><a href="{{.Href}}">{{.Label}}</a></li>
{{- end}}
</ul>
{{- end}}
</div>
{{- end}}
</body>
</html>
`))

type renderedPage struct {
	Title      string
	Heading    string
	Terminal   bool
	Paragraphs [][]string
	Choices    []renderedChoice
}

type renderedChoice struct {
	Label string
	// Href is built from the session's own story URL, never from page input.
	Href template.URL
}

// renderNode renders n as a story page of the story rooted at root. href
// maps a choice index to the link target.
//
// A leaf without text is the rating page that follows an ending.
func renderNode(root, n *model.Node, href func(i int) string) ([]byte, error) {
	data := renderedPage{
		Title:      root.Title,
		Heading:    root.Title,
		Terminal:   n.IsLeaf() && n.Text == "",
		Paragraphs: paragraphs(n.Text),
	}
	for i, c := range n.Choices {
		data.Choices = append(data.Choices, renderedChoice{Label: c.Label, Href: template.URL(href(i))})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

// paragraphs splits text at blank lines, then each paragraph into lines.
func paragraphs(text string) [][]string {
	var out [][]string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, strings.Split(p, "\n"))
	}
	return out
}
