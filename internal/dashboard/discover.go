// Package dashboard renders every chart placeholder of a dashboard page:
// it discovers the placeholders, fetches each one's payload independently,
// composes the chart and mounts it onto a surface.
package dashboard

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"painel/internal/chart"
)

// Placeholder is a chart slot found in a dashboard page.
type Placeholder struct {
	Kind chart.Kind
	ID   string
	// Legend is true when the page carries a legend-<id> element for the chart.
	Legend bool
}

// Key identifies the placeholder's chart instance on a surface.
func (p Placeholder) Key() string {
	return string(p.Kind) + "-" + p.ID
}

// Discover parses a dashboard page and returns its chart placeholders in
// document order. A placeholder is a canvas with a data-id. Its kind comes
// from data-chart or, failing that, from the canvas class and containers.
// Canvases without a data-id or a recognizable kind are skipped.
func Discover(page io.Reader) ([]Placeholder, error) {
	doc, err := html.Parse(page)
	if err != nil {
		return nil, fmt.Errorf("parse dashboard page: %w", err)
	}

	var (
		found     []Placeholder
		elementID = make(map[string]bool)
	)

	var walk func(n *html.Node, containers []string)
	walk = func(n *html.Node, containers []string) {
		if n.Type == html.ElementNode {
			if id := attr(n, "id"); id != "" {
				elementID[id] = true
			}
			if n.Data == "canvas" {
				if p, ok := placeholderOf(n, containers); ok {
					found = append(found, p)
				}
			}
			containers = append(containers, attr(n, "class"))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, containers)
		}
	}
	walk(doc, nil)

	for i := range found {
		found[i].Legend = elementID[chart.LegendKey(found[i].ID)]
	}
	return found, nil
}

func placeholderOf(n *html.Node, containers []string) (Placeholder, bool) {
	id := strings.TrimSpace(attr(n, "data-id"))
	if id == "" {
		return Placeholder{}, false
	}
	if kind := chart.Kind(attr(n, "data-chart")); kind.Valid() {
		return Placeholder{Kind: kind, ID: id}, true
	}

	if hasClass(attr(n, "class"), "obra-chart") {
		return Placeholder{Kind: chart.KindObraDonut, ID: id}, true
	}
	// The nearest recognized container decides.
	for i := len(containers) - 1; i >= 0; i-- {
		switch {
		case hasClass(containers[i], "chart-container-diario"):
			return Placeholder{Kind: chart.KindCashFlow, ID: id}, true
		case hasClass(containers[i], "chart-container"):
			return Placeholder{Kind: chart.KindSecretariaDonut, ID: id}, true
		}
	}
	return Placeholder{}, false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}
