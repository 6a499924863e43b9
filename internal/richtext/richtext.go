// Package richtext works on the HTML stored in task descriptions and journal entries.
package richtext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrNoSubtask = errors.New("subtask not found")

const checkboxSelector = `input[type="checkbox"]`

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// StripHTML returns the visible text with whitespace collapsed. Unparseable input is
// returned unchanged.
func StripHTML(html string) string {
	if !strings.Contains(html, "<") {
		return strings.Join(strings.Fields(html), " ")
	}
	doc, err := parse(html)
	if err != nil {
		return html
	}
	var parts []string
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, blockText(s))
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// blockText keeps list items apart so "<li>a</li><li>b</li>" reads "a b".
func blockText(s *goquery.Selection) string {
	if s.Children().Length() == 0 {
		return s.Text()
	}
	var parts []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		parts = append(parts, blockText(c))
	})
	return strings.Join(parts, " ")
}

func isChecked(box *goquery.Selection) bool {
	if _, ok := box.Attr("checked"); ok {
		return true
	}
	v, _ := box.Closest("li").Attr("data-checked")
	return v == "true"
}

// SubtaskProgress counts checked checkboxes.
func SubtaskProgress(html string) (done, total int) {
	doc, err := parse(html)
	if err != nil {
		return 0, 0
	}
	doc.Find(checkboxSelector).Each(func(_ int, box *goquery.Selection) {
		total++
		if isChecked(box) {
			done++
		}
	})
	return done, total
}

// ToggleSubtask sets the checkbox at index (document order) and its list item state.
// Every other checkbox is left as it was.
func ToggleSubtask(html string, index int, checked bool) (string, error) {
	doc, err := parse(html)
	if err != nil {
		return "", err
	}
	boxes := doc.Find(checkboxSelector)
	if index < 0 || index >= boxes.Length() {
		return "", fmt.Errorf("%w: index %d of %d", ErrNoSubtask, index, boxes.Length())
	}

	box := boxes.Eq(index)
	li := box.Closest("li")
	if checked {
		box.SetAttr("checked", "checked")
	} else {
		box.RemoveAttr("checked")
	}
	if li.Length() > 0 {
		li.SetAttr("data-type", "taskItem")
		li.SetAttr("data-checked", fmt.Sprintf("%t", checked))
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return out, nil
}
