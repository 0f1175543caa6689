package page

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// CleanedHTML represents cleaned HTML content with metadata.
type CleanedHTML struct {
	HTML        string
	Title       string
	Description string
	Truncated   bool
}

// CleanHTML extracts and cleans HTML content, preserving semantic
// structure while removing scripts, styles, and other noise. Used by the
// research worker to turn a fetched page's raw HTML into bounded,
// storable content.
func CleanHTML(rawHTML string, maxLength int) (*CleanedHTML, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := &CleanedHTML{}
	result.Title = extractTitle(doc)
	result.Description = extractMetaDescription(doc)

	var builder strings.Builder
	var currentLength int
	result.Truncated = cleanNode(doc, &builder, &currentLength, maxLength, 0)

	result.HTML = builder.String()
	return result, nil
}

// cleanNode recursively processes HTML nodes, removing unwanted elements
// and preserving semantic structure with key attributes.
func cleanNode(n *html.Node, builder *strings.Builder, currentLength *int, maxLength int, depth int) bool {
	if *currentLength >= maxLength {
		return true
	}

	if n.Type == html.CommentNode {
		return false
	}

	if n.Type == html.ElementNode && isSkippedElement(strings.ToLower(n.Data)) {
		return false
	}

	if n.Type == html.TextNode {
		return processTextNode(n, builder, currentLength, maxLength)
	}

	if n.Type == html.ElementNode {
		return processElementNode(n, builder, currentLength, maxLength, depth)
	}

	return processChildren(n, builder, currentLength, maxLength, depth)
}

func processTextNode(n *html.Node, builder *strings.Builder, currentLength *int, maxLength int) bool {
	text := strings.TrimSpace(n.Data)
	if text == "" {
		return false
	}

	if *currentLength+len(text) > maxLength {
		remaining := maxLength - *currentLength
		builder.WriteString(text[:remaining] + "...")
		*currentLength = maxLength
		return true
	}

	builder.WriteString(text)
	*currentLength += len(text)
	return false
}

func processElementNode(n *html.Node, builder *strings.Builder, currentLength *int, maxLength int, depth int) bool {
	tagName := strings.ToLower(n.Data)

	if depth > 0 && isBlockElement(tagName) {
		builder.WriteString("\n")
		builder.WriteString(strings.Repeat("  ", depth))
	}

	builder.WriteString("<")
	builder.WriteString(tagName)

	for _, attr := range n.Attr {
		if shouldPreserveAttribute(tagName, attr.Key) {
			fmt.Fprintf(builder, ` %s="%s"`, attr.Key, html.EscapeString(attr.Val))
		}
	}

	builder.WriteString(">")
	*currentLength += len(tagName) + 2

	truncated := processChildren(n, builder, currentLength, maxLength, depth+1)

	if !isVoidElement(tagName) {
		if isBlockElement(tagName) {
			builder.WriteString("\n")
			builder.WriteString(strings.Repeat("  ", depth))
		}
		builder.WriteString("</")
		builder.WriteString(tagName)
		builder.WriteString(">")
		*currentLength += len(tagName) + 3
	}

	return truncated
}

func processChildren(n *html.Node, builder *strings.Builder, currentLength *int, maxLength int, depth int) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if cleanNode(c, builder, currentLength, maxLength, depth) {
			return true
		}
	}
	return false
}

func isSkippedElement(tagName string) bool {
	skipped := map[string]bool{
		"script": true, "style": true, "noscript": true,
		"iframe": true, "embed": true, "object": true, "svg": true,
	}
	return skipped[tagName]
}

func isBlockElement(tagName string) bool {
	blocks := map[string]bool{
		"div": true, "p": true, "section": true, "article": true,
		"header": true, "footer": true, "nav": true, "main": true,
		"aside": true, "h1": true, "h2": true, "h3": true, "h4": true,
		"h5": true, "h6": true, "ul": true, "ol": true, "li": true,
		"table": true, "tr": true, "td": true, "th": true, "form": true,
		"fieldset": true, "blockquote": true, "pre": true,
	}
	return blocks[tagName]
}

func isVoidElement(tagName string) bool {
	voids := map[string]bool{
		"area": true, "base": true, "br": true, "col": true,
		"embed": true, "hr": true, "img": true, "input": true,
		"link": true, "meta": true, "param": true, "source": true,
		"track": true, "wbr": true,
	}
	return voids[tagName]
}

func shouldPreserveAttribute(tagName, attrName string) bool {
	attrName = strings.ToLower(attrName)

	if isGlobalAttribute(attrName) {
		return true
	}
	if strings.HasPrefix(attrName, "data-") {
		return true
	}
	return isTagSpecificAttribute(tagName, attrName)
}

func isGlobalAttribute(attrName string) bool {
	globalAttrs := map[string]bool{
		"id": true, "class": true, "role": true,
		"aria-label": true, "aria-describedby": true,
	}
	return globalAttrs[attrName]
}

func isTagSpecificAttribute(tagName, attrName string) bool {
	switch tagName {
	case "a":
		return attrName == "href" || attrName == "target"
	case "img":
		return attrName == "src" || attrName == "alt"
	case "input", "textarea", "select":
		return attrName == "name" || attrName == "type" || attrName == "placeholder" || attrName == "value"
	case "button":
		return attrName == "type" || attrName == "name"
	case "form":
		return attrName == "action" || attrName == "method"
	case "table":
		return attrName == "summary"
	}
	return false
}

func extractTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
			if title != "" {
				return
			}
		}
	}
	traverse(doc)
	return title
}

// plainTextFromHTML walks an already-cleaned HTML fragment (as produced
// by CleanHTML) and concatenates its text nodes, space-separated. Since
// CleanHTML has already dropped script/style/noise nodes, this yields
// text free of their content without re-implementing that filtering.
func plainTextFromHTML(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				b.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}

func extractMetaDescription(doc *html.Node) string {
	var description string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var isDescription bool
			var content string
			for _, attr := range n.Attr {
				if attr.Key == "name" && attr.Val == "description" {
					isDescription = true
				}
				if attr.Key == "content" {
					content = attr.Val
				}
			}
			if isDescription && content != "" {
				description = strings.TrimSpace(content)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
			if description != "" {
				return
			}
		}
	}
	traverse(doc)
	return description
}
