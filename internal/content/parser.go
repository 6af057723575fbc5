package content

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Page is what the prober extracts from one HTML document.
type Page struct {
	// Title is the text of the first <title> element.
	Title string

	// Hrefs holds the raw href attribute of every anchor that has one,
	// in document order.
	Hrefs []string

	// Forms lists every form element.
	Forms []Form

	// HasPasswordField is true when any input has type="password",
	// inside a form or not.
	HasPasswordField bool

	// HasFavicon is true when a <link> with rel "icon" or "shortcut icon"
	// is present.
	HasFavicon bool
}

// Form describes one form element.
type Form struct {
	Action string
	Method string
	Fields []Field
}

// Field is a named form control.
type Field struct {
	Name string
	Type string
}

// HasPasswordField reports whether the form contains a password input.
func (f Form) HasPasswordField() bool {
	for _, field := range f.Fields {
		if field.Type == "password" {
			return true
		}
	}
	return false
}

// Parse walks an HTML document and extracts a Page.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			page.visit(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return page, nil
}

func (p *Page) visit(n *html.Node) {
	switch n.Data {
	case "title":
		if p.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			p.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		if href, ok := attr(n, "href"); ok {
			p.Hrefs = append(p.Hrefs, href)
		}

	case "form":
		action, _ := attr(n, "action")
		method, _ := attr(n, "method")
		form := Form{Action: action, Method: strings.ToUpper(method)}
		if form.Method == "" {
			form.Method = "GET"
		}
		collectFields(n, &form)
		p.Forms = append(p.Forms, form)

	case "input":
		if typ, _ := attr(n, "type"); strings.EqualFold(typ, "password") {
			p.HasPasswordField = true
		}

	case "link":
		if rel, ok := attr(n, "rel"); ok && isFaviconRel(rel) {
			p.HasFavicon = true
		}
	}
}

// isFaviconRel reports whether a rel attribute names a favicon. rel is a
// space-separated token list, so "shortcut icon" and "icon" both match.
func isFaviconRel(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if token == "icon" {
			return true
		}
	}
	return false
}

// collectFields gathers the named controls below a form element.
func collectFields(n *html.Node, form *Form) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "input", "select", "textarea":
			name, _ := attr(n, "name")
			typ, _ := attr(n, "type")
			typ = strings.ToLower(typ)
			if typ == "" {
				typ = n.Data
				if n.Data == "input" {
					typ = "text"
				}
			}
			if name != "" || typ == "password" {
				form.Fields = append(form.Fields, Field{Name: name, Type: typ})
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectFields(c, form)
	}
}

// attr returns the value of the named attribute and whether it is present.
func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// CountExternalLinks counts the hrefs that do not contain host as a
// substring. An empty host makes every href internal.
func CountExternalLinks(hrefs []string, host string) int {
	n := 0
	for _, href := range hrefs {
		if !strings.Contains(href, host) {
			n++
		}
	}
	return n
}
