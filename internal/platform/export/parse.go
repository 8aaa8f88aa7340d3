package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

type taggedValue struct {
	key    string
	text   string
	amount bool
}

func collectFields(page []byte) ([]taggedValue, error) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse print html: %w", err)
	}
	var out []taggedValue
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			var tv taggedValue
			for _, a := range n.Attr {
				switch a.Key {
				case "data-field":
					tv.key = a.Val
				case "data-kind":
					tv.amount = a.Val == "amount"
				}
			}
			if tv.key != "" && n.Data != "table" && n.Data != "div" {
				tv.text = strings.TrimSpace(textContent(n))
				out = append(out, tv)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out, nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// ParseFields returns the text of every data-field element in a print page,
// keyed by field name.
func ParseFields(page []byte) (map[string]string, error) {
	vals, err := collectFields(page)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(vals))
	for _, v := range vals {
		out[v.key] = v.text
	}
	return out, nil
}

// ParseSummary reads the displayed summary amounts back out of a print page.
func ParseSummary(page []byte) (map[string]decimal.Decimal, error) {
	vals, err := collectFields(page)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal)
	for _, v := range vals {
		if !v.amount {
			continue
		}
		d, err := ParseAmount(v.text)
		if err != nil {
			return nil, fmt.Errorf("summary field %s: %w", v.key, err)
		}
		out[v.key] = d
	}
	return out, nil
}
