package article

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNoContent is returned when a page has no readable text.
var ErrNoContent = errors.New("no article text found")

// minParagraphChars drops captions, bylines and button labels from scoring.
const minParagraphChars = 40

type Article struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
	TopImage    string `json:"top_image,omitempty"`
	Text        string `json:"text"`
}

var (
	junkSelector = "script, style, noscript, iframe, svg, form, nav, header, footer, aside, button, figure figcaption"
	spaceRe      = regexp.MustCompile(`\s+`)
)

// Extract parses HTML and pulls out the title, metadata and main body text.
// Paragraphs of the body text are separated by blank lines.
func Extract(pageURL, htmlContent string) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	a := &Article{
		URL:         pageURL,
		Title:       extractTitle(doc),
		Description: metaContent(doc, "og:description", "description"),
		SiteName:    metaContent(doc, "og:site_name"),
		TopImage:    resolveURL(pageURL, metaContent(doc, "og:image", "twitter:image")),
	}

	doc.Find(junkSelector).Remove()

	paragraphs := bestParagraphs(doc)
	if len(paragraphs) == 0 {
		paragraphs = allParagraphs(doc)
	}
	if len(paragraphs) > 0 {
		a.Text = strings.Join(paragraphs, "\n\n")
	} else if body, err := doc.Find("body").Html(); err == nil {
		a.Text = ExtractCleanText(body)
	}

	if a.Text == "" {
		return a, ErrNoContent
	}
	return a, nil
}

func extractTitle(doc *goquery.Document) string {
	if t := metaContent(doc, "og:title", "twitter:title"); t != "" {
		return t
	}
	if h1 := cleanText(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return cleanText(doc.Find("title").First().Text())
}

func metaContent(doc *goquery.Document, names ...string) string {
	for _, name := range names {
		sel := doc.Find(`meta[property="` + name + `"], meta[name="` + name + `"]`).First()
		if v, ok := sel.Attr("content"); ok {
			if v = cleanText(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// bestParagraphs scores every element by the length of the paragraphs it
// directly contains (half credit to the grandparent) and returns the
// paragraphs of the highest scoring element.
func bestParagraphs(doc *goquery.Document) []string {
	scores := map[*html.Node]int{}
	var best *html.Node
	bestScore := 0

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		n := len(cleanText(p.Text()))
		if n < minParagraphChars {
			return
		}
		parent := p.Parent()
		if parent.Length() == 0 {
			return
		}
		pn := parent.Get(0)
		scores[pn] += n
		if scores[pn] > bestScore {
			best, bestScore = pn, scores[pn]
		}
		if gp := parent.Parent(); gp.Length() > 0 {
			gn := gp.Get(0)
			scores[gn] += n / 2
			if scores[gn] > bestScore {
				best, bestScore = gn, scores[gn]
			}
		}
	})
	if best == nil {
		return nil
	}

	var out []string
	goquery.NewDocumentFromNode(best).Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := cleanText(p.Text()); len(t) >= minParagraphChars {
			out = append(out, t)
		}
	})
	return out
}

func allParagraphs(doc *goquery.Document) []string {
	var out []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := cleanText(p.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// ExtractCleanText walks an HTML fragment and returns its visible text.
func ExtractCleanText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t + " ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)

	return cleanText(sb.String())
}

func cleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
