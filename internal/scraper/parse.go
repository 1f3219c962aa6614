package scraper

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/vukdaten/volksfeste/internal/event"
)

var (
	listingDatePattern = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
	placePattern       = regexp.MustCompile(`(\d{4,5})\s*([A-Za-zÄÖÜäöüß\-\s]+)`)
)

// ParseListing extracts one record per detail link of the event calendar page
func ParseListing(r io.Reader, baseURL string) ([]*event.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	records := make([]*event.Record, 0)

	doc.Find("a[href*='veranstaltungdetails.php']").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link := resolve(base, href)

		var von, bis string
		if dates := listingDatePattern.FindAllString(textOf(a, " "), -1); len(dates) >= 2 {
			von, bis = dates[0], dates[1]
		}

		var title, plz, ort string
		if b := a.Find("b").First(); b.Length() > 0 {
			title = textOf(b, "")
			if m := placePattern.FindStringSubmatch(nextText(b)); m != nil {
				plz, ort = m[1], m[2]
			}
		}

		records = append(records, event.NewRecord(plz, ort, title, von, bis, link))
	})

	return records, nil
}

// labelRule maps a detail row to fields when its label contains one of labels
type labelRule struct {
	labels []string
	apply  func(details map[string]string, value, link string)
}

func setValue(column string) func(map[string]string, string, string) {
	return func(d map[string]string, value, _ string) {
		d[column] = value
	}
}

// Rules are checked in order; the first one matching a row's label wins.
var detailRules = []labelRule{
	{[]string{"Bundesland"}, setValue(event.ColBundesland)},
	{[]string{"Anschrift/Ziel"}, func(d map[string]string, value, link string) {
		d[event.ColAnschrift] = value
		if link != "" {
			d[event.ColNavigationLink] = link
		}
	}},
	{[]string{"Parkmöglichkeiten"}, setValue(event.ColParken)},
	{[]string{"Nachricht", "Bericht"}, setValue(event.ColBericht)},
	{[]string{"Bildmaterial"}, setValue(event.ColBildmaterial)},
	{[]string{"Erwartete Besucher"}, setValue(event.ColBesucher)},
	{[]string{"Erwartete Geschäfte"}, setValue(event.ColGeschaefte)},
	{[]string{"Weitere Informationen", "Link(s) zu weiteren Informationen"}, func(d map[string]string, _, link string) {
		if link != "" {
			d[event.ColWeitereInfo] = link
		}
	}},
}

// ParseDetail reads the label/value rows of a detail page. Both the table
// layout (<tr><td>) and the div layout (<div class="tr"><div class="td">) are
// understood. When several rows map to the same field the last one wins.
func ParseDetail(r io.Reader, baseURL string) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	details := make(map[string]string)

	doc.Find("tr, div.tr").Each(func(_ int, row *goquery.Selection) {
		var cells *goquery.Selection
		if goquery.NodeName(row) == "tr" {
			cells = row.Find("td")
			if cells.Length() < 2 {
				return
			}
		} else {
			cells = row.Find("div.td")
			if cells.Length() != 2 {
				return
			}
		}

		label := textOf(cells.Eq(0), " ")
		valueCell := cells.Eq(1)
		value := textOf(valueCell, " ")

		var link string
		if href, ok := valueCell.Find("a[href]").First().Attr("href"); ok {
			link = resolve(base, href)
		}

		for _, rule := range detailRules {
			if containsAny(label, rule.labels) {
				rule.apply(details, value, link)
				break
			}
		}
	})

	return details, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	u, err := base.Parse(href)
	if err != nil {
		return href
	}
	return u.String()
}

// textOf joins the trimmed, non-empty text nodes of a selection with sep
func textOf(sel *goquery.Selection, sep string) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, sep)
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// nextText returns the first text node following the selection on the same level
func nextText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	for n := sel.Nodes[0].NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			return n.Data
		}
	}
	return ""
}
