package dashboard

import (
	"embed"
	"html/template"
	"net/url"
	"time"

	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/filter"
)

//go:embed templates/index.html
var templates embed.FS

// Map defaults for Germany
const (
	mapCenterLat = 51.1657
	mapCenterLon = 10.4515
	mapZoom      = 6
)

type marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Color string  `json:"color"`
	Title string  `json:"title"`
	Place string  `json:"place"`
	State string  `json:"state"`
	Von   string  `json:"von"`
	Bis   string  `json:"bis"`
}

type exportLink struct {
	Label string
	Href  template.URL
}

// group is one table panel with download links for its month
type group struct {
	filter.MonthGroup
	Exports []exportLink
}

var exportLabels = []struct {
	format exportFormat
	label  string
}{
	{formatCSV, "CSV"},
	{formatXLSX, "Excel"},
	{formatICS, "Kalender"},
}

// exportLinks returns one download link per format for the view of f
func exportLinks(f *filter.Filter) []exportLink {
	query := f.Values().Encode()
	links := make([]exportLink, 0, len(exportLabels))
	for _, l := range exportLabels {
		href := "/export." + string(l.format)
		if query != "" {
			href += "?" + query
		}
		links = append(links, exportLink{Label: l.label, Href: template.URL(href)})
	}
	return links
}

type pageData struct {
	Title      string
	All        string
	Filter     *filter.Filter
	FilterText string
	Query      url.Values // hidden fields of the export form
	States     []string
	Months     []string
	Legend     []legendItem
	From       string // yyyy-mm-dd for the date input
	FromText   string
	Min        string
	Max        string
	MapCount   int
	Markers    []marker
	Center     [2]float64
	Zoom       int
	Groups     []group
	Tabs       bool
	ListCount  int
}

func parsePage() (*template.Template, error) {
	return template.New("index.html").Funcs(template.FuncMap{
		"date":  event.FormatDate,
		"color": MonthColor,
	}).ParseFS(templates, "templates/index.html")
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func (s *Server) pageData(v *view) pageData {
	markers := make([]marker, 0, len(v.mapped))
	for _, e := range v.mapped {
		markers = append(markers, marker{
			Lat:   e.Latitude,
			Lon:   e.Longitude,
			Color: MonthColor(e.Month),
			Title: e.Title,
			Place: e.Place,
			State: e.State,
			Von:   event.FormatDate(e.Start),
			Bis:   event.FormatDate(e.End),
		})
	}

	data := pageData{
		Title:      s.opts.Title,
		All:        filter.All,
		Filter:     v.filter,
		FilterText: v.filter.String(),
		Query:      v.filter.Values(),
		States:     s.states,
		Months:     event.Months,
		Legend:     legend(),
		From:       isoDate(v.filter.From),
		FromText:   event.FormatDate(v.filter.From),
		Min:        isoDate(s.first),
		Max:        isoDate(s.last),
		MapCount:   len(v.mapped),
		Markers:    markers,
		Center:     [2]float64{mapCenterLat, mapCenterLon},
		Zoom:       mapZoom,
		ListCount:  len(v.listed),
	}

	if v.filter.Month == "" || v.filter.Month == filter.All {
		data.Tabs = true
		for _, g := range filter.GroupByMonth(v.listed) {
			f := v.filter.Clone()
			f.Month = g.Month
			data.Groups = append(data.Groups, group{MonthGroup: g, Exports: exportLinks(f)})
		}
	} else {
		listed := append([]*event.Entry(nil), v.listed...)
		event.SortByStart(listed)
		data.Groups = []group{{
			MonthGroup: filter.MonthGroup{Month: v.filter.Month, Entries: listed},
			Exports:    exportLinks(v.filter),
		}}
	}

	return data
}
