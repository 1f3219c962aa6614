package scraper

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vukdaten/volksfeste/internal/event"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/" + name)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return string(data)
}

func TestParseListing(t *testing.T) {
	records, err := ParseListing(strings.NewReader(loadFixture(t, "listing.html")), BaseURL)
	if err != nil {
		t.Fatalf("ParseListing failed: %v", err)
	}

	want := []*event.Record{
		{
			PLZ:           "92224",
			Ort:           "Amberg",
			Veranstaltung: "Altstadtfest",
			Von:           "01.08.2025",
			Bis:           "03.08.2025",
			DetailLink:    "http://www.volksfestundkirmes.de/veranstaltungdetails.php?id=1001&userid=&sessionid=&anbieterart=&jahr=2025",
			Details:       map[string]string{},
		},
		{
			PLZ:           "30159",
			Ort:           "Hannover-Mitte",
			Veranstaltung: "Schützenfest",
			Von:           "27.06.2025",
			Bis:           "06.07.2025",
			DetailLink:    "http://www.volksfestundkirmes.de/veranstaltungdetails.php?id=1002&anbieterart=1",
			Details:       map[string]string{},
		},
		{
			Veranstaltung: "Kirchweih",
			DetailLink:    "http://www.volksfestundkirmes.de/veranstaltungdetails.php?id=1003",
			Details:       map[string]string{},
		},
	}

	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("ParseListing mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		want    map[string]string
	}{
		{
			name:    "table layout",
			fixture: "detail_table.html",
			want: map[string]string{
				event.ColBundesland:     "Bayern",
				event.ColAnschrift:      "Marktplatz 1 92224 Amberg Route planen",
				event.ColNavigationLink: "http://www.volksfestundkirmes.de/navigation.php?ziel=Marktplatz+1+Amberg",
				event.ColParken:         "Parkhaus   Kurfürstenbad",
				event.ColBericht:        "Bitte über das Kontaktformular",
				event.ColBildmaterial:   "Fotos vom Vorjahr",
				event.ColBesucher:       "ca. 50.000",
				event.ColGeschaefte:     "120",
				event.ColWeitereInfo:    "https://www.altstadtfest-amberg.example/",
			},
		},
		{
			name:    "div layout",
			fixture: "detail_div.html",
			want: map[string]string{
				event.ColBundesland:     "Niedersachsen",
				event.ColAnschrift:      "Schützenplatz Karte",
				event.ColNavigationLink: "https://maps.example.com/?q=Sch%C3%BCtzenplatz+Hannover",
				event.ColParken:         "P+R Waterloo",
				event.ColBericht:        "Größtes Schützenfest der Welt",
				event.ColBildmaterial:   "Galerie online",
				event.ColBesucher:       "1 Mio.",
				event.ColGeschaefte:     "250",
				event.ColWeitereInfo:    "http://www.volksfestundkirmes.de/weiter.php?id=1002",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDetail(strings.NewReader(loadFixture(t, tt.fixture)), BaseURL)
			if err != nil {
				t.Fatalf("ParseDetail failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseDetail mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDetail_Rules(t *testing.T) {
	tests := []struct {
		name string
		html string
		want map[string]string
	}{
		{
			name: "last matching row wins",
			html: `<table>
				<tr><td>Bundesland</td><td>Bayern</td></tr>
				<tr><td>Bundesland (neu)</td><td>Hessen</td></tr>
			</table>`,
			want: map[string]string{event.ColBundesland: "Hessen"},
		},
		{
			name: "address without link leaves navigation empty",
			html: `<table><tr><td>Anschrift/Ziel</td><td>Festplatz</td></tr></table>`,
			want: map[string]string{event.ColAnschrift: "Festplatz"},
		},
		{
			name: "info row without link is ignored",
			html: `<table><tr><td>Weitere Informationen</td><td>keine</td></tr></table>`,
			want: map[string]string{},
		},
		{
			name: "div row with one cell is skipped",
			html: `<div class="tr"><div class="td">Bundesland</div></div>`,
			want: map[string]string{},
		},
		{
			name: "error page",
			html: `<html><body>Ihre Sitzung ist abgelaufen.</body></html>`,
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDetail(strings.NewReader(tt.html), BaseURL)
			if err != nil {
				t.Fatalf("ParseDetail failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseDetail mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFixDetailURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{
			"http://www.volksfestundkirmes.de/veranstaltungdetails.php?id=1&anbieterart=&jahr=2025",
			"http://www.volksfestundkirmes.de/veranstaltungdetails.php?id=1&anbieterart=1&jahr=2025",
		},
		{
			"http://www.volksfestundkirmes.de/veranstaltungdetails.php?id=1&anbieterart=",
			"http://www.volksfestundkirmes.de/veranstaltungdetails.php?id=1&anbieterart=1",
		},
		{
			"http://www.volksfestundkirmes.de/veranstaltungdetails.php?id=1&anbieterart=2",
			"http://www.volksfestundkirmes.de/veranstaltungdetails.php?id=1&anbieterart=2",
		},
	}

	for _, tt := range tests {
		if got := FixDetailURL(tt.in); got != tt.want {
			t.Errorf("FixDetailURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
