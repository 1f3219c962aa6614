package dashboard

import "github.com/vukdaten/volksfeste/internal/event"

// DefaultColor marks events whose month is unknown
const DefaultColor = "blue"

// MonthColors maps each month to its marker colour
var MonthColors = map[string]string{
	"Januar":    "blue",
	"Februar":   "cadetblue",
	"März":      "darkgreen",
	"April":     "green",
	"Mai":       "lightgreen",
	"Juni":      "orange",
	"Juli":      "red",
	"August":    "darkred",
	"September": "purple",
	"Oktober":   "#5b2c6f", // darkpurple
	"November":  "gray",
	"Dezember":  "black",
}

// MonthColor returns the marker colour of a month
func MonthColor(month string) string {
	if c, ok := MonthColors[event.NormalizeMonth(month)]; ok {
		return c
	}
	return DefaultColor
}

type legendItem struct {
	Month string
	Color string
}

func legend() []legendItem {
	items := make([]legendItem, 0, len(event.Months))
	for _, m := range event.Months {
		items = append(items, legendItem{Month: m, Color: MonthColors[m]})
	}
	return items
}
