// Package dashboard serves the geocoded event sheet as a local web page.
//
// The page combines a filter form, a Leaflet map with one marker per event
// coloured by month, and a table grouped into month tabs whose rows can be
// ticked for export as CSV, Excel or iCalendar.
//
// Example usage:
//
//	entries, err := dashboard.Load("volksfeste_mit_koordinaten.xlsx")
//	if err != nil {
//	    return err
//	}
//	srv, err := dashboard.New(entries, dashboard.Options{Addr: "127.0.0.1:8501"})
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package dashboard
