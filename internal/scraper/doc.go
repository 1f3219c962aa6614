// Package scraper fetches and parses pages of volksfestundkirmes.de.
//
// The calendar page lists every event as a link to its detail page; the
// anchor carries the dates, the title in a <b> element and postcode plus
// place after it. Detail pages are label/value rows, served either as a
// table or as <div class="tr"> blocks depending on the page version.
//
// Requests go through a cookie-carrying session that sends browser headers
// and is paced by a rate limiter. Refresh replaces the session when the site
// starts answering with empty pages.
package scraper
