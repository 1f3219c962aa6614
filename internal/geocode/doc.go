// Package geocode talks to the geocoding services used to complete event rows.
//
// Nominatim (OpenStreetMap) finds postcodes for place names, Google
// Geocoding finds coordinates for "<PLZ> <Ort>" addresses. Both clients pace
// their requests, retry transient failures with a constant backoff and keep
// definitive answers in an expiring LRU cache. Fallback is the static
// postcode table used when Nominatim has no answer.
package geocode
