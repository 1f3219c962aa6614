// Package event provides the record types of the German event calendar.
//
// The event package defines the spreadsheet column names shared by every tool,
// the Record read from listing and detail pages, the Entry shown by the dashboard,
// and date helpers for the dd.mm.yyyy and spreadsheet serial formats found in
// the input files.
package event
