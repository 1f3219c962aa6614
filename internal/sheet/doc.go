// Package sheet holds spreadsheets in memory and reads and writes them as
// xlsx workbooks or CSV files.
//
// Cells are kept as strings. Columns are addressed by header name, so tools
// can add the columns they fill without caring where an input file put the
// others. Hyperlinked cells written with a label are read back as their URL.
package sheet
