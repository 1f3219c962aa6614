// Package storage provides the on-disk state shared by the batch tools.
//
// Cache keeps downloaded HTML pages as <md5(url)>.html files in a cache
// directory (default "cache") so repeated runs do not hit the website again.
// Progress is the {"last_index": N} checkpoint file that lets the redirect
// resolver resume an interrupted run.
package storage
