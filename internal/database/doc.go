// Package database stores the history of story crawls in SQLite.
//
// Every finished story is recorded with its tree, its statistics and a
// content digest, so later runs can be compared against earlier ones and
// unchanged stories can be recognized without walking two trees.
//
// The driver is modernc.org/sqlite: the database is a single CGO-free file,
// opened in WAL mode with one connection.
package database
