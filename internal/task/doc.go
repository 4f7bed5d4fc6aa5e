// Package task models a single to-do item and its text encodings.
//
// A Task carries user-supplied fields (title, description, due date, done
// flag) and bookkeeping dates (created, updated). Priority and overdue status
// are derived from the due date and the evaluation day and are never set
// directly:
//
//	days until due   priority   overdue
//	< 0              High       yes
//	0 or 1           High       no
//	2..7             Medium     no
//	> 7              Low        no
//
// # Encodings
//
// Three line-oriented encodings are supported:
//
//   - Record: comma-delimited, 8 fields. This is the on-disk format of the
//     task file: title, description, done, due, created, updated, priority,
//     overdue. Priority and overdue are written for readers of the file but
//     re-derived when parsed.
//   - Compact: pipe-delimited, 6 fields (title, description, due, done,
//     created, updated). The 5-field legacy form without the updated date is
//     still accepted on read.
//   - Tagged: a single-line object of quoted key/value pairs.
//
// None of the encodings quote or escape the field delimiter. A comma in a
// title or description corrupts a record, and a comma in a tagged value does
// not survive a round trip.
//
// All dates are calendar days in YYYY-MM-DD form, held as midnight UTC.
package task
