// Package ingest turns a corpus directory into retrievable chunks.
//
// Two document families are supported, dispatched by file extension:
//
//   - PDF reports: extracted per page, normalised, and split into
//     overlapping word windows. Page boundaries are never crossed, so
//     each chunk's page number stays citation-accurate.
//   - CSV survey datasets: serialised one chunk per indicator row.
//
// Failure policy is local: a malformed page or row is skipped with a
// warning, an unreadable file is reported and skipped, and loading of
// the remaining corpus continues. Only a corpus that yields zero
// chunks overall is fatal, and that decision belongs to the caller.
package ingest
