// Package fetch polls Gmail for unread messages received within the last hour
// and turns each into an extract.Summary.
//
// Fetching is strictly sequential. A failed list call fails the whole batch
// and yields no summaries; a failed message fetch only drops that message.
// The Service keeps a lifetime count of summaries it has produced.
package fetch
