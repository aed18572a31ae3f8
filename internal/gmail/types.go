package gmail

// MessageID identifies a message within the mailbox.
type MessageID string

// Header is one name/value pair from a message part. Order is preserved and
// duplicate names are legal.
type Header struct {
	Name  string
	Value string
}

// Part is a MIME part as returned by the API in full format. A part either
// carries nested Parts or a base64url encoded Data leaf.
type Part struct {
	MimeType string
	Headers  []Header
	Data     string
	Parts    []Part
}

// Message is a fully fetched message. Payload holds the top-level part.
type Message struct {
	ID      MessageID
	Payload Part
}

type Query struct {
	Raw string // Gmail search grammar, e.g. `is:unread newer_than:1h`
}

// RecentUnread selects unread mail received within the last hour.
var RecentUnread = Query{Raw: "is:unread newer_than:1h"}
