package models

import (
	"net/url"
	"time"
)

// Quote is a submitted quote request as kept in the archive.
type Quote struct {
	ID        string     // ID is the receipt ID handed to the visitor.
	Fields    url.Values // Fields is the composed field set sent to the transport.
	Attempts  int        // Attempts counts failed deliveries.
	Delivered bool       // Delivered is set once a transport accepted the quote.
	CreatedAt time.Time
}
