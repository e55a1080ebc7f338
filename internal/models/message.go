package models

// InboundMessage is one parsed message pulled from an inbox scan.
type InboundMessage struct {
	ID         string
	Sender     string
	Subject    string
	BodyText   string
	AccountKey string
}

// InlineImage is one image embedded in an outbound reply and referenced from
// the HTML body by its Content-ID.
type InlineImage struct {
	Filename string
	Path     string
	CID      string
}

// OutboundReply is a fully composed reply ready for the outbound relay.
type OutboundReply struct {
	To       string
	Subject  string
	BodyHTML string
	Images   []InlineImage
}
