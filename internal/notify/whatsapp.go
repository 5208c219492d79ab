package notify

import (
	"net/url"
	"strings"
	"unicode"
)

const whatsAppBase = "https://wa.me/"

// WhatsAppLink builds the wa.me deep link that opens a chat with phone and
// message pre-filled. Everything but digits is stripped from phone.
func WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, phone)
	return whatsAppBase + digits + "?text=" + encodeComponent(message)
}

// encodeComponent percent-encodes s for a query value, spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
