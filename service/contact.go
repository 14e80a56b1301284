package service

import (
	"net/url"
	"strings"
	"unicode"

	models "storefront/model"
)

const whatsAppBase = "https://wa.me/"

// WhatsAppURL builds a wa.me chat link. Non-digits are stripped from phone;
// an empty message leaves out the text parameter.
func WhatsAppURL(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	link := whatsAppBase + digits
	if strings.TrimSpace(message) == "" {
		return link
	}
	// QueryEscape turns spaces into '+'; wa.me wants %20. A literal '+' is
	// already %2B at this point.
	return link + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

// ProductInquiry is the prefilled chat message for a product page.
func ProductInquiry(greeting string, p models.Product) string {
	msg := strings.TrimSpace(greeting)
	if p.Name == "" {
		return msg
	}
	if msg == "" {
		return "I'm interested in " + p.Name
	}
	return msg + " I'm interested in " + p.Name
}
