package usecase

import (
	"strings"

	"wtl-assistant/internal/domain"
)

// RefusalSentence is the exact reply the assistant is instructed to give for
// anything outside the cab-booking domain.
const RefusalSentence = "Sorry, I can only answer questions about cab booking and our services at worldtriplink.com."

// DefaultPolicy returns the domain policy injected as the sole system message
// on every relay call.
func DefaultPolicy() string {
	return strings.Join([]string{
		"World Trip Link (https://worldtriplink.com/) is a cab booking platform for Maharashtra and India.",
		"- Services: Outstation cabs, local rentals, airport transfers, corporate travel, holiday packages.",
		"- Booking: Online booking, instant confirmation, 24/7 support.",
		"- Contact: +91 9730545491, WhatsApp available.",
		"- Payment: Multiple options, transparent pricing, no hidden charges.",
		"- Popular routes: Mumbai, Pune, Nashik, Shirdi, Lonavala, Kolhapur, Aurangabad, and more.",
		"- App: Android/iOS available.",
		"- Only answer questions related to cab booking, our services, pricing, routes, or company info.",
		"If a user asks anything unrelated to worldtriplink.com or cab booking, politely refuse and say: '" + RefusalSentence + "'",
	}, "\n")
}

// buildOutboundMessages drops caller supplied system messages and places the
// policy first. window > 0 keeps only the most recent window messages.
func buildOutboundMessages(policy string, conversation []domain.ChatMessage, window int) []domain.ChatMessage {
	filtered := make([]domain.ChatMessage, 0, len(conversation))
	for _, m := range conversation {
		if m.Role == domain.RoleSystem {
			continue
		}
		filtered = append(filtered, domain.ChatMessage{Role: m.Role, Content: m.Content})
	}
	if window > 0 && len(filtered) > window {
		filtered = filtered[len(filtered)-window:]
	}

	out := make([]domain.ChatMessage, 0, len(filtered)+1)
	out = append(out, domain.ChatMessage{Role: domain.RoleSystem, Content: policy})
	return append(out, filtered...)
}
