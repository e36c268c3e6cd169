package validators

import "strings"

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// ShopDomain normalizes a shop header value to its lowercase myshopify domain.
func ShopDomain(raw string) string {
	return strings.ToLower(SanitizeString(raw, 255))
}
