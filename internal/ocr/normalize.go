package ocr

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	strengthPattern = regexp.MustCompile(`([\d.,]+)\s*[mM]`)
	digitsPattern   = regexp.MustCompile(`\D+`)
	cooldownPattern = regexp.MustCompile(`(\d{1,2}):(\d{2}):(\d{2})`)
)

// ParseStrength extracts a strength value in millions from OCR text such
// as "12.5M" or "12,5 m". Recognition regularly drops the decimal
// separator, turning 12.5 into 125; a separator-free value of 100 or more
// is therefore divided by 10. Kept in one place so the correction can be
// revisited.
func ParseStrength(text string) (float64, bool) {
	match := strengthPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}

	raw := match[1]
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}

	if value >= 100 && !strings.ContainsAny(raw, ".,") {
		value /= 10
	}
	return value, true
}

// NormalizeServerDigits reduces OCR'd server text to its digits for use as
// a statistics tag. Text with no digits at all becomes "Unknown".
func NormalizeServerDigits(text string) string {
	digits := digitsPattern.ReplaceAllString(text, "")
	if digits == "" {
		return "Unknown"
	}
	return digits
}

// ServerMatches reports whether OCR'd server text refers to the wanted
// server number. Spaces are stripped and the letter O is read as zero;
// both "#49" and a bare "49" count.
func ServerMatches(text, want string) bool {
	if want == "" {
		return false
	}
	cleaned := strings.ReplaceAll(text, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "O", "0")
	cleaned = strings.ReplaceAll(cleaned, "o", "0")
	return strings.Contains(cleaned, "#"+want) || strings.Contains(cleaned, want)
}

// ParseCooldown extracts the first H:MM:SS duration from OCR text.
func ParseCooldown(text string) (time.Duration, bool) {
	match := cooldownPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	seconds, _ := strconv.Atoi(match[3])
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, true
}

// ContainsStaminaNotice reports whether OCR text contains the German
// stamina-reward notice. Recognition splatters spaces and line breaks
// through the phrase, so all whitespace is collapsed before matching.
func ContainsStaminaNotice(text string) bool {
	cleaned := strings.ToLower(strings.Join(strings.Fields(text), ""))
	return strings.Contains(cleaned, "ausdauer") && strings.Contains(cleaned, "erhalten")
}
