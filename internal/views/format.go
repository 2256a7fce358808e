package views

import (
	"fmt"
	"math"
	"strings"

	"claimsportal/domain/claim"
)

// Percent formats a 0..1 fraction as a whole percentage
func Percent(x float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(x*100)))
}

// FormatDate renders createdAt as a date, or "N/A" when it does not parse
func FormatDate(c claim.Claim) string {
	t, ok := c.Created()
	if !ok {
		return "N/A"
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateTime renders createdAt with the time of day
func FormatDateTime(c claim.Claim) string {
	t, ok := c.Created()
	if !ok {
		return "N/A"
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// InsurerLabel turns an insurer key into display text
func InsurerLabel(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// ShortID truncates an id for compact lists
func ShortID(id claim.ID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

const noExplanation = "No detailed explanation available."

// ExplanationText picks the best explanation an analysis carries
func ExplanationText(a *claim.AIAnalysis) string {
	if a == nil {
		return noExplanation
	}
	if strings.TrimSpace(a.Explanation) != "" {
		return a.Explanation
	}
	if len(a.Explanations) > 0 {
		return strings.Join(a.Explanations, "\n")
	}
	return noExplanation
}

// AssetURL resolves a backend-relative path such as an annotated image against baseURL
func AssetURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
