package views

import (
	"strings"

	"claimsportal/domain/claim"
)

// FilterClaims keeps claims whose id, policy number, registration or status contains q,
// ignoring case. An empty query keeps everything.
func FilterClaims(claims []claim.Claim, q string) []claim.Claim {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return claims
	}
	out := make([]claim.Claim, 0, len(claims))
	for _, c := range claims {
		fields := []string{
			c.ID.String(),
			c.PolicyNumber,
			c.VehicleDetails.RegistrationNumber,
			string(c.Status),
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
