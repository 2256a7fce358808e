package views

import (
	"strings"

	"claimsportal/domain/claim"
)

const (
	unknownUser     = "Unknown User"
	defaultCustomer = "Valued Customer"
)

// ClaimRef is a claim as listed under a customer
type ClaimRef struct {
	ID      claim.ID
	Status  claim.Status
	Date    string
	Vehicle claim.VehicleType
}

// Customer groups one policyholder's claims for the company view
type Customer struct {
	ID           claim.ID
	Name         string
	Email        string
	Policies     []string
	Vehicles     []string
	TotalClaims  int
	ActiveClaims int
	Claims       []ClaimRef
}

// Reportable reports whether a claim is complete enough for the company views.
// Records missing an id, owner or timestamp, or owned by "Unknown User", are hidden.
func Reportable(c claim.Claim) bool {
	return !c.ID.IsEmpty() && !c.UserID.IsEmpty() && c.CreatedAt != "" && c.UserName != unknownUser
}

// Reportables filters claims down to the Reportable ones
func Reportables(claims []claim.Claim) []claim.Claim {
	out := make([]claim.Claim, 0, len(claims))
	for _, c := range claims {
		if Reportable(c) {
			out = append(out, c)
		}
	}
	return out
}

// BuildRoster groups reportable claims by owner, in order of first appearance
func BuildRoster(claims []claim.Claim) []Customer {
	index := map[claim.ID]int{}
	var out []Customer
	for _, c := range claims {
		if !Reportable(c) {
			continue
		}
		i, ok := index[c.UserID]
		if !ok {
			name := c.UserName
			if name == "" {
				name = defaultCustomer
			}
			i = len(out)
			index[c.UserID] = i
			out = append(out, Customer{
				ID:    c.UserID,
				Name:  name,
				Email: placeholderEmail(c.UserID),
			})
		}

		cust := &out[i]
		cust.TotalClaims++
		cust.Policies = addUnique(cust.Policies, c.PolicyNumber)
		cust.Vehicles = addUnique(cust.Vehicles, c.VehicleDetails.RegistrationNumber)
		cust.Claims = append(cust.Claims, ClaimRef{
			ID:      c.ID,
			Status:  c.Status,
			Date:    c.CreatedAt,
			Vehicle: c.VehicleDetails.VehicleType,
		})
		if c.Status.IsActive() {
			cust.ActiveClaims++
		}
	}
	return out
}

// FilterRoster keeps customers whose name or id contains q, ignoring case
func FilterRoster(customers []Customer, q string) []Customer {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return customers
	}
	var out []Customer
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.ID.String()), q) {
			out = append(out, c)
		}
	}
	return out
}

func placeholderEmail(id claim.ID) string {
	s := id.String()
	if len(s) > 6 {
		s = s[:6]
	}
	return "user_" + s + "@example.com"
}

func addUnique(set []string, v string) []string {
	if v == "" {
		return set
	}
	for _, existing := range set {
		if existing == v {
			return set
		}
	}
	return append(set, v)
}
