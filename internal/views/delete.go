package views

import (
	"context"
	stderrors "errors"

	"claimsportal/domain/claim"
	"claimsportal/ports"
)

// ErrDeleteFailed is the alert shown when the backend refuses a delete
var ErrDeleteFailed = stderrors.New("Failed to delete claim")

// ClaimDeleter deletes claims on the backend
type ClaimDeleter interface {
	DeleteClaim(ctx context.Context, id claim.ID) (*ports.DeleteResult, error)
}

// DeleteClaim removes id on the backend and only then from rows.
// On failure rows is returned as given together with ErrDeleteFailed.
func DeleteClaim(ctx context.Context, backend ClaimDeleter, rows []claim.Claim, id claim.ID) ([]claim.Claim, error) {
	if _, err := backend.DeleteClaim(ctx, id); err != nil {
		return rows, stderrors.Join(ErrDeleteFailed, err)
	}
	out := make([]claim.Claim, 0, len(rows))
	for _, c := range rows {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out, nil
}
