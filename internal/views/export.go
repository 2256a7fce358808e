package views

import (
	"io"
	"strings"

	"claimsportal/domain/claim"
	"claimsportal/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	claimsSheet  = "Claims"
	summarySheet = "Summary"
)

var exportHeaders = []string{
	"Claim ID", "Created", "Status", "Customer", "Policy Number", "Insurer",
	"Vehicle Type", "Registration", "Accident Date", "Accident Type", "Damage Parts",
	"Damage %", "Confidence", "Approval Probability",
}

// ExportClaims writes an xlsx workbook with one row per claim and a status summary sheet
func ExportClaims(w io.Writer, claims []claim.Claim) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", claimsSheet); err != nil {
		return errors.Wrap(err, "failed to name claims sheet")
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	if err := writeRow(f, claimsSheet, 1, toCells(exportHeaders)); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(claimsSheet, "A1", last, header); err != nil {
		return errors.Wrap(err, "failed to style header")
	}

	for i, c := range claims {
		if err := writeRow(f, claimsSheet, i+2, claimRow(c)); err != nil {
			return err
		}
	}
	if err := f.SetPanes(claimsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return errors.Wrap(err, "failed to freeze header")
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return errors.Wrap(err, "failed to add summary sheet")
	}
	if err := writeRow(f, summarySheet, 1, []interface{}{"Status", "Claims"}); err != nil {
		return err
	}
	for i, s := range StatusDistribution(claims) {
		if err := writeRow(f, summarySheet, i+2, []interface{}{s.Name, s.Value}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

func claimRow(c claim.Claim) []interface{} {
	parts := make([]string, len(c.AccidentSpecifics.DamageParts))
	for i, p := range c.AccidentSpecifics.DamageParts {
		parts[i] = string(p)
	}
	row := []interface{}{
		c.ID.String(),
		c.CreatedAt,
		string(c.Status),
		c.UserName,
		c.PolicyNumber,
		InsurerLabel(c.VehicleDetails.InsurerName),
		string(c.VehicleDetails.VehicleType),
		c.VehicleDetails.RegistrationNumber,
		c.IncidentDetails.AccidentDate,
		string(c.AccidentSpecifics.AccidentType),
		strings.Join(parts, ", "),
	}
	if a := c.AIAnalysis; a != nil {
		row = append(row, a.DamagePercent, a.Confidence, a.ApprovalProbability)
	} else {
		row = append(row, nil, nil, nil)
	}
	return row
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, "invalid row")
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return errors.Wrapf(err, "failed to write %s row %d", sheet, row)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
