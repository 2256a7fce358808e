package main

import (
	stderrors "errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"claimsportal/adapters/api"
	"claimsportal/domain/claim"
	"claimsportal/internal/errors"
	"claimsportal/internal/views"
	"claimsportal/internal/wizard"
	"claimsportal/ports"

	"github.com/spf13/cobra"
)

type promptField struct {
	name  string
	label string
	multi bool
}

var stageFields = map[wizard.Stage][]promptField{
	wizard.StageIncident: {
		{name: "accidentDate", label: "Accident date (YYYY-MM-DD)"},
		{name: "accidentTime", label: "Accident time (HH:MM)"},
		{name: "locationType", label: "Location type (" + joinEnum(claim.LocationTypes) + ")"},
		{name: "description", label: "Description (optional)"},
	},
	wizard.StageVehicle: {
		{name: "policyNumber", label: "Policy number"},
		{name: "policyExpiryDate", label: "Policy expiry date (YYYY-MM-DD)"},
		{name: "carAge", label: "Car age in years (0-20)"},
		{name: "registrationNumber", label: "Registration number"},
		{name: "insurerName", label: "Insurer"},
		{name: "vehicleType", label: "Vehicle type (" + joinEnum(claim.VehicleTypes) + ")"},
	},
	wizard.StageSpecifics: {
		{name: "accidentType", label: "Accident type (" + joinEnum(claim.AccidentTypes) + ")"},
		{name: "damageParts", label: "Damaged parts, comma separated (" + joinEnum(claim.DamageParts) + ")", multi: true},
		{name: "previousClaims", label: "Previous claims"},
		{name: "driverAge", label: "Driver age"},
		{name: "policeReport", label: "Police report filed? (yes/no)"},
		{name: "driverAtFault", label: "Was the driver at fault? (yes/no)"},
		{name: "driverLicenseValid", label: "Driver licence valid? (yes/no)"},
		{name: "alcoholIntoxicated", label: "Alcohol involved? (yes/no)"},
	},
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func (c *cli) newWizardCmd() *cobra.Command {
	var images []string

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "File a new claim step by step",
		Long: fmt.Sprintf(`Walk through the five claim steps interactively, then submit.

Photos are given up front with --image (at least %d, at most %d).
Invalid answers are reported and the step is asked again.

Example: claimsctl wizard --image front.jpg --image rear.jpg`, wizard.MinImages, wizard.MaxImages),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			if _, err := a.session.RequireIdentity(); err != nil {
				return err
			}
			uploads, err := loadImages(images)
			if err != nil {
				return err
			}
			if msg := wizard.PendingImagesMessage(len(uploads)); msg != "" {
				return errors.InvalidInput(msg)
			}

			w := wizard.New(a.clock, wizard.WithLogger(a.log))
			w.Start(cmd.Context(), a.backend)

			for w.Stage() < wizard.StageEvidence {
				if err := runFormStage(a, w); err != nil {
					return err
				}
			}

			fmt.Fprintf(a.out, "\n== Step %d/%d: %s ==\n", wizard.StageEvidence, len(wizard.Stages), wizard.StageEvidence.Title())
			if err := w.AddImages(uploads); err != nil {
				return err
			}
			if err := w.Next(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d images attached\n", len(uploads))

			printSummary(a, w.Summary())
			ok, err := a.confirm("Submit claim?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "Claim not submitted.")
				return nil
			}

			outcome, err := w.Submit(cmd.Context(), a.backend)
			if err != nil {
				var he *api.HTTPError
				if stderrors.As(err, &he) {
					return fmt.Errorf("%s: %s", wizard.ErrSubmitFailed, he.Message)
				}
				return err
			}
			printOutcome(a, outcome)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&images, "image", nil, "Photo of the damage (repeatable)")
	return cmd
}

// runFormStage asks every field of the current stage and tries to advance
func runFormStage(a *app, w *wizard.Wizard) error {
	st := w.Stage()
	fmt.Fprintf(a.out, "\n== Step %d/%d: %s ==\n", st, len(wizard.Stages), st.Title())
	if st == wizard.StageVehicle {
		if insurers := w.Insurers(); len(insurers) > 0 {
			fmt.Fprintf(a.out, "Insurers: %s\n", strings.Join(insurers, ", "))
		}
	}

	values := url.Values{}
	for _, f := range stageFields[st] {
		v, err := a.prompt(f.label)
		if err != nil {
			return err
		}
		if !f.multi {
			values.Set(f.name, v)
			continue
		}
		for _, part := range strings.Split(v, ",") {
			values.Add(f.name, strings.TrimSpace(part))
		}
	}

	if errs := w.ApplyForm(st, values); len(errs) > 0 {
		printFieldErrors(a, errs)
		return nil
	}
	if err := w.Next(); err != nil {
		var fe wizard.FieldErrors
		if stderrors.As(err, &fe) {
			printFieldErrors(a, fe)
			return nil
		}
		return err
	}

	if st == wizard.StageVehicle {
		if e := w.Expiry(); e != nil {
			if e.Claimable {
				fmt.Fprintf(a.out, "Policy active: %d days to expiry at the accident date.\n", e.DaysToExpiry)
			} else {
				fmt.Fprintln(a.out, "⚠️  Policy had expired at the accident date. You can still submit the claim.")
			}
		}
	}
	return nil
}

func printFieldErrors(a *app, errs wizard.FieldErrors) {
	fmt.Fprintln(a.out, "Please fix the following and try again:")
	for _, line := range strings.Split(errs.Error(), "; ") {
		fmt.Fprintf(a.out, "  ✗ %s\n", line)
	}
}

func printSummary(a *app, s wizard.Summary) {
	fmt.Fprintf(a.out, "\n== Step %d/%d: %s ==\n", wizard.StageReview, len(wizard.Stages), wizard.StageReview.Title())
	fmt.Fprintf(a.out, "Accident date: %s\n", s.AccidentDate)
	fmt.Fprintf(a.out, "Policy number: %s\n", s.PolicyNumber)
	fmt.Fprintf(a.out, "Insurer:       %s\n", views.InsurerLabel(s.Company))
	fmt.Fprintf(a.out, "Vehicle type:  %s\n", s.VehicleType)
	fmt.Fprintf(a.out, "Images:        %d\n", s.ImageCount)
	status := "Expired"
	if s.PolicyActive {
		status = "Active"
	}
	if s.DaysToExpiry != nil {
		status = fmt.Sprintf("%s (%d days to expiry)", status, *s.DaysToExpiry)
	}
	fmt.Fprintf(a.out, "Policy status: %s\n", status)
}

func printOutcome(a *app, o *wizard.Outcome) {
	fmt.Fprintf(a.out, "\n✅ Claim #%s submitted\n", o.ClaimID)
	if r := o.Result; r != nil {
		fmt.Fprintf(a.out, "Status: %s\n", r.Status)
		if r.FinalDecision != "" {
			fmt.Fprintf(a.out, "Decision: %s\n", r.FinalDecision)
		}
		if r.RiskLevel != "" {
			fmt.Fprintf(a.out, "Risk level: %s\n", r.RiskLevel)
		}
	}
	if as := o.Assessment; as != nil {
		fmt.Fprintf(a.out, "Damage detected: %t  Severity: %s  Confidence: %s  Claimability: %s\n",
			as.DamageDetected, orNA(as.Severity), views.Percent(as.Confidence), orNA(as.Claimability))
	}
}

// loadImages reads the photo files named on the command line
func loadImages(paths []string) ([]ports.Upload, error) {
	if len(paths) > wizard.MaxImages {
		return nil, wizard.ErrTooManyImages
	}
	out := make([]ports.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read image %s", p)
		}
		ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
		if ct == "" {
			ct = http.DetectContentType(data)
		}
		out = append(out, ports.Upload{Name: filepath.Base(p), ContentType: ct, Data: data})
	}
	return out, nil
}
