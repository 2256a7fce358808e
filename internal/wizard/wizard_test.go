package wizard

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/url"
	"testing"
	"time"

	"claimsportal/domain/claim"
	"claimsportal/domain/core"
	"claimsportal/internal"
	"claimsportal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var today = core.FixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Insurers(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]string)
	return list, args.Error(1)
}

func (m *MockBackend) ProcessClaim(ctx context.Context, sub *ports.ClaimSubmission) (*ports.ProcessResult, error) {
	args := m.Called(ctx, sub)
	res, _ := args.Get(0).(*ports.ProcessResult)
	return res, args.Error(1)
}

func intPtr(n int) *int { return &n }

func img(name string) ports.Upload {
	return ports.Upload{Name: name, ContentType: "image/jpeg", Data: []byte(name)}
}

func imgs(n int) []ports.Upload {
	out := make([]ports.Upload, n)
	for i := range out {
		out[i] = img(string(rune('a'+i)) + ".jpg")
	}
	return out
}

var (
	incidentValues = url.Values{
		"accidentDate": {"2025-03-01"},
		"accidentTime": {"10:30"},
		"locationType": {"city"},
	}
	vehicleValues = url.Values{
		"policyNumber":       {"POL-12345"},
		"policyExpiryDate":   {"2025-03-11"},
		"carAge":             {"4"},
		"registrationNumber": {"KA01AB1234"},
		"insurerName":        {"acme_general"},
		"vehicleType":        {"Four Wheeler"},
	}
	specificsValues = url.Values{
		"accidentType":       {"collision"},
		"damageParts":        {"Damage Front", "Damage Rear"},
		"previousClaims":     {"0"},
		"policeReport":       {"yes"},
		"driverAtFault":      {"no"},
		"driverAge":          {"30"},
		"driverLicenseValid": {"yes"},
		"alcoholIntoxicated": {"no"},
	}
)

func newWizard(t *testing.T, insurers []string) (*Wizard, *MockBackend) {
	t.Helper()
	backend := new(MockBackend)
	backend.On("Insurers", mock.Anything).Return(insurers, nil).Maybe()
	w := New(today, WithLogger(internal.NewNopLogger()))
	w.Start(context.Background(), backend)
	return w, backend
}

func advanceToReview(t *testing.T, w *Wizard) {
	t.Helper()
	require.Nil(t, w.ApplyForm(StageIncident, incidentValues))
	require.NoError(t, w.Next())
	require.Nil(t, w.ApplyForm(StageVehicle, vehicleValues))
	require.NoError(t, w.Next())
	require.Nil(t, w.ApplyForm(StageSpecifics, specificsValues))
	require.NoError(t, w.Next())
	require.NoError(t, w.AddImages(imgs(2)))
	require.NoError(t, w.Next())
	require.Equal(t, StageReview, w.Stage())
}

func TestIncidentValidation(t *testing.T) {
	tests := []struct {
		name   string
		form   IncidentForm
		field  string
		want   string
		passes bool
	}{
		{name: "future date", form: IncidentForm{AccidentDate: "2025-03-11", AccidentTime: "09:00", LocationType: claim.LocationCity}, field: "accidentDate", want: "Accident date cannot be in the future."},
		{name: "today allowed", form: IncidentForm{AccidentDate: "2025-03-10", AccidentTime: "09:00", LocationType: claim.LocationRural}, passes: true},
		{name: "missing time", form: IncidentForm{AccidentDate: "2025-03-01", LocationType: claim.LocationCity}, field: "accidentTime", want: "Please enter the time of the accident."},
		{name: "bad location", form: IncidentForm{AccidentDate: "2025-03-01", AccidentTime: "09:00", LocationType: "desert"}, field: "locationType", want: "Please select a location type."},
		{name: "long description", form: IncidentForm{AccidentDate: "2025-03-01", AccidentTime: "09:00", LocationType: claim.LocationHighway, Description: string(make([]byte, 1001))}, field: "description", want: "Description is too long (max 1000 characters)."},
		{name: "malformed date", form: IncidentForm{AccidentDate: "03/01/2025", AccidentTime: "09:00", LocationType: claim.LocationCity}, field: "accidentDate", want: "Please select the accident date."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := newWizard(t, nil)
			w.SetIncident(tt.form)

			err := w.Next()
			if tt.passes {
				require.NoError(t, err)
				assert.Equal(t, StageVehicle, w.Stage())
				return
			}
			var fe FieldErrors
			require.True(t, stderrors.As(err, &fe))
			assert.Equal(t, tt.want, fe[tt.field])
			assert.Equal(t, StageIncident, w.Stage())
		})
	}
}

func TestVehicleValidation(t *testing.T) {
	w, _ := newWizard(t, []string{"acme_general", "zen_insure"})
	w.SetIncident(IncidentForm{AccidentDate: "2025-03-01", AccidentTime: "10:00", LocationType: claim.LocationCity})
	require.NoError(t, w.Next())

	w.SetVehicle(VehicleForm{
		PolicyNumber:       "P1",
		PolicyExpiryDate:   "",
		CarAge:             intPtr(21),
		RegistrationNumber: "AB",
		InsurerName:        "unknown_co",
		VehicleType:        "Spaceship",
	})
	err := w.Next()
	var fe FieldErrors
	require.True(t, stderrors.As(err, &fe))

	assert.Equal(t, FieldErrors{
		"policyNumber":       "Policy number must be at least 5 characters long.",
		"policyExpiryDate":   "Please select the policy expiry date.",
		"carAge":             "Car age must be 20 years or less.",
		"registrationNumber": "Please enter a valid vehicle registration number.",
		"insurerName":        "Please select an insurer from the list.",
		"vehicleType":        "Please select a vehicle type.",
	}, fe)

	w.SetVehicle(VehicleForm{PolicyNumber: "POL-1", PolicyExpiryDate: "2025-01-01", CarAge: intPtr(-1), RegistrationNumber: "KA01", InsurerName: "zen_insure", VehicleType: claim.VehicleBus})
	err = w.Next()
	require.True(t, stderrors.As(err, &fe))
	assert.Equal(t, FieldErrors{"carAge": "Car age cannot be negative."}, fe)
}

func TestInsurerOnlyLengthCheckedWhenListFailedToLoad(t *testing.T) {
	backend := new(MockBackend)
	backend.On("Insurers", mock.Anything).Return(nil, stderrors.New("boom"))
	w := New(today, WithLogger(internal.NewNopLogger()))
	w.Start(context.Background(), backend)
	assert.Empty(t, w.Insurers())

	d := newDraft()
	d.Vehicle = VehicleForm{PolicyNumber: "POL-1", PolicyExpiryDate: "2025-06-01", CarAge: intPtr(3), RegistrationNumber: "KA01", InsurerName: "anything", VehicleType: claim.VehicleOther}
	assert.Empty(t, w.validator.Stage(StageVehicle, d))

	d.Vehicle.InsurerName = "a"
	assert.Equal(t, "Please enter the Insurance Company name.", w.validator.Stage(StageVehicle, d)["insurerName"])
}

func TestSpecificsValidation(t *testing.T) {
	v := NewValidator(today)
	d := newDraft()
	d.Specifics = SpecificsForm{
		AccidentType:   "meteor",
		DamageParts:    []claim.DamagePart{},
		PreviousClaims: intPtr(-1),
		PoliceReport:   "maybe",
		DriverAge:      intPtr(17),
	}

	fe := v.Stage(StageSpecifics, d)
	assert.Equal(t, "Please select an accident type.", fe["accidentType"])
	assert.Equal(t, "Please select at least one damaged part.", fe["damageParts"])
	assert.Equal(t, "Previous claims must be 0 or more.", fe["previousClaims"])
	assert.Equal(t, "Driver must be at least 18 years old.", fe["driverAge"])
	for _, f := range []string{"policeReport", "driverAtFault", "driverLicenseValid", "alcoholIntoxicated"} {
		assert.Equal(t, "Please select yes or no.", fe[f], f)
	}

	d.Specifics.DamageParts = []claim.DamagePart{"Damage Roof"}
	assert.Equal(t, "Please select damaged parts from the list.", v.Stage(StageSpecifics, d)["damageParts"])
}

func TestExpiryDerivation(t *testing.T) {
	e := ComputeExpiry("2025-01-01", "2025-01-11")
	require.NotNil(t, e)
	assert.Equal(t, 10, e.DaysToExpiry)
	assert.True(t, e.Claimable)

	e = ComputeExpiry("2025-01-01", "2025-01-01")
	require.NotNil(t, e)
	assert.Equal(t, 0, e.DaysToExpiry)
	assert.False(t, e.Claimable)

	assert.Nil(t, ComputeExpiry("", "2025-01-01"))
	assert.Nil(t, ComputeExpiry("2025-01-01", "soon"))
}

func TestExpiryRecomputedFromAnyStage(t *testing.T) {
	w, _ := newWizard(t, nil)
	assert.Nil(t, w.Expiry())

	w.SetVehicle(VehicleForm{PolicyExpiryDate: "2025-01-11"})
	assert.Nil(t, w.Expiry())

	w.SetIncident(IncidentForm{AccidentDate: "2025-01-01"})
	require.NotNil(t, w.Expiry())
	assert.Equal(t, 10, w.Expiry().DaysToExpiry)

	// editing the accident date again from stage 1 moves the derived value
	w.SetIncident(IncidentForm{AccidentDate: "2025-01-11"})
	assert.Equal(t, 0, w.Expiry().DaysToExpiry)
	assert.False(t, w.Expiry().Claimable)
}

func TestExpiredPolicyDoesNotBlock(t *testing.T) {
	w, _ := newWizard(t, nil)
	require.Nil(t, w.ApplyForm(StageIncident, incidentValues))
	require.NoError(t, w.Next())

	expired := url.Values{}
	for k, v := range vehicleValues {
		expired[k] = v
	}
	expired.Set("policyExpiryDate", "2025-02-01")
	require.Nil(t, w.ApplyForm(StageVehicle, expired))

	require.NoError(t, w.Next())
	assert.False(t, w.Expiry().Claimable)
}

func TestImageLimits(t *testing.T) {
	w, _ := newWizard(t, nil)

	err := w.AddImages(imgs(11))
	assert.ErrorIs(t, err, ErrTooManyImages)
	assert.Equal(t, "You can upload a maximum of 10 images.", err.Error())
	assert.Empty(t, w.Draft().Images)

	require.NoError(t, w.AddImages(imgs(9)))
	assert.ErrorIs(t, w.AddImages(imgs(2)), ErrTooManyImages)
	assert.Len(t, w.Draft().Images, 9)
	require.NoError(t, w.AddImages(imgs(1)))
	assert.Len(t, w.Draft().Images, 10)

	assert.ErrorIs(t, w.RemoveImage(10), ErrImageIndex)
	assert.ErrorIs(t, w.RemoveImage(-1), ErrImageIndex)
}

func TestPendingImagesMessage(t *testing.T) {
	assert.Equal(t, "No images uploaded yet. Please upload at least 2 images.", PendingImagesMessage(0))
	assert.Equal(t, "Please upload 1 more image(s) to proceed.", PendingImagesMessage(1))
	assert.Empty(t, PendingImagesMessage(2))
}

func TestEvidenceStageGatesForward(t *testing.T) {
	w, _ := newWizard(t, nil)
	require.Nil(t, w.ApplyForm(StageIncident, incidentValues))
	require.NoError(t, w.Next())
	require.Nil(t, w.ApplyForm(StageVehicle, vehicleValues))
	require.NoError(t, w.Next())
	require.Nil(t, w.ApplyForm(StageSpecifics, specificsValues))
	require.NoError(t, w.Next())
	require.Equal(t, StageEvidence, w.Stage())

	require.NoError(t, w.AddImages(imgs(1)))
	assert.False(t, w.CanAdvance())
	assert.ErrorIs(t, w.Next(), ErrForwardDisabled)

	require.NoError(t, w.AddImages(imgs(1)))
	assert.True(t, w.CanAdvance())
	require.NoError(t, w.Next())
	assert.False(t, w.CanAdvance())
}

func TestBackKeepsDataAndSkipsValidation(t *testing.T) {
	w, _ := newWizard(t, nil)
	require.Nil(t, w.ApplyForm(StageIncident, incidentValues))
	require.NoError(t, w.Next())

	// stage 2 is invalid but going back is still allowed
	require.Nil(t, w.ApplyForm(StageVehicle, url.Values{"policyNumber": {"P"}}))
	w.Back()
	assert.Equal(t, StageIncident, w.Stage())
	assert.Equal(t, "2025-03-01", w.Draft().Incident.AccidentDate)
	assert.Equal(t, "P", w.Draft().Vehicle.PolicyNumber)

	w.Back()
	assert.Equal(t, StageIncident, w.Stage())
}

func TestApplyFormNumberErrors(t *testing.T) {
	w, _ := newWizard(t, nil)
	fe := w.ApplyForm(StageVehicle, url.Values{"carAge": {"four"}})
	assert.Equal(t, FieldErrors{"carAge": "Car age must be a number."}, fe)
	assert.Nil(t, w.Draft().Vehicle.CarAge)

	values := FormValues(w.Draft(), StageVehicle)
	assert.Equal(t, "", values.Get("carAge"))
}

func TestSubmitEndToEnd(t *testing.T) {
	w, backend := newWizard(t, []string{"acme_general"})
	advanceToReview(t, w)

	sum := w.Summary()
	assert.Equal(t, "POL-12345", sum.PolicyNumber)
	assert.Equal(t, 2, sum.ImageCount)
	require.NotNil(t, sum.DaysToExpiry)
	assert.Equal(t, 10, *sum.DaysToExpiry)
	assert.True(t, sum.PolicyActive)

	var captured *ports.ClaimSubmission
	backend.On("ProcessClaim", mock.Anything, mock.AnythingOfType("*ports.ClaimSubmission")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*ports.ClaimSubmission) }).
		Return(&ports.ProcessResult{ClaimID: "41", Status: "APPROVED", MLResult: json.RawMessage(`{"severity":"minor","damage_detected":true}`)}, nil).
		Once()

	out, err := w.Submit(context.Background(), backend)
	require.NoError(t, err)
	backend.AssertNumberOfCalls(t, "ProcessClaim", 1)

	assert.Equal(t, claim.ID("41"), out.ClaimID)
	require.NotNil(t, out.Assessment)
	assert.Equal(t, "minor", out.Assessment.Severity)

	require.NotNil(t, captured)
	assert.Equal(t, "No description provided", captured.Description)
	assert.Equal(t, "acme_general", captured.Company)
	assert.Equal(t, "Four Wheeler", captured.PolicyType)
	assert.Len(t, captured.Files, 2)
	assert.JSONEq(t, `{
		"incidentDetails": {"accidentDate": "2025-03-01", "accidentTime": "10:30", "locationType": "city"},
		"vehicleDetails": {"registrationNumber": "KA01AB1234", "insurerName": "acme_general", "vehicleType": "Four Wheeler", "carAge": 4, "driverAge": 30, "policyNumber": "POL-12345"},
		"accidentSpecifics": {"accidentType": "collision", "damageParts": ["Damage Front", "Damage Rear"], "previousClaims": 0, "policeReport": true, "driverAtFault": false, "driverLicenseValid": true, "alcoholIntoxicated": false},
		"computed": {"days_to_expiry": 10, "claimable_policy": true}
	}`, string(captured.SurveyResult))

	// draft is cleared, outcome kept, no second submit
	assert.Empty(t, w.Draft().Images)
	assert.Same(t, out, w.Outcome())
	_, err = w.Submit(context.Background(), backend)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	backend.AssertNumberOfCalls(t, "ProcessClaim", 1)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	w, backend := newWizard(t, []string{"acme_general"})
	advanceToReview(t, w)

	backend.On("ProcessClaim", mock.Anything, mock.Anything).Return(nil, stderrors.New("HTTP Error 500")).Once()

	_, err := w.Submit(context.Background(), backend)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.Contains(t, err.Error(), "Error submitting claim")

	assert.Equal(t, StageReview, w.Stage())
	assert.Len(t, w.Draft().Images, 2)
	assert.Nil(t, w.Outcome())

	// retry succeeds
	backend.On("ProcessClaim", mock.Anything, mock.Anything).Return(&ports.ProcessResult{ClaimID: "42"}, nil).Once()
	out, err := w.Submit(context.Background(), backend)
	require.NoError(t, err)
	assert.Equal(t, claim.ID("42"), out.ClaimID)
}

func TestSubmitGuards(t *testing.T) {
	w, backend := newWizard(t, nil)
	_, err := w.Submit(context.Background(), backend)
	assert.ErrorIs(t, err, ErrNotOnReview)

	d := newDraft()
	d.Images = imgs(1)
	_, err = BuildSubmission(d)
	assert.ErrorIs(t, err, ErrNotEnoughImages)
	assert.Equal(t, "Please upload at least 2 images.", err.Error())
	backend.AssertNotCalled(t, "ProcessClaim", mock.Anything, mock.Anything)
}

func TestSubmitRechecksInsurerAgainstLoadedList(t *testing.T) {
	w, backend := newWizard(t, []string{"acme_general"})
	advanceToReview(t, w)

	// the list shrank after stage 2 was passed
	w.validator.SetInsurers([]string{"zen_insure"})
	_, err := w.Submit(context.Background(), backend)

	var fe FieldErrors
	require.True(t, stderrors.As(err, &fe))
	assert.Contains(t, fe, "insurerName")
	backend.AssertNotCalled(t, "ProcessClaim", mock.Anything, mock.Anything)
}
