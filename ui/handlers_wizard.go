package ui

import (
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"claimsportal/adapters/api"
	"claimsportal/domain/claim"
	"claimsportal/internal/wizard"
	"claimsportal/ports"

	"github.com/gin-gonic/gin"
)

const (
	wizardPath   = "/dashboard/new-claim"
	maxImageSize = 10 << 20
)

type stageInfo struct {
	Number  int
	Title   string
	Current bool
	Done    bool
}

type imageInfo struct {
	Index int
	Name  string
	Size  int
}

type wizardData struct {
	Stage      wizard.Stage
	Title      string
	Stages     []stageInfo
	Values     url.Values
	Errors     wizard.FieldErrors
	Parts      []string
	Insurers   []string
	Images     []imageInfo
	ImageHint  string
	CanAdvance bool
	MaxImages  int
	Expiry     *wizard.Expiry
	Summary    wizard.Summary
	Outcome    *wizard.Outcome

	LocationTypes []claim.LocationType
	AccidentTypes []claim.AccidentType
	VehicleTypes  []claim.VehicleType
	DamageParts   []claim.DamagePart
}

// wizardFor returns the browser's draft, starting a new one when none is live
func (s *Server) wizardFor(c *gin.Context) (*wizard.Wizard, error) {
	id, _ := sessionFrom(c).Identity()
	key, _ := c.Cookie(draftCookie)
	if w, ok := s.drafts.Get(key, id.ID); ok {
		return w, nil
	}

	backend, err := s.backendFor(c)
	if err != nil {
		return nil, err
	}
	draftID, w := s.drafts.Create(id.ID)
	w.Start(c.Request.Context(), backend)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(draftCookie, draftID.String(), int(draftTTL.Seconds()), wizardPath, "", s.secure, true)
	return w, nil
}

func (s *Server) handleWizard(c *gin.Context) {
	w, err := s.wizardFor(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.renderWizard(c, http.StatusOK, w, nil, "")
}

func (s *Server) renderWizard(c *gin.Context, status int, w *wizard.Wizard, errs wizard.FieldErrors, alert string) {
	draft := w.Draft()
	stage := w.Stage()

	d := wizardData{
		Stage:         stage,
		Title:         stage.Title(),
		Values:        wizard.FormValues(draft, stage),
		Errors:        errs,
		Insurers:      w.Insurers(),
		ImageHint:     wizard.PendingImagesMessage(len(draft.Images)),
		CanAdvance:    w.CanAdvance(),
		MaxImages:     wizard.MaxImages,
		Expiry:        w.Expiry(),
		Summary:       w.Summary(),
		Outcome:       w.Outcome(),
		LocationTypes: claim.LocationTypes,
		AccidentTypes: claim.AccidentTypes,
		VehicleTypes:  claim.VehicleTypes,
		DamageParts:   claim.DamageParts,
	}
	for _, st := range wizard.Stages {
		d.Stages = append(d.Stages, stageInfo{Number: int(st), Title: st.Title(), Current: st == stage, Done: st < stage})
	}
	for _, p := range draft.Specifics.DamageParts {
		d.Parts = append(d.Parts, string(p))
	}
	for i, img := range draft.Images {
		d.Images = append(d.Images, imageInfo{Index: i, Name: img.Name, Size: len(img.Data)})
	}
	if errs != nil {
		// redisplay exactly what was typed, not what parsed
		d.Values = c.Request.PostForm
		d.Parts = c.Request.PostForm["damageParts"]
	}

	title := "New Claim"
	if d.Outcome != nil {
		title = "Claim Submitted"
	}
	s.renderTemplate(c, status, "wizard.html", page{Title: title, Alert: alert, Data: d})
}

// handleWizardAction applies one wizard action and redirects back, or re-renders with errors
func (s *Server) handleWizardAction(c *gin.Context) {
	w, err := s.wizardFor(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !stderrors.Is(err, http.ErrNotMultipart) {
		s.renderWizard(c, http.StatusBadRequest, w, nil, "Could not read the submitted form.")
		return
	}

	action, arg, _ := strings.Cut(c.PostForm("action"), ":")
	stage := w.Stage()

	// Forms carry the stage they were rendered for. One posted from another stage
	// (a repeated click, an old tab) is dropped so it cannot blank the current stage.
	posted := c.PostForm("stage")
	if posted != "" && posted != strconv.Itoa(int(stage)) {
		s.log.Debugw("stale wizard post ignored", "posted_stage", posted, "stage", int(stage), "action", action)
		c.Redirect(http.StatusSeeOther, wizardPath)
		return
	}
	applyPosted := func() wizard.FieldErrors {
		if posted == "" {
			return nil
		}
		return w.ApplyForm(stage, c.Request.PostForm)
	}

	switch action {
	case "next":
		if errs := applyPosted(); len(errs) > 0 {
			s.renderWizard(c, http.StatusUnprocessableEntity, w, errs, "")
			return
		}
		if err := w.Next(); err != nil {
			var errs wizard.FieldErrors
			if stderrors.As(err, &errs) {
				s.renderWizard(c, http.StatusUnprocessableEntity, w, errs, "")
				return
			}
			s.renderWizard(c, http.StatusUnprocessableEntity, w, nil, wizard.PendingImagesMessage(len(w.Draft().Images)))
			return
		}

	case "back":
		applyPosted()
		w.Back()

	case "toggle":
		applyPosted()
		w.ToggleDamagePart(claim.DamagePart(arg))

	case "images":
		uploads, err := readUploads(c)
		if err != nil {
			s.renderWizard(c, http.StatusBadRequest, w, nil, err.Error())
			return
		}
		if err := w.AddImages(uploads); err != nil {
			s.renderWizard(c, http.StatusUnprocessableEntity, w, nil, err.Error())
			return
		}

	case "remove":
		i, err := strconv.Atoi(arg)
		if err != nil {
			i = -1
		}
		if err := w.RemoveImage(i); err != nil {
			s.renderWizard(c, http.StatusBadRequest, w, nil, err.Error())
			return
		}

	case "submit":
		backend, err := s.backendFor(c)
		if err != nil {
			s.renderError(c, err)
			return
		}
		if _, err := w.Submit(c.Request.Context(), backend); err != nil {
			var errs wizard.FieldErrors
			switch {
			case stderrors.As(err, &errs):
				s.renderWizard(c, http.StatusUnprocessableEntity, w, errs, "Please fix the highlighted fields before submitting.")
			case stderrors.Is(err, wizard.ErrAlreadySubmitted):
				c.Redirect(http.StatusSeeOther, wizardPath)
			case stderrors.Is(err, wizard.ErrNotEnoughImages):
				s.renderWizard(c, http.StatusUnprocessableEntity, w, nil, err.Error())
			default:
				alert := wizard.ErrSubmitFailed.Error()
				var he *api.HTTPError
				if stderrors.As(err, &he) && he.Message != "" {
					alert += ": " + he.Message
				}
				s.renderWizard(c, http.StatusBadGateway, w, nil, alert)
			}
			return
		}

	case "new":
		key, _ := c.Cookie(draftCookie)
		s.drafts.Delete(key)

	default:
		s.renderWizard(c, http.StatusBadRequest, w, nil, "Unknown action.")
		return
	}

	c.Redirect(http.StatusSeeOther, wizardPath)
}

// readUploads loads every file posted under "images"
func readUploads(c *gin.Context) ([]ports.Upload, error) {
	if c.Request.MultipartForm == nil {
		return nil, nil
	}
	headers := c.Request.MultipartForm.File["images"]
	out := make([]ports.Upload, 0, len(headers))
	for _, h := range headers {
		if h.Size > maxImageSize {
			return nil, stderrors.New(h.Filename + " is larger than 10 MB.")
		}
		f, err := h.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(f, maxImageSize))
		f.Close()
		if err != nil {
			return nil, err
		}
		ct := h.Header.Get("Content-Type")
		if ct == "" {
			ct = http.DetectContentType(data)
		}
		out = append(out, ports.Upload{Name: h.Filename, ContentType: ct, Data: data})
	}
	return out, nil
}
