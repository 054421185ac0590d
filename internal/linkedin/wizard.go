package linkedin

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go-easyapply-automation/internal/browser"
	apperrors "go-easyapply-automation/internal/errors"
	"go-easyapply-automation/internal/models"
	"go-easyapply-automation/internal/wizard"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

const (
	modalSelector   = ".jobs-easy-apply-modal, div[role='dialog'].artdeco-modal"
	dismissSelector = "button[aria-label='Dismiss']"
	discardSelector = "button[data-control-name='discard_application_confirm_btn']"
	placeholderOpt  = "select an option"
	clickTimeout    = 5000
)

// OpenWizard clicks Easy Apply on the posting page and waits for the modal.
func (c *Client) OpenWizard(ctx context.Context, posting models.JobPosting) (wizard.Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if JobIDFromURL(c.page.URL()) != posting.ID {
		if err := c.navigate(JobViewURL(posting.ID)); err != nil {
			return nil, apperrors.SurfaceInteraction("failed to load posting", err)
		}
	}

	btn := c.page.Locator(applyButton).First()
	if err := btn.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(10000)}); err != nil {
		return nil, apperrors.SurfaceInteraction("easy apply button not clickable", err)
	}

	modal := c.page.Locator(modalSelector).First()
	if err := modal.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(10000),
	}); err != nil {
		return nil, apperrors.SurfaceInteraction("easy apply modal did not open", err)
	}

	return &surface{
		client: c,
		modal:  modal,
		jobID:  posting.ID,
		logger: c.logger.With(zap.String("job_id", posting.ID)),
	}, nil
}

type handle struct {
	loc   playwright.Locator
	radio bool
}

// surface is the Easy Apply modal of one posting. Field handles are rebuilt
// by every VisibleFields call.
type surface struct {
	client  *Client
	modal   playwright.Locator
	jobID   string
	handles map[string]handle
	logger  *zap.Logger
}

func (s *surface) VisibleFields(ctx context.Context) ([]models.FormField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	browser.RandomDelay(ctx, 800, 1600)
	s.handles = make(map[string]handle)

	var fields []models.FormField
	add := func(f models.FormField, h handle) {
		if f.ID == "" {
			f.ID = "field-" + strconv.Itoa(len(s.handles))
		}
		if _, dup := s.handles[f.ID]; dup {
			return
		}
		s.handles[f.ID] = h
		fields = append(fields, f)
	}

	inputs, err := s.modal.Locator("input[type='text'], input[type='number'], input[type='tel'], input[type='email'], textarea").All()
	if err != nil {
		return nil, apperrors.SurfaceInteraction("could not list inputs", err)
	}
	for _, in := range inputs {
		if visible, _ := in.IsVisible(); !visible {
			continue
		}
		id, _ := in.GetAttribute("id")
		typ, _ := in.GetAttribute("type")
		value, _ := in.InputValue()
		kind := models.FieldText
		if typ == "number" || strings.Contains(id, "numeric") {
			kind = models.FieldNumber
		}
		add(models.FormField{
			ID:           id,
			Label:        s.labelFor(in, id),
			Kind:         kind,
			CurrentValue: strings.TrimSpace(value),
			Required:     isRequired(in),
		}, handle{loc: in})
	}

	selects, err := s.modal.Locator("select").All()
	if err != nil {
		return nil, apperrors.SurfaceInteraction("could not list selects", err)
	}
	for _, sel := range selects {
		if visible, _ := sel.IsVisible(); !visible {
			continue
		}
		id, _ := sel.GetAttribute("id")
		texts, _ := sel.Locator("option").AllInnerTexts()
		current := ""
		if selected, err := sel.Locator("option:checked").First().InnerText(); err == nil && !isPlaceholder(selected) {
			current = strings.TrimSpace(selected)
		}
		add(models.FormField{
			ID:           id,
			Label:        s.labelFor(sel, id),
			Kind:         models.FieldSingleChoice,
			CurrentValue: current,
			Required:     isRequired(sel),
			Options:      cleanOptions(texts),
		}, handle{loc: sel})
	}

	groups, err := s.modal.Locator("fieldset:has(input[type='radio'])").All()
	if err != nil {
		return nil, apperrors.SurfaceInteraction("could not list radio groups", err)
	}
	for i, group := range groups {
		legend, _ := group.Locator("legend").First().InnerText()
		labels, _ := group.Locator("label").AllInnerTexts()
		current := ""
		radios, _ := group.Locator("input[type='radio']").All()
		for j, r := range radios {
			if checked, _ := r.IsChecked(); checked && j < len(labels) {
				current = strings.TrimSpace(labels[j])
			}
		}
		id, _ := group.GetAttribute("id")
		if id == "" {
			id = "radio-" + strconv.Itoa(i)
		}
		add(models.FormField{
			ID:           id,
			Label:        firstLine(legend),
			Kind:         models.FieldSingleChoice,
			CurrentValue: current,
			Required:     true,
			Options:      cleanOptions(labels),
		}, handle{loc: group, radio: true})
	}

	uploads, err := s.modal.Locator("input[type='file']").All()
	if err != nil {
		return nil, apperrors.SurfaceInteraction("could not list file inputs", err)
	}
	for _, up := range uploads {
		id, _ := up.GetAttribute("id")
		label, _ := up.GetAttribute("aria-label")
		if label == "" {
			label = "Upload resume"
		}
		add(models.FormField{ID: id, Label: label, Kind: models.FieldFileUpload}, handle{loc: up})
	}

	s.logger.Debug("wizard fields read", zap.Int("count", len(fields)))
	return fields, nil
}

func (s *surface) labelFor(el playwright.Locator, id string) string {
	if id != "" {
		label := s.modal.Locator(fmt.Sprintf("label[for=%q]", id)).First()
		if n, _ := label.Count(); n > 0 {
			if text, err := label.InnerText(); err == nil && strings.TrimSpace(text) != "" {
				return firstLine(text)
			}
		}
	}
	aria, _ := el.GetAttribute("aria-label")
	return strings.TrimSpace(aria)
}

func isRequired(el playwright.Locator) bool {
	v, err := el.Evaluate("e => e.required || e.getAttribute('aria-required') === 'true'", nil)
	if err != nil {
		return false
	}
	required, _ := v.(bool)
	return required
}

func (s *surface) handleFor(field models.FormField) (handle, error) {
	h, ok := s.handles[field.ID]
	if !ok {
		return handle{}, apperrors.SurfaceInteraction(fmt.Sprintf("field %q is no longer on the page", field.Label), nil)
	}
	return h, nil
}

func (s *surface) SetValue(ctx context.Context, field models.FormField, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h, err := s.handleFor(field)
	if err != nil {
		return err
	}

	switch {
	case h.radio:
		if indexOf(field.Options, value) < 0 {
			return apperrors.SurfaceInteraction(fmt.Sprintf("option %q not offered", value), nil)
		}
		exact := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(value) + `\s*$`)
		err = h.loc.Locator("label").Filter(playwright.LocatorFilterOptions{HasText: exact}).First().
			Click(playwright.LocatorClickOptions{Timeout: playwright.Float(clickTimeout)})
	case field.Kind == models.FieldSingleChoice:
		_, err = h.loc.SelectOption(playwright.SelectOptionValues{Labels: &[]string{value}},
			playwright.LocatorSelectOptionOptions{Timeout: playwright.Float(clickTimeout)})
	default:
		err = h.loc.Fill(value, playwright.LocatorFillOptions{Timeout: playwright.Float(clickTimeout)})
		if err == nil && strings.Contains(strings.ToLower(field.Label), "city") {
			// location inputs are typeaheads and need a suggestion picked
			browser.RandomDelay(ctx, 800, 1200)
			_ = s.client.page.Keyboard().Press("ArrowDown")
			_ = s.client.page.Keyboard().Press("Enter")
		}
	}
	if err != nil {
		return apperrors.SurfaceInteraction(fmt.Sprintf("could not fill %q", field.Label), err)
	}
	browser.RandomDelay(ctx, 200, 500)
	return nil
}

func (s *surface) Attach(ctx context.Context, field models.FormField, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h, err := s.handleFor(field)
	if err != nil {
		return err
	}
	if err := h.loc.SetInputFiles(path); err != nil {
		return apperrors.SurfaceInteraction("could not attach document", err)
	}
	return nil
}

func (s *surface) navButtons() (map[models.Control]playwright.Locator, error) {
	buttons, err := s.modal.Locator("footer button, button[aria-label]").All()
	if err != nil {
		return nil, err
	}
	found := make(map[models.Control]playwright.Locator)
	for _, b := range buttons {
		if visible, _ := b.IsVisible(); !visible {
			continue
		}
		if enabled, _ := b.IsEnabled(); !enabled {
			continue
		}
		label, _ := b.GetAttribute("aria-label")
		text, _ := b.InnerText()
		control := classifyControl(label, text)
		if control == models.ControlNone {
			continue
		}
		if _, ok := found[control]; !ok {
			found[control] = b
		}
	}
	return found, nil
}

func (s *surface) ActionableControl(ctx context.Context) (models.Control, error) {
	if err := ctx.Err(); err != nil {
		return models.ControlNone, err
	}
	if visible, _ := s.modal.IsVisible(); !visible {
		return models.ControlNone, nil
	}
	found, err := s.navButtons()
	if err != nil {
		return models.ControlNone, apperrors.SurfaceInteraction("could not read wizard controls", err)
	}
	for _, c := range []models.Control{models.ControlSubmit, models.ControlReview, models.ControlContinue} {
		if _, ok := found[c]; ok {
			return c, nil
		}
	}
	return models.ControlNone, nil
}

func (s *surface) Activate(ctx context.Context, control models.Control) error {
	switch control {
	case models.ControlDismiss:
		s.client.shots.CaptureAndLog(s.client.page, "wizard_"+s.jobID, "wizard abandoned")
		return s.click(s.client.page.Locator(dismissSelector).First(), "dismiss")
	case models.ControlConfirmDiscard:
		browser.RandomDelay(ctx, 500, 1000)
		confirm := s.client.page.Locator(discardSelector).First()
		if n, _ := confirm.Count(); n == 0 {
			confirm = s.client.page.Locator("div[role='alertdialog'] button").Filter(playwright.LocatorFilterOptions{HasText: "Discard"}).First()
		}
		return s.click(confirm, "confirm discard")
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	found, err := s.navButtons()
	if err != nil {
		return apperrors.SurfaceInteraction("could not read wizard controls", err)
	}
	btn, ok := found[control]
	if !ok {
		return apperrors.SurfaceInteraction(fmt.Sprintf("%s button not available", control), nil)
	}
	if err := s.click(btn, control.String()); err != nil {
		return err
	}
	browser.RandomDelay(ctx, 1000, 2000)

	if control == models.ControlSubmit {
		// close the "application sent" confirmation so the next posting starts clean
		done := s.client.page.Locator(dismissSelector).First()
		if visible, _ := done.IsVisible(); visible {
			_ = done.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(clickTimeout)})
		}
	}
	return nil
}

func (s *surface) click(btn playwright.Locator, what string) error {
	if err := btn.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(clickTimeout)}); err != nil {
		return apperrors.SurfaceInteraction("could not click "+what, err)
	}
	s.logger.Debug("clicked", zap.String("control", what))
	return nil
}

// classifyControl maps a wizard button to a navigation control using its
// aria-label, falling back to its visible text.
func classifyControl(ariaLabel, text string) models.Control {
	for _, s := range []string{ariaLabel, text} {
		s = strings.ToLower(strings.TrimSpace(s))
		switch {
		case s == "":
			continue
		case strings.HasPrefix(s, "submit application"), s == "submit":
			return models.ControlSubmit
		case strings.HasPrefix(s, "review"):
			return models.ControlReview
		case strings.HasPrefix(s, "continue to next step"), s == "next", s == "continue":
			return models.ControlContinue
		}
	}
	return models.ControlNone
}

func cleanOptions(texts []string) []string {
	var out []string
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" || isPlaceholder(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isPlaceholder(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), placeholderOpt)
}

func indexOf(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return -1
}
