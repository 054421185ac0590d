package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-easyapply-automation/internal/models"
	"go-easyapply-automation/internal/wizard"
)

var fixedNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.Local)

func clock() time.Time { return fixedNow }

func posting(id string) models.JobPosting {
	return models.JobPosting{ID: id, Title: "Backend Engineer", Company: "Company " + id, QuickApply: true}
}

// fakeSearch serves postings per keyword and records which cards were opened.
type fakeSearch struct {
	results   map[string][]models.JobPosting
	searchErr map[string]error
	openErr   map[string]error
	opened    []string
	searched  []string
	onOpen    func(id string)
}

func (f *fakeSearch) Search(ctx context.Context, keyword string, freshness time.Duration) ([]models.PostingRef, error) {
	f.searched = append(f.searched, keyword)
	if err := f.searchErr[keyword]; err != nil {
		return nil, err
	}
	var refs []models.PostingRef
	for _, p := range f.results[keyword] {
		refs = append(refs, models.PostingRef{ID: p.ID, Title: p.Title, Company: p.Company})
	}
	return refs, nil
}

func (f *fakeSearch) Open(ctx context.Context, ref models.PostingRef) (models.JobPosting, error) {
	f.opened = append(f.opened, ref.ID)
	if f.onOpen != nil {
		f.onOpen(ref.ID)
	}
	if err := f.openErr[ref.ID]; err != nil {
		return models.JobPosting{}, err
	}
	for _, list := range f.results {
		for _, p := range list {
			if p.ID == ref.ID {
				return p, nil
			}
		}
	}
	return models.JobPosting{}, errors.New("not found")
}

type fakeSession struct {
	err   error
	calls int
}

func (f *fakeSession) SignIn(ctx context.Context) error {
	f.calls++
	return f.err
}

type fakeLauncher struct {
	err    map[string]error
	opened []string
}

func (f *fakeLauncher) OpenWizard(ctx context.Context, p models.JobPosting) (wizard.Surface, error) {
	f.opened = append(f.opened, p.ID)
	if err := f.err[p.ID]; err != nil {
		return nil, err
	}
	return nil, nil
}

type fakeTailor struct {
	tailored []string
}

func (f *fakeTailor) Tailor(ctx context.Context, p models.JobPosting, profile models.ApplicantProfile) models.TailoredDocument {
	f.tailored = append(f.tailored, p.ID)
	return models.TailoredDocument{JobID: p.ID, StoragePath: "Applications/" + p.ID + ".pdf", Tailored: true}
}

// fakeWizard returns a scripted outcome keyed by the posting ID carried in
// the document path. The default is Submitted.
type fakeWizard struct {
	outcomes map[string]models.StepOutcome
	panics   map[string]bool
	runs     []string
	onRun    func(ctx context.Context)
}

func (f *fakeWizard) Run(ctx context.Context, s wizard.Surface, doc string, profile models.ApplicantProfile) wizard.Result {
	id := strings.TrimSuffix(strings.TrimPrefix(doc, "Applications/"), ".pdf")
	f.runs = append(f.runs, id)
	if f.onRun != nil {
		f.onRun(ctx)
	}
	if f.panics[id] {
		panic("surface went away")
	}
	if out, ok := f.outcomes[id]; ok {
		return wizard.Result{Outcome: out, Steps: 2}
	}
	return wizard.Result{Outcome: models.StepSubmitted, Steps: 2}
}

type fakeNotifier struct {
	records   []models.ApplicationRecord
	summaries []Summary
}

func (f *fakeNotifier) NotifyRecord(ctx context.Context, rec models.ApplicationRecord) {
	f.records = append(f.records, rec)
}

func (f *fakeNotifier) NotifySummary(ctx context.Context, s Summary) {
	f.summaries = append(f.summaries, s)
}

type fakeFilter map[string]string

func (f fakeFilter) Reason(p models.JobPosting) string { return f[p.ID] }
