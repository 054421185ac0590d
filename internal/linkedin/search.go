package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go-easyapply-automation/internal/browser"
	apperrors "go-easyapply-automation/internal/errors"
	"go-easyapply-automation/internal/models"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

const (
	cardSelector      = "div.job-card-container[data-job-id], li[data-occludable-job-id]"
	noResultsSelector = ".jobs-search-no-results-banner, .jobs-search-two-pane__no-results-banner--expand"
	titleSelector     = ".job-details-jobs-unified-top-card__job-title, h1"
	applyButton       = "button.jobs-apply-button"
)

var jobIDRegex = regexp.MustCompile(`(?:/jobs/view/|currentJobId=)(\d+)`)

// SearchURL builds an Easy Apply only search restricted to postings newer
// than freshness.
func SearchURL(keyword, location string, freshness time.Duration) string {
	q := url.Values{}
	q.Set("f_AL", "true")
	if secs := int(freshness.Seconds()); secs > 0 {
		q.Set("f_TPR", "r"+strconv.Itoa(secs))
	}
	q.Set("keywords", keyword)
	if location != "" {
		q.Set("location", location)
	}
	return baseURL + "/jobs/search/?" + q.Encode()
}

func JobViewURL(id string) string {
	return fmt.Sprintf("%s/jobs/view/%s/", baseURL, id)
}

// JobIDFromURL extracts the numeric posting id from a job link.
func JobIDFromURL(u string) string {
	if m := jobIDRegex.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	return ""
}

func (c *Client) Search(ctx context.Context, keyword string, freshness time.Duration) ([]models.PostingRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	searchURL := SearchURL(keyword, c.opts.Location, freshness)
	c.logger.Info("visiting job search", zap.String("keyword", keyword), zap.String("url", searchURL))
	if err := c.navigate(searchURL); err != nil {
		return nil, apperrors.SurfaceInteraction("failed to load job search page", err)
	}

	err := c.page.Locator(cardSelector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(15000),
	})
	if err != nil {
		if n, _ := c.page.Locator(noResultsSelector).Count(); n > 0 {
			return nil, nil
		}
		return nil, apperrors.SurfaceInteraction("job list not found", err)
	}
	browser.RandomDelay(ctx, 1500, 3000)
	if err := browser.HumanScroll(ctx, c.page); err != nil {
		c.logger.Debug("scroll failed", zap.Error(err))
	}

	cards, err := c.page.Locator(cardSelector).All()
	if err != nil {
		return nil, apperrors.SurfaceInteraction("could not list job cards", err)
	}

	seen := make(map[string]bool)
	var refs []models.PostingRef
	for _, card := range cards {
		ref := readCard(card)
		if ref.ID == "" || seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		refs = append(refs, ref)
	}
	return refs, nil
}

func readCard(card playwright.Locator) models.PostingRef {
	id, _ := card.GetAttribute("data-job-id")
	if id == "" {
		id, _ = card.GetAttribute("data-occludable-job-id")
	}

	link := card.Locator("a.job-card-container__link, a.job-card-list__title").First()
	href, _ := link.GetAttribute("href")
	if id == "" {
		id = JobIDFromURL(href)
	}

	title, _ := link.InnerText()
	company, _ := card.Locator(".artdeco-entity-lockup__subtitle, .job-card-container__primary-description").First().InnerText()

	return models.PostingRef{
		ID:      strings.TrimSpace(id),
		Title:   firstLine(title),
		Company: strings.TrimSpace(company),
		URL:     JobViewURL(strings.TrimSpace(id)),
	}
}

// Open loads the posting page and reads what the gate and tailoring need.
func (c *Client) Open(ctx context.Context, ref models.PostingRef) (models.JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return models.JobPosting{}, err
	}

	target := ref.URL
	if target == "" {
		target = JobViewURL(ref.ID)
	}
	if err := c.navigate(target); err != nil {
		return models.JobPosting{}, apperrors.SurfaceInteraction("failed to load posting", err)
	}

	err := c.page.Locator(titleSelector).First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(10000),
	})
	if err != nil {
		return models.JobPosting{}, apperrors.SurfaceInteraction("job details not found", err)
	}

	title, _ := c.page.Locator(titleSelector).First().InnerText()
	company, _ := c.page.Locator(".job-details-jobs-unified-top-card__company-name").First().InnerText()
	primary, _ := c.page.Locator(".job-details-jobs-unified-top-card__primary-description-container, .job-details-jobs-unified-top-card__tertiary-description-container").First().InnerText()

	showMore := c.page.Locator("button.jobs-description__footer-button, button[aria-label*='see more description']").First()
	if visible, _ := showMore.IsVisible(); visible {
		showMore.Click(playwright.LocatorClickOptions{Force: playwright.Bool(true)})
		browser.RandomDelay(ctx, 300, 600)
	}
	description, _ := c.page.Locator("#job-details, .jobs-description__content").First().InnerText()

	applyText := ""
	btn := c.page.Locator(applyButton).First()
	if visible, _ := btn.IsVisible(); visible {
		applyText, _ = btn.InnerText()
		if label, _ := btn.GetAttribute("aria-label"); label != "" {
			applyText += " " + label
		}
	}

	posting := models.JobPosting{
		ID:          ref.ID,
		Title:       firstLine(orDefault(title, ref.Title)),
		Company:     strings.TrimSpace(orDefault(company, ref.Company)),
		Location:    primaryLocation(primary),
		URL:         target,
		Description: strings.TrimSpace(description),
		QuickApply:  isEasyApply(applyText),
	}
	if posting.Company == "" {
		posting.Company = "Unknown"
	}
	return posting, nil
}

func isEasyApply(buttonText string) bool {
	return strings.Contains(strings.ToLower(buttonText), "easy apply")
}

// primaryLocation takes the first "·"-separated part of the top card line.
func primaryLocation(s string) string {
	part, _, _ := strings.Cut(s, "·")
	return strings.TrimSpace(part)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
