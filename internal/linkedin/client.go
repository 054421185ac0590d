package linkedin

import (
	"context"
	"fmt"
	"strings"

	"go-easyapply-automation/internal/browser"
	apperrors "go-easyapply-automation/internal/errors"
	"go-easyapply-automation/utils"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

const (
	baseURL    = "https://www.linkedin.com"
	feedURL    = baseURL + "/feed/"
	loginURL   = baseURL + "/login"
	navTimeout = 30000
)

type Options struct {
	Email       string
	Password    string
	CookiesFile string
	Location    string
	// ScreenshotDir receives a capture whenever a wizard is dismissed.
	ScreenshotDir string
}

// Client drives one LinkedIn tab. It implements session.Session,
// session.SearchProvider and session.WizardLauncher.
type Client struct {
	bctx   playwright.BrowserContext
	page   playwright.Page
	opts   Options
	shots  *utils.ScreenShotDebugger
	logger *zap.Logger
}

func NewClient(bctx playwright.BrowserContext, opts Options, logger *zap.Logger) (*Client, error) {
	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create new page: %w", err)
	}
	logger = logger.Named("linkedin")
	return &Client{
		bctx:   bctx,
		page:   page,
		opts:   opts,
		shots:  utils.NewScreenShotDebugger(opts.ScreenshotDir, logger),
		logger: logger,
	}, nil
}

func (c *Client) Close() error {
	return c.page.Close()
}

func (c *Client) navigate(url string) error {
	_, err := c.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navTimeout),
	})
	return err
}

// SignIn reuses session cookies when they are still valid and falls back to
// the credential form. A checkpoint or captcha page is an authentication failure.
func (c *Client) SignIn(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.navigate(feedURL); err != nil {
		return apperrors.Authentication("failed to load linkedin feed", err)
	}
	if c.loggedIn() {
		c.logger.Info("session cookies still valid")
		return nil
	}

	if c.opts.Email == "" || c.opts.Password == "" {
		return apperrors.Authentication("no valid session cookies and no credentials configured", nil)
	}

	c.logger.Info("signing in with credentials")
	if err := c.navigate(loginURL); err != nil {
		return apperrors.Authentication("failed to load login page", err)
	}
	if err := c.page.Locator("#username").Fill(c.opts.Email); err != nil {
		return apperrors.Authentication("login form not found", err)
	}
	if err := c.page.Locator("#password").Fill(c.opts.Password); err != nil {
		return apperrors.Authentication("login form not found", err)
	}
	browser.RandomDelay(ctx, 300, 800)
	if err := c.page.Locator("button[type='submit']").First().Click(); err != nil {
		return apperrors.Authentication("could not submit login form", err)
	}

	err := c.page.WaitForURL("**/feed/**", playwright.PageWaitForURLOptions{Timeout: playwright.Float(20000)})
	current := c.page.URL()
	if isChallengeURL(current) {
		c.shots.CaptureAndLog(c.page, "login_challenge", "security checkpoint after login")
		return apperrors.Authentication("security checkpoint requires manual verification", nil)
	}
	if err != nil || !c.loggedIn() {
		return apperrors.Authentication(fmt.Sprintf("login did not reach the feed (at %s)", current), err)
	}

	c.logger.Info("login confirmed")
	c.saveCookies()
	return nil
}

func (c *Client) loggedIn() bool {
	if !strings.Contains(c.page.URL(), "/feed") {
		return false
	}
	err := c.page.Locator("#global-nav").WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(10000),
	})
	return err == nil
}

func (c *Client) saveCookies() {
	if c.opts.CookiesFile == "" {
		return
	}
	cookies, err := c.bctx.Cookies(baseURL)
	if err != nil {
		c.logger.Warn("could not read session cookies", zap.Error(err))
		return
	}
	if err := browser.SaveCookies(c.opts.CookiesFile, cookies); err != nil {
		c.logger.Warn("could not save session cookies", zap.Error(err))
		return
	}
	c.logger.Debug("session cookies saved", zap.String("path", c.opts.CookiesFile), zap.Int("count", len(cookies)))
}

func isChallengeURL(u string) bool {
	return strings.Contains(u, "/checkpoint/") || strings.Contains(u, "/challenge") || strings.Contains(u, "captcha")
}
