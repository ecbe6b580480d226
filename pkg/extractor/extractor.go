// Package extractor turns a rendered profile page into a structured
// record. Parsing is pure: it operates on captured HTML, so every field
// reader can be tested against fixtures without a browser.
package extractor

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"profilescraper/pkg/errors"
	"profilescraper/pkg/logger"
	"profilescraper/pkg/models"
)

// Page is the slice of the browser session the extractor needs to
// disclose and capture a profile page.
type Page interface {
	ScrollToBottom(ctx context.Context) error
	PageHeight() (int64, error)
	Click(ctx context.Context, selector string) error
	CurrentURL() (string, error)
	OuterHTML() (string, error)
}

// Selectors the profile page uses for each section. Kept in one place
// because they change together when the site markup shifts.
const (
	selName      = "h1.text-heading-xlarge"
	selHeadline  = "div.text-body-medium"
	selLocation  = "span.text-body-small"
	selAbout     = "section[data-section='summary'] div.display-flex.ph5.pv3"
	selListItem  = "li.artdeco-list__item"
	selItemTitle = "div.display-flex span[aria-hidden='true']"
	selItemMeta  = "span.t-14.t-normal span[aria-hidden='true']"
	selItemDates = "span.t-14.t-normal.t-black--light span[aria-hidden='true']"
)

// disclosure buttons clicked before capture, best effort
var discloseSelectors = []string{
	"button[aria-label*='more about']",
	"section[data-section='experience'] button[aria-label*='Show all']",
	"section[data-section='skills'] button[aria-label*='Show all']",
}

// maxDiscloseScrolls bounds the settle loop on pages that keep growing.
const maxDiscloseScrolls = 15

// Extractor captures and parses profile pages
type Extractor struct {
	log logger.Logger
}

// New creates an Extractor
func New(log logger.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract discloses the current page, captures its HTML and parses it
// into a Profile. A partially populated record with an empty field is
// normal; only failures to capture the page at all are errors.
func (e *Extractor) Extract(ctx context.Context, page Page) (*models.Profile, error) {
	if err := e.disclose(ctx, page); err != nil {
		return nil, err
	}

	html, err := page.OuterHTML()
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeExtraction, "failed to capture profile page", err)
	}
	url, err := page.CurrentURL()
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeExtraction, "failed to read profile URL", err)
	}

	profile, err := Parse(html, url, time.Now())
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"name":           profile.Name,
		"num_experience": len(profile.Experience),
		"num_education":  len(profile.Education),
		"num_skills":     len(profile.Skills),
	}).Debug("profile extracted")

	return profile, nil
}

// disclose scrolls until the page height settles so lazily loaded
// sections render, then expands collapsed sections. Missing disclosure
// buttons are expected and ignored.
func (e *Extractor) disclose(ctx context.Context, page Page) error {
	lastHeight := int64(-1)
	for i := 0; i < maxDiscloseScrolls; i++ {
		if err := page.ScrollToBottom(ctx); err != nil {
			return errors.Wrap(errors.ErrorTypeExtraction, "failed to scroll profile page", err)
		}
		height, err := page.PageHeight()
		if err != nil {
			return errors.Wrap(errors.ErrorTypeExtraction, "failed to measure profile page", err)
		}
		if height == lastHeight {
			break
		}
		lastHeight = height
	}

	for _, sel := range discloseSelectors {
		if err := page.Click(ctx, sel); err != nil {
			e.log.WithField("selector", sel).Debug("disclosure button not present")
		}
	}

	return nil
}

// Parse builds a Profile from captured page HTML. Missing sections and
// fields yield empty values, never errors; only unparseable HTML fails.
func Parse(html, url string, now time.Time) (*models.Profile, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeExtraction, "failed to parse profile page", err)
	}

	profile := models.NewProfile(url, now)
	profile.Name = text(doc.Find(selName).First())
	profile.Headline = text(doc.Find(selHeadline).First())
	profile.Location = text(doc.Find(selLocation).First())
	profile.About = text(doc.Find(selAbout).First())
	profile.Experience = parseExperience(doc)
	profile.Education = parseEducation(doc)
	profile.Skills = parseSkills(doc)
	profile.Certifications = parseCertifications(doc)
	profile.Languages = parseLanguages(doc)

	return profile, nil
}

func parseExperience(doc *goquery.Document) []models.Experience {
	var entries []models.Experience
	doc.Find("section[data-section='experience'] " + selListItem).Each(func(_ int, item *goquery.Selection) {
		entry := models.Experience{
			Title:       text(item.Find(selItemTitle).First()),
			Company:     text(item.Find(selItemMeta).First()),
			Dates:       text(item.Find(selItemDates).First()),
			Description: text(item.Find("div.inline-show-more-text span[aria-hidden='true']").First()),
		}
		if entry.Title == "" && entry.Company == "" {
			return
		}
		entries = append(entries, entry)
	})
	return entries
}

func parseEducation(doc *goquery.Document) []models.Education {
	var entries []models.Education
	doc.Find("section[data-section='education'] " + selListItem).Each(func(_ int, item *goquery.Selection) {
		entry := models.Education{
			School: text(item.Find(selItemTitle).First()),
			Degree: text(item.Find(selItemMeta).First()),
			Dates:  text(item.Find(selItemDates).First()),
		}
		if entry.School == "" {
			return
		}
		entries = append(entries, entry)
	})
	return entries
}

func parseSkills(doc *goquery.Document) []string {
	var skills []string
	seen := make(map[string]bool)
	doc.Find("section[data-section='skills'] span[aria-hidden='true']").Each(func(_ int, el *goquery.Selection) {
		skill := text(el)
		if skill != "" && !seen[skill] {
			seen[skill] = true
			skills = append(skills, skill)
		}
	})
	return skills
}

func parseCertifications(doc *goquery.Document) []models.Certification {
	var entries []models.Certification
	doc.Find("section[data-section='certifications'] " + selListItem).Each(func(_ int, item *goquery.Selection) {
		entry := models.Certification{
			Name:   text(item.Find(selItemTitle).First()),
			Issuer: text(item.Find(selItemMeta).First()),
			Date:   text(item.Find(selItemDates).First()),
		}
		if entry.Name == "" {
			return
		}
		entries = append(entries, entry)
	})
	return entries
}

func parseLanguages(doc *goquery.Document) []string {
	var languages []string
	seen := make(map[string]bool)
	doc.Find("section[data-section='languages'] " + selListItem).Each(func(_ int, item *goquery.Selection) {
		lang := text(item.Find(selItemTitle).First())
		if lang != "" && !seen[lang] {
			seen[lang] = true
			languages = append(languages, lang)
		}
	})
	return languages
}

// text returns trimmed text of a selection, empty when nothing matched
func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
