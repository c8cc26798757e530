// Package site renders the editable content of the marketing page: the
// services catalogue, the review ribbon and the footer.
package site

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/hestia/internal/config"
	"github.com/UnknownOlympus/hestia/internal/dom"
	"github.com/UnknownOlympus/hestia/internal/models"
)

// Element handles filled from the site content.
const (
	ServiceSelectID = "serviceType"
	ServicesGridID  = "servicesGrid"
	RatingID        = "googleRating"
	TotalReviewsID  = "totalReviews"
	ReviewLinkID    = "googleReviewLink"
	FooterID        = "footerContent"
	RibbonClass     = "google-reviews-ribbon"
	StarsClass      = "stars"
)

// Attributes of the quote form carrying its timings.
const (
	FormID         = "multiStepForm"
	DebounceAttr   = "data-debounce"
	MinQueryAttr   = "data-min-query"
	ResetDelayAttr = "data-reset-delay"
)

// PlaceholderOption is the label of the empty choice of the service select.
const PlaceholderOption = "Select a service..."

const maxStars = 5

// PopulateServices fills the service select with a disabled placeholder and one
// option per service. It returns false when the page has no service select.
func PopulateServices(doc *dom.Document, services []models.Service) bool {
	sel := doc.ByID(ServiceSelectID)
	if sel == nil {
		return false
	}

	sel.SetText("")
	placeholder := sel.AppendOption("", PlaceholderOption)
	placeholder.SetAttr("selected", "")
	placeholder.SetAttr("disabled", "")
	for _, service := range services {
		sel.AppendOption(service.ID, service.Title)
	}

	return true
}

// RenderServices writes a card per service into the services grid.
func RenderServices(doc *dom.Document, services []models.Service) bool {
	grid := doc.ByID(ServicesGridID)
	if grid == nil {
		return false
	}

	grid.SetText("")
	for _, service := range services {
		card := dom.NewElement("div", "service-card")
		card.SetAttr("data-service", service.ID)
		card.AppendChild(textElement("div", "price-tag", service.Price))
		card.AppendChild(textElement("span", "service-icon", service.Icon))
		card.AppendChild(textElement("h3", "", service.Title))
		card.AppendChild(textElement("p", "", service.Description))
		grid.AppendChild(card)
	}

	return true
}

// RenderReviews fills the review ribbon. Missing elements are skipped.
func RenderReviews(doc *dom.Document, reviews config.Reviews) {
	if el := doc.ByID(RatingID); el != nil {
		el.SetText(strconv.FormatFloat(reviews.Rating, 'f', -1, 64))
	}
	if el := doc.ByID(TotalReviewsID); el != nil {
		el.SetText(strconv.Itoa(reviews.Total))
	}
	if el := doc.ByID(ReviewLinkID); el != nil && reviews.Link != "" {
		el.SetAttr("href", reviews.Link)
	}
	if ribbon := doc.FindFirstByClass(RibbonClass); ribbon != nil {
		if stars := ribbon.FindFirstByClass(StarsClass); stars != nil {
			stars.SetText(Stars(reviews.Rating))
		}
	}
}

// RenderFooter writes the company block into the footer.
func RenderFooter(doc *dom.Document, company config.Company) bool {
	footer := doc.ByID(FooterID)
	if footer == nil {
		return false
	}

	footer.SetText("")
	about := dom.NewElement("div", "footer-section")
	about.AppendChild(textElement("h4", "", company.Name))
	footer.AppendChild(about)

	contact := dom.NewElement("div", "footer-section")
	contact.AppendChild(textElement("h4", "", "Contact Info"))
	for _, line := range []string{
		"📞 " + company.Phone,
		"📧 " + company.Email,
		"📍 " + company.Address,
		"🕒 " + company.Hours,
		"📌 ABN " + company.ABN,
	} {
		contact.AppendChild(textElement("p", "", line))
	}
	footer.AppendChild(contact)

	return true
}

// AnnotateForm records the form timings on the quote form so the page picks
// them up at boot. Zero values are left out.
func AnnotateForm(doc *dom.Document, form config.FormConfig) bool {
	el := doc.ByID(FormID)
	if el == nil {
		return false
	}

	if form.Debounce > 0 {
		el.SetAttr(DebounceAttr, form.Debounce.String())
	}
	if form.MinQuery > 0 {
		el.SetAttr(MinQueryAttr, strconv.Itoa(form.MinQuery))
	}
	if form.ResetDelay > 0 {
		el.SetAttr(ResetDelayAttr, form.ResetDelay.String())
	}

	return true
}

// FormSettings reads the timings written by AnnotateForm. Missing or malformed
// attributes stay zero.
func FormSettings(doc *dom.Document) config.FormConfig {
	var form config.FormConfig
	el := doc.ByID(FormID)
	if el == nil {
		return form
	}

	if raw, ok := el.Attr(DebounceAttr); ok {
		form.Debounce, _ = time.ParseDuration(raw)
	}
	if raw, ok := el.Attr(MinQueryAttr); ok {
		form.MinQuery, _ = strconv.Atoi(raw)
	}
	if raw, ok := el.Attr(ResetDelayAttr); ok {
		form.ResetDelay, _ = time.ParseDuration(raw)
	}

	return form
}

// Search returns the services whose title, description or one of the features
// contains query, ignoring case.
func Search(services []models.Service, query string) []models.Service {
	term := strings.ToLower(strings.TrimSpace(query))
	var found []models.Service
	for _, service := range services {
		if matches(service, term) {
			found = append(found, service)
		}
	}

	return found
}

func matches(service models.Service, term string) bool {
	if strings.Contains(strings.ToLower(service.Title), term) ||
		strings.Contains(strings.ToLower(service.Description), term) {
		return true
	}
	for _, feature := range service.Features {
		if strings.Contains(strings.ToLower(feature), term) {
			return true
		}
	}

	return false
}

// Stars renders a rating out of five: a full star per whole point, an outline
// star for a fraction of one half or more, outline stars for the rest.
func Stars(rating float64) string {
	rating = math.Max(0, math.Min(rating, maxStars))
	full := int(math.Floor(rating))
	half := 0
	if rating-float64(full) >= 0.5 {
		half = 1
	}

	return strings.Repeat("★", full) + strings.Repeat("☆", half) + strings.Repeat("☆", maxStars-full-half)
}

func textElement(tag, class, text string) *dom.Element {
	el := dom.NewElement(tag)
	if class != "" {
		el.AddClass(class)
	}
	el.SetText(text)

	return el
}
