package site

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/UnknownOlympus/hestia/internal/config"
	"github.com/UnknownOlympus/hestia/internal/dom"
	"github.com/UnknownOlympus/hestia/internal/fragment"
)

// Mounts lists the fragments of the page and their placeholders.
var Mounts = []fragment.Mount{
	{URL: "navbar.html", PlaceholderID: "navbar-placeholder"},
	{URL: "hero.html", PlaceholderID: "hero-placeholder"},
	{URL: "quote.html", PlaceholderID: "quote-placeholder"},
	{URL: "footer.html", PlaceholderID: "footer-placeholder"},
}

// Assembler builds the landing page from the layout, the fragments and the
// site content.
type Assembler struct {
	loader  *fragment.Loader
	layout  string
	baseURL string
	site    *config.Site
	form    config.FormConfig
	log     *slog.Logger
}

// NewAssembler creates an Assembler. Fragment URLs are resolved against baseURL.
func NewAssembler(
	loader *fragment.Loader,
	layout, baseURL string,
	site *config.Site,
	form config.FormConfig,
	log *slog.Logger,
) *Assembler {
	return &Assembler{
		loader:  loader,
		layout:  layout,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		site:    site,
		form:    form,
		log:     log,
	}
}

// Render writes the assembled page to w. Fragments that fail to load leave
// their placeholder empty; only an unreadable layout is an error.
func (a *Assembler) Render(ctx context.Context, w io.Writer) error {
	doc, err := a.Document(ctx)
	if err != nil {
		return err
	}

	return doc.Render(w)
}

// Document returns the assembled page as a document.
func (a *Assembler) Document(ctx context.Context) (*dom.Document, error) {
	file, err := os.Open(a.layout)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout: %w", err)
	}
	defer file.Close()

	doc, err := dom.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	mounts := make([]fragment.Mount, len(Mounts))
	for i, m := range Mounts {
		mounts[i] = fragment.Mount{URL: a.baseURL + "/" + m.URL, PlaceholderID: m.PlaceholderID}
	}
	loaded := a.loader.LoadAll(ctx, doc, mounts)
	a.log.DebugContext(ctx, "Page assembled", "fragments", loaded, "of", len(mounts))

	PopulateServices(doc, a.site.Services)
	RenderServices(doc, a.site.Services)
	RenderReviews(doc, a.site.Reviews)
	RenderFooter(doc, a.site.Company)
	AnnotateForm(doc, a.form)

	return doc, nil
}
