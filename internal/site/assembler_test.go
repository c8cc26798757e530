package site_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/hestia/internal/config"
	"github.com/UnknownOlympus/hestia/internal/fragment"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/site"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembler_Render(t *testing.T) {
	server := httptest.NewServer(http.FileServer(http.Dir("../../web/components")))
	defer server.Close()

	content, err := config.LoadSite("../../web/site.yaml")
	require.NoError(t, err)

	m := metrics.NewMetrics(prometheus.NewRegistry())
	loader := fragment.NewLoader(slog.Default(), m)
	assembler := site.NewAssembler(loader, "../../web/layout.html", server.URL+"/", content,
		config.FormConfig{Debounce: 300 * time.Millisecond, MinQuery: 3, ResetDelay: 5 * time.Second}, slog.Default())

	var buf bytes.Buffer
	require.NoError(t, assembler.Render(t.Context(), &buf))

	page := buf.String()
	assert.Contains(t, page, `id="multiStepForm"`)
	assert.Contains(t, page, `<option value="bond_cleaning">Bond Cleaning</option>`)
	assert.Contains(t, page, "Servicing Brisbane North Side")
	assert.Contains(t, page, "★★★★☆")
	assert.Contains(t, page, `class="service-card"`)
	assert.Contains(t, page, `data-debounce="300ms"`)
	assert.Contains(t, page, `data-reset-delay="5s"`)
	assert.InDelta(t, 4, testutil.ToFloat64(m.FragmentLoads.WithLabelValues("success")), 0)
}

func TestAssembler_MissingFragment(t *testing.T) {
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	filet.File(t, dir+"/navbar.html", `<nav>nav</nav>`)
	layout := filet.TmpFile(t, "", `<html><body><div id="navbar-placeholder"></div>`+
		`<div id="quote-placeholder"></div><select id="serviceType"></select></body></html>`)

	server := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer server.Close()

	m := metrics.NewMetrics(prometheus.NewRegistry())
	assembler := site.NewAssembler(fragment.NewLoader(slog.Default(), m), layout.Name(), server.URL,
		&config.Site{Services: services}, config.FormConfig{}, slog.Default())

	doc, err := assembler.Document(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "nav", doc.ByID("navbar-placeholder").Text())
	assert.Empty(t, doc.ByID("quote-placeholder").InnerHTML())
	assert.Len(t, doc.ByID(site.ServiceSelectID).Options(), 4)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FragmentLoads.WithLabelValues("success")), 0)
}

func TestAssembler_MissingLayout(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	assembler := site.NewAssembler(fragment.NewLoader(slog.Default(), m), "no-such-layout.html", "http://localhost", &config.Site{}, config.FormConfig{}, slog.Default())

	var buf bytes.Buffer
	err := assembler.Render(t.Context(), &buf)

	require.ErrorContains(t, err, "failed to open layout")
	assert.Zero(t, buf.Len())
}
