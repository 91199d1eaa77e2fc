package detector

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drishyascan/a11y-scanner/internal/db"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// severities projects findings to their severities, keeping nil for an
// empty result so table rows can state "no findings" as nil.
func severities(findings []db.Finding) []db.Severity {
	var out []db.Severity
	for _, f := range findings {
		out = append(out, f.Severity)
	}
	return out
}

func TestSeveritiesNilForNoFindings(t *testing.T) {
	assert.Nil(t, severities(nil))
	assert.Nil(t, severities([]db.Finding{}))
	assert.Equal(t, []db.Severity{db.SeverityHigh},
		severities([]db.Finding{{Severity: db.SeverityHigh}}))
}

func TestCheckImageAltText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected []db.Severity
	}{
		{"missing alt", `<img src="a.png">`, []db.Severity{db.SeverityHigh}},
		{"empty alt", `<img src="a.png" alt="">`, []db.Severity{db.SeverityHigh}},
		{"short alt", `<img src="a.png" alt="dog">`, []db.Severity{db.SeverityMedium}},
		{"redundant alt", `<img src="a.png" alt="image of a dog">`, []db.Severity{db.SeverityLow}},
		{"good alt", `<img src="a.png" alt="A golden retriever in the park">`, nil},
		{"no images", `<p>text</p>`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := checkImageAltText(parse(t, tt.html))
			assert.Equal(t, tt.expected, severities(findings))
			for _, f := range findings {
				assert.Equal(t, db.CategoryAltText, f.Category)
			}
		})
	}
}

func TestCheckHeadingHierarchy(t *testing.T) {
	t.Run("missing h1", func(t *testing.T) {
		findings := checkHeadingHierarchy(parse(t, `<h2>Section</h2>`))
		require.Len(t, findings, 2)
		assert.Equal(t, db.SeverityHigh, findings[0].Severity)
		assert.Contains(t, findings[0].Description, "missing an H1")
		assert.Contains(t, findings[1].Description, "First heading is not an H1")
	})

	t.Run("multiple h1", func(t *testing.T) {
		findings := checkHeadingHierarchy(parse(t, `<h1>One</h1><h1>Two</h1>`))
		require.Len(t, findings, 1)
		assert.Equal(t, db.SeverityMedium, findings[0].Severity)
		assert.Contains(t, findings[0].Description, "multiple H1")
	})

	t.Run("level skip", func(t *testing.T) {
		findings := checkHeadingHierarchy(parse(t, `<h1>Title</h1><h3>Deep</h3>`))
		require.Len(t, findings, 1)
		assert.Contains(t, findings[0].Description, "skipped from H1 to H3")
	})

	t.Run("clean outline", func(t *testing.T) {
		findings := checkHeadingHierarchy(parse(t, `<h1>Title</h1><h2>Section</h2><h3>Sub</h3><h2>Other</h2>`))
		assert.Empty(t, findings)
	})

	t.Run("descending levels are fine", func(t *testing.T) {
		findings := checkHeadingHierarchy(parse(t, `<h1>Title</h1><h2>A</h2><h3>B</h3><h1>Back</h1>`))
		require.Len(t, findings, 1)
		assert.Contains(t, findings[0].Description, "multiple H1")
	})
}

func TestCheckFormLabels(t *testing.T) {
	t.Run("labelled input passes", func(t *testing.T) {
		html := `<label for="email">Email</label><input type="text" id="email">`
		assert.Empty(t, checkFormLabels(parse(t, html)))
	})

	t.Run("unlabelled input flagged", func(t *testing.T) {
		findings := checkFormLabels(parse(t, `<input type="text" id="email">`))
		require.Len(t, findings, 1)
		assert.Equal(t, db.SeverityHigh, findings[0].Severity)
		assert.Contains(t, findings[0].Description, "no associated label")
	})

	t.Run("hidden and buttons skipped", func(t *testing.T) {
		html := `<input type="hidden" name="csrf"><input type="submit" value="Go"><input type="button"><input type="image" src="b.png">`
		assert.Empty(t, checkFormLabels(parse(t, html)))
	})

	t.Run("short aria-label flagged medium", func(t *testing.T) {
		findings := checkFormLabels(parse(t, `<input type="text" aria-label="a">`))
		require.Len(t, findings, 1)
		assert.Equal(t, db.SeverityMedium, findings[0].Severity)
	})

	t.Run("dangling aria-labelledby flagged", func(t *testing.T) {
		findings := checkFormLabels(parse(t, `<input type="text" aria-labelledby="missing">`))
		require.Len(t, findings, 1)
		assert.Contains(t, findings[0].Description, "non-existent element")
	})

	t.Run("placeholder only flagged twice", func(t *testing.T) {
		findings := checkFormLabels(parse(t, `<input type="text" placeholder="Search">`))
		require.Len(t, findings, 2)
		assert.Contains(t, findings[0].Description, "no associated label")
		assert.Contains(t, findings[1].Description, "placeholder as the only label")
	})

	t.Run("select and textarea checked too", func(t *testing.T) {
		findings := checkFormLabels(parse(t, `<select></select><textarea></textarea>`))
		assert.Len(t, findings, 2)
	})
}

func TestCheckColorContrastIsDeterministic(t *testing.T) {
	html := `<p style="color:#ccc">faint</p><span class="subtle">note</span>`

	first := checkColorContrast(parse(t, html))
	require.Len(t, first, 2)
	assert.Equal(t, db.SeverityMedium, first[0].Severity)
	assert.Equal(t, db.SeverityLow, first[1].Severity)

	// same input, same output, every time
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, checkColorContrast(parse(t, html)))
	}
}

func TestCheckLinkText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected []db.Severity
	}{
		{"empty link", `<a href="/p"></a>`, []db.Severity{db.SeverityHigh}},
		{"generic text", `<a href="/p">click here</a>`, []db.Severity{db.SeverityMedium}},
		{"image link without alt", `<a href="/p"><img src="i.png" alt=""></a>`, []db.Severity{db.SeverityHigh}},
		{"image link with alt", `<a href="/p"><img src="i.png" alt="Product photo"></a>`, nil},
		{"descriptive text", `<a href="/p">Read the quarterly report</a>`, nil},
		{"anchor links skipped", `<a href="#top"></a>`, nil},
		{"href-less skipped", `<a></a>`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, severities(checkLinkText(parse(t, tt.html))))
		})
	}
}

func TestCheckTableStructure(t *testing.T) {
	t.Run("well formed table passes", func(t *testing.T) {
		html := `<table><caption>Sales</caption><thead><tr><th scope="col">Q1</th></tr></thead><tbody><tr><td>10</td></tr></tbody></table>`
		assert.Empty(t, checkTableStructure(parse(t, html)))
	})

	t.Run("headerless table flagged high", func(t *testing.T) {
		findings := checkTableStructure(parse(t, `<table><caption>S</caption><tr><td>10</td></tr></table>`))
		require.Len(t, findings, 1)
		assert.Equal(t, db.SeverityHigh, findings[0].Severity)
	})

	t.Run("scope and caption missing", func(t *testing.T) {
		findings := checkTableStructure(parse(t, `<table><tr><th>Q1</th></tr></table>`))
		require.Len(t, findings, 2)
		assert.Contains(t, findings[0].Description, "missing a caption")
		assert.Contains(t, findings[1].Description, "lacks scope")
	})
}

func TestCheckARIAUsage(t *testing.T) {
	t.Run("unnamed landmark", func(t *testing.T) {
		findings := checkARIAUsage(parse(t, `<div role="navigation"></div>`))
		require.Len(t, findings, 1)
		assert.Contains(t, findings[0].Description, "no accessible name")
	})

	t.Run("named landmark passes", func(t *testing.T) {
		assert.Empty(t, checkARIAUsage(parse(t, `<div role="navigation" aria-label="Main"></div>`)))
	})

	t.Run("combobox without aria-expanded", func(t *testing.T) {
		findings := checkARIAUsage(parse(t, `<div role="combobox"></div>`))
		require.Len(t, findings, 1)
		assert.Equal(t, db.SeverityHigh, findings[0].Severity)
	})

	t.Run("button role on wrong element", func(t *testing.T) {
		findings := checkARIAUsage(parse(t, `<li role="button">Go</li>`))
		require.Len(t, findings, 1)
		assert.Contains(t, findings[0].Description, "inappropriate element type: li")
	})

	t.Run("redundant role", func(t *testing.T) {
		findings := checkARIAUsage(parse(t, `<button role="button">Go</button>`))
		require.Len(t, findings, 1)
		assert.Equal(t, db.SeverityLow, findings[0].Severity)
	})
}

func TestCheckKeyboardAccessibility(t *testing.T) {
	t.Run("negative tabindex", func(t *testing.T) {
		findings := checkKeyboardAccessibility(parse(t, `<div tabindex="-1">x</div>`))
		require.Len(t, findings, 1)
		assert.Equal(t, db.SeverityMedium, findings[0].Severity)
	})

	t.Run("positive tabindex", func(t *testing.T) {
		findings := checkKeyboardAccessibility(parse(t, `<div tabindex="3">x</div>`))
		require.Len(t, findings, 1)
		assert.Equal(t, db.SeverityLow, findings[0].Severity)
	})

	t.Run("role without tabindex", func(t *testing.T) {
		findings := checkKeyboardAccessibility(parse(t, `<div role="button">Go</div>`))
		require.Len(t, findings, 1)
		assert.Equal(t, db.SeverityHigh, findings[0].Severity)
	})

	t.Run("native button with role is reachable", func(t *testing.T) {
		assert.Empty(t, checkKeyboardAccessibility(parse(t, `<button role="button">Go</button>`)))
	})

	t.Run("onclick without keyboard handlers", func(t *testing.T) {
		findings := checkKeyboardAccessibility(parse(t, `<div onclick="go()">x</div>`))
		require.Len(t, findings, 1)
		assert.Contains(t, findings[0].Description, "no keyboard event handlers")
	})

	t.Run("onclick with onkeydown passes", func(t *testing.T) {
		assert.Empty(t, checkKeyboardAccessibility(parse(t, `<div onclick="go()" onkeydown="go()">x</div>`)))
	})
}

func TestCheckLanguageAttribute(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected []db.Severity
	}{
		{"valid lang", `<html lang="en"><body></body></html>`, nil},
		{"valid regional lang", `<html lang="en-GB"><body></body></html>`, nil},
		{"missing lang", `<html><body></body></html>`, []db.Severity{db.SeverityHigh}},
		{"empty lang", `<html lang=""><body></body></html>`, []db.Severity{db.SeverityHigh}},
		{"single letter", `<html lang="e"><body></body></html>`, []db.Severity{db.SeverityMedium}},
		{"garbage lang", `<html lang="english"><body></body></html>`, []db.Severity{db.SeverityMedium}},
		{"nested empty lang", `<html lang="en"><body><span lang="">x</span></body></html>`, []db.Severity{db.SeverityMedium}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, severities(checkLanguageAttribute(parse(t, tt.html))))
		})
	}
}

func TestRunFiltersDeepChecks(t *testing.T) {
	// a page that only deep checks would flag
	html := `<html lang="en"><head><title>Team directory page</title></head><body>
		<h1>People</h1><iframe src="map.html"></iframe></body></html>`

	shallow := Run(parse(t, html), false)
	assert.Empty(t, shallow)

	deep := Run(parse(t, html), true)
	require.Len(t, deep, 1)
	assert.Contains(t, deep[0].Description, "missing title attribute")
}

func TestRunSurvivesPanickingCheck(t *testing.T) {
	doc := parse(t, `<html lang="en"><body><h1>ok</h1></body></html>`)

	boom := Check{Name: "boom", Fn: func(*goquery.Document) []db.Finding {
		panic("broken check")
	}}
	assert.Empty(t, runCheck(boom, doc))
}
