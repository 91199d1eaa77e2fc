// Package detector inspects parsed page content for WCAG accessibility
// issues. Every check is a pure function over the document: no check depends
// on another check's output, so the set is composable and order-independent.
package detector

import (
	"log"

	"github.com/PuerkitoBio/goquery"

	"github.com/drishyascan/a11y-scanner/internal/db"
)

// CheckFunc inspects a document and returns zero or more findings.
type CheckFunc func(doc *goquery.Document) []db.Finding

// Check is a named rule that can be registered with the detector.
type Check struct {
	Name string
	Fn   CheckFunc
	Deep bool // runs only when the scan is a deep scan
}

// Checks returns the full registry in registration order. Report order
// follows this order, but the checks themselves are order-independent.
func Checks() []Check {
	return []Check{
		{Name: "image_alt_text", Fn: checkImageAltText},
		{Name: "heading_hierarchy", Fn: checkHeadingHierarchy},
		{Name: "form_labels", Fn: checkFormLabels},
		{Name: "color_contrast", Fn: checkColorContrast},
		{Name: "link_text", Fn: checkLinkText},
		{Name: "table_structure", Fn: checkTableStructure},
		{Name: "aria_usage", Fn: checkARIAUsage},
		{Name: "keyboard_access", Fn: checkKeyboardAccessibility},
		{Name: "document_language", Fn: checkLanguageAttribute},
		{Name: "frame_titles", Fn: checkFrameTitles, Deep: true},
		{Name: "page_title", Fn: checkPageTitle, Deep: true},
		{Name: "skip_links", Fn: checkSkipLinks, Deep: true},
		{Name: "pdf_links", Fn: checkPDFLinks, Deep: true},
		{Name: "video_accessibility", Fn: checkVideoAccessibility, Deep: true},
		{Name: "audio_accessibility", Fn: checkAudioAccessibility, Deep: true},
		{Name: "dynamic_content", Fn: checkDynamicContent, Deep: true},
	}
}

// Run executes all applicable checks against a document and returns the
// concatenated findings. A panicking check is logged and skipped; the
// remaining checks still run.
func Run(doc *goquery.Document, deep bool) []db.Finding {
	var findings []db.Finding
	for _, check := range Checks() {
		if check.Deep && !deep {
			continue
		}
		findings = append(findings, runCheck(check, doc)...)
	}
	return findings
}

func runCheck(check Check, doc *goquery.Document) (findings []db.Finding) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Check %s panicked, skipping: %v", check.Name, r)
			findings = nil
		}
	}()
	return check.Fn(doc)
}

// finding builds an unsaved finding; the scan id is assigned when the batch
// is persisted.
func finding(category db.IssueCategory, severity db.Severity, description, selector string) db.Finding {
	return db.Finding{
		Category:        category,
		Description:     description,
		ElementSelector: selector,
		Severity:        severity,
	}
}
