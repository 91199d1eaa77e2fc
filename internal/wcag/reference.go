// Package wcag maps issue categories to WCAG 2.1 criteria and help URLs.
package wcag

import "github.com/drishyascan/a11y-scanner/internal/db"

const quickRefBase = "https://www.w3.org/WAI/WCAG21/quickref/"

var criteria = map[db.IssueCategory]string{
	db.CategoryContrast:            "1.4.3 Contrast (Minimum)",
	db.CategoryAltText:             "1.1.1 Non-text Content",
	db.CategoryHeadingStructure:    "1.3.1 Info and Relationships",
	db.CategoryKeyboardNavigation:  "2.1.1 Keyboard",
	db.CategoryFormLabels:          "3.3.2 Labels or Instructions",
	db.CategoryARIAAttributes:      "4.1.2 Name, Role, Value",
	db.CategoryColorAlone:          "1.4.1 Use of Color",
	db.CategoryLinkPurpose:         "2.4.4 Link Purpose (In Context)",
	db.CategoryTableHeaders:        "1.3.1 Info and Relationships",
	db.CategoryErrorIdentification: "3.3.1 Error Identification",
	db.CategoryFocusVisible:        "2.4.7 Focus Visible",
	db.CategoryDocumentLanguage:    "3.1.1 Language of Page",
	db.CategoryTextResize:          "1.4.4 Resize Text",
	db.CategoryAudioControl:        "1.4.2 Audio Control",
	db.CategoryTextSpacing:         "1.4.12 Text Spacing",
}

var helpURLs = map[db.IssueCategory]string{
	db.CategoryContrast:            quickRefBase + "#contrast-minimum",
	db.CategoryAltText:             quickRefBase + "#non-text-content",
	db.CategoryHeadingStructure:    quickRefBase + "#info-and-relationships",
	db.CategoryKeyboardNavigation:  quickRefBase + "#keyboard",
	db.CategoryFormLabels:          quickRefBase + "#labels-or-instructions",
	db.CategoryARIAAttributes:      quickRefBase + "#name-role-value",
	db.CategoryColorAlone:          quickRefBase + "#use-of-color",
	db.CategoryLinkPurpose:         quickRefBase + "#link-purpose-in-context",
	db.CategoryTableHeaders:        quickRefBase + "#info-and-relationships",
	db.CategoryErrorIdentification: quickRefBase + "#error-identification",
	db.CategoryFocusVisible:        quickRefBase + "#focus-visible",
	db.CategoryDocumentLanguage:    quickRefBase + "#language-of-page",
	db.CategoryTextResize:          quickRefBase + "#resize-text",
	db.CategoryAudioControl:        quickRefBase + "#audio-control",
	db.CategoryTextSpacing:         quickRefBase + "#text-spacing",
}

// Criterion returns the WCAG criterion for an issue category.
func Criterion(category db.IssueCategory) string {
	if c, ok := criteria[category]; ok {
		return c
	}
	return "Unknown WCAG criterion"
}

// HelpURL returns the quick-reference URL for an issue category.
func HelpURL(category db.IssueCategory) string {
	if u, ok := helpURLs[category]; ok {
		return u
	}
	return quickRefBase
}
