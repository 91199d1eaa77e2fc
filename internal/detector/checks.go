package detector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/drishyascan/a11y-scanner/internal/db"
)

var redundantAltPhrases = []string{"image of", "picture of"}

// checkImageAltText flags images with missing, too-short, or redundant alt
// text.
func checkImageAltText(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		alt := img.AttrOr("alt", "")
		src := img.AttrOr("src", "")

		selector := "img"
		if src != "" {
			selector = fmt.Sprintf("img with src=%q", src)
		}

		switch {
		case alt == "":
			findings = append(findings, finding(db.CategoryAltText, db.SeverityHigh,
				"Image is missing alt text", selector))
		case len(alt) < 5:
			findings = append(findings, finding(db.CategoryAltText, db.SeverityMedium,
				fmt.Sprintf("Image has potentially insufficient alt text: %q", alt),
				fmt.Sprintf("img with alt=%q", alt)))
		case containsAny(strings.ToLower(alt), redundantAltPhrases):
			findings = append(findings, finding(db.CategoryAltText, db.SeverityLow,
				fmt.Sprintf("Image has redundant text in alt attribute: %q", alt),
				fmt.Sprintf("img with alt=%q", alt)))
		}
	})

	return findings
}

// checkHeadingHierarchy verifies the page has exactly one h1, starts its
// heading outline at h1, and never skips a level.
func checkHeadingHierarchy(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	h1Count := doc.Find("h1").Length()
	if h1Count == 0 {
		findings = append(findings, finding(db.CategoryHeadingStructure, db.SeverityHigh,
			"Page is missing an H1 heading", "document"))
	} else if h1Count > 1 {
		findings = append(findings, finding(db.CategoryHeadingStructure, db.SeverityMedium,
			fmt.Sprintf("Page has multiple H1 headings (%d)", h1Count), "h1"))
	}

	previousLevel := 0
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, heading *goquery.Selection) {
		tag := goquery.NodeName(heading)
		currentLevel, err := strconv.Atoi(tag[1:])
		if err != nil {
			return
		}

		if previousLevel == 0 && currentLevel != 1 {
			findings = append(findings, finding(db.CategoryHeadingStructure, db.SeverityMedium,
				fmt.Sprintf("First heading is not an H1, found %s instead", tag),
				fmt.Sprintf("%s: %q", tag, strings.TrimSpace(heading.Text()))))
		}

		if previousLevel > 0 && currentLevel > previousLevel+1 {
			findings = append(findings, finding(db.CategoryHeadingStructure, db.SeverityMedium,
				fmt.Sprintf("Heading level skipped from H%d to H%d", previousLevel, currentLevel),
				fmt.Sprintf("%s: %q", tag, strings.TrimSpace(heading.Text()))))
		}

		previousLevel = currentLevel
	})

	return findings
}

// checkFormLabels verifies every visible form control carries a usable label:
// a label[for], an aria-label, or a valid aria-labelledby reference.
func checkFormLabels(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	doc.Find("input, select, textarea").Each(func(_ int, control *goquery.Selection) {
		inputType := control.AttrOr("type", "")
		if inputType == "hidden" || inputType == "submit" || inputType == "button" || inputType == "image" {
			return
		}

		tag := goquery.NodeName(control)
		id := control.AttrOr("id", "")
		hasLabel := false

		if id != "" {
			label := doc.Find(fmt.Sprintf("label[for='%s']", id))
			if label.Length() > 0 {
				hasLabel = true
				if strings.TrimSpace(label.First().Text()) == "" {
					findings = append(findings, finding(db.CategoryFormLabels, db.SeverityHigh,
						"Form control has an empty label",
						fmt.Sprintf("%s with id=%q", tag, id)))
				}
			}
		}

		if ariaLabel, ok := control.Attr("aria-label"); ok && ariaLabel != "" {
			hasLabel = true
			if len(ariaLabel) < 3 {
				findings = append(findings, finding(db.CategoryFormLabels, db.SeverityMedium,
					fmt.Sprintf("Form control has potentially insufficient aria-label: %q", ariaLabel),
					fmt.Sprintf("%s with aria-label=%q", tag, ariaLabel)))
			}
		}

		if labelledBy, ok := control.Attr("aria-labelledby"); ok && labelledBy != "" {
			hasLabel = true
			referenced := doc.Find("#" + labelledBy)
			if referenced.Length() == 0 {
				findings = append(findings, finding(db.CategoryFormLabels, db.SeverityHigh,
					"Form control references non-existent element with aria-labelledby",
					fmt.Sprintf("%s with aria-labelledby=%q", tag, labelledBy)))
			} else if strings.TrimSpace(referenced.First().Text()) == "" {
				findings = append(findings, finding(db.CategoryFormLabels, db.SeverityHigh,
					"Form control references an empty element with aria-labelledby",
					fmt.Sprintf("%s with aria-labelledby=%q", tag, labelledBy)))
			}
		}

		if !hasLabel {
			selector := tag
			if id != "" {
				selector = fmt.Sprintf("%s with id=%q", tag, id)
			}
			findings = append(findings, finding(db.CategoryFormLabels, db.SeverityHigh,
				"Form control has no associated label", selector))
		}

		if placeholder := control.AttrOr("placeholder", ""); placeholder != "" && !hasLabel {
			findings = append(findings, finding(db.CategoryFormLabels, db.SeverityMedium,
				"Form control uses placeholder as the only label",
				fmt.Sprintf("%s with placeholder=%q", tag, placeholder)))
		}
	})

	return findings
}

var inlineColorPattern = regexp.MustCompile(`color:#([0-9a-fA-F]{3,6})`)

var lowContrastClasses = []string{"light", "subtle", "gray", "grey"}

// checkColorContrast applies a deterministic heuristic: inline hex colors are
// always flagged for manual review, and class names that conventionally
// signal faint text are flagged at low severity. Real contrast-ratio math
// would need resolved CSS and a rendered background.
func checkColorContrast(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	doc.Find("[style*='color'], [class*='light'], [class*='subtle'], [class*='gray'], [class*='grey']").
		Each(func(_ int, el *goquery.Selection) {
			tag := goquery.NodeName(el)
			style := el.AttrOr("style", "")

			if match := inlineColorPattern.FindStringSubmatch(style); match != nil {
				findings = append(findings, finding(db.CategoryContrast, db.SeverityMedium,
					"Element may have insufficient color contrast",
					fmt.Sprintf("%s with style containing color:#%s", tag, match[1])))
				return
			}

			for _, class := range lowContrastClasses {
				if el.HasClass(class) {
					findings = append(findings, finding(db.CategoryContrast, db.SeverityLow,
						fmt.Sprintf("Element uses class '%s' which may indicate low contrast text", class),
						fmt.Sprintf("%s with class containing '%s'", tag, class)))
					return
				}
			}
		})

	return findings
}

var genericLinkPhrases = map[string]bool{
	"click here": true,
	"read more":  true,
	"more":       true,
	"details":    true,
	"learn more": true,
}

// checkLinkText flags links whose text does not convey their purpose.
func checkLinkText(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	doc.Find("a").Each(func(_ int, link *goquery.Selection) {
		href := link.AttrOr("href", "")
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		text := strings.TrimSpace(link.Text())
		images := link.Find("img")

		if text == "" && images.Length() == 0 {
			findings = append(findings, finding(db.CategoryLinkPurpose, db.SeverityHigh,
				"Link has no text content",
				fmt.Sprintf("a href=%q", href)))
			return
		}

		if genericLinkPhrases[strings.ToLower(text)] {
			findings = append(findings, finding(db.CategoryLinkPurpose, db.SeverityMedium,
				fmt.Sprintf("Link uses generic text: %q", text),
				fmt.Sprintf("a: %q", text)))
		}

		if images.Length() > 0 && text == "" {
			if images.First().AttrOr("alt", "") == "" {
				findings = append(findings, finding(db.CategoryLinkPurpose, db.SeverityHigh,
					"Link contains an image without alt text",
					fmt.Sprintf("a href=%q containing img", href)))
			}
		}
	})

	return findings
}

// checkTableStructure verifies data tables carry captions, header cells, and
// scope attributes.
func checkTableStructure(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if table.Find("caption").Length() == 0 {
			findings = append(findings, finding(db.CategoryTableHeaders, db.SeverityMedium,
				"Table is missing a caption", "table"))
		}

		headers := table.Find("th")
		if headers.Length() == 0 {
			findings = append(findings, finding(db.CategoryTableHeaders, db.SeverityHigh,
				"Table has no header cells (th elements)", "table"))
		}

		headers.Each(func(_ int, header *goquery.Selection) {
			if _, ok := header.Attr("scope"); !ok {
				findings = append(findings, finding(db.CategoryTableHeaders, db.SeverityMedium,
					"Table header lacks scope attribute",
					fmt.Sprintf("th: %q", strings.TrimSpace(header.Text()))))
			}
		})

		if table.Find("thead").Length() == 0 && table.Find("tbody").Length() > 0 {
			findings = append(findings, finding(db.CategoryTableHeaders, db.SeverityLow,
				"Table has tbody but no thead element", "table"))
		}
	})

	return findings
}

var landmarkRoles = map[string]bool{
	"navigation":    true,
	"main":          true,
	"complementary": true,
	"banner":        true,
	"contentinfo":   true,
}

var appropriateButtonRoleTags = map[string]bool{
	"button": true,
	"a":      true,
	"input":  true,
	"div":    true,
	"span":   true,
}

// checkARIAUsage validates landmark naming, required role attributes, and
// redundant explicit roles.
func checkARIAUsage(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	doc.Find("[role]").Each(func(_ int, el *goquery.Selection) {
		role := el.AttrOr("role", "")
		if role == "" || role == "none" || role == "presentation" {
			return
		}

		tag := goquery.NodeName(el)

		if landmarkRoles[role] {
			_, hasAriaLabel := el.Attr("aria-label")
			_, hasLabelledBy := el.Attr("aria-labelledby")
			if !hasAriaLabel && !hasLabelledBy {
				findings = append(findings, finding(db.CategoryARIAAttributes, db.SeverityMedium,
					fmt.Sprintf("Landmark role '%s' has no accessible name", role),
					fmt.Sprintf("%s with role=%q", tag, role)))
			}
		}

		if role == "combobox" {
			if _, ok := el.Attr("aria-expanded"); !ok {
				findings = append(findings, finding(db.CategoryARIAAttributes, db.SeverityHigh,
					"Element with role='combobox' is missing required attribute aria-expanded",
					fmt.Sprintf("%s with role=\"combobox\"", tag)))
			}
		}

		if role == "button" && !appropriateButtonRoleTags[tag] {
			findings = append(findings, finding(db.CategoryARIAAttributes, db.SeverityMedium,
				fmt.Sprintf("Role 'button' used on inappropriate element type: %s", tag),
				fmt.Sprintf("%s with role=\"button\"", tag)))
		}
	})

	doc.Find("button[role='button'], a[role='link'], input[type='checkbox'][role='checkbox']").
		Each(func(_ int, el *goquery.Selection) {
			findings = append(findings, finding(db.CategoryARIAAttributes, db.SeverityLow,
				"Element has redundant role that matches its implicit role",
				fmt.Sprintf("%s with role=%q", goquery.NodeName(el), el.AttrOr("role", ""))))
		})

	return findings
}

var nativelyFocusableTags = map[string]bool{
	"button": true,
	"a":      true,
	"input":  true,
}

// checkKeyboardAccessibility flags tabindex misuse and interactive elements
// that keyboard users cannot reach.
func checkKeyboardAccessibility(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	doc.Find("[tabindex^='-']").Each(func(_ int, el *goquery.Selection) {
		tabindex := el.AttrOr("tabindex", "")
		findings = append(findings, finding(db.CategoryKeyboardNavigation, db.SeverityMedium,
			fmt.Sprintf("Element uses negative tabindex: %s", tabindex),
			fmt.Sprintf("%s with tabindex=%q", goquery.NodeName(el), tabindex)))
	})

	doc.Find("[tabindex]").Each(func(_ int, el *goquery.Selection) {
		tabindex, err := strconv.Atoi(el.AttrOr("tabindex", ""))
		if err != nil || tabindex <= 0 {
			return
		}
		findings = append(findings, finding(db.CategoryKeyboardNavigation, db.SeverityLow,
			fmt.Sprintf("Element uses positive tabindex: %d", tabindex),
			fmt.Sprintf("%s with tabindex=\"%d\"", goquery.NodeName(el), tabindex)))
	})

	doc.Find("[role='button'], [role='link'], [role='checkbox'], [role='radio'], [role='tab']").
		Each(func(_ int, el *goquery.Selection) {
			tag := goquery.NodeName(el)
			if _, hasTabindex := el.Attr("tabindex"); !hasTabindex && !nativelyFocusableTags[tag] {
				findings = append(findings, finding(db.CategoryKeyboardNavigation, db.SeverityHigh,
					"Interactive element not keyboard accessible",
					fmt.Sprintf("%s with role=%q", tag, el.AttrOr("role", ""))))
			}
		})

	doc.Find("[onclick]:not([onkeydown]):not([onkeyup]):not([onkeypress])").
		Each(func(_ int, el *goquery.Selection) {
			tag := goquery.NodeName(el)
			_, hasRole := el.Attr("role")
			if !nativelyFocusableTags[tag] && !hasRole {
				findings = append(findings, finding(db.CategoryKeyboardNavigation, db.SeverityMedium,
					"Element has click handler but no keyboard event handlers",
					fmt.Sprintf("%s with onclick handler", tag)))
			}
		})

	return findings
}

// checkLanguageAttribute verifies the root element declares a plausible
// language and nested lang overrides are not empty.
func checkLanguageAttribute(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	html := doc.Find("html").First()
	if html.Length() > 0 {
		lang, hasLang := html.Attr("lang")
		lang = strings.TrimSpace(lang)
		switch {
		case !hasLang:
			findings = append(findings, finding(db.CategoryDocumentLanguage, db.SeverityHigh,
				"HTML element is missing lang attribute", "html"))
		case lang == "":
			findings = append(findings, finding(db.CategoryDocumentLanguage, db.SeverityHigh,
				"HTML element has empty lang attribute", `html lang=""`))
		case len(lang) == 1 || (len(lang) > 2 && !strings.Contains(lang, "-")):
			findings = append(findings, finding(db.CategoryDocumentLanguage, db.SeverityMedium,
				fmt.Sprintf("HTML element has potentially invalid lang attribute: %q", lang),
				fmt.Sprintf("html lang=%q", lang)))
		}
	}

	doc.Find("[lang]").Not("html").Each(func(_ int, el *goquery.Selection) {
		if strings.TrimSpace(el.AttrOr("lang", "")) == "" {
			findings = append(findings, finding(db.CategoryDocumentLanguage, db.SeverityMedium,
				"Element has empty lang attribute",
				fmt.Sprintf("%s lang=\"\"", goquery.NodeName(el))))
		}
	})

	return findings
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
