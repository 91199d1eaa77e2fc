package detector

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/drishyascan/a11y-scanner/internal/db"
)

// Deep-scan-only checks. Same isolation and severity policy as the core set,
// covering content that only matters once a full crawl is requested.

func checkFrameTitles(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	doc.Find("frame, iframe").Each(func(_ int, frame *goquery.Selection) {
		tag := goquery.NodeName(frame)
		title := strings.TrimSpace(frame.AttrOr("title", ""))
		src := frame.AttrOr("src", "")

		if title == "" {
			selector := tag
			if src != "" {
				selector = fmt.Sprintf("%s with src=%q", tag, src)
			}
			findings = append(findings, finding(db.CategoryARIAAttributes, db.SeverityHigh,
				"Frame or iframe is missing title attribute", selector))
		} else if len(title) < 5 {
			findings = append(findings, finding(db.CategoryARIAAttributes, db.SeverityMedium,
				fmt.Sprintf("Frame or iframe has potentially insufficient title: %q", title),
				fmt.Sprintf("%s with title=%q", tag, title)))
		}
	})

	return findings
}

var genericPageTitles = map[string]bool{"untitled": true, "document": true}

func checkPageTitle(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	titleElement := doc.Find("title").First()
	if titleElement.Length() == 0 {
		return append(findings, finding(db.CategoryHeadingStructure, db.SeverityHigh,
			"Page is missing a title element", "document head"))
	}

	title := strings.TrimSpace(titleElement.Text())
	switch {
	case title == "":
		findings = append(findings, finding(db.CategoryHeadingStructure, db.SeverityHigh,
			"Page has an empty title element", "title"))
	case len(title) < 5 || genericPageTitles[strings.ToLower(title)]:
		findings = append(findings, finding(db.CategoryHeadingStructure, db.SeverityMedium,
			fmt.Sprintf("Page has a non-descriptive title: %q", title),
			fmt.Sprintf("title: %q", title)))
	}

	return findings
}

func checkSkipLinks(doc *goquery.Document) []db.Finding {
	hasSkipLink := false

	doc.Find("a").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href := anchor.AttrOr("href", "")
		text := strings.ToLower(anchor.Text())

		if strings.HasPrefix(href, "#") &&
			(strings.Contains(text, "skip") || strings.Contains(text, "jump")) &&
			(strings.Contains(text, "nav") || strings.Contains(text, "menu") ||
				strings.Contains(text, "content") || strings.Contains(text, "main")) {
			hasSkipLink = true
			return false
		}
		return true
	})

	if !hasSkipLink && doc.Find("nav, [role='navigation']").Length() > 0 {
		return []db.Finding{finding(db.CategoryKeyboardNavigation, db.SeverityMedium,
			"Page with navigation lacks a skip link", "document body")}
	}

	return nil
}

func checkPDFLinks(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	doc.Find("a[href$='.pdf']").Each(func(_ int, link *goquery.Selection) {
		text := strings.TrimSpace(link.Text())
		if strings.Contains(strings.ToLower(text), "pdf") {
			return
		}
		findings = append(findings, finding(db.CategoryLinkPurpose, db.SeverityMedium,
			"Link to PDF does not identify file type in link text",
			fmt.Sprintf("a href=%q: %q", link.AttrOr("href", ""), text)))
	})

	return findings
}

func checkVideoAccessibility(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	doc.Find("video").Each(func(_ int, video *goquery.Selection) {
		if video.Find("track[kind='captions'], track[kind='subtitles']").Length() == 0 {
			findings = append(findings, finding(db.CategoryAudioControl, db.SeverityHigh,
				"Video element does not have captions", "video"))
		}

		_, hasControls := video.Attr("controls")
		if !hasControls {
			findings = append(findings, finding(db.CategoryKeyboardNavigation, db.SeverityMedium,
				"Video element lacks controls attribute", "video"))
		}

		if _, hasAutoplay := video.Attr("autoplay"); hasAutoplay && !hasControls {
			findings = append(findings, finding(db.CategoryAudioControl, db.SeverityHigh,
				"Video has autoplay enabled but no controls", "video with autoplay"))
		}
	})

	doc.Find("iframe[src*='youtube'], iframe[src*='vimeo'], iframe[src*='dailymotion']").
		Each(func(_ int, iframe *goquery.Selection) {
			src := iframe.AttrOr("src", "")

			if strings.TrimSpace(iframe.AttrOr("title", "")) == "" {
				findings = append(findings, finding(db.CategoryARIAAttributes, db.SeverityHigh,
					"Video iframe has no title attribute",
					fmt.Sprintf("iframe src=%q", src)))
			}

			if strings.Contains(src, "youtube") && !strings.Contains(src, "cc_load_policy=1") {
				findings = append(findings, finding(db.CategoryAudioControl, db.SeverityLow,
					"YouTube embed doesn't force captions (cc_load_policy=1)",
					fmt.Sprintf("iframe src=%q", src)))
			}
		})

	return findings
}

func checkAudioAccessibility(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	doc.Find("audio").Each(func(_ int, audio *goquery.Selection) {
		if _, hasControls := audio.Attr("controls"); !hasControls {
			findings = append(findings, finding(db.CategoryKeyboardNavigation, db.SeverityHigh,
				"Audio element lacks controls attribute", "audio"))
		}

		hasTranscriptLink := false
		audio.Parent().Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
			text := strings.ToLower(link.Text())
			if strings.Contains(text, "transcript") || strings.Contains(text, "text") ||
				strings.Contains(text, "script") {
				hasTranscriptLink = true
				return false
			}
			return true
		})

		if !hasTranscriptLink {
			findings = append(findings, finding(db.CategoryAudioControl, db.SeverityMedium,
				"No transcript link found near audio element", "audio"))
		}
	})

	return findings
}

var validAriaLiveValues = map[string]bool{"polite": true, "assertive": true, "off": true}

func checkDynamicContent(doc *goquery.Document) []db.Finding {
	var findings []db.Finding

	liveRegions := doc.Find("[aria-live]")
	if liveRegions.Length() == 0 {
		dynamicLooking := doc.Find("[id*='alert'], [id*='notification'], [id*='message'], [id*='update'], " +
			"[class*='alert'], [class*='notification'], [class*='message'], [class*='update']")
		if dynamicLooking.Length() > 0 {
			findings = append(findings, finding(db.CategoryARIAAttributes, db.SeverityLow,
				"Page may have dynamic content without aria-live regions", "document"))
		}
		return findings
	}

	liveRegions.Each(func(_ int, region *goquery.Selection) {
		value := region.AttrOr("aria-live", "")
		if !validAriaLiveValues[value] {
			findings = append(findings, finding(db.CategoryARIAAttributes, db.SeverityMedium,
				fmt.Sprintf("Element has invalid aria-live value: %q", value),
				fmt.Sprintf("%s with aria-live=%q", goquery.NodeName(region), value)))
		}
	})

	return findings
}
