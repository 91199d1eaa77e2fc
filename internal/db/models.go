package db

import "time"

type ScanStatus string

const (
	StatusPending    ScanStatus = "PENDING"
	StatusInProgress ScanStatus = "IN_PROGRESS"
	StatusCompleted  ScanStatus = "COMPLETED"
	StatusFailed     ScanStatus = "FAILED"
	StatusCancelled  ScanStatus = "CANCELLED"
)

// AllScanStatuses lists every status, used by reports that must emit a count
// for each status even when it is zero.
var AllScanStatuses = []ScanStatus{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

// IsTerminal reports whether a scan in this status can no longer change state.
func (s ScanStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

var AllSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

type IssueCategory string

const (
	CategoryContrast            IssueCategory = "CONTRAST"
	CategoryAltText             IssueCategory = "ALT_TEXT"
	CategoryHeadingStructure    IssueCategory = "HEADING_STRUCTURE"
	CategoryKeyboardNavigation  IssueCategory = "KEYBOARD_NAVIGATION"
	CategoryFormLabels          IssueCategory = "FORM_LABELS"
	CategoryARIAAttributes      IssueCategory = "ARIA_ATTRIBUTES"
	CategoryColorAlone          IssueCategory = "COLOR_ALONE"
	CategoryLinkPurpose         IssueCategory = "LINK_PURPOSE"
	CategoryTableHeaders        IssueCategory = "TABLE_HEADERS"
	CategoryErrorIdentification IssueCategory = "ERROR_IDENTIFICATION"
	CategoryFocusVisible        IssueCategory = "FOCUS_VISIBLE"
	CategoryDocumentLanguage    IssueCategory = "DOCUMENT_LANGUAGE"
	CategoryTextResize          IssueCategory = "TEXT_RESIZE"
	CategoryAudioControl        IssueCategory = "AUDIO_CONTROL"
	CategoryTextSpacing         IssueCategory = "TEXT_SPACING"
)

var AllIssueCategories = []IssueCategory{
	CategoryContrast,
	CategoryAltText,
	CategoryHeadingStructure,
	CategoryKeyboardNavigation,
	CategoryFormLabels,
	CategoryARIAAttributes,
	CategoryColorAlone,
	CategoryLinkPurpose,
	CategoryTableHeaders,
	CategoryErrorIdentification,
	CategoryFocusVisible,
	CategoryDocumentLanguage,
	CategoryTextResize,
	CategoryAudioControl,
	CategoryTextSpacing,
}

// Scan represents one accessibility audit run against a URL.
type Scan struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	URL                  string     `gorm:"not null;size:768;index" json:"url"`
	ScanName             string     `gorm:"size:255" json:"scan_name"`
	Status               ScanStatus `gorm:"not null;size:20;default:'PENDING';index" json:"status"`
	StartedAt            *time.Time `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at"`
	PagesScanned         int        `json:"pages_scanned"`
	TotalElementsChecked int        `json:"total_elements_checked"`
	ComplianceScore      *float64   `json:"compliance_score"`
	IncludeScreenshots   bool       `json:"include_screenshots"`
	DeepScan             bool       `json:"deep_scan"`
	MaxPages             int        `json:"max_pages"`
	CallbackURL          string     `gorm:"size:500" json:"callback_url"`
	Notes                string     `gorm:"type:text" json:"notes"`
	ErrorMessage         string     `gorm:"type:text" json:"error_message"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	Findings             []Finding  `gorm:"foreignKey:ScanID;constraint:OnDelete:CASCADE" json:"-"`
}

// Finding represents a single accessibility issue detected during a scan.
// Findings are immutable once written; they are only removed by the cascading
// delete of their owning scan.
type Finding struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	ScanID          uint          `gorm:"not null;index" json:"scan_id"`
	Category        IssueCategory `gorm:"not null;size:40" json:"category"`
	Description     string        `gorm:"not null;size:500" json:"description"`
	ElementSelector string        `gorm:"not null;size:500" json:"element_selector"`
	Severity        Severity      `gorm:"not null;size:10" json:"severity"`
	CreatedAt       time.Time     `json:"created_at"`
}

type WebsiteStatus string

const (
	WebsiteActive   WebsiteStatus = "ACTIVE"
	WebsiteInactive WebsiteStatus = "INACTIVE"
)

// Website is a monitored site that the scheduler rescans on a fixed cadence.
type Website struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	URL       string        `gorm:"not null;size:768;uniqueIndex" json:"url"`
	Name      string        `gorm:"size:255" json:"name"`
	Status    WebsiteStatus `gorm:"not null;size:20;default:'ACTIVE'" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// User represents an authenticated user
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Password  string    `gorm:"not null;size:255" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
