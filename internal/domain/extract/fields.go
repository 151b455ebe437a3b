package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/internal/htmltext"
	"golang.org/x/net/html"
)

type anchorKind int

const (
	// structural anchors match a CSS selector, optionally qualified by the
	// element's exact heading text
	structural anchorKind = iota
	// textual anchors match elements of one tag whose own text carries a label
	textual
)

type valueRule int

const (
	// ownText reads the anchor itself, with a textual label removed
	ownText valueRule = iota
	// nextParagraph reads the first <p> after the anchor in document order
	nextParagraph
	// nextDiv reads the first <div> after the anchor in document order
	nextDiv
	// siblingList joins every <p> inside the anchor's first following <ul>
	siblingList
)

type anchor struct {
	kind     anchorKind
	selector string
	label    string
	// last picks the final match instead of the first
	last bool
}

type fieldSpec struct {
	name   string
	anchor anchor
	rule   valueRule
	assign func(r *domain.JobRecord, v string)
}

// detailFields drives RuleExtractor. Each entry is evaluated once per document.
var detailFields = []fieldSpec{
	{
		name:   "position_title",
		anchor: anchor{kind: structural, selector: "h5.card_title_min"},
		assign: func(r *domain.JobRecord, v string) { r.Identity.Title = v },
	},
	{
		name:   "institution",
		anchor: anchor{kind: structural, selector: "p.orgModalLink"},
		assign: func(r *domain.JobRecord, v string) { r.Identity.Institution = v },
	},
	{
		name:   "institution_type",
		anchor: anchor{kind: structural, selector: "span.tag_line"},
		assign: func(r *domain.JobRecord, v string) { r.Identity.InstitutionType = v },
	},
	{
		name:   "update_date",
		anchor: anchor{kind: textual, selector: "span", label: "更新日", last: true},
		assign: func(r *domain.JobRecord, v string) { r.Identity.UpdateDate = v },
	},
	{
		name:   "application_deadline",
		anchor: anchor{kind: textual, selector: "span", label: "募集終了日", last: true},
		assign: func(r *domain.JobRecord, v string) { r.Identity.ApplicationDeadline = v },
	},
	{
		name:   "location",
		anchor: anchor{kind: textual, selector: "p", label: "勤務地"},
		assign: func(r *domain.JobRecord, v string) { r.Classification.Location = v },
	},
	{
		name:   "research_field",
		anchor: anchor{kind: textual, selector: "p", label: "研究分野"},
		assign: func(r *domain.JobRecord, v string) { r.Classification.ResearchField = v },
	},
	{
		name:   "position_employment",
		anchor: anchor{kind: structural, selector: "i.fa-briefcase"},
		rule:   nextParagraph,
		assign: func(r *domain.JobRecord, v string) {
			c := parseCompound(v)
			r.Classification.PositionType = c.PositionType
			r.Classification.EmploymentType = c.EmploymentType
			r.Classification.TenureStatus = c.TenureStatus
			r.Classification.TrialPeriod = c.TrialPeriod
		},
	},
	{
		name:   "salary",
		anchor: anchor{kind: textual, selector: "p", label: "年収", last: true},
		assign: func(r *domain.JobRecord, v string) { r.Compensation.Salary = v },
	},
	{
		name:   "salary_description",
		anchor: anchor{kind: structural, selector: "p.card_subTitle", label: "給与"},
		rule:   nextParagraph,
		assign: func(r *domain.JobRecord, v string) { r.Compensation.SalaryDescription = v },
	},
	{
		name:   "working_hours_description",
		anchor: anchor{kind: structural, selector: "p.card_subTitle", label: "勤務時間"},
		rule:   siblingList,
		assign: func(r *domain.JobRecord, v string) { r.Compensation.WorkingHoursDescription = v },
	},
	{
		name:   "job_description",
		anchor: anchor{kind: structural, selector: "p.card_listTitle", label: "仕事内容・職務内容"},
		rule:   nextParagraph,
		assign: func(r *domain.JobRecord, v string) {
			r.Content.JobDescription = v
			r.Content.TeachingRequirements = teachingRequirements(v)
		},
	},
	{
		name:   "department",
		anchor: anchor{kind: structural, selector: "p.card_listTitle", label: "配属部署"},
		rule:   nextParagraph,
		assign: func(r *domain.JobRecord, v string) { r.Content.Department = v },
	},
	{
		name:   "qualifications",
		anchor: anchor{kind: structural, selector: "p.card_subTitle", label: "応募資格"},
		rule:   siblingList,
		assign: func(r *domain.JobRecord, v string) { r.Content.Qualifications = v },
	},
	{
		name:   "application_method",
		anchor: anchor{kind: structural, selector: "p.card_subTitle", label: "応募方法"},
		rule:   siblingList,
		assign: func(r *domain.JobRecord, v string) { r.Content.ApplicationMethod = v },
	},
	{
		name:   "notes",
		anchor: anchor{kind: structural, selector: "p.card_subTitle", label: "備考"},
		rule:   nextDiv,
		assign: func(r *domain.JobRecord, v string) { r.Status.Notes = v },
	},
}

// locate returns the anchor node, or nil when the document lacks it
func (a anchor) locate(doc *goquery.Document) *html.Node {
	var found *html.Node
	doc.Find(a.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !a.matches(sel.Nodes[0]) {
			return true
		}
		found = sel.Nodes[0]
		return a.last
	})
	return found
}

func (a anchor) matches(n *html.Node) bool {
	switch a.kind {
	case textual:
		return htmltext.ContainsLabel(directText(n), a.label)
	default:
		if a.label == "" {
			return true
		}
		return htmltext.Normalize(htmltext.Text(n)) == htmltext.Normalize(a.label)
	}
}

// value applies the field's rule to its anchor node
func (f fieldSpec) value(n *html.Node) string {
	switch f.rule {
	case nextParagraph:
		return htmltext.Text(htmltext.NextElement(n, "p"))
	case nextDiv:
		return htmltext.Text(htmltext.NextElement(n, "div"))
	case siblingList:
		ul := htmltext.NextSibling(n, "ul")
		parts := make([]string, 0)
		for _, p := range htmltext.Descendants(ul, "p") {
			if t := htmltext.Text(p); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, " ")
	default:
		text := htmltext.Text(n)
		if f.anchor.kind == textual {
			return stripLabel(text, f.anchor.label)
		}
		return text
	}
}

// directText joins only the text nodes that are immediate children of n
func directText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(c.Data))
		}
	}
	return b.String()
}

func stripLabel(text, label string) string {
	if strings.Contains(text, label) {
		return htmltext.StripLabel(text, label)
	}
	// label matched only after width folding
	return htmltext.StripLabel(htmltext.Normalize(text), htmltext.Normalize(label))
}
