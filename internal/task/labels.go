package task

import "strings"

// Labels holds the user-facing words for one language: the task file header,
// priority names and the captions of the display line.
type Labels struct {
	Lang        string
	Header      string
	Columns     []string
	High        string
	Medium      string
	Low         string
	Description string
	Created     string
	Due         string
	Priority    string
	Overdue     string
	DoneMark    string
	OverdueMark string
}

// Japanese is the default label set; its header is the one the task file
// has always been written with.
var Japanese = Labels{
	Lang:        "ja",
	Header:      "タイトル,内容,完了,期限日,登録日,更新日,優先度,期限切れ",
	Columns:     []string{"No", "タイトル", "内容", "完了", "期限日", "優先度", "期限切れ", "登録日", "更新日"},
	High:        "高",
	Medium:      "中",
	Low:         "低",
	Description: "内容",
	Created:     "登録",
	Due:         "期限",
	Priority:    "優先度",
	Overdue:     "期限切れ",
	DoneMark:    "✓",
	OverdueMark: "⚠",
}

// English is the translated label set.
var English = Labels{
	Lang:        "en",
	Header:      "title,description,done,due_date,created_date,updated_date,priority,overdue",
	Columns:     []string{"No", "Title", "Description", "Done", "Due", "Priority", "Overdue", "Created", "Updated"},
	High:        "High",
	Medium:      "Medium",
	Low:         "Low",
	Description: "description",
	Created:     "created",
	Due:         "due",
	Priority:    "priority",
	Overdue:     "overdue",
	DoneMark:    "✓",
	OverdueMark: "⚠",
}

// LabelsFor returns the label set for a language code, falling back to
// Japanese for anything unrecognised.
func LabelsFor(lang string) Labels {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "en", "english":
		return English
	default:
		return Japanese
	}
}

// PriorityName returns the localized name of p.
func (l Labels) PriorityName(p Priority) string {
	switch p {
	case PriorityHigh:
		return l.High
	case PriorityMedium:
		return l.Medium
	case PriorityLow:
		return l.Low
	default:
		return ""
	}
}
