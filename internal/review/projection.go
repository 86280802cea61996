package review

import (
	"net/url"
	"strings"
	"time"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
)

// contentPath is where the content store serves item files.
const contentPath = "/admin/audio/files/"

// ItemView is the public projection of an item.
type ItemView struct {
	ID              uint       `json:"id" yaml:"id"`
	Filename        string     `json:"filename" yaml:"filename"`
	ContentRef      string     `json:"contentRef" yaml:"contentref"`
	ContentURL      string     `json:"contentUrl" yaml:"contenturl"`
	InitialCategory string     `json:"initialCategory" yaml:"initialcategory"`
	CurrentCategory string     `json:"currentCategory" yaml:"currentcategory"`
	LeaseHolderID   *uint      `json:"leaseHolderId,omitempty" yaml:"leaseholderid,omitempty"`
	LeasedAt        *time.Time `json:"leasedAt,omitempty" yaml:"leasedat,omitempty"`
	UploadedAt      time.Time  `json:"uploadedAt" yaml:"uploadedat"`
	// Version is the item's write counter. Passing it back through
	// WithExpectedVersion makes a commit fail if the item changed since.
	Version uint `json:"version" yaml:"version"`
}

// HistoryEntry is one classification record as shown to its reviewer.
type HistoryEntry struct {
	ID               uint      `json:"id" yaml:"id"`
	ItemID           uint      `json:"itemId" yaml:"itemid"`
	Filename         string    `json:"filename" yaml:"filename"`
	ContentURL       string    `json:"contentUrl" yaml:"contenturl"`
	PreviousCategory string    `json:"previousCategory" yaml:"previouscategory"`
	NewCategory      string    `json:"newCategory" yaml:"newcategory"`
	ClassifiedAt     time.Time `json:"classifiedAt" yaml:"classifiedat"`
}

// HistoryPage is one page of a reviewer's history, newest first.
type HistoryPage struct {
	Entries  []HistoryEntry `json:"entries" yaml:"entries"`
	Page     int            `json:"page" yaml:"page"`
	PageSize int            `json:"pageSize" yaml:"pagesize"`
	Total    int64          `json:"total" yaml:"total"`
}

// HasNext reports whether older records follow this page.
func (p *HistoryPage) HasNext() bool {
	return int64(p.Page+1)*int64(p.PageSize) < p.Total
}

// contentURL formats the external reference for a file name.
func contentURL(base, filename string) string {
	return strings.TrimRight(base, "/") + contentPath + url.QueryEscape(filename)
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func categoryName(c *entities.Category) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func (s *Service) itemView(item *entities.Item) ItemView {
	v := ItemView{
		ID:              item.ID,
		Filename:        item.Filename,
		ContentRef:      item.ContentRef,
		ContentURL:      contentURL(s.cfg.ContentBaseURL, item.Filename),
		InitialCategory: categoryName(item.InitialCategory),
		CurrentCategory: categoryName(item.CurrentCategory),
		UploadedAt:      msToTime(item.UploadedAt),
		Version:         item.Version,
	}
	if item.IsLeased() {
		holder := *item.LeaseHolderID
		at := msToTime(*item.LeasedAt)
		v.LeaseHolderID = &holder
		v.LeasedAt = &at
	}
	return v
}

func (s *Service) historyEntry(rec *entities.Classification) HistoryEntry {
	e := HistoryEntry{
		ID:               rec.ID,
		ItemID:           rec.ItemID,
		PreviousCategory: categoryName(rec.PreviousCategory),
		NewCategory:      categoryName(rec.NewCategory),
		ClassifiedAt:     msToTime(rec.ClassifiedAt),
	}
	if rec.Item != nil {
		e.Filename = rec.Item.Filename
		e.ContentURL = contentURL(s.cfg.ContentBaseURL, rec.Item.Filename)
	}
	return e
}
