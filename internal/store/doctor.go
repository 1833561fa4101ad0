package store

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level      DoctorIssueLevel `json:"level"`
	Code       string           `json:"code"`
	Message    string           `json:"message"`
	Collection Collection       `json:"collection"`
	ID         string           `json:"id"`
	ParentID   string           `json:"parentId,omitempty"`
	Fixed      bool             `json:"fixed,omitempty"`
}

type DoctorReport struct {
	Issues []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError && !it.Fixed {
			return true
		}
	}
	return false
}

// Doctor finds rows left behind by an interrupted cascade delete: sections whose
// board is gone and items whose section is gone (or is itself orphaned).
// With fix, orphans are deleted child-first.
func Doctor(ctx context.Context, b Backend, fix bool) (DoctorReport, error) {
	boards, err := b.All(ctx, Boards)
	if err != nil {
		return DoctorReport{}, err
	}
	sections, err := b.All(ctx, Sections)
	if err != nil {
		return DoctorReport{}, err
	}
	items, err := b.All(ctx, Items)
	if err != nil {
		return DoctorReport{}, err
	}

	boardIDs := map[string]bool{}
	for _, r := range boards {
		boardIDs[r.ID] = true
	}
	liveSections := map[string]bool{}
	var orphanSections []DoctorIssue
	for _, r := range sections {
		parent := r.Index[IndexBoardID]
		if boardIDs[parent] {
			liveSections[r.ID] = true
			continue
		}
		orphanSections = append(orphanSections, DoctorIssue{
			Level:      DoctorIssueLevelError,
			Code:       "orphan_section",
			Message:    fmt.Sprintf("section %s references missing board %s", r.ID, parent),
			Collection: Sections,
			ID:         r.ID,
			ParentID:   parent,
		})
	}
	var orphanItems []DoctorIssue
	for _, r := range items {
		parent := r.Index[IndexSectionID]
		if liveSections[parent] {
			continue
		}
		orphanItems = append(orphanItems, DoctorIssue{
			Level:      DoctorIssueLevelError,
			Code:       "orphan_item",
			Message:    fmt.Sprintf("item %s references missing or orphaned section %s", r.ID, parent),
			Collection: Items,
			ID:         r.ID,
			ParentID:   parent,
		})
	}

	// Items before sections, mirroring the cascade order.
	issues := append(orphanItems, orphanSections...)
	if fix {
		for i := range issues {
			if err := b.Delete(ctx, issues[i].Collection, issues[i].ID); err != nil {
				log.WithError(err).WithField("id", issues[i].ID).Error("doctor: failed to delete orphan")
				return DoctorReport{Issues: issues}, err
			}
			issues[i].Fixed = true
		}
	}
	if issues == nil {
		issues = []DoctorIssue{}
	}
	return DoctorReport{Issues: issues}, nil
}
