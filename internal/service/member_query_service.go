package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"alshuail-fund/internal/compliance"
	"alshuail-fund/internal/domain"
	"alshuail-fund/internal/repository"
)

// Balance comparison operators accepted by the list view.
var balanceOperators = map[string]bool{
	"lt": true, "lte": true, "gt": true, "gte": true, "eq": true,
}

var sortKeys = map[string]bool{
	"balance": true, "fullName": true, "memberId": true,
	"shortfall": true, "tribalSection": true,
}

// BalanceCategories is the closed category set exposed to clients.
var BalanceCategories = []string{
	compliance.CategoryCritical,
	compliance.CategoryNonCompliant,
	compliance.CategoryCompliant,
	compliance.CategoryExcellent,
}

// MemberQuery is the full filter/sort/page request for the list view and the
// export. Store-level filters run in SQL; category and balance filters run
// after enrichment because they depend on derived state.
type MemberQuery struct {
	Status        string
	MemberID      string
	FullName      string
	PhoneNumber   string
	TribalSection string

	BalanceCategory string
	BalanceOperator string
	BalanceAmount   *float64
	BalanceMin      *float64
	BalanceMax      *float64

	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// EnrichedMember is one member with its derived compliance state attached.
type EnrichedMember struct {
	MemberID         string                    `json:"memberId"`
	MembershipNumber string                    `json:"membershipNumber"`
	FullName         string                    `json:"fullName"`
	Phone            string                    `json:"phone"`
	Email            string                    `json:"email,omitempty"`
	TribalSection    string                    `json:"tribalSection"`
	IsSuspended      bool                      `json:"isSuspended"`
	MembershipStatus string                    `json:"membershipStatus,omitempty"`
	JoinedDate       *time.Time                `json:"joinedDate,omitempty"`
	LastPaymentDate  *time.Time                `json:"lastPaymentDate,omitempty"`
	Compliance       compliance.Classification `json:"compliance"`
}

// Pagination describes the returned page.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Statistics aggregates the entire filtered collection, not just the page.
type Statistics struct {
	Total          int            `json:"total"`
	Categories     map[string]int `json:"categories"`
	TotalBalance   float64        `json:"totalBalance"`
	TotalShortfall float64        `json:"totalShortfall"`
	AverageBalance float64        `json:"averageBalance"`
	ComplianceRate float64        `json:"complianceRate"`
}

// FilterOptions echoes the closed filter vocabularies plus what was applied.
type FilterOptions struct {
	TribalSections    []string          `json:"tribalSections"`
	BalanceCategories []string          `json:"balanceCategories"`
	AppliedFilters    map[string]string `json:"appliedFilters"`
}

// MemberListResult is the complete list-view response body.
type MemberListResult struct {
	Members    []EnrichedMember `json:"members"`
	Pagination Pagination       `json:"pagination"`
	Statistics Statistics       `json:"statistics"`
	Filters    FilterOptions    `json:"filters"`
}

// MemberQueryService runs the list/export pipeline: store filters, fetch,
// enrich, derived filters, sort, statistics, page.
type MemberQueryService struct {
	members repository.MembersRepository
	logger  *zap.Logger
}

func NewMemberQueryService(members repository.MembersRepository, logger *zap.Logger) *MemberQueryService {
	return &MemberQueryService{members: members, logger: logger}
}

// ListMembers returns the requested page plus statistics over the full
// filtered set.
func (s *MemberQueryService) ListMembers(ctx context.Context, q MemberQuery) (*MemberListResult, error) {
	if err := validateQuery(&q); err != nil {
		return nil, err
	}

	enriched, err := s.collectFiltered(ctx, q)
	if err != nil {
		return nil, err
	}

	// statistics run over the whole filtered set before slicing the page
	stats := computeStatistics(enriched)

	total := len(enriched)
	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(q.Limit)))
	}
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	result := &MemberListResult{
		Members: enriched[start:end],
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    q.Page < totalPages,
			HasPrev:    q.Page > 1,
		},
		Statistics: stats,
		Filters: FilterOptions{
			TribalSections:    compliance.TribalSections,
			BalanceCategories: BalanceCategories,
			AppliedFilters:    appliedFilters(q),
		},
	}
	return result, nil
}

// FilteredMembers returns the full filtered, enriched, sorted set without
// paging, for the export.
func (s *MemberQueryService) FilteredMembers(ctx context.Context, q MemberQuery) ([]EnrichedMember, Statistics, error) {
	if err := validateQuery(&q); err != nil {
		return nil, Statistics{}, err
	}
	enriched, err := s.collectFiltered(ctx, q)
	if err != nil {
		return nil, Statistics{}, err
	}
	return enriched, computeStatistics(enriched), nil
}

// GetEnriched returns a single member with compliance state, the path the
// statement service builds on.
func (s *MemberQueryService) GetEnriched(ctx context.Context, id string) (*EnrichedMember, error) {
	m, err := s.members.Get(ctx, id)
	if err != nil {
		return nil, classifyStoreErr(err, "member", id)
	}
	e, err := Enrich(m)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// SearchIdentifiers backs autocomplete over member id, membership number and
// name.
func (s *MemberQueryService) SearchIdentifiers(ctx context.Context, term string, limit int) ([]EnrichedMember, error) {
	raw, err := s.members.SearchIdentifiers(ctx, term, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	results := make([]EnrichedMember, 0, len(raw))
	for _, m := range raw {
		e, err := Enrich(m)
		if err != nil {
			continue
		}
		results = append(results, *e)
	}
	return results, nil
}

// collectFiltered runs pipeline steps 1-5: store filters, fetch, enrich,
// derived filters, sort.
func (s *MemberQueryService) collectFiltered(ctx context.Context, q MemberQuery) ([]EnrichedMember, error) {
	raw, err := s.members.List(ctx, repository.StoreFilter{
		Status:        q.Status,
		MemberID:      q.MemberID,
		Name:          q.FullName,
		PhoneDigits:   DigitsOnly(q.PhoneNumber),
		TribalSection: q.TribalSection,
	})
	if err != nil {
		s.logger.Error("member list fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	enriched := make([]EnrichedMember, 0, len(raw))
	for _, m := range raw {
		e, err := Enrich(m)
		if err != nil {
			s.logger.Warn("skipping member with invalid balance",
				zap.String("member_id", m.ID), zap.Error(err))
			continue
		}
		enriched = append(enriched, *e)
	}

	enriched = applyDerivedFilters(enriched, q)
	sortMembers(enriched, q.SortBy, q.SortOrder)
	return enriched, nil
}

// Enrich attaches derived compliance state and the resolved tribal section
// to a stored member.
func Enrich(m *domain.Member) (*EnrichedMember, error) {
	cls, err := compliance.Classify(m.ResolveBalance())
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", m.ID, err)
	}
	e := &EnrichedMember{
		MemberID:         m.ID,
		MembershipNumber: m.ResolveMembershipNumber(),
		FullName:         m.ResolveName(),
		Phone:            m.ResolvePhone(),
		Email:            m.Email.String,
		TribalSection:    compliance.AssignSection(m.ID, m.TribalSection.String),
		IsSuspended:      m.IsSuspended,
		MembershipStatus: m.MembershipStatus.String,
		Compliance:       cls,
	}
	if m.JoinedDate.Valid {
		t := m.JoinedDate.Time
		e.JoinedDate = &t
	}
	if m.LastPaymentDate.Valid {
		t := m.LastPaymentDate.Time
		e.LastPaymentDate = &t
	}
	return e, nil
}

func validateQuery(q *MemberQuery) error {
	if q.Status != "" && q.Status != "active" && q.Status != "suspended" {
		return NewValidationError("status", "must be active or suspended")
	}
	if q.BalanceCategory != "" {
		valid := false
		for _, c := range BalanceCategories {
			if c == q.BalanceCategory {
				valid = true
				break
			}
		}
		if !valid {
			return NewValidationError("balanceCategory", "unknown category")
		}
	}
	if q.BalanceOperator != "" {
		if !balanceOperators[q.BalanceOperator] {
			return NewValidationError("balanceOperator", "must be one of lt, lte, gt, gte, eq")
		}
		if q.BalanceAmount == nil {
			return NewValidationError("balanceAmount", "required with balanceOperator")
		}
	}
	if q.BalanceAmount != nil && q.BalanceOperator == "" {
		return NewValidationError("balanceOperator", "required with balanceAmount")
	}
	if q.SortBy == "" {
		q.SortBy = "balance"
	}
	if !sortKeys[q.SortBy] {
		return NewValidationError("sortBy", "unknown sort key")
	}
	if q.SortOrder == "" {
		q.SortOrder = "asc"
	}
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		return NewValidationError("sortOrder", "must be asc or desc")
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	return nil
}

func applyDerivedFilters(members []EnrichedMember, q MemberQuery) []EnrichedMember {
	if q.BalanceCategory == "" && q.BalanceOperator == "" && q.BalanceMin == nil && q.BalanceMax == nil {
		return members
	}
	filtered := make([]EnrichedMember, 0, len(members))
	for _, m := range members {
		b := m.Compliance.Balance
		if q.BalanceCategory != "" && m.Compliance.Category != q.BalanceCategory {
			continue
		}
		if q.BalanceOperator != "" {
			amount := *q.BalanceAmount
			ok := false
			switch q.BalanceOperator {
			case "lt":
				ok = b < amount
			case "lte":
				ok = b <= amount
			case "gt":
				ok = b > amount
			case "gte":
				ok = b >= amount
			case "eq":
				ok = b == amount
			}
			if !ok {
				continue
			}
		}
		if q.BalanceMin != nil && b < *q.BalanceMin {
			continue
		}
		if q.BalanceMax != nil && b > *q.BalanceMax {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}

// sortMembers sorts stably so ties keep fetch order.
func sortMembers(members []EnrichedMember, sortBy, order string) {
	desc := order == "desc"
	sort.SliceStable(members, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "fullName":
			less = strings.Compare(members[i].FullName, members[j].FullName) < 0
		case "memberId":
			less = members[i].MemberID < members[j].MemberID
		case "shortfall":
			less = members[i].Compliance.Shortfall < members[j].Compliance.Shortfall
		case "tribalSection":
			less = members[i].TribalSection < members[j].TribalSection
		default:
			less = members[i].Compliance.Balance < members[j].Compliance.Balance
		}
		if desc {
			return !less && !equalByKey(members[i], members[j], sortBy)
		}
		return less
	})
}

func equalByKey(a, b EnrichedMember, sortBy string) bool {
	switch sortBy {
	case "fullName":
		return a.FullName == b.FullName
	case "memberId":
		return a.MemberID == b.MemberID
	case "shortfall":
		return a.Compliance.Shortfall == b.Compliance.Shortfall
	case "tribalSection":
		return a.TribalSection == b.TribalSection
	default:
		return a.Compliance.Balance == b.Compliance.Balance
	}
}

func computeStatistics(members []EnrichedMember) Statistics {
	stats := Statistics{
		Total: len(members),
		Categories: map[string]int{
			compliance.CategoryCritical:     0,
			compliance.CategoryNonCompliant: 0,
			compliance.CategoryCompliant:    0,
			compliance.CategoryExcellent:    0,
		},
	}
	var compliantCount int
	for _, m := range members {
		stats.Categories[m.Compliance.Category]++
		stats.TotalBalance += m.Compliance.Balance
		stats.TotalShortfall += m.Compliance.Shortfall
		if m.Compliance.IsCompliant {
			compliantCount++
		}
	}
	if stats.Total > 0 {
		stats.AverageBalance = math.Round(stats.TotalBalance/float64(stats.Total)*100) / 100
		stats.ComplianceRate = math.Round(float64(compliantCount)/float64(stats.Total)*1000) / 10
	}
	return stats
}

func appliedFilters(q MemberQuery) map[string]string {
	applied := map[string]string{}
	if q.Status != "" {
		applied["status"] = q.Status
	}
	if q.MemberID != "" {
		applied["memberId"] = q.MemberID
	}
	if q.FullName != "" {
		applied["fullName"] = q.FullName
	}
	if q.PhoneNumber != "" {
		applied["phoneNumber"] = q.PhoneNumber
	}
	if q.TribalSection != "" {
		applied["tribalSection"] = q.TribalSection
	}
	if q.BalanceCategory != "" {
		applied["balanceCategory"] = q.BalanceCategory
	}
	if q.BalanceOperator != "" {
		applied["balanceOperator"] = q.BalanceOperator
		applied["balanceAmount"] = fmt.Sprintf("%g", *q.BalanceAmount)
	}
	if q.BalanceMin != nil {
		applied["balanceMin"] = fmt.Sprintf("%g", *q.BalanceMin)
	}
	if q.BalanceMax != nil {
		applied["balanceMax"] = fmt.Sprintf("%g", *q.BalanceMax)
	}
	return applied
}

// classifyStoreErr maps store errors onto the service error taxonomy.
func classifyStoreErr(err error, kind, id string) error {
	if isNoRows(err) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w: %v", kind, id, ErrStoreUnavailable, err)
}
