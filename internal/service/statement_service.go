package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alshuail-fund/internal/compliance"
	"alshuail-fund/internal/domain"
	"alshuail-fund/internal/repository"
)

// minNameSearchLength is the shortest accepted name query.
const minNameSearchLength = 3

// maxNameCandidates caps how many name matches a search returns.
const maxNameCandidates = 10

// Statement is the single-member report.
type Statement struct {
	MemberID           string                     `json:"memberId"`
	MembershipNumber   string                     `json:"membershipNumber"`
	FullName           string                     `json:"fullName"`
	Phone              string                     `json:"phone"`
	Email              string                     `json:"email,omitempty"`
	MemberSince        *time.Time                 `json:"memberSince,omitempty"`
	TribalSection      string                     `json:"tribalSection"`
	CurrentBalance     float64                    `json:"currentBalance"`
	TargetBalance      float64                    `json:"targetBalance"`
	Shortfall          float64                    `json:"shortfall"`
	PercentageComplete float64                    `json:"percentageComplete"`
	Category           string                     `json:"category"`
	AlertLevel         string                     `json:"alertLevel"`
	StatusColor        string                     `json:"statusColor"`
	AlertMessage       string                     `json:"alertMessage"`
	RecentTransactions []domain.TransactionRecord `json:"recentTransactions"`
	Statistics         StatementStatistics        `json:"statistics"`
}

// StatementStatistics is the summary block at the bottom of a statement.
type StatementStatistics struct {
	TotalPayments   float64    `json:"totalPayments"`
	LastPaymentDate *time.Time `json:"lastPaymentDate,omitempty"`
	CurrentYear     int        `json:"currentYear"`
}

// StatementCandidate is one row of a multi-match name search.
type StatementCandidate struct {
	MemberID         string `json:"memberId"`
	MembershipNumber string `json:"membershipNumber"`
	FullName         string `json:"fullName"`
	Phone            string `json:"phone"`
}

// StatementService builds member statements from stored fields, compliance
// classification and reconstructed history.
type StatementService struct {
	members repository.MembersRepository
	logger  *zap.Logger
	now     func() time.Time
}

func NewStatementService(members repository.MembersRepository, logger *zap.Logger) *StatementService {
	return &StatementService{members: members, logger: logger, now: time.Now}
}

// GetByPhone looks the member up by a validated Gulf mobile number.
func (s *StatementService) GetByPhone(ctx context.Context, phone string) (*Statement, error) {
	if !ValidGulfPhone(phone) {
		return nil, NewValidationError("phone", "رقم الجوال غير صحيح")
	}
	// match on the significant local part so stored and queried numbers
	// agree regardless of country-code formatting
	m, err := s.members.FindByPhoneDigits(ctx, strings.TrimPrefix(LocalPhoneDigits(phone), "0"))
	if err != nil {
		return nil, classifyStoreErr(err, "member by phone", phone)
	}
	return s.build(m)
}

// SearchByName finds members by normalized Arabic name. A single match comes
// back as a full statement; multiple matches come back as candidates for the
// caller to disambiguate.
func (s *StatementService) SearchByName(ctx context.Context, name string) (*Statement, []StatementCandidate, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < minNameSearchLength {
		return nil, nil, NewValidationError("name", "يجب إدخال 3 أحرف على الأقل")
	}

	matches, err := s.findByNormalizedName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("member by name %s: %w", name, ErrNotFound)
	}
	if len(matches) == 1 {
		st, err := s.build(matches[0])
		return st, nil, err
	}

	candidates := make([]StatementCandidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, StatementCandidate{
			MemberID:         m.ID,
			MembershipNumber: m.ResolveMembershipNumber(),
			FullName:         m.ResolveName(),
			Phone:            m.ResolvePhone(),
		})
	}
	return nil, candidates, nil
}

// GetByMemberID resolves an exact membership number first, then a raw id.
func (s *StatementService) GetByMemberID(ctx context.Context, memberID string) (*Statement, error) {
	if memberID == "" {
		return nil, NewValidationError("memberId", "رقم العضوية مطلوب")
	}
	m, err := s.members.FindByMembershipNumber(ctx, memberID)
	if err != nil {
		if !isNoRows(err) {
			return nil, classifyStoreErr(err, "member", memberID)
		}
		m, err = s.members.Get(ctx, memberID)
		if err != nil {
			return nil, classifyStoreErr(err, "member", memberID)
		}
	}
	return s.build(m)
}

// findByNormalizedName queries with the raw and the normalized term, merges
// by id, then keeps only candidates whose normalized name contains the
// normalized query.
func (s *StatementService) findByNormalizedName(ctx context.Context, name string) ([]*domain.Member, error) {
	terms := []string{name}
	if n := NormalizeArabic(name); n != name {
		terms = append(terms, n)
	}

	seen := map[string]bool{}
	matches := []*domain.Member{}
	for _, term := range terms {
		found, err := s.members.FindByName(ctx, term, maxNameCandidates)
		if err != nil {
			return nil, classifyStoreErr(err, "member by name", name)
		}
		for _, m := range found {
			if seen[m.ID] {
				continue
			}
			if !NameMatches(m.ResolveName(), name) {
				continue
			}
			seen[m.ID] = true
			matches = append(matches, m)
			if len(matches) >= maxNameCandidates {
				return matches, nil
			}
		}
	}
	return matches, nil
}

func (s *StatementService) build(m *domain.Member) (*Statement, error) {
	cls, err := compliance.Classify(m.ResolveBalance())
	if err != nil {
		return nil, err
	}

	now := s.now()
	history := compliance.ReconstructHistory(cls.Balance, now)

	st := &Statement{
		MemberID:           m.ID,
		MembershipNumber:   m.ResolveMembershipNumber(),
		FullName:           m.ResolveName(),
		Phone:              m.ResolvePhone(),
		Email:              m.Email.String,
		TribalSection:      compliance.AssignSection(m.ID, m.TribalSection.String),
		CurrentBalance:     cls.Balance,
		TargetBalance:      compliance.MinimumRequiredBalance,
		Shortfall:          cls.Shortfall,
		PercentageComplete: cls.PercentageComplete,
		Category:           cls.Category,
		AlertLevel:         cls.AlertLevel,
		StatusColor:        cls.StatusColor,
		AlertMessage:       compliance.AlertMessage(cls.AlertLevel, cls.Shortfall),
		RecentTransactions: history,
		Statistics: StatementStatistics{
			TotalPayments: cls.Balance,
			CurrentYear:   now.Year(),
		},
	}
	if m.JoinedDate.Valid {
		t := m.JoinedDate.Time
		st.MemberSince = &t
	}
	if len(history) > 0 {
		t := history[0].Date
		st.Statistics.LastPaymentDate = &t
	}
	return st, nil
}
