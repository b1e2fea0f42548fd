package repository

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"alshuail-fund/internal/domain"
)

// MemoryRepository is an in-memory implementation of all store interfaces.
// It backs unit tests and exercises the same per-member serialization
// contract as the Postgres implementation: RecordPayment takes a per-member
// lock around read-modify-write, so concurrent recordings never lose an
// increment.
type MemoryRepository struct {
	mu sync.RWMutex

	members map[string]*domain.Member
	order   []string

	memberLocks map[string]*sync.Mutex
	lockMu      sync.Mutex

	payments      []*domain.Payment
	subscriptions map[string]*domain.Subscription
	audit         []*domain.AuditLogEntry
	notifications []*domain.Notification
	smsQueue      []*domain.SMSQueueEntry
	emailQueue    []*domain.EmailQueueEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		members:       make(map[string]*domain.Member),
		memberLocks:   make(map[string]*sync.Mutex),
		subscriptions: make(map[string]*domain.Subscription),
	}
}

var (
	_ MembersRepository       = (*MemoryRepository)(nil)
	_ PaymentsRepository      = (*MemoryRepository)(nil)
	_ AuditRepository         = (*MemoryRepository)(nil)
	_ NotificationsRepository = (*MemoryRepository)(nil)
)

// Seed inserts members preserving insertion order.
func (r *MemoryRepository) Seed(members ...*domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range members {
		cp := *m
		if _, ok := r.members[cp.ID]; !ok {
			r.order = append(r.order, cp.ID)
		}
		r.members[cp.ID] = &cp
	}
}

func (r *MemoryRepository) memberLock(id string) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	l, ok := r.memberLocks[id]
	if !ok {
		l = &sync.Mutex{}
		r.memberLocks[id] = l
	}
	return l
}

func (r *MemoryRepository) List(ctx context.Context, f StoreFilter) ([]*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*domain.Member{}
	for _, id := range r.order {
		m := r.members[id]
		if !matchesFilter(m, f) {
			continue
		}
		cp := *m
		result = append(result, &cp)
	}
	return result, nil
}

func matchesFilter(m *domain.Member, f StoreFilter) bool {
	switch f.Status {
	case "active":
		if m.IsSuspended {
			return false
		}
	case "suspended":
		if !m.IsSuspended {
			return false
		}
	}
	if f.MemberID != "" {
		t := strings.ToLower(f.MemberID)
		if !strings.Contains(strings.ToLower(m.ID), t) &&
			!strings.Contains(strings.ToLower(m.MembershipNumber.String), t) {
			return false
		}
	}
	if f.Name != "" && !nameContains(m, f.Name) {
		return false
	}
	if f.PhoneDigits != "" {
		if !strings.Contains(digitsOnly(m.Phone.String), f.PhoneDigits) &&
			!strings.Contains(digitsOnly(m.Mobile.String), f.PhoneDigits) {
			return false
		}
	}
	if f.TribalSection != "" && m.TribalSection.String != f.TribalSection {
		return false
	}
	return true
}

func nameContains(m *domain.Member, term string) bool {
	t := strings.ToLower(term)
	for _, c := range []string{m.FullName.String, m.Name.String, m.FirstName.String, m.LastName.String} {
		if c != "" && strings.Contains(strings.ToLower(c), t) {
			return true
		}
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (r *MemoryRepository) FindByPhoneDigits(ctx context.Context, digits string) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		m := r.members[id]
		if strings.Contains(digitsOnly(m.Phone.String), digits) ||
			strings.Contains(digitsOnly(m.Mobile.String), digits) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *MemoryRepository) FindByName(ctx context.Context, term string, limit int) ([]*domain.Member, error) {
	if limit <= 0 {
		limit = 10
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []*domain.Member{}
	for _, id := range r.order {
		if len(result) >= limit {
			break
		}
		m := r.members[id]
		if nameContains(m, term) {
			cp := *m
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *MemoryRepository) FindByMembershipNumber(ctx context.Context, number string) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		m := r.members[id]
		if m.MembershipNumber.Valid && m.MembershipNumber.String == number {
			cp := *m
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *MemoryRepository) SearchIdentifiers(ctx context.Context, term string, limit int) ([]*domain.Member, error) {
	if limit <= 0 {
		limit = 10
	}
	t := strings.ToLower(term)
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []*domain.Member{}
	for _, id := range r.order {
		if len(result) >= limit {
			break
		}
		m := r.members[id]
		if strings.Contains(strings.ToLower(m.ID), t) ||
			strings.Contains(strings.ToLower(m.MembershipNumber.String), t) ||
			nameContains(m, term) {
			cp := *m
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *MemoryRepository) Suspend(ctx context.Context, id, reason, adminID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.IsSuspended = true
	m.SuspensionReason = sql.NullString{String: reason, Valid: true}
	m.SuspendedAt = sql.NullTime{Time: at, Valid: true}
	m.SuspendedBy = sql.NullString{String: adminID, Valid: true}
	m.MembershipStatus = sql.NullString{String: "suspended", Valid: true}
	return nil
}

func (r *MemoryRepository) RecordPayment(ctx context.Context, p RecordPaymentParams) (*PaymentResult, error) {
	lock := r.memberLock(p.MemberID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[p.MemberID]
	if !ok {
		return nil, sql.ErrNoRows
	}

	newBalance := m.ResolveBalance() + p.Amount
	monthsAhead := int(math.Floor(newBalance / monthlyRate))

	m.CurrentBalance = sql.NullFloat64{Float64: newBalance, Valid: true}
	m.Balance = sql.NullFloat64{Float64: newBalance, Valid: true}
	m.TotalPaid = sql.NullFloat64{Float64: newBalance, Valid: true}
	m.LastPaymentDate = sql.NullTime{Time: p.PaidAt, Valid: true}

	paymentID := uuid.NewString()
	r.payments = append(r.payments, &domain.Payment{
		ID:            paymentID,
		MemberID:      p.MemberID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		ReferenceNo:   p.ReceiptNumber,
		PaymentDate:   p.PaidAt,
		CreatedAt:     p.PaidAt,
	})
	r.subscriptions[p.MemberID] = &domain.Subscription{
		ID:              uuid.NewString(),
		MemberID:        p.MemberID,
		MonthsPaidAhead: monthsAhead,
		TotalPaid:       sql.NullFloat64{Float64: newBalance, Valid: true},
		LastPaymentDate: sql.NullTime{Time: p.PaidAt, Valid: true},
		UpdatedAt:       p.PaidAt,
	}

	return &PaymentResult{
		PaymentID:   paymentID,
		NewBalance:  newBalance,
		MonthsAhead: monthsAhead,
	}, nil
}

func (r *MemoryRepository) Append(ctx context.Context, e *domain.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	cp := *e
	r.audit = append(r.audit, &cp)
	return nil
}

func (r *MemoryRepository) ListEntries(ctx context.Context, f AuditFilter, page, size int) ([]*domain.AuditLogEntry, int, error) {
	entries := r.AuditEntries(f)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	total := len(entries)

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	start := (page - 1) * size
	if start >= total {
		return []*domain.AuditLogEntry{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return entries[start:end], total, nil
}

// AuditEntries returns the matching audit rows without paging, for tests.
func (r *MemoryRepository) AuditEntries(f AuditFilter) []*domain.AuditLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []*domain.AuditLogEntry{}
	for _, e := range r.audit {
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.Module != "" && e.Module != f.Module {
			continue
		}
		if f.MemberID != "" && e.MemberID.String != f.MemberID {
			continue
		}
		if f.ActorID != "" && e.ActorID != f.ActorID {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.CreatedAt.After(*f.To) {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}
	return result
}

func (r *MemoryRepository) CreateInApp(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r *MemoryRepository) QueueSMS(ctx context.Context, e *domain.SMSQueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = "queued"
	}
	cp := *e
	r.smsQueue = append(r.smsQueue, &cp)
	return nil
}

func (r *MemoryRepository) QueueEmail(ctx context.Context, e *domain.EmailQueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = "queued"
	}
	cp := *e
	r.emailQueue = append(r.emailQueue, &cp)
	return nil
}

// Notifications returns a copy of the stored in-app notifications.
func (r *MemoryRepository) Notifications() []*domain.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Notification, 0, len(r.notifications))
	for _, n := range r.notifications {
		cp := *n
		out = append(out, &cp)
	}
	return out
}

// SMSEntries returns a copy of the queued SMS rows.
func (r *MemoryRepository) SMSEntries() []*domain.SMSQueueEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.SMSQueueEntry, 0, len(r.smsQueue))
	for _, e := range r.smsQueue {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// EmailEntries returns a copy of the queued email rows.
func (r *MemoryRepository) EmailEntries() []*domain.EmailQueueEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.EmailQueueEntry, 0, len(r.emailQueue))
	for _, e := range r.emailQueue {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// Payments returns a copy of the recorded payments sorted by date.
func (r *MemoryRepository) Payments() []*domain.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		cp := *p
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PaymentDate.Before(out[j].PaymentDate)
	})
	return out
}
