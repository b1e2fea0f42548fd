package compliance

// TribalSections is the fixed section list. Index order matters: section
// assignment hashes into this slice, so reordering would silently reassign
// every derived member.
var TribalSections = []string{
	"رشود",
	"الدغيش",
	"رشيد",
	"العيد",
	"الرشيد",
	"الشبيعان",
	"المسعود",
	"عقاب",
}

// AssignSection returns the stored section when present, otherwise derives
// one from the member id. Derivation hashes the full id with the classic
// 31-ish string hash in 32-bit arithmetic, then indexes the section list, so
// the same id always lands in the same section.
func AssignSection(memberID, storedSection string) string {
	if storedSection != "" {
		return storedSection
	}
	return DeriveSection(memberID)
}

// DeriveSection maps a member id deterministically onto TribalSections.
func DeriveSection(memberID string) string {
	var hash int32
	for _, r := range memberID {
		hash = int32(r) + ((hash << 5) - hash)
	}
	hv := int64(hash)
	if hv < 0 {
		hv = -hv
	}
	return TribalSections[hv%int64(len(TribalSections))]
}
