package domain

// EntityCategory identifies a structured fact extracted from policy text.
type EntityCategory string

// Entity categories.
const (
	EntityPolicyNumber   EntityCategory = "policy_number"
	EntityInsuredName    EntityCategory = "insured_name"
	EntityPremiumAmount  EntityCategory = "premium_amount"
	EntityDeductible     EntityCategory = "deductible"
	EntityCoverageLimit  EntityCategory = "coverage_limit"
	EntityEstimatedValue EntityCategory = "estimated_value"
	EntityEffectiveDate  EntityCategory = "effective_date"
	EntityExpiryDate     EntityCategory = "expiry_date"
	EntityBirthDate      EntityCategory = "birth_date"
	EntitySignatureDate  EntityCategory = "signature_date"
	EntityPolicyType     EntityCategory = "policy_type"
)

// AllEntityCategories returns every category in display order.
func AllEntityCategories() []EntityCategory {
	return []EntityCategory{
		EntityPolicyNumber,
		EntityInsuredName,
		EntityPolicyType,
		EntityPremiumAmount,
		EntityDeductible,
		EntityCoverageLimit,
		EntityEstimatedValue,
		EntityEffectiveDate,
		EntityExpiryDate,
		EntityBirthDate,
		EntitySignatureDate,
	}
}

// IsValid returns true if the category is recognised.
func (c EntityCategory) IsValid() bool {
	for _, known := range AllEntityCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (c EntityCategory) String() string {
	return string(c)
}

// Entities holds at most one validated value per category.
type Entities map[EntityCategory]string

// Get returns the value for a category and whether it was found.
func (e Entities) Get(c EntityCategory) (string, bool) {
	v, ok := e[c]
	return v, ok
}

// SetIfAbsent stores v for c unless a value already exists.
// Returns true if the value was stored.
func (e Entities) SetIfAbsent(c EntityCategory, v string) bool {
	if _, ok := e[c]; ok || v == "" {
		return false
	}
	e[c] = v
	return true
}

// Merge fills categories missing from e with values from other.
func (e Entities) Merge(other Entities) {
	for c, v := range other {
		e.SetIfAbsent(c, v)
	}
}
