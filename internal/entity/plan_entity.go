package entity

type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

func (t Tier) Valid() bool {
	return t == TierFree || t == TierPro || t == TierPremium
}

type ModelClass string

const (
	ModelClassCheap   ModelClass = "cheap"
	ModelClassCapable ModelClass = "capable"
)

type BillingCycle string

const (
	BillingCycleNone    BillingCycle = "none"
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// Quota is a per-period allowance. Limit is meaningless when Unlimited is set.
type Quota struct {
	Limit     int
	Unlimited bool
}

type PlanDefinition struct {
	Id               string
	Name             string
	Tier             Tier
	Price            float64
	Currency         string
	BillingCycle     BillingCycle
	Limits           map[FeatureKey]Quota
	ModelClass       ModelClass
	ProviderPriceIds []string
	Purchasable      bool
	SortOrder        int
}
