// Package plans loads the static plan catalog: tier quotas, model classes and
// the mapping from payment-provider price ids to plans.
package plans

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"ai-jobassist-be/internal/entity"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var defaultCatalog []byte

const unlimitedKeyword = "unlimited"

var ErrInvalidCatalog = errors.New("invalid plan catalog")

// tierOrder drives upgrade suggestions.
var tierOrder = []entity.Tier{entity.TierFree, entity.TierPro, entity.TierPremium}

type quotaValue entity.Quota

func (q *quotaValue) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if strings.EqualFold(raw, unlimitedKeyword) {
		*q = quotaValue{Unlimited: true}
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("quota %q: expected integer or %q", raw, unlimitedKeyword)
	}
	*q = quotaValue{Limit: n}
	return nil
}

type tierFile struct {
	ModelClass string                `yaml:"model_class"`
	Limits     map[string]quotaValue `yaml:"limits"`
}

type planFile struct {
	Id               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Tier             string   `yaml:"tier"`
	Price            float64  `yaml:"price"`
	Currency         string   `yaml:"currency"`
	BillingCycle     string   `yaml:"billing_cycle"`
	Purchasable      bool     `yaml:"purchasable"`
	SortOrder        int      `yaml:"sort_order"`
	ProviderPriceIds []string `yaml:"provider_price_ids"`
}

type catalogFile struct {
	Tiers map[string]tierFile `yaml:"tiers"`
	Plans []planFile          `yaml:"plans"`
}

type tierDef struct {
	modelClass entity.ModelClass
	limits     map[entity.FeatureKey]entity.Quota
}

// Catalog is immutable after Load and safe for concurrent use.
type Catalog struct {
	tiers   map[entity.Tier]tierDef
	plans   map[string]entity.PlanDefinition
	byPrice map[string]string
	ordered []entity.PlanDefinition
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan catalog: %w", err)
	}
	return Parse(data)
}

func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		tiers:   make(map[entity.Tier]tierDef),
		plans:   make(map[string]entity.PlanDefinition),
		byPrice: make(map[string]string),
	}

	for name, t := range file.Tiers {
		tier := entity.Tier(name)
		if !tier.Valid() {
			return nil, fmt.Errorf("%w: unknown tier %q", ErrInvalidCatalog, name)
		}
		limits := make(map[entity.FeatureKey]entity.Quota, len(t.Limits))
		for feature, q := range t.Limits {
			limits[entity.FeatureKey(feature)] = entity.Quota(q)
		}
		modelClass := entity.ModelClass(t.ModelClass)
		if modelClass != entity.ModelClassCapable {
			modelClass = entity.ModelClassCheap
		}
		c.tiers[tier] = tierDef{modelClass: modelClass, limits: limits}
	}
	if _, ok := c.tiers[entity.TierFree]; !ok {
		return nil, fmt.Errorf("%w: free tier is required", ErrInvalidCatalog)
	}

	for _, p := range file.Plans {
		if p.Id == "" {
			return nil, fmt.Errorf("%w: plan without id", ErrInvalidCatalog)
		}
		if _, dup := c.plans[p.Id]; dup {
			return nil, fmt.Errorf("%w: duplicate plan %q", ErrInvalidCatalog, p.Id)
		}
		tier := entity.Tier(p.Tier)
		def, ok := c.tiers[tier]
		if !ok {
			return nil, fmt.Errorf("%w: plan %q references undefined tier %q", ErrInvalidCatalog, p.Id, p.Tier)
		}
		plan := entity.PlanDefinition{
			Id:               p.Id,
			Name:             p.Name,
			Tier:             tier,
			Price:            p.Price,
			Currency:         p.Currency,
			BillingCycle:     entity.BillingCycle(p.BillingCycle),
			Limits:           def.limits,
			ModelClass:       def.modelClass,
			ProviderPriceIds: p.ProviderPriceIds,
			Purchasable:      p.Purchasable,
			SortOrder:        p.SortOrder,
		}
		for _, price := range p.ProviderPriceIds {
			if other, taken := c.byPrice[price]; taken {
				return nil, fmt.Errorf("%w: price %q used by %q and %q", ErrInvalidCatalog, price, other, p.Id)
			}
			c.byPrice[price] = p.Id
		}
		c.plans[p.Id] = plan
		c.ordered = append(c.ordered, plan)
	}
	sort.SliceStable(c.ordered, func(i, j int) bool { return c.ordered[i].SortOrder < c.ordered[j].SortOrder })

	return c, nil
}

func (c *Catalog) Plan(id string) (entity.PlanDefinition, bool) {
	p, ok := c.plans[id]
	return p, ok
}

func (c *Catalog) PlanByPriceId(priceId string) (entity.PlanDefinition, bool) {
	id, ok := c.byPrice[priceId]
	if !ok {
		return entity.PlanDefinition{}, false
	}
	return c.Plan(id)
}

func (c *Catalog) Plans() []entity.PlanDefinition {
	return append([]entity.PlanDefinition(nil), c.ordered...)
}

// Quota returns the tier's allowance for a feature. ok is false when the tier or
// feature is not configured.
func (c *Catalog) Quota(tier entity.Tier, feature entity.FeatureKey) (entity.Quota, bool) {
	def, ok := c.tiers[tier]
	if !ok {
		return entity.Quota{}, false
	}
	q, ok := def.limits[feature]
	return q, ok
}

func (c *Catalog) ModelClass(tier entity.Tier) entity.ModelClass {
	if def, ok := c.tiers[tier]; ok {
		return def.modelClass
	}
	return entity.ModelClassCheap
}

// NextTier returns the smallest configured tier above t, or "" at the top.
func (c *Catalog) NextTier(t entity.Tier) entity.Tier {
	found := false
	for _, candidate := range tierOrder {
		if found {
			if _, ok := c.tiers[candidate]; ok {
				return candidate
			}
			continue
		}
		found = candidate == t
	}
	return ""
}

// Validate reports quotas that the paywall will refuse to enforce.
func (c *Catalog) Validate() []error {
	var problems []error
	for tier, def := range c.tiers {
		for _, feature := range entity.MeteredFeatures {
			q, ok := def.limits[feature]
			switch {
			case !ok:
				problems = append(problems, fmt.Errorf("tier %s: no quota for %s", tier, feature))
			case !q.Unlimited && q.Limit < 0:
				problems = append(problems, fmt.Errorf("tier %s: negative quota %d for %s", tier, q.Limit, feature))
			}
		}
	}
	return problems
}
