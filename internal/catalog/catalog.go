// Package catalog maps posting tiers and add-ons to their price and the
// credit bundle they grant. It is static configuration: no state, safe
// for concurrent use.
package catalog

import (
	"errors"
	"fmt"

	"github.com/hirelane/hirelane-backend/internal/models"
)

var (
	ErrUnknownTier  = errors.New("unknown tier")
	ErrUnknownAddon = errors.New("unknown addon")
)

type Tier string

const (
	TierStarter  Tier = "starter"
	TierStandard Tier = "standard"
	TierPro      Tier = "pro"
)

const (
	AddonFeatured      = "featured"
	AddonSocialGraphic = "social_graphic"
	AddonRepost        = "repost"
)

// Grant is the credit bundle a tier or add-on confers.
type Grant struct {
	JobPost       int
	FeaturedPost  int
	SocialGraphic int
	Repost        int
}

func (g Grant) add(other Grant) Grant {
	return Grant{
		JobPost:       g.JobPost + other.JobPost,
		FeaturedPost:  g.FeaturedPost + other.FeaturedPost,
		SocialGraphic: g.SocialGraphic + other.SocialGraphic,
		Repost:        g.Repost + other.Repost,
	}
}

// Total is the number of credit rows the grant resolves to.
func (g Grant) Total() int {
	return g.JobPost + g.FeaturedPost + g.SocialGraphic + g.Repost
}

// Bundle is a fully resolved purchase: total price plus combined grant.
type Bundle struct {
	PriceCents int64
	Grant      Grant
}

type entry struct {
	priceCents int64
	grant      Grant
}

var tiers = map[Tier]entry{
	TierStarter: {
		priceCents: 4900,
		grant:      Grant{JobPost: 1},
	},
	TierStandard: {
		priceCents: 9900,
		grant:      Grant{JobPost: 3, FeaturedPost: 1},
	},
	TierPro: {
		priceCents: 19900,
		grant:      Grant{JobPost: 10, FeaturedPost: 3, SocialGraphic: 3, Repost: 5},
	},
}

var addons = map[string]entry{
	AddonFeatured: {
		priceCents: 2900,
		grant:      Grant{FeaturedPost: 1},
	},
	AddonSocialGraphic: {
		priceCents: 1900,
		grant:      Grant{SocialGraphic: 1},
	},
	AddonRepost: {
		priceCents: 1500,
		grant:      Grant{Repost: 1},
	},
}

// ResolveBundle resolves a tier plus optional add-ons into the total price
// and the combined credit grant. Unknown keys are rejected before any
// state is touched; repeated add-ons stack.
func ResolveBundle(tier Tier, addonKeys []string) (Bundle, error) {
	tierEntry, ok := tiers[tier]
	if !ok {
		return Bundle{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}

	bundle := Bundle{
		PriceCents: tierEntry.priceCents,
		Grant:      tierEntry.grant,
	}
	for _, key := range addonKeys {
		addonEntry, ok := addons[key]
		if !ok {
			return Bundle{}, fmt.Errorf("%w: %q", ErrUnknownAddon, key)
		}
		bundle.PriceCents += addonEntry.priceCents
		bundle.Grant = bundle.Grant.add(addonEntry.grant)
	}
	return bundle, nil
}

// Package describes a purchasable tier for the public pricing endpoint.
type Package struct {
	Tier       Tier           `json:"tier"`
	PriceCents int64          `json:"price_cents"`
	Credits    map[string]int `json:"credits"`
}

// Packages lists all purchasable tiers in ascending price order.
func Packages() []Package {
	ordered := []Tier{TierStarter, TierStandard, TierPro}
	packages := make([]Package, 0, len(ordered))
	for _, tier := range ordered {
		e := tiers[tier]
		packages = append(packages, Package{
			Tier:       tier,
			PriceCents: e.priceCents,
			Credits: map[string]int{
				string(models.CreditTypeJobPost):       e.grant.JobPost,
				string(models.CreditTypeFeaturedPost):  e.grant.FeaturedPost,
				string(models.CreditTypeSocialGraphic): e.grant.SocialGraphic,
				string(models.CreditTypeRepost):        e.grant.Repost,
			},
		})
	}
	return packages
}
