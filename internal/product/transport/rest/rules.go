package rest

import "github.com/abgdnv/catalog/internal/platform/web"

// Field error messages returned to API clients.
const (
	MsgInvalidID           = "invalid ID"
	MsgNameEmpty           = "product name must not be empty"
	MsgPriceEmpty          = "product price must not be empty"
	MsgPriceInvalid        = "invalid price value"
	MsgPriceNotPositive    = "price must be greater than 0"
	MsgInvalidAvailability = "invalid availability value"
)

var (
	idRule   = web.IntParam("id", MsgInvalidID)
	nameRule = web.NonEmptyString("name", MsgNameEmpty)

	priceRule = web.PositiveDecimal("price", web.PositiveDecimalMessages{
		Empty:       MsgPriceEmpty,
		Invalid:     MsgPriceInvalid,
		NotPositive: MsgPriceNotPositive,
	})

	availabilityRule = web.Boolean("availability", MsgInvalidAvailability)
)

// CreateRules validate a new product. The HTML form reuses them.
func CreateRules() []web.Rule {
	return []web.Rule{nameRule, priceRule}
}

func idRules() []web.Rule {
	return []web.Rule{idRule}
}

func updateRules() []web.Rule {
	return []web.Rule{idRule, nameRule, priceRule, availabilityRule}
}
