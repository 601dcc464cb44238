package domain

type (
	// Channel is the intake surface an order came from.
	Channel string
	// DeliveryType is how an order reaches the customer.
	DeliveryType string
	// DeliveryCompany is a contracted third-party courier company.
	DeliveryCompany string
)

// List of intake channels
const (
	ChannelMobile   Channel = "mobile"
	ChannelTotem    Channel = "totem"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelApp      Channel = "app"
	ChannelIFood    Channel = "ifood"
	ChannelRappi    Channel = "rappi"
	ChannelOther    Channel = "other"
)

// List of delivery types
const (
	DeliveryPickup      DeliveryType = "pickup"
	DeliveryOwn         DeliveryType = "own"
	DeliveryThirdParty  DeliveryType = "thirdparty"
	DeliveryMarketplace DeliveryType = "marketplace"
)

// List of delivery companies
const (
	CompanyLoggi   DeliveryCompany = "loggi"
	CompanyRapiddo DeliveryCompany = "rapiddo"
	CompanyUber    DeliveryCompany = "uber"
	CompanyOther   DeliveryCompany = "other"
)

var allowedChannels = [...]Channel{
	ChannelMobile, ChannelTotem, ChannelWhatsApp, ChannelApp, ChannelIFood, ChannelRappi, ChannelOther,
}

var allowedDeliveryTypes = [...]DeliveryType{
	DeliveryPickup, DeliveryOwn, DeliveryThirdParty, DeliveryMarketplace,
}

var allowedCompanies = [...]DeliveryCompany{
	CompanyLoggi, CompanyRapiddo, CompanyUber, CompanyOther,
}

// Channels returns all intake channels.
func Channels() []Channel {
	out := make([]Channel, len(allowedChannels))
	copy(out, allowedChannels[:])
	return out
}

// Valid checks if the Channel is valid
func (c Channel) Valid() bool {
	for _, v := range allowedChannels {
		if c == v {
			return true
		}
	}
	return false
}

// Marketplace reports whether fulfillment belongs to the external platform.
func (c Channel) Marketplace() bool {
	return c == ChannelIFood || c == ChannelRappi
}

// Valid checks if the DeliveryType is valid
func (t DeliveryType) Valid() bool {
	for _, v := range allowedDeliveryTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Valid checks if the DeliveryCompany is valid
func (c DeliveryCompany) Valid() bool {
	for _, v := range allowedCompanies {
		if c == v {
			return true
		}
	}
	return false
}
