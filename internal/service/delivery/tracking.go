package delivery

import (
	"strings"

	"github.com/google/uuid"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
)

// TrackingFunc issues a tracking code for a third-party delivery.
type TrackingFunc func(company domain.DeliveryCompany) string

var companyPrefix = map[domain.DeliveryCompany]string{
	domain.CompanyLoggi:   "LOG",
	domain.CompanyRapiddo: "RPD",
	domain.CompanyUber:    "UBR",
	domain.CompanyOther:   "EXT",
}

// NewTrackingCode returns "<PREFIX>-<8 hex>", e.g. "LOG-3F9A0C1B".
func NewTrackingCode(company domain.DeliveryCompany) string {
	prefix, ok := companyPrefix[company]
	if !ok {
		prefix = "EXT"
	}
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(raw[:8])
}
