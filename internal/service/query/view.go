package query

import "github.com/primosamu/cannoli-dispatch/internal/domain"

// ChannelSet is a set of sales channels.
type ChannelSet map[domain.Channel]struct{}

// NewChannelSet builds a set from channels.
func NewChannelSet(channels ...domain.Channel) ChannelSet {
	set := make(ChannelSet, len(channels))
	for _, c := range channels {
		set[c] = struct{}{}
	}
	return set
}

// AllChannels returns a set holding every known channel.
func AllChannels() ChannelSet {
	return NewChannelSet(domain.Channels()...)
}

// Has reports whether c is in the set.
func (s ChannelSet) Has(c domain.Channel) bool {
	_, ok := s[c]
	return ok
}

// Filter keeps the orders whose channel is in channels, dropping completed and cancelled
// ones unless includeTerminal is set. Input order is preserved.
func Filter(orders []domain.Order, channels ChannelSet, includeTerminal bool) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if !channels.Has(o.Channel) {
			continue
		}
		if !includeTerminal && o.Status.Terminal() {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Groups holds one bucket per status.
type Groups map[domain.OrderStatus][]domain.Order

// GroupByStatus partitions orders into the six status buckets, keeping input order inside each.
// Every bucket is present, possibly empty.
func GroupByStatus(orders []domain.Order) Groups {
	g := make(Groups, len(domain.Statuses()))
	for _, s := range domain.Statuses() {
		g[s] = []domain.Order{}
	}
	for _, o := range orders {
		g[o.Status] = append(g[o.Status], o)
	}
	return g
}
