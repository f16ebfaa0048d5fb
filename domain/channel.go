package domain

import (
	"sort"

	"github.com/samber/lo"
)

type ChannelID string

// MonitoredChannels is the immutable set of voice channels requiring a camera.
type MonitoredChannels struct {
	ids map[ChannelID]struct{}
}

func NewMonitoredChannels(ids ...string) MonitoredChannels {
	set := make(map[ChannelID]struct{}, len(ids))
	for _, id := range lo.Compact(ids) {
		set[ChannelID(id)] = struct{}{}
	}
	return MonitoredChannels{ids: set}
}

func (m MonitoredChannels) Contains(id ChannelID) bool {
	if id == "" {
		return false
	}
	_, ok := m.ids[id]
	return ok
}

func (m MonitoredChannels) Len() int {
	return len(m.ids)
}

// IDs returns the channel identifiers in a stable order.
func (m MonitoredChannels) IDs() []ChannelID {
	ids := lo.Keys(m.ids)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
