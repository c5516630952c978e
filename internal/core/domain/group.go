package domain

import "time"

// GroupMember is one member of a care group. ClientID is nil for free-text
// members with no linked record; those members carry no protected status and
// never count toward the small-group visibility threshold.
type GroupMember struct {
	ID           string  `json:"id"`
	ClientID     *string `json:"client_id,omitempty"`
	Name         string  `json:"name"`
	Relationship string  `json:"relationship"`
}

// CareGroup is a loosely-typed household or family grouping. Visibility is
// all-or-nothing per principal: rendering a partial household would reveal a
// blocked member's existence by absence.
type CareGroup struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	IsDemo    bool          `json:"is_demo"`
	Members   []GroupMember `json:"members"`
	CreatedAt time.Time     `json:"created_at"`
}

// LinkedClientIDs returns the client ids of every resource-backed member.
func (g CareGroup) LinkedClientIDs() []string {
	var ids []string
	for _, m := range g.Members {
		if m.ClientID != nil {
			ids = append(ids, *m.ClientID)
		}
	}
	return ids
}
