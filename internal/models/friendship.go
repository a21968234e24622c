package models

import "time"

// Friendship is an edge of the external friend graph. A pending request has
// Accepted=false and points from requester to addressee.
type Friendship struct {
	RequesterID string `gorm:"primaryKey"`
	AddresseeID string `gorm:"primaryKey"`
	Accepted    bool   `gorm:"not null"`
	CreatedAt   time.Time
}

// RelationshipStatus is how a participant relates to the viewer.
type RelationshipStatus string

const (
	RelationshipNone     RelationshipStatus = "none"
	RelationshipFriend   RelationshipStatus = "friend"
	RelationshipOutgoing RelationshipStatus = "outgoing_request"
	RelationshipIncoming RelationshipStatus = "incoming_request"
)

// RelationshipFrom resolves viewerID's view of the edge f.
func (f *Friendship) RelationshipFrom(viewerID string) RelationshipStatus {
	if f == nil {
		return RelationshipNone
	}
	if f.Accepted {
		return RelationshipFriend
	}
	if f.RequesterID == viewerID {
		return RelationshipOutgoing
	}
	return RelationshipIncoming
}
