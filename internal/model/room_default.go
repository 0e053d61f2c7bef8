package model

// RoomDefault maps an external actor (a person or a group) to their chosen
// room. Writes replace any previous choice for the same actor.
type RoomDefault struct {
	ActorID string `gorm:"primaryKey;size:64" json:"actorId"`
	RoomID  string `gorm:"size:64;not null" json:"roomId"`
}
