package model

import (
	"time"
)

// BoardMeeting a scheduled board meeting. Column names stay PascalCase so the
// storage schema matches the camelCase wire format through the record mapper.
type BoardMeeting struct {
	ID                int64     `gorm:"column:ID;primaryKey;autoIncrement" json:"id"`
	StartTime         time.Time `gorm:"column:StartTime;not null" json:"startTime"`
	Title             string    `gorm:"column:Title;type:varchar(100);not null" json:"title"`
	FixedParticipants string    `gorm:"column:FixedParticipants;type:text" json:"fixedParticipants"`
	Remarks           string    `gorm:"column:Remarks;type:text" json:"remarks"`
	Location          string    `gorm:"column:Location;type:varchar(255)" json:"location"`
	Room              string    `gorm:"column:Room;type:varchar(255)" json:"room"`
	TimeZone          string    `gorm:"column:TimeZone;type:varchar(100)" json:"timeZone"`
	MeetingLink       *string   `gorm:"column:MeetingLink;type:text" json:"meetingLink,omitempty"`
	FileLocationID    *string   `gorm:"column:FileLocationId;type:varchar(255)" json:"fileLocationId,omitempty"`
	EventID           *string   `gorm:"column:EventId;type:varchar(255)" json:"eventId,omitempty"`
}

func (BoardMeeting) TableName() string {
	return "BoardMeetings"
}

// AgendaItem a single TOP (agenda item) of a board meeting. BoardMeeting is
// nil while the item sits in the unassigned pool.
type AgendaItem struct {
	ID                     int64   `gorm:"column:ID;primaryKey;autoIncrement" json:"id"`
	BoardMeeting           *int64  `gorm:"column:BoardMeeting" json:"boardMeeting,omitempty"`
	OrderIndex             int     `gorm:"column:OrderIndex;not null;default:0" json:"orderIndex"`
	DurationInMinutes      int     `gorm:"column:DurationInMinutes;not null;default:0" json:"durationInMinutes"`
	Title                  string  `gorm:"column:Title;type:varchar(100);not null" json:"title"`
	AdditionalParticipants string  `gorm:"column:AdditionalParticipants;type:text" json:"additionalParticipants"`
	IsMisc                 bool    `gorm:"column:IsMisc;not null;default:false" json:"isMisc"`
	NeedsDecision          bool    `gorm:"column:NeedsDecision;not null;default:false" json:"needsDecision"`
	Remarks                string  `gorm:"column:Remarks;type:text" json:"remarks"`
	FileLocationID         *string `gorm:"column:FileLocationId;type:varchar(255)" json:"fileLocationId,omitempty"`
	ProtocolLocationID     *string `gorm:"column:ProtocolLocationId;type:varchar(255)" json:"protocolLocationId,omitempty"`
	EventID                *string `gorm:"column:EventId;type:varchar(255)" json:"eventId,omitempty"`

	// StartTime is derived from the meeting start and the durations of the
	// preceding items, never stored.
	StartTime time.Time `gorm:"-" json:"startTime,omitempty"`
}

func (AgendaItem) TableName() string {
	return "AgendaItems"
}

// UserMapping display-name override for a UPN, maintained by admins
type UserMapping struct {
	Upn         string `gorm:"column:Upn;primaryKey;type:varchar(255)" json:"upn"`
	DisplayName string `gorm:"column:DisplayName;type:varchar(255);not null" json:"displayName"`
}

func (UserMapping) TableName() string {
	return "UserMappings"
}
