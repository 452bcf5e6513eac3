package template

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/CodeIvet/patanaa/internal/model"
)

// FixedParticipant is one row of the participants block.
type FixedParticipant struct {
	FixedPerson string `json:"fixedPerson"`
	TotalTops   int    `json:"totalTops"`
}

// TopDetail is one agenda row of the rendered document.
type TopDetail struct {
	AgendaTitle               string `json:"agendaTitle"`
	I                         string `json:"i"`
	AdditionalParticipants    string `json:"additionalParticipants"`
	IsMisc                    bool   `json:"isMisc"`
	HasBody                   bool   `json:"hasBody"`
	IsDecision                bool   `json:"isDecision"`
	HasAdditionalParticipants bool   `json:"hasAdditionalParticipants"`
	DurationInMinutes         int    `json:"durationInMinutes,omitempty"`
	StartTime                 string `json:"startTime,omitempty"`
	IncludeRemarks            *bool  `json:"includeRemarks,omitempty"`
	Remarks                   string `json:"remarks,omitempty"`
}

// AgendaData feeds the agenda DOCX template.
type AgendaData struct {
	MeetingTitle      string             `json:"meetingTitle"`
	MeetingDate       string             `json:"meetingDate"`
	MeetingTime       string             `json:"meetingTime"`
	MeetingLocation   string             `json:"meetingLocation"`
	FixedParticipants []FixedParticipant `json:"fixedParticipants"`
	TopsDetails       []TopDetail        `json:"topsDetails"`
	CreationDate      string             `json:"creationDate"`
	MeetingEndTime    string             `json:"meetingEndTime"`
}

// ProtocolData feeds the protocol DOCX template.
type ProtocolData struct {
	MeetingTitle      string             `json:"meetingTitle"`
	MeetingDate       string             `json:"meetingDate"`
	MeetingLocation   string             `json:"meetingLocation"`
	TopsCount         int                `json:"topsCount"`
	FixedParticipants []FixedParticipant `json:"fixedParticipants"`
	TopsDetails       []TopDetail        `json:"topsDetails"`
}

// uniqueParticipants unions the fixed list with every item's additional list,
// keeping first-appearance order.
func uniqueParticipants(meeting *model.BoardMeeting, items []model.AgendaItem) []string {
	seen := map[string]bool{}
	var out []string
	add := func(upn string) {
		if !seen[upn] {
			seen[upn] = true
			out = append(out, upn)
		}
	}
	for _, upn := range model.SplitParticipants(meeting.FixedParticipants) {
		add(upn)
	}
	for _, item := range items {
		for _, upn := range model.SplitParticipants(item.AdditionalParticipants) {
			add(upn)
		}
	}
	return out
}

func resolveAll(ctx context.Context, resolver NameResolver, meeting *model.BoardMeeting, items []model.AgendaItem) (func(string) string, error) {
	names, err := resolver.ResolveNames(ctx, uniqueParticipants(meeting, items))
	if err != nil {
		return nil, err
	}
	return func(upn string) string {
		return FormatDisplayName(names[upn])
	}, nil
}

func fixedBlock(meeting *model.BoardMeeting, items []model.AgendaItem, name func(string) string) []FixedParticipant {
	upns := model.SplitParticipants(meeting.FixedParticipants)
	block := make([]FixedParticipant, len(upns))
	for i, upn := range upns {
		block[i] = FixedParticipant{FixedPerson: name(upn), TotalTops: len(items)}
	}
	return block
}

func additionalNames(item *model.AgendaItem, name func(string) string) string {
	upns := model.SplitParticipants(item.AdditionalParticipants)
	names := make([]string, len(upns))
	for i, upn := range upns {
		names[i] = name(upn)
	}
	return strings.Join(names, ", ")
}

// BuildAgendaData assembles the agenda template payload. Item start times
// must already be derived.
func BuildAgendaData(ctx context.Context, resolver NameResolver, meeting *model.BoardMeeting, items []model.AgendaItem, lang string, includeRemarks bool) (*AgendaData, error) {
	name, err := resolveAll(ctx, resolver, meeting, items)
	if err != nil {
		return nil, err
	}

	start := meeting.StartInZone()
	tops := make([]TopDetail, len(items))
	for i := range items {
		item := &items[i]
		startTime := ""
		if !item.StartTime.IsZero() {
			startTime = item.StartTime.In(start.Location()).Format("15:04")
		}
		flag := includeRemarks
		tops[i] = TopDetail{
			AgendaTitle:               item.Title,
			I:                         strconv.Itoa(i + 1),
			AdditionalParticipants:    additionalNames(item, name),
			IsMisc:                    item.IsMisc,
			HasBody:                   !item.IsMisc,
			IsDecision:                item.NeedsDecision,
			HasAdditionalParticipants: item.AdditionalParticipants != "",
			DurationInMinutes:         item.DurationInMinutes,
			StartTime:                 startTime,
			IncludeRemarks:            &flag,
			Remarks:                   item.Remarks,
		}
	}

	end := model.CalculateEndTime(start, items)
	return &AgendaData{
		MeetingTitle:      meeting.Title,
		MeetingDate:       LongDate(start, lang),
		MeetingTime:       start.Format("15:04"),
		MeetingLocation:   meeting.Location,
		FixedParticipants: fixedBlock(meeting, items, name),
		TopsDetails:       tops,
		CreationDate:      CreationStamp(time.Now(), lang),
		MeetingEndTime:    end.Format("15:04"),
	}, nil
}

// BuildProtocolData assembles the protocol template payload.
func BuildProtocolData(ctx context.Context, resolver NameResolver, meeting *model.BoardMeeting, items []model.AgendaItem, lang string) (*ProtocolData, error) {
	name, err := resolveAll(ctx, resolver, meeting, items)
	if err != nil {
		return nil, err
	}

	tops := make([]TopDetail, len(items))
	for i := range items {
		item := &items[i]
		tops[i] = TopDetail{
			AgendaTitle:               item.Title,
			I:                         strconv.Itoa(i + 1),
			AdditionalParticipants:    additionalNames(item, name),
			IsMisc:                    item.IsMisc,
			HasBody:                   !item.IsMisc && item.Remarks != "",
			IsDecision:                item.NeedsDecision,
			HasAdditionalParticipants: item.AdditionalParticipants != "",
			Remarks:                   item.Remarks,
		}
	}

	return &ProtocolData{
		MeetingTitle:      meeting.Title,
		MeetingDate:       ShortDate(meeting.StartInZone(), lang),
		MeetingLocation:   meeting.Location,
		TopsCount:         len(items),
		FixedParticipants: fixedBlock(meeting, items, name),
		TopsDetails:       tops,
	}, nil
}
