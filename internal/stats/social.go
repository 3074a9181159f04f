package stats

import (
	"context"
	"fmt"
	"time"

	"walkhub/internal/models"
)

// socialSource mirrors walkSource for social/group events.
type socialSource interface {
	socialStats(ctx context.Context, p models.Period) (models.SocialStats, error)
}

// localSocial projects social events straight out of the local event store.
type localSocial struct {
	events EventStore
}

func (s localSocial) socialStats(ctx context.Context, p models.Period) (models.SocialStats, error) {
	events, err := s.events.SocialEventsInRange(ctx, p.PeriodFrom, p.PeriodTo)
	if err != nil {
		return models.SocialStats{}, fmt.Errorf("social events in range: %w", err)
	}

	var out models.SocialStats
	organisers := newOrganiserRollup()
	for _, e := range events {
		if e.Deleted() {
			continue
		}
		out.TotalEvents++
		out.Events = append(out.Events, projectSocial(e))
		organisers.add(localOrganiserID(e), localOrganiserName(e))
	}
	out.Organisers = organisers.sorted()
	return out, nil
}

// managerSocial fetches the mirror's events and keeps the social item type
// within the period. Remote social records carry no organiser identifier, so
// the resolved organiser name doubles as the identity.
type managerSocial struct {
	remote RemoteEventFetcher
	loc    *time.Location
}

func (s managerSocial) socialStats(ctx context.Context, p models.Period) (models.SocialStats, error) {
	remote, err := s.remote.FetchMappedEvents(ctx, p.PeriodFrom, p.PeriodTo)
	if err != nil {
		return models.SocialStats{}, fmt.Errorf("fetch mapped events: %w", err)
	}

	var out models.SocialStats
	organisers := newOrganiserRollup()
	for _, e := range remote {
		if e.ItemType != models.ItemTypeGroupEvent {
			continue
		}
		if e.StartDateTime != nil && (*e.StartDateTime < p.PeriodFrom || *e.StartDateTime >= p.PeriodTo) {
			continue
		}
		out.TotalEvents++
		out.Events = append(out.Events, projectSocial(e))
		name := managerOrganiserName(e)
		organisers.add(name, name)
	}
	out.Organisers = organisers.sorted()
	return out, nil
}

func projectSocial(e models.Event) models.SocialListItem {
	description := ResolveFirst(e.Title, e.Description)
	return models.SocialListItem{
		ID:          e.GroupEventID,
		Date:        e.StartDateTime,
		Description: description,
		Organiser:   ResolveFirst(e.OrganiserName, e.ContactDisplayName),
	}
}
