// Package calendar fetches calendar events for a user/range from the
// calendar provider (component B of the reconciliation engine).
package calendar

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/bvtime/reconciler/engine/core"
	"github.com/bvtime/reconciler/engine/transport"
)

// RawEvent is the wire shape returned by the calendar provider, decoded
// as-is from JSON before normalisation. Field names follow §6's Graph-style
// contract.
type RawEvent struct {
	ID         string `json:"id"`
	Subject    string `json:"subject"`
	Start      *struct {
		DateTime string `json:"dateTime"`
	} `json:"start"`
	End *struct {
		DateTime string `json:"dateTime"`
	} `json:"end"`
	Attendees []struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"attendees"`
	Organizer *struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"organizer"`
	IsCancelled          bool   `json:"isCancelled"`
	IsOnlineMeeting      bool   `json:"isOnlineMeeting"`
	OnlineMeetingProvider string `json:"onlineMeetingProvider"`
}

type eventsPage struct {
	Value    []RawEvent `json:"value"`
	NextLink string     `json:"nextLink"`
}

// UserInfo is the minimal principal record the calendar provider exposes.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"mail"`
	Name  string `json:"displayName"`
}

// Source is the Calendar Source contract (§4.B). The paginating
// implementation is canonical per §9 — there is no non-paginating variant.
type Source interface {
	GetUserInfo(ctx context.Context, userID string) (*UserInfo, error)
	GetCalendarEvents(ctx context.Context, userID string, start, end time.Time, pageSize int, paginate bool) ([]RawEvent, error)
}

// httpSource is the canonical, paginating implementation backed by
// engine/transport.
type httpSource struct {
	client *transport.Client
}

func NewHTTPSource(client *transport.Client) Source {
	return &httpSource{client: client}
}

func (s *httpSource) GetUserInfo(ctx context.Context, userID string) (*UserInfo, error) {
	var info UserInfo
	path := fmt.Sprintf("/users/%s", userID)
	if err := s.client.GetJSON(ctx, path, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetCalendarEvents fetches events for userID in [start, end), following the
// provider's opaque nextLink cursor transparently when paginate is true. An
// empty page with a next cursor is valid and is followed; a page missing
// "value" decodes to an empty slice, which is also valid.
func (s *httpSource) GetCalendarEvents(
	ctx context.Context,
	userID string,
	start, end time.Time,
	pageSize int,
	paginate bool,
) ([]RawEvent, error) {
	filter := buildDateFilter(start, end)
	query := url.Values{}
	query.Set("$filter", filter)
	if pageSize > 0 {
		query.Set("$top", fmt.Sprintf("%d", pageSize))
	}

	path := fmt.Sprintf("/users/%s/calendar/events", userID)

	var all []RawEvent
	next := path
	nextQuery := query
	for {
		var page eventsPage
		if err := s.client.GetJSON(ctx, next, nextQuery, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Value...)

		if !paginate || page.NextLink == "" {
			break
		}
		parsed, err := url.Parse(page.NextLink)
		if err != nil {
			return nil, core.NewError(err, core.KindProtocol, map[string]any{"nextLink": page.NextLink})
		}
		next = parsed.Path
		nextQuery = parsed.Query()

		select {
		case <-ctx.Done():
			return nil, core.NewError(ctx.Err(), core.KindCancelled, nil)
		default:
		}
	}
	return all, nil
}

// buildDateFilter renders the ISO-8601 UTC range filter the provider
// expects; callers pass local times, this converts them to UTC.
func buildDateFilter(start, end time.Time) string {
	const layout = "2006-01-02T15:04:05Z"
	return fmt.Sprintf(
		"start/dateTime ge '%s' and end/dateTime le '%s'",
		start.UTC().Format(layout),
		end.UTC().Format(layout),
	)
}

// GetMeetingAttendees is a pure helper extracting lowercase, unique attendee
// emails from a raw event.
func GetMeetingAttendees(e RawEvent) []string {
	seen := make(map[string]struct{}, len(e.Attendees))
	var out []string
	for _, a := range e.Attendees {
		addr := normalizeEmail(a.EmailAddress.Address)
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}

func normalizeEmail(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
