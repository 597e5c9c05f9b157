package workitem

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bvtime/reconciler/engine/core"
	"github.com/bvtime/reconciler/engine/transport"
)

// Store is the Work-Item Store contract (§4.C).
type Store interface {
	GetWorkItem(ctx context.Context, id int, fields []string) (*WorkItem, error)
	UpdateWorkItem(ctx context.Context, id int, ops []PatchOp) error
	UpdateCompletedWork(ctx context.Context, id int, hours float64, comment string) error
	QueryWorkItems(ctx context.Context, predicate Predicate, project string, max int) ([]int, error)
	GetSchedulingFields(ctx context.Context, id int) (SchedulingFields, error)
	// HasProjectAccess is the cheap org-level pre-filter discussed in
	// SPEC_FULL.md §4.G; per-item permission is still verified by
	// re-reading the item.
	HasProjectAccess(ctx context.Context, project string) (bool, error)
}

type wireWorkItem struct {
	ID     int `json:"id"`
	Fields struct {
		Title      string  `json:"System.Title"`
		State      string  `json:"System.State"`
		WorkType   string  `json:"System.WorkItemType"`
		AssignedTo *struct {
			UniqueName string `json:"uniqueName"`
		} `json:"System.AssignedTo"`
		Estimate  float64 `json:"Microsoft.VSTS.Scheduling.OriginalEstimate"`
		Completed float64 `json:"Microsoft.VSTS.Scheduling.CompletedWork"`
		Remaining float64 `json:"Microsoft.VSTS.Scheduling.RemainingWork"`
	} `json:"fields"`
}

func (w wireWorkItem) toWorkItem() *WorkItem {
	assignedTo := ""
	if w.Fields.AssignedTo != nil {
		assignedTo = w.Fields.AssignedTo.UniqueName
	}
	return &WorkItem{
		ID:         w.ID,
		Title:      w.Fields.Title,
		State:      w.Fields.State,
		AssignedTo: assignedTo,
		Type:       w.Fields.WorkType,
		Scheduling: SchedulingFields{
			Estimate:  w.Fields.Estimate,
			Completed: w.Fields.Completed,
			Remaining: w.Fields.Remaining,
		},
	}
}

type httpStore struct {
	client  *transport.Client
	org     string
	project string
}

func NewHTTPStore(client *transport.Client, org, project string) Store {
	return &httpStore{client: client, org: org, project: project}
}

func (s *httpStore) GetWorkItem(ctx context.Context, id int, fields []string) (*WorkItem, error) {
	path := fmt.Sprintf("/%s/_apis/wit/workitems/%d", s.org, id)
	query := url.Values{"api-version": {"7.1"}}
	if len(fields) > 0 {
		query.Set("fields", joinComma(fields))
	}

	var wire wireWorkItem
	if err := s.client.GetJSON(ctx, path, query, &wire); err != nil {
		return nil, err
	}
	return wire.toWorkItem(), nil
}

func (s *httpStore) UpdateWorkItem(ctx context.Context, id int, ops []PatchOp) error {
	path := fmt.Sprintf("/%s/_apis/wit/workitems/%d", s.org, id)
	headers := map[string]string{"Content-Type": "application/json-patch+json"}
	return s.client.PatchJSON(ctx, path, ops, nil, headers)
}

func (s *httpStore) UpdateCompletedWork(ctx context.Context, id int, hours float64, comment string) error {
	ops := BuildCompletedWorkPatch(hours, comment)
	return s.UpdateWorkItem(ctx, id, ops)
}

type wiqlResponse struct {
	WorkItems []struct {
		ID int `json:"id"`
	} `json:"workItems"`
}

func (s *httpStore) QueryWorkItems(ctx context.Context, predicate Predicate, project string, max int) ([]int, error) {
	path := fmt.Sprintf("/%s/_apis/wit/wiql", project)
	body := map[string]string{"query": predicate.Render()}

	var resp wiqlResponse
	if err := s.client.PostJSON(ctx, path, body, &resp); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, wi := range resp.WorkItems {
		if max > 0 && len(ids) >= max {
			break
		}
		ids = append(ids, wi.ID)
	}
	return ids, nil
}

func (s *httpStore) GetSchedulingFields(ctx context.Context, id int) (SchedulingFields, error) {
	wi, err := s.GetWorkItem(ctx, id, []string{
		"Microsoft.VSTS.Scheduling.OriginalEstimate",
		"Microsoft.VSTS.Scheduling.CompletedWork",
		"Microsoft.VSTS.Scheduling.RemainingWork",
	})
	if err != nil {
		return SchedulingFields{}, err
	}
	return wi.Scheduling, nil
}

func (s *httpStore) HasProjectAccess(ctx context.Context, project string) (bool, error) {
	path := fmt.Sprintf("/%s/_apis/projects", s.org)
	var resp struct {
		Value []struct {
			Name string `json:"name"`
		} `json:"value"`
	}
	if err := s.client.GetJSON(ctx, path, nil, &resp); err != nil {
		if werr, ok := err.(*core.Error); ok && werr.Is(core.KindForbidden) {
			return false, nil
		}
		return false, err
	}
	for _, p := range resp.Value {
		if p.Name == project {
			return true, nil
		}
	}
	return false, nil
}

func joinComma(items []string) string {
	out := items[0]
	for _, item := range items[1:] {
		out += "," + item
	}
	return out
}
