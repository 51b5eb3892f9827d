package models

import "encoding/json"

// JSON shapes for report types: error values flatten to their message so a
// run result round-trips cleanly through the CLI's --json output.

func (r ItemResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Item   Item       `json:"item"`
		Action ItemAction `json:"action"`
		Status ItemStatus `json:"status"`
		Cause  string     `json:"cause,omitempty"`
	}{Item: r.Item, Action: r.Action, Status: r.Status}
	if r.Err != nil {
		out.Cause = r.Err.Error()
	}
	return json.Marshal(out)
}

func (r *ReconcileReport) MarshalJSON() ([]byte, error) {
	out := struct {
		Category Category     `json:"category"`
		Applied  int          `json:"applied"`
		Skipped  int          `json:"skipped"`
		Failed   int          `json:"failed"`
		Failures []ItemResult `json:"failures,omitempty"`
		FetchErr string       `json:"fetch_error,omitempty"`
	}{
		Category: r.Category,
		Applied:  r.Applied,
		Skipped:  r.Skipped,
		Failed:   r.Failed,
		Failures: r.Failures,
	}
	if r.FetchErr != nil {
		out.FetchErr = r.FetchErr.Error()
	}
	return json.Marshal(out)
}

func (p *PreferenceReport) MarshalJSON() ([]byte, error) {
	out := struct {
		Copied int    `json:"copied"`
		Err    string `json:"error,omitempty"`
	}{Copied: p.Copied}
	if p.Err != nil {
		out.Err = p.Err.Error()
	}
	return json.Marshal(out)
}

func (r *RunResult) MarshalJSON() ([]byte, error) {
	out := struct {
		ID            string                        `json:"id"`
		SourceAccount string                        `json:"source_account"`
		DestAccount   string                        `json:"dest_account"`
		StartedAt     string                        `json:"started_at"`
		FinishedAt    string                        `json:"finished_at"`
		Success       bool                          `json:"success"`
		Reports       map[Category]*ReconcileReport `json:"reports"`
		Preferences   *PreferenceReport             `json:"preferences,omitempty"`
	}{
		ID:            r.ID,
		SourceAccount: r.SourceAccount,
		DestAccount:   r.DestAccount,
		StartedAt:     r.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		FinishedAt:    r.FinishedAt.Format("2006-01-02T15:04:05Z07:00"),
		Success:       r.Succeeded(),
		Reports:       r.Reports,
		Preferences:   r.Preferences,
	}
	return json.Marshal(out)
}
