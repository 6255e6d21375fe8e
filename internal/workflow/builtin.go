package workflow

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// IDs of the workflows shipped with the suite.
const (
	DigitalQuoteResponse    = "digital-quote-response"
	JobAssignment           = "job-assignment"
	JobCompleted            = "job-completed"
	TrainingAssignment      = "training-assignment"
	GaugeCalibrationExpired = "gauge-calibration-expired"
	ApprovalRequested       = "approval-requested"
)

// Builtin returns the shipped workflows, all delivering through n.
// IDs listed in disabled are left out.
func Builtin(n Notifier, disabled ...string) []Workflow {
	skip := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		skip[id] = true
	}

	all := []*Definition{
		{Name: DigitalQuoteResponse, Summary: "A customer accepted or rejected a digital quote.", Render: renderQuoteResponse},
		{Name: JobAssignment, Summary: "A job operation was assigned to an employee.", Render: renderJobAssignment},
		{Name: JobCompleted, Summary: "A production job was completed.", Render: renderJobCompleted},
		{Name: TrainingAssignment, Summary: "An employee was assigned a training.", Render: renderTrainingAssignment},
		{Name: GaugeCalibrationExpired, Summary: "A gauge is past its calibration due date.", Render: renderGaugeExpired},
		{Name: ApprovalRequested, Summary: "A document is waiting for approval.", Render: renderApprovalRequested},
	}

	out := make([]Workflow, 0, len(all))
	for _, d := range all {
		if skip[d.Name] {
			continue
		}
		d.Notify = n
		out = append(out, d)
	}
	return out
}

func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, fmt.Errorf("missing data")
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("invalid data: %w", err)
	}
	return v, nil
}

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing %s", strings.Join(missing, ", "))
}

type quoteResponse struct {
	QuoteID      string `json:"quoteId"`
	CustomerName string `json:"customerName"`
	Status       string `json:"status"`
}

func renderQuoteResponse(data json.RawMessage) (Message, error) {
	d, err := decode[quoteResponse](data)
	if err != nil {
		return Message{}, err
	}
	if err := required(map[string]string{"quoteId": d.QuoteID, "status": d.Status}); err != nil {
		return Message{}, err
	}
	var verb string
	switch d.Status {
	case "accepted":
		verb = "accepted"
	case "rejected":
		verb = "rejected"
	default:
		return Message{}, fmt.Errorf("status must be accepted or rejected, got %q", d.Status)
	}
	who := d.CustomerName
	if who == "" {
		who = "The customer"
	}
	return Message{
		Title: fmt.Sprintf("Quote %s %s", d.QuoteID, verb),
		Body:  fmt.Sprintf("%s %s digital quote %s.", who, verb, d.QuoteID),
		Link:  "/x/quote/" + d.QuoteID,
	}, nil
}

type jobAssignment struct {
	JobID     string `json:"jobId"`
	Operation string `json:"operation"`
}

func renderJobAssignment(data json.RawMessage) (Message, error) {
	d, err := decode[jobAssignment](data)
	if err != nil {
		return Message{}, err
	}
	if err := required(map[string]string{"jobId": d.JobID}); err != nil {
		return Message{}, err
	}
	body := fmt.Sprintf("You were assigned to job %s.", d.JobID)
	if d.Operation != "" {
		body = fmt.Sprintf("You were assigned to %s on job %s.", d.Operation, d.JobID)
	}
	return Message{Title: "New job assignment", Body: body, Link: "/x/job/" + d.JobID}, nil
}

type jobCompleted struct {
	JobID    string `json:"jobId"`
	Customer string `json:"customer"`
}

func renderJobCompleted(data json.RawMessage) (Message, error) {
	d, err := decode[jobCompleted](data)
	if err != nil {
		return Message{}, err
	}
	if err := required(map[string]string{"jobId": d.JobID}); err != nil {
		return Message{}, err
	}
	body := fmt.Sprintf("Job %s is complete.", d.JobID)
	if d.Customer != "" {
		body = fmt.Sprintf("Job %s for %s is complete.", d.JobID, d.Customer)
	}
	return Message{Title: "Job completed", Body: body, Link: "/x/job/" + d.JobID}, nil
}

type trainingAssignment struct {
	AssignmentID string `json:"assignmentId"`
	Title        string `json:"title"`
	DueAt        string `json:"dueAt"`
}

func renderTrainingAssignment(data json.RawMessage) (Message, error) {
	d, err := decode[trainingAssignment](data)
	if err != nil {
		return Message{}, err
	}
	if err := required(map[string]string{"title": d.Title}); err != nil {
		return Message{}, err
	}
	body := fmt.Sprintf("You have been assigned %q.", d.Title)
	if d.DueAt != "" {
		body = fmt.Sprintf("You have been assigned %q, due %s.", d.Title, d.DueAt)
	}
	return Message{Title: "New training assigned", Body: body, Link: "/x/resources/training"}, nil
}

type gaugeExpired struct {
	GaugeID     string `json:"gaugeId"`
	Description string `json:"description"`
	DueAt       string `json:"dueAt"`
}

func renderGaugeExpired(data json.RawMessage) (Message, error) {
	d, err := decode[gaugeExpired](data)
	if err != nil {
		return Message{}, err
	}
	if err := required(map[string]string{"gaugeId": d.GaugeID}); err != nil {
		return Message{}, err
	}
	name := d.GaugeID
	if d.Description != "" {
		name = fmt.Sprintf("%s (%s)", d.GaugeID, d.Description)
	}
	body := fmt.Sprintf("Gauge %s is out of calibration.", name)
	if d.DueAt != "" {
		body = fmt.Sprintf("Gauge %s was due for calibration on %s.", name, d.DueAt)
	}
	return Message{Title: "Gauge calibration expired", Body: body, Link: "/x/quality/gauges/" + d.GaugeID}, nil
}

type approvalRequested struct {
	DocumentType string `json:"documentType"`
	DocumentID   string `json:"documentId"`
	RequestedBy  string `json:"requestedBy"`
}

func renderApprovalRequested(data json.RawMessage) (Message, error) {
	d, err := decode[approvalRequested](data)
	if err != nil {
		return Message{}, err
	}
	if err := required(map[string]string{"documentType": d.DocumentType, "documentId": d.DocumentID}); err != nil {
		return Message{}, err
	}
	body := fmt.Sprintf("%s %s needs your approval.", d.DocumentType, d.DocumentID)
	if d.RequestedBy != "" {
		body = fmt.Sprintf("%s requested approval of %s %s.", d.RequestedBy, d.DocumentType, d.DocumentID)
	}
	return Message{Title: "Approval requested", Body: body, Link: "/x/approvals"}, nil
}
