package pos

import (
	"context"
	"errors"
	"time"

	"github.com/opskitchen/shiftboard/internal/domain/model"
	"github.com/opskitchen/shiftboard/pkg/metrics"
)

const (
	unknownEmployeeName = "Unknown"
	defaultRoleTitle    = "Staff"
)

// FetchJobTitles loads the location's job catalog and returns a guid to
// title map for role resolution. A 404 yields an empty map.
func (c *Client) FetchJobTitles(ctx context.Context) (map[string]string, error) {
	var jobs []jobDTO
	err := c.get(ctx, "/labor/jobs", nil, &jobs)
	if errors.Is(err, errNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string, len(jobs))
	for _, job := range jobs {
		if job.GUID != "" && job.Title != "" {
			titles[job.GUID] = job.Title
		}
	}
	return titles, nil
}

// FetchAttendance retrieves clock-in records for a single business date.
// jobTitles supplements entries whose inline job reference carries no
// title. A 404 means nobody clocked in that day and yields an empty slice.
func (c *Client) FetchAttendance(ctx context.Context, locationID string, businessDate time.Time, jobTitles map[string]string) ([]model.AttendanceRecord, error) {
	var entries []timeEntryDTO
	err := c.get(ctx, "/labor/timeEntries", map[string]string{
		"location":     locationID,
		"businessDate": businessDate.Format(model.BusinessDateKey),
	}, &entries)
	if errors.Is(err, errNotFound) {
		return []model.AttendanceRecord{}, nil
	}
	if err != nil {
		metrics.RecordLaborFetchFailure()
		return nil, err
	}

	records := make([]model.AttendanceRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.Deleted || entry.EmployeeReference == nil || entry.InDate == nil {
			continue
		}
		records = append(records, model.AttendanceRecord{
			EmployeeID:   entry.EmployeeReference.GUID,
			EmployeeName: resolveEmployeeName(entry.EmployeeReference),
			RoleTitle:    resolveRoleTitle(entry.JobReference, jobTitles),
			ClockIn:      *entry.InDate,
			ClockOut:     entry.OutDate,
		})
	}

	metrics.RecordLaborEntriesLoaded(len(records))
	return records, nil
}

// resolveEmployeeName picks the best available display name: chosen name,
// then first plus last, then first alone, then a fixed placeholder.
func resolveEmployeeName(ref *employeeRefDTO) string {
	if ref.ChosenName != nil && *ref.ChosenName != "" {
		return *ref.ChosenName
	}
	first := ""
	if ref.FirstName != nil {
		first = *ref.FirstName
	}
	last := ""
	if ref.LastName != nil {
		last = *ref.LastName
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return unknownEmployeeName
	}
}

// resolveRoleTitle picks the role title: the entry's inline job title,
// then the job catalog, then a generic default.
func resolveRoleTitle(ref *jobRefDTO, jobTitles map[string]string) string {
	if ref != nil {
		if ref.Title != nil && *ref.Title != "" {
			return *ref.Title
		}
		if title, ok := jobTitles[ref.GUID]; ok && title != "" {
			return title
		}
	}
	return defaultRoleTitle
}
