package pos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newLaborServer(t *testing.T, jobs []jobDTO, entries []timeEntryDTO) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			_ = json.NewEncoder(w).Encode(authResponse{AccessToken: "tok", ExpiresIn: 86400})
		case "/labor/jobs":
			_ = json.NewEncoder(w).Encode(jobs)
		case "/labor/timeEntries":
			if r.URL.Query().Get("businessDate") == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(entries)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestFetchJobTitles(t *testing.T) {
	Convey("Given a job catalog upstream", t, func() {
		jobs := []jobDTO{
			{GUID: "job-gm", Title: "General Manager"},
			{GUID: "job-cook", Title: "Line Cook"},
			{GUID: "job-blank", Title: ""},
		}
		server := newLaborServer(t, jobs, nil)
		defer server.Close()
		client := newOrderClient(server)

		Convey("Titles map by guid, skipping blanks", func() {
			titles, err := client.FetchJobTitles(context.Background())
			So(err, ShouldBeNil)
			So(titles, ShouldResemble, map[string]string{
				"job-gm":   "General Manager",
				"job-cook": "Line Cook",
			})
		})
	})

	Convey("Given a location without a job catalog", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/auth" {
				_ = json.NewEncoder(w).Encode(authResponse{AccessToken: "tok", ExpiresIn: 86400})
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()
		client := newOrderClient(server)

		Convey("A 404 yields an empty map", func() {
			titles, err := client.FetchJobTitles(context.Background())
			So(err, ShouldBeNil)
			So(titles, ShouldBeEmpty)
		})
	})
}

func TestFetchAttendance(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	clockIn := day.Add(8 * time.Hour)
	clockOut := day.Add(16 * time.Hour)

	Convey("Given time entries covering every name and role shape", t, func() {
		entries := []timeEntryDTO{
			{
				GUID: "te-1",
				EmployeeReference: &employeeRefDTO{
					GUID:       "emp-1",
					ChosenName: strPtr("Sam Okafor"),
					FirstName:  strPtr("Samuel"),
					LastName:   strPtr("Okafor"),
				},
				JobReference: &jobRefDTO{GUID: "job-gm", Title: strPtr("General Manager")},
				InDate:       timePtr(clockIn),
				OutDate:      timePtr(clockOut),
			},
			{
				GUID: "te-2",
				EmployeeReference: &employeeRefDTO{
					GUID:      "emp-2",
					FirstName: strPtr("Dana"),
					LastName:  strPtr("Reyes"),
				},
				JobReference: &jobRefDTO{GUID: "job-cook"},
				InDate:       timePtr(clockIn),
			},
			{
				GUID: "te-3",
				EmployeeReference: &employeeRefDTO{
					GUID:      "emp-3",
					FirstName: strPtr("Priya"),
				},
				InDate: timePtr(clockIn),
			},
			{
				GUID:              "te-4",
				EmployeeReference: &employeeRefDTO{GUID: "emp-4"},
				JobReference:      &jobRefDTO{GUID: "job-unknown"},
				InDate:            timePtr(clockIn),
			},
		}
		jobTitles := map[string]string{"job-cook": "Line Cook"}

		server := newLaborServer(t, nil, entries)
		defer server.Close()
		client := newOrderClient(server)

		Convey("Name resolution prefers chosen name, then first and last, then first", func() {
			records, err := client.FetchAttendance(context.Background(), "loc-1", day, jobTitles)
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 4)
			So(records[0].EmployeeName, ShouldEqual, "Sam Okafor")
			So(records[1].EmployeeName, ShouldEqual, "Dana Reyes")
			So(records[2].EmployeeName, ShouldEqual, "Priya")
			So(records[3].EmployeeName, ShouldEqual, "Unknown")
		})

		Convey("Role resolution prefers the inline title, then the catalog, then the default", func() {
			records, err := client.FetchAttendance(context.Background(), "loc-1", day, jobTitles)
			So(err, ShouldBeNil)
			So(records[0].RoleTitle, ShouldEqual, "General Manager")
			So(records[1].RoleTitle, ShouldEqual, "Line Cook")
			So(records[2].RoleTitle, ShouldEqual, "Staff")
			So(records[3].RoleTitle, ShouldEqual, "Staff")
		})

		Convey("An open shift keeps a nil clock-out", func() {
			records, err := client.FetchAttendance(context.Background(), "loc-1", day, jobTitles)
			So(err, ShouldBeNil)
			So(records[0].ClockOut, ShouldNotBeNil)
			So(records[1].ClockOut, ShouldBeNil)
		})
	})

	Convey("Given deleted and malformed entries", t, func() {
		entries := []timeEntryDTO{
			{
				GUID:              "te-deleted",
				Deleted:           true,
				EmployeeReference: &employeeRefDTO{GUID: "emp-1"},
				InDate:            timePtr(clockIn),
			},
			{GUID: "te-no-employee", InDate: timePtr(clockIn)},
			{GUID: "te-no-in", EmployeeReference: &employeeRefDTO{GUID: "emp-2"}},
			{
				GUID:              "te-good",
				EmployeeReference: &employeeRefDTO{GUID: "emp-3", ChosenName: strPtr("Lee")},
				InDate:            timePtr(clockIn),
			},
		}
		server := newLaborServer(t, nil, entries)
		defer server.Close()
		client := newOrderClient(server)

		Convey("Only the well-formed entry survives", func() {
			records, err := client.FetchAttendance(context.Background(), "loc-1", day, nil)
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 1)
			So(records[0].EmployeeID, ShouldEqual, "emp-3")
		})
	})

	Convey("Given a business date nobody worked", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/auth" {
				_ = json.NewEncoder(w).Encode(authResponse{AccessToken: "tok", ExpiresIn: 86400})
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()
		client := newOrderClient(server)

		Convey("A 404 yields an empty slice, not an error", func() {
			records, err := client.FetchAttendance(context.Background(), "loc-1", day, nil)
			So(err, ShouldBeNil)
			So(records, ShouldBeEmpty)
		})
	})

	Convey("Given an upstream failure on the labor endpoint", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/auth" {
				_ = json.NewEncoder(w).Encode(authResponse{AccessToken: "tok", ExpiresIn: 86400})
				return
			}
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()
		client := newOrderClient(server)

		Convey("The failure maps to ErrUpstream", func() {
			_, err := client.FetchAttendance(context.Background(), "loc-1", day, nil)
			So(err, ShouldWrap, ErrUpstream)
		})
	})
}
