package roster_test

import (
	"testing"
	"time"

	"github.com/opskitchen/shiftboard/internal/domain/model"
	"github.com/opskitchen/shiftboard/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func record(id, name, title string) model.AttendanceRecord {
	clockIn := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	clockOut := clockIn.Add(8 * time.Hour)
	return model.AttendanceRecord{
		EmployeeID:   id,
		EmployeeName: name,
		RoleTitle:    title,
		ClockIn:      clockIn,
		ClockOut:     &clockOut,
	}
}

func TestDetectLeaders(t *testing.T) {
	Convey("Given a leader detector", t, func() {
		detector := roster.NewDetector()
		identities := []model.Identity{
			{ID: "u-ana", Name: "Ana Reyes", Role: model.RoleManager, POSEmployeeID: "emp-1"},
			{ID: "u-ben", Name: "Ben Ortiz", Role: model.RoleManager},
			{ID: "u-kendall", Name: "Kendall Matthews", Role: model.RoleManager},
		}

		Convey("When attendance holds a GM and a Team Leader", func() {
			attendance := []model.AttendanceRecord{
				record("emp-2", "Ben Ortiz", "Team Leader"),
				record("emp-1", "Ana Reyes", "GM"),
			}

			candidates := detector.DetectLeaders(attendance, identities)

			Convey("Then both match and the GM sorts first", func() {
				So(candidates, ShouldHaveLength, 2)
				So(candidates[0].UserID, ShouldEqual, "u-ana")
				So(candidates[0].Priority, ShouldEqual, roster.PriorityGeneralManager)
				So(candidates[1].UserID, ShouldEqual, "u-ben")
				So(candidates[1].Priority, ShouldEqual, roster.PriorityTeamLeader)
			})

			Convey("Then the output is sorted by non-decreasing priority", func() {
				for i := 1; i < len(candidates); i++ {
					So(candidates[i-1].Priority, ShouldBeLessThanOrEqualTo, candidates[i].Priority)
				}
			})
		})

		Convey("When a title only matches via pattern fallback", func() {
			attendance := []model.AttendanceRecord{
				record("emp-2", "Ben Ortiz", "Shift Lead (Morning)"),
			}

			candidates := detector.DetectLeaders(attendance, identities)

			Convey("Then it still resolves to team-leader priority", func() {
				So(candidates, ShouldHaveLength, 1)
				So(candidates[0].Priority, ShouldEqual, roster.PriorityTeamLeader)
			})
		})

		Convey("When no attendance record matches any leadership pattern", func() {
			attendance := []model.AttendanceRecord{
				record("emp-3", "Casey Lin", "Cashier"),
				record("emp-4", "Drew Wood", "Cook"),
			}

			candidates := detector.DetectLeaders(attendance, identities)

			Convey("Then the canonical no-leader state is an empty sequence", func() {
				So(candidates, ShouldBeEmpty)
			})
		})

		Convey("When an employee cannot be resolved to an identity", func() {
			attendance := []model.AttendanceRecord{
				record("emp-9", "Zo Q", "Manager"),
			}

			candidates := detector.DetectLeaders(attendance, nil)

			Convey("Then a placeholder id is emitted instead of dropping the candidate", func() {
				So(candidates, ShouldHaveLength, 1)
				So(candidates[0].UserID, ShouldEqual, "unknown-emp-9")
				So(candidates[0].Resolved(), ShouldBeFalse)
			})
		})

		Convey("When an attendance name is a short form", func() {
			attendance := []model.AttendanceRecord{
				record("emp-5", "Kendall M", "Manager"),
			}

			candidates := detector.DetectLeaders(attendance, identities)

			Convey("Then it fuzzy-matches the full identity", func() {
				So(candidates, ShouldHaveLength, 1)
				So(candidates[0].UserID, ShouldEqual, "u-kendall")
				So(candidates[0].Name, ShouldEqual, "Kendall Matthews")
			})
		})

		Convey("When one employee holds several leadership records", func() {
			attendance := []model.AttendanceRecord{
				record("emp-1", "Ana Reyes", "Team Leader"),
				record("emp-1", "Ana Reyes", "General Manager"),
			}

			candidates := detector.DetectLeaders(attendance, identities)

			Convey("Then the minimum priority among matched roles wins", func() {
				So(candidates, ShouldHaveLength, 1)
				So(candidates[0].Priority, ShouldEqual, roster.PriorityGeneralManager)
			})
		})

		Convey("When two leaders share the minimum priority", func() {
			attendance := []model.AttendanceRecord{
				record("emp-2", "Ben Ortiz", "Store Manager"),
				record("emp-1", "Ana Reyes", "GM"),
			}

			candidates := detector.DetectLeaders(attendance, identities)

			Convey("Then co-leadership is ordered deterministically by external id", func() {
				So(candidates, ShouldHaveLength, 2)
				So(candidates[0].ExternalID, ShouldEqual, "emp-1")
				So(candidates[1].ExternalID, ShouldEqual, "emp-2")
			})
		})
	})
}

func TestDetectorOptions(t *testing.T) {
	Convey("Given a detector with a custom title mapping", t, func() {
		detector := roster.NewDetector(
			roster.WithTitlePriority("Director of Operations", 1, "Director"),
		)

		candidates := detector.DetectLeaders([]model.AttendanceRecord{
			record("emp-7", "Sam Hill", "Director of Operations"),
		}, nil)

		Convey("Then the custom title classifies as a leader", func() {
			So(candidates, ShouldHaveLength, 1)
			So(candidates[0].RoleTitle, ShouldEqual, "Director")
		})
	})
}
