package catalog

import (
	"math"

	"github.com/noah-isme/sma-admin-dashboard/internal/models"
)

func summarizeStudents(items []models.Student) interface{} {
	out := models.StudentSummary{Total: len(items), ByGrade: models.CountBy{}}
	for _, s := range items {
		out.ByGrade.Add(s.Grade)
	}
	return out
}

func summarizeTeachers(items []models.Teacher) interface{} {
	out := models.TeacherSummary{Total: len(items), BySubject: models.CountBy{}, ByStatus: models.CountBy{}}
	for _, t := range items {
		out.BySubject.Add(t.Subject)
		out.ByStatus.Add(t.Status)
	}
	return out
}

func summarizeCourses(items []models.Course) interface{} {
	out := models.CourseSummary{Total: len(items), ByStatus: models.CountBy{}}
	credits := 0
	for _, c := range items {
		credits += c.Credits
		out.ByStatus.Add(c.Status)
	}
	out.AverageCredits = average(float64(credits), len(items))
	return out
}

func summarizeAttendance(items []models.Attendance) interface{} {
	out := models.AttendanceSummary{Total: len(items), ByStatus: models.CountBy{}}
	for _, a := range items {
		out.ByStatus.Add(a.Status)
	}
	if len(items) > 0 {
		out.Rate = round2(float64(out.ByStatus[models.AttendancePresent]) / float64(len(items)) * 100)
	}
	return out
}

func summarizeAssignments(items []models.Assignment) interface{} {
	out := models.AssignmentSummary{Total: len(items), ByStatus: models.CountBy{}}
	for _, a := range items {
		out.ByStatus.Add(a.Status)
	}
	return out
}

func summarizeResults(items []models.Result) interface{} {
	out := models.ResultSummary{Total: len(items)}
	sum := 0.0
	for i, r := range items {
		p := r.Percentage()
		sum += p
		if p >= models.PassPercentage {
			out.Passed++
		}
		if i == 0 || p > out.HighestPercentage {
			out.HighestPercentage = p
		}
	}
	out.AveragePercentage = average(sum, len(items))
	return out
}

func summarizeFees(items []models.Fee) interface{} {
	out := models.FeeSummary{Total: len(items), ByStatus: models.CountBy{}}
	for _, f := range items {
		out.TotalAmount += f.Amount
		if f.Status == models.FeePaid {
			out.PaidAmount += f.Amount
		} else {
			out.Outstanding += f.Amount
		}
		out.ByStatus.Add(f.Status)
	}
	out.TotalAmount = round2(out.TotalAmount)
	out.PaidAmount = round2(out.PaidAmount)
	out.Outstanding = round2(out.Outstanding)
	return out
}

func summarizeAnnouncements(items []models.Announcement) interface{} {
	out := models.AnnouncementSummary{Total: len(items), ByPriority: models.CountBy{}}
	for _, a := range items {
		out.ByPriority.Add(a.Priority)
	}
	return out
}

func summarizeResources(items []models.Resource) interface{} {
	out := models.ResourceSummary{Total: len(items), ByType: models.CountBy{}}
	for _, r := range items {
		out.ByType.Add(r.Type)
	}
	return out
}

func summarizeMessages(items []models.Message) interface{} {
	out := models.MessageSummary{Total: len(items)}
	for _, m := range items {
		if !m.Read {
			out.Unread++
		}
	}
	return out
}

func summarizeSettings(items []models.Setting) interface{} {
	out := models.SettingSummary{Total: len(items), ByCategory: models.CountBy{}}
	for _, s := range items {
		if s.Enabled {
			out.Enabled++
		}
		out.ByCategory.Add(s.Category)
	}
	return out
}

func summarizeProducts(items []models.Product) interface{} {
	out := models.ProductSummary{Total: len(items), ByCategory: models.CountBy{}}
	price := 0.0
	for _, p := range items {
		price += p.Price
		out.TotalStock += p.Stock
		out.ByCategory.Add(p.Category)
	}
	out.AveragePrice = average(price, len(items))
	return out
}

func summarizeAnalytics(items []models.Analytics) interface{} {
	out := models.AnalyticsSummary{Total: len(items), ByPeriod: models.CountBy{}}
	sum := 0.0
	for _, a := range items {
		sum += a.Value
		out.ByPeriod.Add(a.Period)
	}
	out.AverageValue = average(sum, len(items))
	return out
}

func summarizeProfiles(items []models.StudentProfile) interface{} {
	out := models.StudentProfileSummary{Total: len(items), ByBloodGroup: models.CountBy{}}
	for _, p := range items {
		out.ByBloodGroup.Add(models.StringValue(p.BloodGroup))
	}
	return out
}

func summarizeCalendar(items []models.CalendarEvent) interface{} {
	out := models.CalendarSummary{Total: len(items), ByType: models.CountBy{}}
	for _, e := range items {
		out.ByType.Add(e.Type)
	}
	return out
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return round2(sum / float64(n))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
