package catalog

import (
	"github.com/noah-isme/sma-admin-dashboard/internal/models"
	"github.com/noah-isme/sma-admin-dashboard/internal/schema"
)

// Entity route names. Each doubles as the store key suffix and the remote path.
const (
	Students       = "students"
	Teachers       = "teachers"
	Courses        = "courses"
	Attendance     = "attendance"
	Assignments    = "assignments"
	Results        = "results"
	Fees           = "fees"
	Announcements  = "announcements"
	Resources      = "resources"
	Messages       = "messages"
	Settings       = "settings"
	Products       = "products"
	Analytics      = "analytics"
	StudentProfile = "studentprofile"
	Calendar       = "calendar"
)

// Names lists every route name in registration order.
func Names() []string {
	return []string{
		Students, Teachers, Courses, Attendance, Assignments, Results, Fees, Announcements,
		Resources, Messages, Settings, Products, Analytics, StudentProfile, Calendar,
	}
}

func StudentDefinition() Definition[models.Student] {
	return Definition[models.Student]{
		Entity: "Student",
		Name:   Students,
		Path:   "/" + Students,
		Schema: schema.New(Students,
			schema.String("name", "Name", 2),
			schema.Email("email", "Email"),
			schema.Enum("grade", "Grade", "A", "B", "C", "D", "F"),
			schema.Date("joinDate", "Join date").DefaultToday(),
		),
		Summarize: summarizeStudents,
	}
}

func TeacherDefinition() Definition[models.Teacher] {
	return Definition[models.Teacher]{
		Entity: "Teacher",
		Name:   Teachers,
		Path:   "/" + Teachers,
		Schema: schema.New(Teachers,
			schema.String("name", "Name", 2),
			schema.Email("email", "Email"),
			schema.String("subject", "Subject", 2),
			schema.String("phone", "Phone", 7).Optional(),
			schema.Enum("status", "Status", "Active", "On Leave", "Inactive").Default("Active"),
			schema.Date("joinDate", "Join date").DefaultToday(),
		),
		Summarize: summarizeTeachers,
	}
}

func CourseDefinition() Definition[models.Course] {
	return Definition[models.Course]{
		Entity: "Course",
		Name:   Courses,
		Path:   "/" + Courses,
		Schema: schema.New(Courses,
			schema.String("title", "Title", 3),
			schema.String("code", "Code", 2),
			schema.String("teacher", "Teacher", 2),
			schema.Integer("credits", "Credits", 1, 10),
			schema.Enum("status", "Status", "Active", "Inactive", "Upcoming").Default("Active"),
			schema.String("description", "Description", 0).Optional(),
		),
		Summarize: summarizeCourses,
	}
}

func AttendanceDefinition() Definition[models.Attendance] {
	return Definition[models.Attendance]{
		Entity: "Attendance",
		Name:   Attendance,
		Path:   "/" + Attendance,
		Schema: schema.New(Attendance,
			schema.String("studentName", "Student name", 2),
			schema.Date("date", "Date").DefaultToday(),
			schema.Enum("status", "Status", models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate, models.AttendanceExcused),
			schema.String("remarks", "Remarks", 0).Optional(),
		),
		Seed:      attendanceSeed(),
		Summarize: summarizeAttendance,
	}
}

func AssignmentDefinition() Definition[models.Assignment] {
	return Definition[models.Assignment]{
		Entity: "Assignment",
		Name:   Assignments,
		Path:   "/" + Assignments,
		Schema: schema.New(Assignments,
			schema.String("title", "Title", 3),
			schema.String("course", "Course", 2),
			schema.Date("dueDate", "Due date"),
			schema.Number("maxScore", "Max score", 1, 1000).Default(100.0),
			schema.Enum("status", "Status", "Pending", "Submitted", "Graded").Default("Pending"),
		),
		Summarize: summarizeAssignments,
	}
}

func ResultDefinition() Definition[models.Result] {
	return Definition[models.Result]{
		Entity: "Result",
		Name:   Results,
		Path:   "/" + Results,
		Schema: schema.New(Results,
			schema.String("studentName", "Student name", 2),
			schema.String("subject", "Subject", 2),
			schema.Number("score", "Score", 0, 1000),
			schema.Number("totalMarks", "Total marks", 1, 1000),
			schema.Enum("term", "Term", "Term 1", "Term 2", "Term 3").Optional(),
		),
		Summarize: summarizeResults,
		View:      func(r models.Result) interface{} { return r.View() },
	}
}

func FeeDefinition() Definition[models.Fee] {
	return Definition[models.Fee]{
		Entity: "Fee",
		Name:   Fees,
		Path:   "/" + Fees,
		Schema: schema.New(Fees,
			schema.String("studentName", "Student name", 2),
			schema.Number("amount", "Amount", 0, 10000000),
			schema.Date("dueDate", "Due date"),
			schema.Enum("status", "Status", models.FeePaid, models.FeePending, models.FeeOverdue).Default(models.FeePending),
			schema.String("description", "Description", 0).Optional(),
		),
		Summarize: summarizeFees,
	}
}

func AnnouncementDefinition() Definition[models.Announcement] {
	return Definition[models.Announcement]{
		Entity: "Announcement",
		Name:   Announcements,
		Path:   "/" + Announcements,
		Schema: schema.New(Announcements,
			schema.String("title", "Title", 3),
			schema.String("content", "Content", 10),
			schema.String("author", "Author", 2),
			schema.Date("date", "Date").DefaultToday(),
			schema.Enum("priority", "Priority", "Low", "Medium", "High").Default("Medium"),
			schema.Enum("audience", "Audience", "All", "Students", "Teachers", "Parents").Default("All"),
		),
		Summarize: summarizeAnnouncements,
	}
}

func ResourceDefinition() Definition[models.Resource] {
	return Definition[models.Resource]{
		Entity: "Resource",
		Name:   Resources,
		Path:   "/" + Resources,
		Schema: schema.New(Resources,
			schema.String("title", "Title", 3),
			schema.Enum("type", "Type", "Document", "Video", "Link", "Book"),
			schema.String("url", "URL", 5),
			schema.String("subject", "Subject", 2),
			schema.String("uploadedBy", "Uploaded by", 2),
			schema.Date("date", "Date").DefaultToday(),
		),
		Summarize: summarizeResources,
	}
}

func MessageDefinition() Definition[models.Message] {
	return Definition[models.Message]{
		Entity: "Message",
		Name:   Messages,
		Path:   "/" + Messages,
		Schema: schema.New(Messages,
			schema.String("sender", "Sender", 2),
			schema.String("recipient", "Recipient", 2),
			schema.String("subject", "Subject", 3),
			schema.String("body", "Message", 1),
			schema.Date("date", "Date").DefaultToday(),
			schema.Bool("read", "Read").Default(false),
		),
		Summarize: summarizeMessages,
	}
}

func SettingDefinition() Definition[models.Setting] {
	return Definition[models.Setting]{
		Entity: "Setting",
		Name:   Settings,
		Path:   "/" + Settings,
		Schema: schema.New(Settings,
			schema.String("key", "Key", 2),
			schema.String("value", "Value", 1),
			schema.Enum("category", "Category", "General", "Academic", "Finance", "Notifications"),
			schema.String("description", "Description", 0).Optional(),
			schema.Bool("enabled", "Enabled").Default(true),
		),
		Seed:      settingsSeed(),
		Summarize: summarizeSettings,
	}
}

func ProductDefinition() Definition[models.Product] {
	return Definition[models.Product]{
		Entity: "Product",
		Name:   Products,
		Path:   "/" + Products,
		Schema: schema.New(Products,
			schema.String("name", "Name", 2),
			schema.String("category", "Category", 2),
			schema.Number("price", "Price", 0, 1000000),
			schema.Integer("stock", "Stock", 0, 1000000),
			schema.Enum("status", "Status", "Active", "Draft", "Archived").Default("Active"),
		),
		Summarize: summarizeProducts,
	}
}

func AnalyticsDefinition() Definition[models.Analytics] {
	return Definition[models.Analytics]{
		Entity: "Analytics",
		Name:   Analytics,
		Path:   "/" + Analytics,
		Schema: schema.New(Analytics,
			schema.String("metric", "Metric", 2),
			schema.Number("value", "Value", -1e9, 1e9),
			schema.Enum("period", "Period", "Daily", "Weekly", "Monthly", "Yearly"),
			schema.Date("date", "Date").DefaultToday(),
		),
		Summarize: summarizeAnalytics,
	}
}

func StudentProfileDefinition() Definition[models.StudentProfile] {
	return Definition[models.StudentProfile]{
		Entity: "StudentProfile",
		Name:   StudentProfile,
		Path:   "/" + StudentProfile,
		Schema: schema.New(StudentProfile,
			schema.String("studentName", "Student name", 2),
			schema.Date("dateOfBirth", "Date of birth"),
			schema.String("guardianName", "Guardian name", 2),
			schema.String("guardianPhone", "Guardian phone", 7),
			schema.String("address", "Address", 0).Optional(),
			schema.Enum("bloodGroup", "Blood group", "A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-").Optional(),
		),
		Summarize: summarizeProfiles,
	}
}

func CalendarDefinition() Definition[models.CalendarEvent] {
	return Definition[models.CalendarEvent]{
		Entity: "CalendarEvent",
		Name:   Calendar,
		Path:   "/" + Calendar,
		Schema: schema.New(Calendar,
			schema.String("title", "Title", 3),
			schema.Date("date", "Date"),
			schema.Date("endDate", "End date").Optional(),
			schema.Enum("type", "Type", "Holiday", "Exam", "Event", "Meeting"),
			schema.String("location", "Location", 0).Optional(),
			schema.Bool("allDay", "All day").Default(true),
		),
		Summarize: summarizeCalendar,
	}
}
