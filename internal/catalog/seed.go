package catalog

import "github.com/noah-isme/sma-admin-dashboard/internal/models"

func settingsSeed() []models.Setting {
	desc := func(s string) *string { return &s }
	return []models.Setting{
		{ID: 1, Key: "schoolName", Value: "SMA Negeri 1", Category: "General", Description: desc("Name shown in the dashboard header"), Enabled: true},
		{ID: 2, Key: "academicYear", Value: "2024/2025", Category: "Academic", Description: desc("Current academic year"), Enabled: true},
		{ID: 3, Key: "gradingScale", Value: "A-F", Category: "Academic", Enabled: true},
		{ID: 4, Key: "currency", Value: "IDR", Category: "Finance", Description: desc("Currency used for fees"), Enabled: true},
		{ID: 5, Key: "lateFeePercent", Value: "5", Category: "Finance", Enabled: false},
		{ID: 6, Key: "emailNotifications", Value: "daily", Category: "Notifications", Description: desc("Digest frequency"), Enabled: true},
	}
}

func attendanceSeed() []models.Attendance {
	late := "Bus delayed"
	return []models.Attendance{
		{ID: 1, StudentName: "Ayu Lestari", Date: "2024-09-02", Status: models.AttendancePresent},
		{ID: 2, StudentName: "Budi Santoso", Date: "2024-09-02", Status: models.AttendanceAbsent},
		{ID: 3, StudentName: "Citra Dewi", Date: "2024-09-02", Status: models.AttendanceLate, Remarks: &late},
		{ID: 4, StudentName: "Dimas Pratama", Date: "2024-09-02", Status: models.AttendancePresent},
		{ID: 5, StudentName: "Eka Putri", Date: "2024-09-02", Status: models.AttendanceExcused},
	}
}
