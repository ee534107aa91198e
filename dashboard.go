package admin

// UnknownSessionName is shown when the admin's session is not listed.
const UnknownSessionName = "Unknown"

// TODO: replace with the metrics endpoint once the API exposes one.
var dashboardMetrics = []DashboardMetric{
	{Title: "Total Students", Value: "500"},
	{Title: "Today's Fees Collection", Value: "$2,500"},
	{Title: "Present Students Today", Value: "480"},
	{Title: "Absent Students Today", Value: "20"},
}

// DashboardMetrics returns the figures shown on the dashboard home.
func DashboardMetrics() []DashboardMetric {
	out := make([]DashboardMetric, len(dashboardMetrics))
	copy(out, dashboardMetrics)
	return out
}

// SessionName finds the name of sessionID in sessions.
func SessionName(sessions []LoginSession, sessionID int64) string {
	for _, s := range sessions {
		if s.ID == sessionID {
			return s.Name
		}
	}
	return UnknownSessionName
}
