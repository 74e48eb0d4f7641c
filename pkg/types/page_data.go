package types

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserEmail       string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type LoginPageData struct {
	BasePageData
	Message string
	Error   string
	Email   string
}

type DashboardPageData struct {
	BasePageData
	Notice      string
	Error       string
	Assessments []*Assessment
}

type SeverityCount struct {
	Severity Severity
	Count    int
}

type AssessmentPageData struct {
	BasePageData
	Notice       string
	Error        string
	Assessment   *Assessment
	Messages     []*ConversationMessage
	Findings     []*Finding
	Images       []*AssessmentImage
	OverallRisk  string
	Counts       []SeverityCount
	MaxUploadMiB int
}

type RegisterPageData struct {
	BasePageData
	Error       string
	FieldErrors map[string]string
	Name        string
	Email       string
}

type ConfirmRegisterPageData struct {
	BasePageData
	Error string
	Email string
}
