// Package role is the static role and permission registry. Every lookup is a pure
// function over a closed enumeration, so an unknown role simply has no permissions.
package role

type Role string

const (
	Warden                     Role = "warden"
	DeputyWardenBoys           Role = "deputy_warden_boys"
	DeputyWardenGirls          Role = "deputy_warden_girls"
	ExecutiveWarden            Role = "executive_warden"
	ResidentialCounsellorBoys  Role = "residential_counsellor_boys"
	ResidentialCounsellorGirls Role = "residential_counsellor_girls"
	HostelIncharge             Role = "hostel_incharge"
	MessIncharge               Role = "mess_incharge"

	Student              Role = "student"
	MessRepresentative   Role = "mess_representative"
	HostelRepresentative Role = "hostel_representative"
)

type Permission string

const (
	ManageAllHostels      Permission = "manage_all_hostels"
	ManageAllStaff        Permission = "manage_all_staff"
	ManageAllStudents     Permission = "manage_all_students"
	ViewAllReports        Permission = "view_all_reports"
	ManageMessOperations  Permission = "manage_mess_operations"
	ApproveMajorRequests  Permission = "approve_major_requests"
	ManageFinances        Permission = "manage_finances"
	ManageBoysHostels     Permission = "manage_boys_hostels"
	ManageBoysStudents    Permission = "manage_boys_students"
	ViewBoysReports       Permission = "view_boys_reports"
	ApproveBoysRequests   Permission = "approve_boys_requests"
	ManageBoysDiscipline  Permission = "manage_boys_disciplinary"
	ManageGirlsHostels    Permission = "manage_girls_hostels"
	ManageGirlsStudents   Permission = "manage_girls_students"
	ViewGirlsReports      Permission = "view_girls_reports"
	ApproveGirlsRequests  Permission = "approve_girls_requests"
	ManageGirlsDiscipline Permission = "manage_girls_disciplinary"
	AssistWarden          Permission = "assist_warden"
	ManageHostelOps       Permission = "manage_hostel_operations"
	ViewComprehensive     Permission = "view_comprehensive_reports"
	CoordinateDepartments Permission = "coordinate_departments"
	HandleEmergencies     Permission = "handle_emergencies"
	CounselBoys           Permission = "counsel_boys_students"
	HandleBoysIssues      Permission = "handle_boys_student_issues"
	CreateBoysReports     Permission = "create_boys_student_reports"
	BoysWellness          Permission = "conduct_boys_wellness_programs"
	BoysActivities        Permission = "manage_boys_student_activities"
	CounselGirls          Permission = "counsel_girls_students"
	HandleGirlsIssues     Permission = "handle_girls_student_issues"
	CreateGirlsReports    Permission = "create_girls_student_reports"
	GirlsWellness         Permission = "conduct_girls_wellness_programs"
	GirlsActivities       Permission = "manage_girls_student_activities"
	ManageAssignedHostel  Permission = "manage_assigned_hostel"
	ViewHostelReports     Permission = "view_hostel_reports"
	ManageMaintenance     Permission = "manage_hostel_maintenance"
	HandleRoomAllocation  Permission = "handle_room_allocation"
	ManageHostelStaff     Permission = "manage_hostel_staff"
	ViewMessReports       Permission = "view_mess_reports"
	ManageMealPlans       Permission = "manage_meal_plans"
	HandleFoodComplaints  Permission = "handle_food_complaints"
	ManageMessStaff       Permission = "manage_mess_staff"
	ViewOwnProfile        Permission = "view_own_profile"
	BookRooms             Permission = "book_rooms"
	PayFees               Permission = "pay_fees"
	SubmitRequests        Permission = "submit_requests"
	ViewAnnouncements     Permission = "view_announcements"
	RepresentMessIssues   Permission = "represent_mess_issues"
	CoordinateWithMess    Permission = "coordinate_with_mess_incharge"
	GatherFeedback        Permission = "gather_student_feedback"
	RepresentHostelIssues Permission = "represent_hostel_issues"
	CoordinateWithHostel  Permission = "coordinate_with_hostel_incharge"
	OrganizeHostelEvents  Permission = "organize_hostel_events"
)

var studentBase = []Permission{ViewOwnProfile, BookRooms, PayFees, SubmitRequests, ViewAnnouncements}

// PermissionsOf returns a fresh slice each call; callers may mutate it.
func PermissionsOf(r Role) []Permission {
	var perms []Permission
	switch r {
	case Warden:
		perms = []Permission{ManageAllHostels, ManageAllStaff, ManageAllStudents, ViewAllReports, ManageMessOperations, ApproveMajorRequests, ManageFinances}
	case DeputyWardenBoys:
		perms = []Permission{ManageBoysHostels, ManageBoysStudents, ViewBoysReports, ApproveBoysRequests, ManageBoysDiscipline}
	case DeputyWardenGirls:
		perms = []Permission{ManageGirlsHostels, ManageGirlsStudents, ViewGirlsReports, ApproveGirlsRequests, ManageGirlsDiscipline}
	case ExecutiveWarden:
		perms = []Permission{AssistWarden, ManageHostelOps, ViewComprehensive, CoordinateDepartments, HandleEmergencies}
	case ResidentialCounsellorBoys:
		perms = []Permission{CounselBoys, HandleBoysIssues, CreateBoysReports, BoysWellness, BoysActivities}
	case ResidentialCounsellorGirls:
		perms = []Permission{CounselGirls, HandleGirlsIssues, CreateGirlsReports, GirlsWellness, GirlsActivities}
	case HostelIncharge:
		perms = []Permission{ManageAssignedHostel, ViewHostelReports, ManageMaintenance, HandleRoomAllocation, ManageHostelStaff}
	case MessIncharge:
		perms = []Permission{ManageMessOperations, ViewMessReports, ManageMealPlans, HandleFoodComplaints, ManageMessStaff}
	case Student:
		perms = append([]Permission{}, studentBase...)
	case MessRepresentative:
		perms = append(append([]Permission{}, studentBase...), RepresentMessIssues, CoordinateWithMess, GatherFeedback)
	case HostelRepresentative:
		perms = append(append([]Permission{}, studentBase...), RepresentHostelIssues, CoordinateWithHostel, OrganizeHostelEvents)
	default:
		return nil
	}
	return perms
}

func HasPermission(r Role, p Permission) bool {
	for _, perm := range PermissionsOf(r) {
		if perm == p {
			return true
		}
	}
	return false
}

func IsStaff(r Role) bool {
	switch r {
	case Warden, DeputyWardenBoys, DeputyWardenGirls, ExecutiveWarden,
		ResidentialCounsellorBoys, ResidentialCounsellorGirls, HostelIncharge, MessIncharge:
		return true
	}
	return false
}

func IsStudent(r Role) bool {
	switch r {
	case Student, MessRepresentative, HostelRepresentative:
		return true
	}
	return false
}

func IsRepresentative(r Role) bool {
	return r == MessRepresentative || r == HostelRepresentative
}

func (r Role) Valid() bool {
	return IsStaff(r) || IsStudent(r)
}

func (r Role) String() string {
	return string(r)
}

// Parse accepts only members of the enumeration.
func Parse(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

func StaffRoles() []Role {
	return []Role{Warden, DeputyWardenBoys, DeputyWardenGirls, ExecutiveWarden,
		ResidentialCounsellorBoys, ResidentialCounsellorGirls, HostelIncharge, MessIncharge}
}

func StudentRoles() []Role {
	return []Role{Student, MessRepresentative, HostelRepresentative}
}

func All() []Role {
	return append(StaffRoles(), StudentRoles()...)
}

// WardenTier may manage staff and override ownership checks.
func WardenTier() []Role {
	return []Role{Warden, DeputyWardenBoys, DeputyWardenGirls, ExecutiveWarden}
}

// SeniorStaff is the warden tier plus the residential counsellors.
func SeniorStaff() []Role {
	return append(WardenTier(), ResidentialCounsellorBoys, ResidentialCounsellorGirls)
}

func In(r Role, set []Role) bool {
	for _, s := range set {
		if s == r {
			return true
		}
	}
	return false
}

// Table is the full registry keyed by role name.
func Table() map[Role][]Permission {
	out := make(map[Role][]Permission, len(All()))
	for _, r := range All() {
		out[r] = PermissionsOf(r)
	}
	return out
}
