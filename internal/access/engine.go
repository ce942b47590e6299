package access

import (
	"errors"

	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/repository"
	"gorm.io/gorm"
)

// Actor identifies who is asking. Exactly one of UserID (staff) or
// StudentID is set.
type Actor struct {
	UserID    uint64
	StudentID uint64
}

// Scope names the resource path a decision is requested for. SchoolID may
// be omitted when SubjectID or TeamID is set; it is then resolved from the
// target resource. MinRole raises the bar for school-level checks;
// OwnerStudentID demands that a student actor owns the record.
type Scope struct {
	SchoolID       uint64
	TeamID         uint64
	SubjectID      uint64
	MinRole        models.MemberRole
	OwnerStudentID uint64
}

// Engine answers "may this actor act on this resource". Every service
// method calls Decide as a guard before mutating anything; the answer is
// nil (allow) or a typed Forbidden/NotFound error carrying the reason.
type Engine struct {
	schools     repository.SchoolRepository
	subjects    repository.SubjectRepository
	teams       repository.TeamRepository
	members     repository.MembershipRepository
	enrollments repository.EnrollmentRepository
	students    repository.StudentRepository
}

// NewEngine creates a new access decision engine.
func NewEngine(
	schools repository.SchoolRepository,
	subjects repository.SubjectRepository,
	teams repository.TeamRepository,
	members repository.MembershipRepository,
	enrollments repository.EnrollmentRepository,
	students repository.StudentRepository,
) *Engine {
	return &Engine{
		schools:     schools,
		subjects:    subjects,
		teams:       teams,
		members:     members,
		enrollments: enrollments,
		students:    students,
	}
}

var roleRank = map[models.MemberRole]int{
	models.RoleMember:  1,
	models.RoleTeacher: 2,
	models.RoleAdmin:   3,
}

// Decide evaluates the scope for the actor. A missing target resource is a
// NotFound and short-circuits before any access evaluation. PENDING and
// REJECT invitation statuses, and absent membership rows, all deny the
// same way.
func (e *Engine) Decide(actor Actor, scope Scope) error {
	if actor.StudentID != 0 {
		return e.decideStudent(actor, scope)
	}
	if actor.UserID == 0 {
		return apierrors.Forbiddenf("no actor identity")
	}
	return e.decideStaff(actor, scope)
}

func (e *Engine) decideStaff(actor Actor, scope Scope) error {
	schoolID := scope.SchoolID

	var subject *models.Subject
	if scope.SubjectID != 0 {
		s, err := e.subjects.FindByID(scope.SubjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.NotFoundf("subject not found")
			}
			return err
		}
		subject = s
		schoolID = s.SchoolID
	}

	var team *models.Team
	if scope.TeamID != 0 {
		t, err := e.teams.FindByID(scope.TeamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.NotFoundf("team not found")
			}
			return err
		}
		team = t
		schoolID = t.SchoolID
	}

	if schoolID == 0 {
		return apierrors.NotFoundf("school not found")
	}
	if scope.SchoolID != 0 && subject == nil && team == nil {
		if _, err := e.schools.FindByID(schoolID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.NotFoundf("school not found")
			}
			return err
		}
	}

	member, err := e.members.FindSchoolMember(schoolID, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.Forbiddenf("not a member of this school")
		}
		return err
	}
	if member.Status != models.StatusAccept {
		return apierrors.Forbiddenf("not a member of this school")
	}

	isAdmin := member.Role == models.RoleAdmin

	if subject != nil && !e.hasAcceptedTeacherEnrollment(subject.ID, actor.UserID) && !isAdmin {
		return apierrors.Forbiddenf("not a teacher of this subject")
	}

	if team != nil && !e.hasAcceptedTeamMembership(team.ID, actor.UserID) && !isAdmin {
		return apierrors.Forbiddenf("not a member of this team")
	}

	if scope.MinRole != "" && !isAdmin && roleRank[member.Role] < roleRank[scope.MinRole] {
		return apierrors.Forbiddenf("requires %s role in this school", scope.MinRole)
	}

	return nil
}

// decideStudent handles student actors. Students never hold an
// ADMIN-equivalent override: an ownership mismatch denies unconditionally.
func (e *Engine) decideStudent(actor Actor, scope Scope) error {
	if scope.OwnerStudentID != 0 && scope.OwnerStudentID != actor.StudentID {
		return apierrors.Forbiddenf("record belongs to another student")
	}

	// Teams are staff groupings; a student never holds team membership.
	if scope.TeamID != 0 {
		return apierrors.Forbiddenf("not a member of this team")
	}

	if scope.SchoolID != 0 && scope.SubjectID == 0 {
		if _, err := e.schools.FindByID(scope.SchoolID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.NotFoundf("school not found")
			}
			return err
		}

		student, err := e.students.FindByID(actor.StudentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.Forbiddenf("not a student of this school")
			}
			return err
		}
		if student.SchoolID != scope.SchoolID {
			return apierrors.Forbiddenf("not a student of this school")
		}
	}

	if scope.SubjectID != 0 {
		if _, err := e.subjects.FindByID(scope.SubjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.NotFoundf("subject not found")
			}
			return err
		}

		enrollment, err := e.enrollments.FindStudentOnSubject(scope.SubjectID, actor.StudentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.Forbiddenf("not enrolled on this subject")
			}
			return err
		}
		if !enrollment.IsActive {
			return apierrors.Forbiddenf("not enrolled on this subject")
		}
	}

	return nil
}

func (e *Engine) hasAcceptedTeacherEnrollment(subjectID, userID uint64) bool {
	enrollment, err := e.enrollments.FindTeacherOnSubject(subjectID, userID)
	if err != nil {
		return false
	}
	return enrollment.Status == models.StatusAccept
}

func (e *Engine) hasAcceptedTeamMembership(teamID, userID uint64) bool {
	member, err := e.members.FindTeamMember(teamID, userID)
	if err != nil {
		return false
	}
	return member.Status == models.StatusAccept
}
