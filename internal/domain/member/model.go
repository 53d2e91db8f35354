package member

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength        = 100
	MaxAddressLength     = 300
	MaxSuggestionsLength = 2000
)

// Relationship status values.
const (
	RelationshipSingle  = "single"
	RelationshipDating  = "dating"
	RelationshipMarried = "married"
)

// Yes/no answers used by the service unit and reminder questions.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
)

// Gender values.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// ValidRelationships lists the accepted relationship statuses in form order.
var ValidRelationships = []string{RelationshipSingle, RelationshipDating, RelationshipMarried}

// ValidGenders lists the accepted genders in form order.
var ValidGenders = []string{GenderMale, GenderFemale}

// Months lists month names for the birthday selector; index 0 is January.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Domain errors
var (
	ErrMissingRequired = errors.New("please fill all required fields")
	ErrEmailTaken      = errors.New("a member with this email already exists")
	ErrPhoneTaken      = errors.New("a member with this phone number already exists")
	ErrNotFound        = errors.New("member not found")
)

// Member is a tracked individual in the community roster.
// Empty AdminID, ServiceUnitName, Suggestions and Notes are stored as NULL.
type Member struct {
	ID                 string
	FullName           string
	Phone              string
	Email              string
	AdminID            string
	Address            string
	RelationshipStatus string
	Occupation         string
	ServiceUnitStatus  string
	ServiceUnitName    string
	Reminder           string
	Suggestions        string
	Gender             string
	Birthday           string // "MM/DD"
	Notes              string // copy of the latest note body
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsAssigned reports whether the member currently belongs to an admin.
// INVARIANT: Member fields are not mutated
func (m *Member) IsAssigned() bool {
	return m.AdminID != ""
}

// WantsReminders reports whether the member opted into reminder messages.
// INVARIANT: Member fields are not mutated
func (m *Member) WantsReminders() bool {
	return m.Reminder == AnswerYes
}

// BirthMonth returns the month component of Birthday, or 0 when unparseable.
func (m *Member) BirthMonth() int {
	month, _, ok := strings.Cut(m.Birthday, "/")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(month)
	if err != nil || n < 1 || n > 12 {
		return 0
	}
	return n
}

// Intake is the raw content of a new-member form, shared by the admin-side
// form and the public intake page.
type Intake struct {
	FullName           string
	Gender             string
	Phone              string
	Email              string
	Address            string
	RelationshipStatus string
	Occupation         string
	ServiceUnitStatus  string
	ServiceUnitName    string
	Reminder           string
	Suggestions        string
	BirthMonth         int // 1-12
	BirthDay           int // 1-31
}

// Normalize trims every text field and lowercases the enumerations.
// POST: Intake holds the values that would be persisted
func (in *Intake) Normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)
	in.RelationshipStatus = strings.ToLower(strings.TrimSpace(in.RelationshipStatus))
	in.Occupation = strings.TrimSpace(in.Occupation)
	in.ServiceUnitStatus = strings.ToLower(strings.TrimSpace(in.ServiceUnitStatus))
	in.ServiceUnitName = strings.TrimSpace(in.ServiceUnitName)
	in.Reminder = strings.ToLower(strings.TrimSpace(in.Reminder))
	in.Suggestions = strings.TrimSpace(in.Suggestions)
}

// Validate checks that every mandated field is present and in range.
// PRE: Normalize has been called
// POST: Returns ErrMissingRequired without naming the field, nil otherwise
// INVARIANT: Intake fields are not mutated
func (in *Intake) Validate() error {
	required := []string{
		in.FullName, in.Gender, in.Phone, in.Email, in.Address,
		in.RelationshipStatus, in.Occupation, in.ServiceUnitStatus, in.Reminder,
	}
	for _, v := range required {
		if v == "" {
			return ErrMissingRequired
		}
	}
	if !oneOf(in.Gender, ValidGenders) ||
		!oneOf(in.RelationshipStatus, ValidRelationships) ||
		!oneOf(in.ServiceUnitStatus, []string{AnswerYes, AnswerNo}) ||
		!oneOf(in.Reminder, []string{AnswerYes, AnswerNo}) {
		return ErrMissingRequired
	}
	if in.BirthMonth < 1 || in.BirthMonth > 12 || in.BirthDay < 1 || in.BirthDay > 31 {
		return ErrMissingRequired
	}
	if len(in.FullName) > MaxNameLength || len(in.Address) > MaxAddressLength || len(in.Suggestions) > MaxSuggestionsLength {
		return ErrMissingRequired
	}
	return nil
}

// ToMember builds the record to insert.
// PRE: Validate returned nil
// POST: Birthday is "MM/DD"; ServiceUnitName is empty unless status is yes;
// Notes is empty
func (in *Intake) ToMember(id, adminID string, now time.Time) Member {
	unitName := in.ServiceUnitName
	if in.ServiceUnitStatus != AnswerYes {
		unitName = ""
	}
	return Member{
		ID:                 id,
		FullName:           in.FullName,
		Phone:              in.Phone,
		Email:              in.Email,
		AdminID:            adminID,
		Address:            in.Address,
		RelationshipStatus: in.RelationshipStatus,
		Occupation:         in.Occupation,
		ServiceUnitStatus:  in.ServiceUnitStatus,
		ServiceUnitName:    unitName,
		Reminder:           in.Reminder,
		Suggestions:        in.Suggestions,
		Gender:             in.Gender,
		Birthday:           Birthday(in.BirthMonth, in.BirthDay),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Birthday formats a month and day as zero-padded "MM/DD".
func Birthday(month, day int) string {
	return fmt.Sprintf("%02d/%02d", month, day)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
