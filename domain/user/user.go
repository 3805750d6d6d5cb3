// Package user implements the portfolio owner aggregate. Name and e-mail are
// effective dated so statements can show the details valid at the time.
package user

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/codewandler/folio-go/core/date"
	"github.com/codewandler/folio-go/core/effective"
	"github.com/codewandler/folio-go/core/es"
	"github.com/codewandler/folio-go/core/es/assert"
)

const (
	Type             = "User"
	PropertyUserName = "user_name"
)

var (
	validUserName = regexp.MustCompile(`^[a-z0-9][-_.a-z0-9]{2,31}$`)
	validate      = validator.New()
)

type Details struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserCreated struct {
	es.BaseEvent
	UserName string    `json:"user_name"`
	Created  date.Date `json:"created"`
	Details  Details   `json:"details"`
}

func (UserCreated) EventType() string { return "user.created" }

type DetailsChanged struct {
	es.BaseEvent
	ChangeDate date.Date `json:"change_date"`
	Details    Details   `json:"details"`
}

func (DetailsChanged) EventType() string { return "user.details_changed" }

func RegisterEvents(r es.Registrar) {
	es.RegisterEvent[UserCreated](r)
	es.RegisterEvent[DetailsChanged](r)
}

type User struct {
	es.TrackedEntity

	userName string
	details  effective.Properties[Details]
}

func New(id uuid.UUID) *User {
	return &User{TrackedEntity: es.NewTrackedEntity(id)}
}

func Factory() *es.Factory[*User] { return es.NewFactory(New) }

func (u *User) GetType() string { return Type }

func (u *User) Apply(event es.Event) error {
	switch e := event.(type) {
	case UserCreated:
		u.userName = e.UserName
		return u.details.Change(e.Created, e.Details)
	case DetailsChanged:
		return u.details.Change(e.ChangeDate, e.Details)
	default:
		return es.UnsupportedEvent(u, event)
	}
}

func (u *User) StoredProperties() map[string]string {
	if u.userName == "" {
		return nil
	}
	return map[string]string{PropertyUserName: u.userName}
}

func validDetails(d Details) assert.Cond {
	return assert.All(
		assert.Truef(d.Name != "", "name is set"),
		assert.Truef(validate.Var(d.Email, "required,email") == nil, "email %q is a bare address", d.Email),
	)
}

// Create registers the user, details are effective from created.
func (u *User) Create(created date.Date, userName, name, email string) error {
	details := Details{Name: name, Email: email}
	return u.Checked(
		assert.All(
			assert.Truef(u.userName == "", "user is not created yet"),
			assert.Truef(!created.IsZero(), "creation date is set"),
			assert.Truef(validUserName.MatchString(userName), "user name %q is valid", userName),
			validDetails(details),
		),
		es.ApplyAndPublishD(u, UserCreated{
			BaseEvent: es.NewBaseEvent(u),
			UserName:  userName,
			Created:   created,
			Details:   details,
		}),
	)
}

// ChangeDetails records new details effective from changeDate.
func (u *User) ChangeDetails(changeDate date.Date, name, email string) error {
	details := Details{Name: name, Email: email}
	cur, ok := u.details.Current()
	return u.Checked(
		assert.All(
			assert.Truef(ok && cur.Period.Contains(changeDate), "%s is within the current period", changeDate),
			validDetails(details),
		),
		es.ApplyAndPublishD(u, DetailsChanged{
			BaseEvent:  es.NewBaseEvent(u),
			ChangeDate: changeDate,
			Details:    details,
		}),
	)
}

func (u *User) UserName() string { return u.userName }

func (u *User) Details(d date.Date) (Details, error) { return u.details.ValueAt(d) }

// CurrentDetails returns the most recent details, ok is false before Create.
func (u *User) CurrentDetails() (Details, bool) {
	cur, ok := u.details.Current()
	return cur.Properties, ok
}
