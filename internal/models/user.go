package models

import "encoding/json"

// User represents an account in the system. Everything a swipe deck or a chat
// header displays lives on the associated Profile.
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(128);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Profile holds the public, user-editable part of an account. Slice-valued
// fields are stored JSON-encoded in text columns.
type Profile struct {
	BaseModel
	UserID           string `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Name             string `gorm:"type:varchar(100)" json:"name"`
	Age              int    `json:"age,omitempty"`
	Bio              string `gorm:"type:text" json:"bio,omitempty"`
	Location         string `gorm:"type:varchar(100)" json:"location,omitempty"`
	Gender           string `gorm:"type:varchar(32)" json:"gender,omitempty"`
	PhotosRaw        string `gorm:"type:text" json:"-"`
	InterestsRaw     string `gorm:"type:text" json:"-"`
	TopFilmsRaw      string `gorm:"type:text" json:"-"`
	PreferredGenders string `gorm:"type:text" json:"-"`
}

// TableName specifies the table name for the Profile model.
func (Profile) TableName() string {
	return "profiles"
}

// Photos decodes the JSON-encoded photo URL list.
func (p *Profile) Photos() []string {
	return decodeStringList(p.PhotosRaw)
}

// SetPhotos encodes the photo URL list.
func (p *Profile) SetPhotos(photos []string) {
	p.PhotosRaw = encodeStringList(photos)
}

// Interests decodes the JSON-encoded interest list.
func (p *Profile) Interests() []string {
	return decodeStringList(p.InterestsRaw)
}

// SetInterests encodes the interest list.
func (p *Profile) SetInterests(interests []string) {
	p.InterestsRaw = encodeStringList(interests)
}

// TopFilms decodes the JSON-encoded favorite film list.
func (p *Profile) TopFilms() []string {
	return decodeStringList(p.TopFilmsRaw)
}

// SetTopFilms encodes the favorite film list.
func (p *Profile) SetTopFilms(films []string) {
	p.TopFilmsRaw = encodeStringList(films)
}

func encodeStringList(list []string) string {
	if len(list) == 0 {
		return ""
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return ""
	}
	return string(raw)
}

func decodeStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

// ProfileUpdate carries a partial profile update. Nil fields are left
// untouched; set fields overwrite, including to their zero value.
type ProfileUpdate struct {
	Name      *string   `json:"name,omitempty"`
	Age       *int      `json:"age,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Location  *string   `json:"location,omitempty"`
	Gender    *string   `json:"gender,omitempty"`
	Photos    *[]string `json:"photos,omitempty"`
	Interests *[]string `json:"interests,omitempty"`
	TopFilms  *[]string `json:"topFilms,omitempty"`
}

// Apply copies the set fields of the update onto the profile.
func (u *ProfileUpdate) Apply(p *Profile) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.Photos != nil {
		p.SetPhotos(*u.Photos)
	}
	if u.Interests != nil {
		p.SetInterests(*u.Interests)
	}
	if u.TopFilms != nil {
		p.SetTopFilms(*u.TopFilms)
	}
}

// PublicProfile is the wire shape for another user's profile, keyed by the
// owning user rather than the profile row.
type PublicProfile struct {
	UserID    string   `json:"userId"`
	Name      string   `json:"name"`
	Age       int      `json:"age,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Location  string   `json:"location,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Photos    []string `json:"photos"`
	Interests []string `json:"interests"`
	TopFilms  []string `json:"topFilms"`
}

// Public converts a profile to its wire shape.
func (p *Profile) Public() *PublicProfile {
	return &PublicProfile{
		UserID:    p.UserID,
		Name:      p.Name,
		Age:       p.Age,
		Bio:       p.Bio,
		Location:  p.Location,
		Gender:    p.Gender,
		Photos:    p.Photos(),
		Interests: p.Interests(),
		TopFilms:  p.TopFilms(),
	}
}
