package types

import (
	"encoding/json"
	"github.com/pkg/errors"
	"time"
)

type (
	// DirectoryUser is the identity directory's own record. Password fields
	// never leave the directory.
	DirectoryUser struct {
		UID           string `gorm:"primaryKey"`
		Email         string
		DisplayName   string
		Disabled      bool
		EmailVerified bool
		PasswordHash  string
		PasswordSalt  string
		Providers     string `gorm:"type:text"`
		CustomClaims  string `gorm:"type:text"`
		CreatedAt     time.Time
		LastSignInAt  *time.Time
	}

	UserProvider struct {
		ProviderID  string `json:"providerId"`
		UID         string `json:"uid"`
		Email       string `json:"email,omitempty"`
		DisplayName string `json:"displayName,omitempty"`
	}

	UserMetadata struct {
		CreationTime   string  `json:"creationTime"`
		LastSignInTime *string `json:"lastSignInTime"`
	}

	// AuthUserRecord is the metadata-only snapshot written to users.json.
	AuthUserRecord struct {
		UID           string                 `json:"uid"`
		Email         string                 `json:"email,omitempty"`
		DisplayName   string                 `json:"displayName,omitempty"`
		Disabled      bool                   `json:"disabled"`
		EmailVerified bool                   `json:"emailVerified"`
		Metadata      UserMetadata           `json:"metadata"`
		ProviderData  []UserProvider         `json:"providerData"`
		CustomClaims  map[string]interface{} `json:"customClaims,omitempty"`
	}

	UserPage struct {
		Users         []*DirectoryUser
		NextPageToken string
	}
)

func (u DirectoryUser) Record() (AuthUserRecord, error) {
	record := AuthUserRecord{
		UID:           u.UID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		Disabled:      u.Disabled,
		EmailVerified: u.EmailVerified,
		Metadata: UserMetadata{
			CreationTime: u.CreatedAt.UTC().Format(time.RFC3339),
		},
		ProviderData: make([]UserProvider, 0),
	}

	if u.LastSignInAt != nil {
		v := u.LastSignInAt.UTC().Format(time.RFC3339)
		record.Metadata.LastSignInTime = &v
	}

	if u.Providers != "" {
		if err := json.Unmarshal([]byte(u.Providers), &record.ProviderData); err != nil {
			return record, errors.Wrapf(err, "invalid provider data for user %s", u.UID)
		}
	}

	if u.CustomClaims != "" {
		if err := json.Unmarshal([]byte(u.CustomClaims), &record.CustomClaims); err != nil {
			return record, errors.Wrapf(err, "invalid custom claims for user %s", u.UID)
		}
	}
	return record, nil
}
