// Package services – ProfileService
//
// ProfileService lists, creates, and partially updates user profiles, and
// stores avatar images in the configured object store.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-gateway/internal/domain"
	"github.com/tbourn/go-match-gateway/internal/storage"
)

// ErrDuplicateProfile is what a ProfileRepo returns when CreateProfile hits
// an existing user id. The router shim maps the repo sentinel onto it.
var ErrDuplicateProfile = errors.New("duplicate profile")

// ProfileRepo defines the persistence contract required by ProfileService.
type ProfileRepo interface {
	ListProfiles(ctx context.Context, db *gorm.DB) ([]domain.Profile, error)
	CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, userID string, fields map[string]any) (*domain.Profile, error)
}

// ProfilePatch lists the fields to change; nil fields are left alone.
type ProfilePatch struct {
	FullName  *string
	Email     *string
	BirthDate *string
	AvatarURL *string
}

func (p ProfilePatch) columns() map[string]any {
	out := map[string]any{}
	if p.FullName != nil {
		out["full_name"] = strings.TrimSpace(*p.FullName)
	}
	if p.Email != nil {
		out["email"] = strings.TrimSpace(*p.Email)
	}
	if p.BirthDate != nil {
		out["birth_date"] = strings.TrimSpace(*p.BirthDate)
	}
	if p.AvatarURL != nil {
		out["avatar_url"] = strings.TrimSpace(*p.AvatarURL)
	}
	return out
}

// AvatarUpload is one uploaded avatar image.
type AvatarUpload struct {
	// UserID, when set, also points that profile's avatar_url at the upload.
	UserID      string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AvatarResult is the stored avatar location.
type AvatarResult struct {
	URL      string
	FileName string
	Profile  *domain.Profile
}

// ProfileService implements profile operations.
type ProfileService struct {
	DB      *gorm.DB
	Repo    ProfileRepo
	Objects storage.ObjectStore

	AvatarPrefix string
	now          func() time.Time
}

// NewProfileService constructs a ProfileService. objects may be nil, in
// which case UploadAvatar reports ErrStorageDisabled.
func NewProfileService(db *gorm.DB, r ProfileRepo, objects storage.ObjectStore) *ProfileService {
	return &ProfileService{DB: db, Repo: r, Objects: objects, AvatarPrefix: "avatars/", now: time.Now}
}

// List returns all profiles, newest first.
func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	out, err := s.Repo.ListProfiles(ctx, s.DB)
	if err != nil {
		return nil, storeErr("list profiles", err)
	}
	return out, nil
}

// Create stores a new profile keyed by p.UserID.
func (s *ProfileService) Create(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	p.UserID = strings.TrimSpace(p.UserID)
	if p.UserID == "" {
		return nil, ErrMissingFields
	}
	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.TrimSpace(p.Email)
	p.BirthDate = strings.TrimSpace(p.BirthDate)
	p.AvatarURL = strings.TrimSpace(p.AvatarURL)

	out, err := s.Repo.CreateProfile(ctx, s.DB, &p)
	if errors.Is(err, ErrDuplicateProfile) {
		return nil, ErrProfileExists
	}
	if err != nil {
		return nil, storeErr("create profile", err)
	}
	return out, nil
}

// Update applies patch to the profile of userID.
func (s *ProfileService) Update(ctx context.Context, userID string, patch ProfilePatch) (*domain.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUser
	}
	out, err := s.Repo.UpdateProfile(ctx, s.DB, userID, patch.columns())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, storeErr("update profile", err)
	}
	return out, nil
}

// UploadAvatar stores the image as <prefix>avatar_<unix-ms><ext>.
func (s *ProfileService) UploadAvatar(ctx context.Context, up AvatarUpload) (*AvatarResult, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "UploadAvatar", trace.WithAttributes(
		attribute.String("file.name", up.FileName),
		attribute.Int64("file.size", up.Size),
	))
	defer span.End()

	if s.Objects == nil {
		return nil, ErrStorageDisabled
	}
	if up.Body == nil || up.Size == 0 {
		return nil, ErrEmptyUpload
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	name := fmt.Sprintf("avatar_%d%s", now().UnixMilli(), strings.ToLower(path.Ext(up.FileName)))
	url, err := s.Objects.Put(ctx, s.AvatarPrefix+name, up.Body, up.Size, up.ContentType)
	if err != nil {
		span.RecordError(err)
		return nil, storeErr("upload avatar", err)
	}

	res := &AvatarResult{URL: url, FileName: name}
	if uid := strings.TrimSpace(up.UserID); uid != "" {
		p, err := s.Update(ctx, uid, ProfilePatch{AvatarURL: &url})
		if err != nil {
			return nil, err
		}
		res.Profile = p
	}
	return res, nil
}
